// Package gitx is the git backend adapter: repository queries and
// index/working-tree mutations, executed through the git CLI, with read-only
// history queries served natively via go-git.
package gitx

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
)

// Repo is an opened git repository.
type Repo struct {
	root   string
	native *gogit.Repository // nil when go-git cannot open the layout
}

// Open resolves the repository root from path (or the current directory) and
// opens it.
func Open(path string) (*Repo, error) {
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	tmp := &Repo{root: abs}
	root, err := tmp.runGit([]string{"rev-parse", "--show-toplevel"}, false, "git rev-parse")
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("open repository: git rev-parse returned empty root")
	}
	r := &Repo{root: root}
	// go-git is optional: unusual layouts (worktrees, partial clones) fall
	// back to the CLI for everything
	if native, err := gogit.PlainOpenWithOptions(root, &gogit.PlainOpenOptions{DetectDotGit: true}); err == nil {
		r.native = native
	}
	return r, nil
}

// Root returns the absolute repository root.
func (r *Repo) Root() string {
	return r.root
}

// runGit executes one git command against the repository. allowExit1 treats
// exit status 1 with empty stderr as success, the way git diff signals
// "changes present".
func (r *Repo) runGit(args []string, allowExit1 bool, context string) (string, error) {
	if r.root == "" {
		return "", errors.New("repository root not set")
	}
	cmdArgs := append([]string{"-C", r.root}, args...)
	cmd := exec.Command("git", cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if allowExit1 && errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && stderr.Len() == 0 {
			// fine, diff-style exit code
		} else {
			if stderr.Len() > 0 {
				return "", fmt.Errorf("%s: %v: %s", context, err, strings.TrimSpace(stderr.String()))
			}
			return "", fmt.Errorf("%s: %w", context, err)
		}
	}
	return stdout.String(), nil
}

// runGitStdin is runGit with input piped to the child process.
func (r *Repo) runGitStdin(args []string, input, context string) (string, error) {
	cmdArgs := append([]string{"-C", r.root}, args...)
	cmd := exec.Command("git", cmdArgs...)
	cmd.Stdin = strings.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return "", fmt.Errorf("%s: %v: %s", context, err, strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("%s: %w", context, err)
	}
	return stdout.String(), nil
}

// Diff returns the raw unified diff text of the working tree against the
// index, or of the index against HEAD when staged is set.
func (r *Repo) Diff(staged bool) (string, error) {
	args := []string{"diff", "--text"}
	if staged {
		args = append(args, "--cached")
	}
	return r.runGit(args, true, "git diff")
}

// CommitDiff returns the patch text of one commit.
func (r *Repo) CommitDiff(hash string) (string, error) {
	return r.runGit([]string{"show", "--pretty=format:", "--patch", "--text", hash}, true, "git show")
}

// StashDiff returns the patch text of one stash entry.
func (r *Repo) StashDiff(ref string) (string, error) {
	return r.runGit([]string{"stash", "show", "-p", "--text", ref}, true, "git stash show")
}

// ApplyOpts selects how a patch is applied.
type ApplyOpts struct {
	Index   bool // apply to the index (stage) rather than the working tree
	Reverse bool // reverse application (unstage / discard)
}

// Apply feeds a patch built by unidiff.BuildPatch to git apply. Header
// counts are recounted by git as a safety net for line-picked patches.
func (r *Repo) Apply(patch string, opts ApplyOpts) error {
	args := []string{"apply", "--recount", "--whitespace=nowarn"}
	if opts.Index {
		args = append(args, "--cached")
	}
	if opts.Reverse {
		args = append(args, "--reverse")
	}
	args = append(args, "-")
	_, err := r.runGitStdin(args, patch, "git apply")
	return err
}

// StageFile stages one path, deletions included.
func (r *Repo) StageFile(path string) error {
	_, err := r.runGit([]string{"add", "-A", "--", path}, false, "git add")
	return err
}

// UnstageFile removes one path from the index, keeping the working tree.
func (r *Repo) UnstageFile(path string) error {
	_, err := r.runGit([]string{"reset", "-q", "HEAD", "--", path}, false, "git reset")
	return err
}

// DiscardFile throws away the working-tree state of one path. Destructive
// and irreversible; confirmation is the caller's problem.
func (r *Repo) DiscardFile(path string, untracked bool) error {
	if untracked {
		_, err := r.runGit([]string{"clean", "-fd", "--", path}, false, "git clean")
		return err
	}
	_, err := r.runGit([]string{"checkout", "--", path}, false, "git checkout")
	return err
}

// Commit records the index as a new commit, or amends the previous one.
func (r *Repo) Commit(message string, amend bool) error {
	if strings.TrimSpace(message) == "" {
		return errors.New("empty commit message")
	}
	args := []string{"commit", "-m", message}
	if amend {
		args = append(args, "--amend")
	}
	_, err := r.runGit(args, false, "git commit")
	return err
}

// Stash describes one stash entry.
type Stash struct {
	Ref     string // stash@{0}
	Subject string
}

// StashList lists the stash stack, newest first.
func (r *Repo) StashList() ([]Stash, error) {
	out, err := r.runGit([]string{"stash", "list", "--pretty=format:%gd\x1f%gs"}, false, "git stash list")
	if err != nil {
		return nil, err
	}
	var stashes []Stash
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		ref, subject, ok := strings.Cut(line, "\x1f")
		if !ok || ref == "" {
			continue
		}
		stashes = append(stashes, Stash{Ref: ref, Subject: subject})
	}
	return stashes, nil
}

// StashSave pushes the working tree and index onto the stash stack.
func (r *Repo) StashSave(message string) error {
	args := []string{"stash", "push"}
	if strings.TrimSpace(message) != "" {
		args = append(args, "-m", message)
	}
	_, err := r.runGit(args, false, "git stash push")
	return err
}

// HeadSummary returns short hash and subject of the current HEAD commit, or
// empty on an unborn branch.
func (r *Repo) HeadSummary() (string, error) {
	out, err := r.runGit([]string{"log", "-1", "--pretty=format:%h %s"}, false, "git log")
	if err != nil {
		// unborn HEAD is not an error worth surfacing
		return "", nil
	}
	return strings.TrimSpace(out), nil
}

// ReadWorktreeFile returns the content of an untracked file for preview.
// Binary-looking content comes back with ok=false.
func (r *Repo) ReadWorktreeFile(path string) (content string, ok bool, err error) {
	b, err := os.ReadFile(filepath.Join(r.root, path))
	if err != nil {
		return "", false, err
	}
	if bytes.IndexByte(b[:min(len(b), 8000)], 0) >= 0 {
		return "", false, nil
	}
	return string(b), true, nil
}
