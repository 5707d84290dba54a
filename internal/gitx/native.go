package gitx

import (
	"strconv"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// Commit is one history entry for the recent-commits section.
type Commit struct {
	Hash    string
	Short   string
	Subject string
}

// RecentCommits walks history from HEAD, newest first, up to limit entries.
// Served natively via go-git, falling back to the CLI when the repository
// layout defeats it. An unborn branch yields an empty list.
func (r *Repo) RecentCommits(limit int) ([]Commit, error) {
	if limit <= 0 {
		return nil, nil
	}
	if r.native == nil {
		return r.recentCommitsCLI(limit)
	}
	head, err := r.native.Head()
	if err != nil {
		return nil, nil
	}
	iter, err := r.native.Log(&gogit.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var commits []Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if len(commits) >= limit {
			return storer.ErrStop
		}
		hash := c.Hash.String()
		commits = append(commits, Commit{
			Hash:    hash,
			Short:   hash[:7],
			Subject: firstLine(c.Message),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return commits, nil
}

// Branches lists local branch names with the current one first.
func (r *Repo) Branches() ([]string, error) {
	if r.native == nil {
		return r.branchesCLI()
	}
	var current string
	if head, err := r.native.Head(); err == nil && head.Name().IsBranch() {
		current = head.Name().Short()
	}
	iter, err := r.native.Branches()
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		if name == current {
			return nil
		}
		names = append(names, name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if current != "" {
		names = append([]string{current}, names...)
	}
	return names, nil
}

func (r *Repo) recentCommitsCLI(limit int) ([]Commit, error) {
	out, err := r.runGit([]string{"log", "-n", strconv.Itoa(limit), "--pretty=format:%H\x1f%h\x1f%s"}, false, "git log")
	if err != nil {
		return nil, nil // unborn HEAD
	}
	var commits []Commit
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		parts := strings.SplitN(line, "\x1f", 3)
		if len(parts) != 3 {
			continue
		}
		commits = append(commits, Commit{Hash: parts[0], Short: parts[1], Subject: parts[2]})
	}
	return commits, nil
}

func (r *Repo) branchesCLI() ([]string, error) {
	out, err := r.runGit([]string{"branch", "--format=%(refname:short)"}, false, "git branch")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
