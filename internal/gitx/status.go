package gitx

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// FileStatus is one changed path from git status. Index and Worktree hold
// the porcelain v2 state bytes ('.' for unchanged, '?' for untracked).
type FileStatus struct {
	Path     string
	OrigPath string // set for renames and copies
	Index    byte
	Worktree byte
}

// Untracked reports whether the path is not known to the index.
func (f FileStatus) Untracked() bool {
	return f.Index == '?'
}

// Staged reports whether the path has changes recorded in the index.
func (f FileStatus) Staged() bool {
	return f.Index != '.' && f.Index != '?' && f.Index != 0
}

// Unstaged reports whether the path has working-tree changes on top of the
// index.
func (f FileStatus) Unstaged() bool {
	return !f.Untracked() && f.Worktree != '.' && f.Worktree != 0
}

// Status is the repository state snapshot feeding the outline sections.
type Status struct {
	Branch string
	Files  []FileStatus
}

// Status reads and parses `git status --porcelain=v2 --branch`.
func (r *Repo) Status() (Status, error) {
	out, err := r.runGit([]string{"status", "--porcelain=v2", "--branch", "--untracked-files=all"}, false, "git status")
	if err != nil {
		return Status{}, err
	}
	st, err := parseStatusPorcelainV2(strings.NewReader(out))
	if err != nil {
		return Status{}, fmt.Errorf("parse git status: %w", err)
	}
	return st, nil
}

func parseStatusPorcelainV2(r io.Reader) (Status, error) {
	var st Status
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 2 {
			continue
		}
		switch line[0] {
		case '#':
			if name, ok := strings.CutPrefix(line, "# branch.head "); ok {
				st.Branch = strings.TrimSpace(name)
			}
		case '1':
			// 1 <XY> <sub> <mH> <mI> <mW> <hH> <hI> <path>
			fields := strings.SplitN(line, " ", 9)
			if len(fields) < 9 {
				continue
			}
			st.Files = append(st.Files, FileStatus{
				Path:     fields[8],
				Index:    fields[1][0],
				Worktree: fields[1][1],
			})
		case '2':
			// 2 <XY> <sub> <mH> <mI> <mW> <hH> <hI> <X><score> <path>\t<orig>
			fields := strings.SplitN(line, " ", 10)
			if len(fields) < 10 {
				continue
			}
			path, orig, _ := strings.Cut(fields[9], "\t")
			st.Files = append(st.Files, FileStatus{
				Path:     path,
				OrigPath: orig,
				Index:    fields[1][0],
				Worktree: fields[1][1],
			})
		case 'u':
			// unmerged: show as both staged and unstaged pending resolution
			fields := strings.SplitN(line, " ", 11)
			if len(fields) < 11 {
				continue
			}
			st.Files = append(st.Files, FileStatus{
				Path:     fields[10],
				Index:    fields[1][0],
				Worktree: fields[1][1],
			})
		case '?':
			st.Files = append(st.Files, FileStatus{
				Path:     line[2:],
				Index:    '?',
				Worktree: '?',
			})
		default:
			// '!' ignored entries and anything unknown
		}
	}
	return st, scanner.Err()
}
