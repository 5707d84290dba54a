package tui

import (
	"fmt"

	"github.com/interpretive-systems/stagium/internal/gitx"
)

type applyCall struct {
	patch string
	opts  gitx.ApplyOpts
}

type discardCall struct {
	path      string
	untracked bool
}

type commitCall struct {
	message string
	amend   bool
}

// fakeBackend serves canned repository state and records every mutation, so
// dispatch semantics can be asserted without a repository on disk.
type fakeBackend struct {
	status       gitx.Status
	unstagedDiff string
	stagedDiff   string
	worktree     map[string]string
	stashes      []gitx.Stash
	commits      []gitx.Commit
	branches     []string
	head         string

	applies     []applyCall
	stagedPaths []string
	unstagedOps []string
	discards    []discardCall
	commitCalls []commitCall
	stashSaves  []string
}

func (f *fakeBackend) Root() string { return "/fake/repo" }

func (f *fakeBackend) Status() (gitx.Status, error) { return f.status, nil }

func (f *fakeBackend) Diff(staged bool) (string, error) {
	if staged {
		return f.stagedDiff, nil
	}
	return f.unstagedDiff, nil
}

func (f *fakeBackend) CommitDiff(hash string) (string, error) { return "", nil }

func (f *fakeBackend) StashDiff(ref string) (string, error) { return "", nil }

func (f *fakeBackend) Apply(patch string, opts gitx.ApplyOpts) error {
	f.applies = append(f.applies, applyCall{patch: patch, opts: opts})
	return nil
}

func (f *fakeBackend) StageFile(path string) error {
	f.stagedPaths = append(f.stagedPaths, path)
	return nil
}

func (f *fakeBackend) UnstageFile(path string) error {
	f.unstagedOps = append(f.unstagedOps, path)
	return nil
}

func (f *fakeBackend) DiscardFile(path string, untracked bool) error {
	f.discards = append(f.discards, discardCall{path: path, untracked: untracked})
	return nil
}

func (f *fakeBackend) Commit(message string, amend bool) error {
	f.commitCalls = append(f.commitCalls, commitCall{message: message, amend: amend})
	return nil
}

func (f *fakeBackend) StashSave(message string) error {
	f.stashSaves = append(f.stashSaves, message)
	return nil
}

func (f *fakeBackend) StashList() ([]gitx.Stash, error) { return f.stashes, nil }

func (f *fakeBackend) RecentCommits(limit int) ([]gitx.Commit, error) {
	if limit < len(f.commits) {
		return f.commits[:limit], nil
	}
	return f.commits, nil
}

func (f *fakeBackend) Branches() ([]string, error) { return f.branches, nil }

func (f *fakeBackend) HeadSummary() (string, error) { return f.head, nil }

func (f *fakeBackend) ReadWorktreeFile(path string) (string, bool, error) {
	content, ok := f.worktree[path]
	if !ok {
		return "", false, fmt.Errorf("no such file: %s", path)
	}
	return content, true, nil
}
