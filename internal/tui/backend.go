package tui

import "github.com/interpretive-systems/stagium/internal/gitx"

// Backend is everything the UI needs from a git repository. *gitx.Repo is
// the real implementation; tests substitute a fake so the event loop can be
// exercised without a repository on disk.
type Backend interface {
	Root() string
	Status() (gitx.Status, error)
	Diff(staged bool) (string, error)
	CommitDiff(hash string) (string, error)
	StashDiff(ref string) (string, error)
	Apply(patch string, opts gitx.ApplyOpts) error
	StageFile(path string) error
	UnstageFile(path string) error
	DiscardFile(path string, untracked bool) error
	Commit(message string, amend bool) error
	StashSave(message string) error
	StashList() ([]gitx.Stash, error)
	RecentCommits(limit int) ([]gitx.Commit, error)
	Branches() ([]string, error)
	HeadSummary() (string, error)
	ReadWorktreeFile(path string) (content string, ok bool, err error)
}

var _ Backend = (*gitx.Repo)(nil)
