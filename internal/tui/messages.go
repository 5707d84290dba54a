package tui

import "github.com/interpretive-systems/stagium/internal/outline"

// RefreshRequestMsg asks the event loop for a full refresh. External event
// sources (the filesystem watcher) post it via Program.Send.
type RefreshRequestMsg struct{}

// refreshedMsg carries a freshly built snapshot of every section.
type refreshedMsg struct {
	sections []*outline.Section
	branch   string
	head     string
	err      error
}

// mutationDoneMsg reports the outcome of a backend mutation. Every verb
// triggers a refresh on success; on failure the tree is left untouched so
// the user keeps their place.
type mutationDoneMsg struct {
	verb string // "stage", "unstage", "discard", "commit", "stash"
	err  error
}

// entryDiffMsg delivers a lazily loaded stash or commit diff.
type entryDiffMsg struct {
	addr  outline.Addr
	hunks []*outline.HunkNode
	err   error
}

// yankedMsg reports a clipboard write. No refresh follows.
type yankedMsg struct {
	what string
	err  error
}

// execDoneMsg is sent when a passthrough child process (git log) exits.
type execDoneMsg struct{ err error }

// clearStatusMsg expires a transient status message. seq guards against
// clearing a newer message than the one that scheduled it.
type clearStatusMsg struct{ seq int }
