package tui

import (
	"os/exec"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/interpretive-systems/stagium/internal/gitx"
	"github.com/interpretive-systems/stagium/internal/outline"
	"github.com/interpretive-systems/stagium/internal/unidiff"
)

// refreshCmd rebuilds the whole snapshot off the event loop.
func refreshCmd(b Backend, commitLimit int) tea.Cmd {
	return func() tea.Msg {
		sections, branch, err := buildSections(b, commitLimit)
		if err != nil {
			return refreshedMsg{err: err}
		}
		head, err := b.HeadSummary()
		if err != nil {
			return refreshedMsg{err: err}
		}
		return refreshedMsg{sections: sections, branch: branch, head: head}
	}
}

// loadEntryDiffCmd fetches a stash or commit patch on first expand.
func loadEntryDiffCmd(b Backend, addr outline.Addr) tea.Cmd {
	return func() tea.Msg {
		var text string
		var err error
		switch addr.Section {
		case outline.Stashes:
			text, err = b.StashDiff(addr.Entry)
		case outline.RecentCommits:
			text, err = b.CommitDiff(addr.Entry)
		default:
			return nil
		}
		if err != nil {
			return entryDiffMsg{addr: addr, err: err}
		}
		return entryDiffMsg{addr: addr, hunks: patchHunks(text)}
	}
}

// runMutation executes the planned backend calls in order, stopping at the
// first failure.
func runMutation(verb string, ops []func() error) tea.Cmd {
	return func() tea.Msg {
		for _, op := range ops {
			if err := op(); err != nil {
				return mutationDoneMsg{verb: verb, err: err}
			}
		}
		return mutationDoneMsg{verb: verb}
	}
}

// planStage resolves stage targets by granularity: a section stages each of
// its entries, an entry its whole file, a hunk one patch, lines a picked
// patch. Targets outside the untracked and unstaged sections contribute
// nothing.
func planStage(b Backend, targets []outline.Node) []func() error {
	var ops []func() error
	groups := newLineGroups()
	for _, n := range targets {
		switch n.Kind {
		case outline.KindSection:
			if n.Section.Kind == outline.Untracked || n.Section.Kind == outline.Unstaged {
				for _, e := range n.Section.Entries {
					ops = append(ops, stageFileOp(b, e.Path))
				}
			}
		case outline.KindEntry:
			if n.Section.Kind == outline.Untracked || n.Section.Kind == outline.Unstaged {
				ops = append(ops, stageFileOp(b, n.Entry.Path))
			}
		case outline.KindHunk:
			switch n.Section.Kind {
			case outline.Untracked:
				// an untracked file enters the index whole
				ops = append(ops, stageFileOp(b, n.Entry.Path))
			case outline.Unstaged:
				patch := entryPatch(n.Entry, n.HunkNode.Hunk, nil)
				ops = append(ops, applyOp(b, patch, gitx.ApplyOpts{Index: true}))
			}
		case outline.KindLine:
			switch n.Section.Kind {
			case outline.Untracked:
				ops = append(ops, stageFileOp(b, n.Entry.Path))
			case outline.Unstaged:
				groups.add(n)
			}
		}
	}
	for _, g := range groups.ordered {
		patch := entryPatch(g.entry, g.hunk.Hunk, g.pick())
		ops = append(ops, applyOp(b, patch, gitx.ApplyOpts{Index: true}))
	}
	return ops
}

// planUnstage mirrors planStage for the staged section: reverse-apply to the
// index, leaving the working tree alone.
func planUnstage(b Backend, targets []outline.Node) []func() error {
	var ops []func() error
	groups := newLineGroups()
	for _, n := range targets {
		if n.Section.Kind != outline.Staged {
			continue
		}
		switch n.Kind {
		case outline.KindSection:
			for _, e := range n.Section.Entries {
				ops = append(ops, unstageFileOp(b, e.Path))
			}
		case outline.KindEntry:
			ops = append(ops, unstageFileOp(b, n.Entry.Path))
		case outline.KindHunk:
			patch := entryPatch(n.Entry, n.HunkNode.Hunk, nil)
			ops = append(ops, applyOp(b, patch, gitx.ApplyOpts{Index: true, Reverse: true}))
		case outline.KindLine:
			groups.add(n)
		}
	}
	for _, g := range groups.ordered {
		patch := entryPatch(g.entry, g.hunk.Hunk, g.pick())
		ops = append(ops, applyOp(b, patch, gitx.ApplyOpts{Index: true, Reverse: true}))
	}
	return ops
}

// planDiscard throws working-tree changes away. A section discards each of
// its entries; untracked targets delete the whole file regardless of
// granularity; unstaged hunks and lines are reverse-applied to the working
// tree.
func planDiscard(b Backend, targets []outline.Node) []func() error {
	var ops []func() error
	groups := newLineGroups()
	for _, n := range targets {
		switch n.Section.Kind {
		case outline.Untracked:
			if n.Kind == outline.KindSection {
				for _, e := range n.Section.Entries {
					ops = append(ops, discardFileOp(b, e.Path, true))
				}
			} else {
				ops = append(ops, discardFileOp(b, n.Entry.Path, true))
			}
		case outline.Unstaged:
			switch n.Kind {
			case outline.KindSection:
				for _, e := range n.Section.Entries {
					ops = append(ops, discardFileOp(b, e.Path, false))
				}
			case outline.KindEntry:
				ops = append(ops, discardFileOp(b, n.Entry.Path, false))
			case outline.KindHunk:
				patch := entryPatch(n.Entry, n.HunkNode.Hunk, nil)
				ops = append(ops, applyOp(b, patch, gitx.ApplyOpts{Reverse: true}))
			case outline.KindLine:
				groups.add(n)
			}
		}
	}
	for _, g := range groups.ordered {
		patch := entryPatch(g.entry, g.hunk.Hunk, g.pick())
		ops = append(ops, applyOp(b, patch, gitx.ApplyOpts{Reverse: true}))
	}
	return ops
}

func stageFileOp(b Backend, path string) func() error {
	return func() error { return b.StageFile(path) }
}

func unstageFileOp(b Backend, path string) func() error {
	return func() error { return b.UnstageFile(path) }
}

func discardFileOp(b Backend, path string, untracked bool) func() error {
	return func() error { return b.DiscardFile(path, untracked) }
}

func applyOp(b Backend, patch string, opts gitx.ApplyOpts) func() error {
	return func() error { return b.Apply(patch, opts) }
}

// entryPatch builds a single-hunk patch against the entry's paths.
func entryPatch(e *outline.Entry, h unidiff.Hunk, pick func(int, unidiff.Line) bool) string {
	fd := unidiff.FileDiff{OldPath: e.OldPath, NewPath: e.Path}
	return unidiff.BuildPatch(fd, h, pick)
}

// lineGroups collects marked line targets per hunk so one patch carries all
// picked lines of that hunk. Context lines are dropped: they select nothing.
type lineGroups struct {
	ordered []*lineGroup
	byAddr  map[outline.Addr]*lineGroup
}

type lineGroup struct {
	entry *outline.Entry
	hunk  *outline.HunkNode
	picks map[int]bool
}

func newLineGroups() *lineGroups {
	return &lineGroups{byAddr: map[outline.Addr]*lineGroup{}}
}

func (lg *lineGroups) add(n outline.Node) {
	if n.Line == nil || n.Line.Kind == unidiff.LineContext {
		return
	}
	key, _ := n.Addr.Parent()
	g, ok := lg.byAddr[key]
	if !ok {
		g = &lineGroup{entry: n.Entry, hunk: n.HunkNode, picks: map[int]bool{}}
		lg.byAddr[key] = g
		lg.ordered = append(lg.ordered, g)
	}
	g.picks[n.Addr.Line] = true
}

func (g *lineGroup) pick() func(int, unidiff.Line) bool {
	return func(i int, _ unidiff.Line) bool { return g.picks[i] }
}

// commitCmd records the index. Git decides whether there is anything to
// commit; its message comes back verbatim on failure.
func commitCmd(b Backend, message string, amend bool) tea.Cmd {
	return func() tea.Msg {
		return mutationDoneMsg{verb: "commit", err: b.Commit(message, amend)}
	}
}

func stashCmd(b Backend, message string) tea.Cmd {
	return func() tea.Msg {
		return mutationDoneMsg{verb: "stash", err: b.StashSave(message)}
	}
}

// yankCmd copies the node's payload to the system clipboard: path or ref
// for entries, prefixed text for hunks, bare text for lines.
func yankCmd(n outline.Node) tea.Cmd {
	var text, what string
	switch n.Kind {
	case outline.KindHunk:
		text = n.HunkNode.Hunk.Reconstruct()
		what = "hunk"
	case outline.KindLine:
		text = n.Line.Text
		what = "line"
	default:
		text = n.Entry.Ref
		if n.Entry.Path != "" {
			text = n.Entry.Path
		}
		what = text
	}
	return func() tea.Msg {
		return yankedMsg{what: what, err: clipboard.WriteAll(text)}
	}
}

// logCmd hands the terminal to git log until the pager exits.
func logCmd(root string) tea.Cmd {
	c := exec.Command("git", "-C", root, "log", "--oneline", "--graph", "--decorate")
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return execDoneMsg{err: err}
	})
}

// clearStatusCmd expires the transient status line.
func clearStatusCmd(seq int) tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}
