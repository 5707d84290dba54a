package tui

import "github.com/interpretive-systems/stagium/internal/outline"

// Action represents an operation triggered by a key press.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionRefresh
	ActionMoveDown
	ActionMoveUp
	ActionGoToTop
	ActionGoToBottom
	ActionNextSection
	ActionPrevSection
	ActionToggleFold
	ActionExpandAll
	ActionCollapseAll
	ActionMark
	ActionClearMarks
	ActionStage
	ActionUnstage
	ActionDiscard
	ActionOpenCommit
	ActionOpenAmend
	ActionOpenStash
	ActionOpenSearch
	ActionSearchNext
	ActionSearchPrevious
	ActionYank
	ActionLogView
	ActionToggleSyntax
	ActionToggleHelp
)

// binding maps keys to an action within a set of node kinds. A nil kinds
// slice matches every cursor position, including an empty tree.
type binding struct {
	kinds  []outline.NodeKind
	keys   []string
	action Action
	help   string
}

var (
	allKinds   = []outline.NodeKind{outline.KindSection, outline.KindEntry, outline.KindHunk, outline.KindLine}
	innerKinds = []outline.NodeKind{outline.KindEntry, outline.KindHunk, outline.KindLine}
)

// bindings is the dispatch table. Lookup scans top to bottom and the first
// row whose kinds and keys both match wins, so narrower rows must precede
// broader ones for the same key.
var bindings = []binding{
	{nil, []string{"j", "down"}, ActionMoveDown, "move down"},
	{nil, []string{"k", "up"}, ActionMoveUp, "move up"},
	{nil, []string{"g", "home"}, ActionGoToTop, "go to top"},
	{nil, []string{"G", "end"}, ActionGoToBottom, "go to bottom"},
	{nil, []string{"]", "J"}, ActionNextSection, "next section"},
	{nil, []string{"[", "K"}, ActionPrevSection, "previous section"},
	{allKinds, []string{"tab", "enter"}, ActionToggleFold, "expand/collapse node"},
	{nil, []string{"+"}, ActionExpandAll, "expand all entries"},
	{nil, []string{"-"}, ActionCollapseAll, "collapse all entries"},
	{innerKinds, []string{" "}, ActionMark, "mark/unmark for bulk action"},
	{nil, []string{"esc"}, ActionClearMarks, "clear marks"},
	{allKinds, []string{"s"}, ActionStage, "stage section/file/hunk/line"},
	{allKinds, []string{"u"}, ActionUnstage, "unstage section/file/hunk/line"},
	{allKinds, []string{"x"}, ActionDiscard, "discard section/file/hunk/line (asks to confirm)"},
	{nil, []string{"c"}, ActionOpenCommit, "commit staged changes"},
	{nil, []string{"C"}, ActionOpenAmend, "amend previous commit"},
	{nil, []string{"z"}, ActionOpenStash, "stash working tree"},
	{nil, []string{"/"}, ActionOpenSearch, "search visible rows"},
	{nil, []string{"n"}, ActionSearchNext, "next search match"},
	{nil, []string{"N"}, ActionSearchPrevious, "previous search match"},
	{innerKinds, []string{"y"}, ActionYank, "copy path/ref to clipboard"},
	{nil, []string{"l"}, ActionLogView, "open git log"},
	{nil, []string{"S"}, ActionToggleSyntax, "toggle syntax highlighting"},
	{nil, []string{"r"}, ActionRefresh, "refresh now"},
	{nil, []string{"?"}, ActionToggleHelp, "toggle this help"},
	{nil, []string{"q", "ctrl+c"}, ActionQuit, "quit"},
}

// actionFor resolves a key press in the context of the cursor's node kind.
// hasCursor is false on an empty tree, where only kind-agnostic rows apply.
func actionFor(kind outline.NodeKind, hasCursor bool, key string) Action {
	for _, b := range bindings {
		if b.kinds != nil {
			if !hasCursor || !kindIn(b.kinds, kind) {
				continue
			}
		}
		for _, k := range b.keys {
			if k == key {
				return b.action
			}
		}
	}
	return ActionNone
}

func kindIn(kinds []outline.NodeKind, kind outline.NodeKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// helpEntry is one row of the generated help overlay.
type helpEntry struct {
	Keys string
	Help string
}

// helpEntries derives the help listing from the dispatch table so the two
// can never drift apart.
func helpEntries() []helpEntry {
	out := make([]helpEntry, 0, len(bindings))
	for _, b := range bindings {
		keys := ""
		for i, k := range b.keys {
			if i > 0 {
				keys += "/"
			}
			if k == " " {
				k = "space"
			}
			keys += k
		}
		out = append(out, helpEntry{Keys: keys, Help: b.help})
	}
	return out
}
