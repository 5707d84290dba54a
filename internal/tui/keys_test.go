package tui

import (
	"testing"

	"github.com/interpretive-systems/stagium/internal/outline"
)

func TestActionFor_ContextSensitivity(t *testing.T) {
	cases := []struct {
		name      string
		kind      outline.NodeKind
		hasCursor bool
		key       string
		want      Action
	}{
		{"stage on line", outline.KindLine, true, "s", ActionStage},
		{"stage on section", outline.KindSection, true, "s", ActionStage},
		{"unstage on hunk", outline.KindHunk, true, "u", ActionUnstage},
		{"discard on entry", outline.KindEntry, true, "x", ActionDiscard},
		{"discard on section", outline.KindSection, true, "x", ActionDiscard},
		{"mark not valid on section", outline.KindSection, true, " ", ActionNone},
		{"mark on line", outline.KindLine, true, " ", ActionMark},
		{"fold on entry", outline.KindEntry, true, "tab", ActionToggleFold},
		{"fold via enter", outline.KindHunk, true, "enter", ActionToggleFold},
		{"yank on entry", outline.KindEntry, true, "y", ActionYank},
		{"yank not valid on section", outline.KindSection, true, "y", ActionNone},
		{"quit anywhere", outline.KindLine, true, "q", ActionQuit},
		{"move works on empty tree", 0, false, "j", ActionMoveDown},
		{"refresh works on empty tree", 0, false, "r", ActionRefresh},
		{"stage needs a cursor", 0, false, "s", ActionNone},
		{"unbound key", outline.KindEntry, true, "Z", ActionNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := actionFor(tc.kind, tc.hasCursor, tc.key); got != tc.want {
				t.Fatalf("actionFor(%v, %v, %q) = %v, want %v", tc.kind, tc.hasCursor, tc.key, got, tc.want)
			}
		})
	}
}

func TestHelpEntries_CoverEveryBinding(t *testing.T) {
	entries := helpEntries()
	if len(entries) != len(bindings) {
		t.Fatalf("help entries = %d, bindings = %d", len(entries), len(bindings))
	}
	for _, e := range entries {
		if e.Keys == "" || e.Help == "" {
			t.Fatalf("empty help entry: %+v", e)
		}
	}
}

func TestHelpEntries_SpaceSpelledOut(t *testing.T) {
	for _, e := range helpEntries() {
		if e.Keys == " " {
			t.Fatal("raw space leaked into help keys")
		}
	}
}
