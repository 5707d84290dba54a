package outline

import (
	"testing"

	"github.com/interpretive-systems/stagium/internal/unidiff"
)

func twoHunkEntry(path string) *Entry {
	mk := func(header string, n int) *HunkNode {
		h := unidiff.Hunk{Header: header}
		for i := 0; i < n; i++ {
			h.Lines = append(h.Lines, unidiff.Line{Kind: unidiff.LineContext, Text: "x"})
		}
		return &HunkNode{Hunk: h}
	}
	return &Entry{
		Label: path,
		Path:  path,
		Hunks: []*HunkNode{mk("@@ -1,3 +1,3 @@", 3), mk("@@ -10,2 +10,3 @@", 3)},
	}
}

func sampleSections() []*Section {
	return []*Section{
		{Kind: Unstaged, Title: "Unstaged changes", Expanded: true, Entries: []*Entry{
			twoHunkEntry("a.txt"),
			{Label: "b.txt", Path: "b.txt"},
		}},
		{Kind: Staged, Title: "Staged changes", Expanded: true, Entries: []*Entry{}},
	}
}

func TestNavigationBounds(t *testing.T) {
	tree := New(sampleSections())
	if tree.Prev() {
		t.Fatal("Prev at first node should not move")
	}
	for tree.Next() {
	}
	last := tree.CursorIndex()
	if tree.Next() {
		t.Fatal("Next at last node should not move")
	}
	if tree.CursorIndex() != last {
		t.Fatal("cursor drifted at the boundary")
	}
}

func TestFlattenSkipsCollapsed(t *testing.T) {
	tree := New(sampleSections())
	// sections expanded, entries collapsed: 2 section rows + 2 entries + 0 hunks
	if tree.Len() != 4 {
		t.Fatalf("expected 4 visible nodes, got %d", tree.Len())
	}
	tree.Toggle(EntryAddr(Unstaged, "a.txt"))
	if tree.Len() != 6 {
		t.Fatalf("expected 6 visible nodes after expanding entry, got %d", tree.Len())
	}
	tree.Toggle(HunkAddr(Unstaged, "a.txt", "@@ -1,3 +1,3 @@"))
	if tree.Len() != 9 {
		t.Fatalf("expected 9 visible nodes after expanding hunk, got %d", tree.Len())
	}
}

func TestFoldConsistency(t *testing.T) {
	tree := New(sampleSections())
	tree.Toggle(EntryAddr(Unstaged, "a.txt"))
	tree.Toggle(HunkAddr(Unstaged, "a.txt", "@@ -1,3 +1,3 @@"))
	before := make([]Addr, 0, tree.Len())
	for _, n := range tree.Visible() {
		before = append(before, n.Addr)
	}

	addr := EntryAddr(Unstaged, "a.txt")
	tree.Toggle(addr)
	tree.Toggle(addr)

	after := tree.Visible()
	if len(after) != len(before) {
		t.Fatalf("visible count changed: %d != %d", len(after), len(before))
	}
	for i, n := range after {
		if n.Addr != before[i] {
			t.Fatalf("node %d differs after collapse/expand: %+v != %+v", i, n.Addr, before[i])
		}
	}
}

func TestToggleNoOps(t *testing.T) {
	tree := New(sampleSections())
	if tree.Toggle(SectionAddr(Staged)) {
		t.Fatal("folding an empty section should be a no-op")
	}
	if tree.Toggle(EntryAddr(Unstaged, "b.txt")) {
		t.Fatal("folding a hunkless entry should be a no-op")
	}
}

func TestSetAllEntriesReanchorsCursor(t *testing.T) {
	sections := []*Section{
		{Kind: Unstaged, Title: "Unstaged changes", Expanded: true, Entries: []*Entry{
			twoHunkEntry("a.txt"),
			twoHunkEntry("b.txt"),
		}},
	}
	tree := New(sections)
	tree.SetAllEntries(true)
	if !tree.MoveTo(HunkAddr(Unstaged, "a.txt", "@@ -10,2 +10,3 @@")) {
		t.Fatal("could not position cursor on a.txt hunk")
	}

	tree.SetAllEntries(false)

	n, ok := tree.Cursor()
	if !ok {
		t.Fatal("cursor lost after collapse-all")
	}
	if n.Addr != EntryAddr(Unstaged, "a.txt") {
		t.Fatalf("cursor should fall back to the owning entry, got %+v", n.Addr)
	}
}

func TestTargetsDefaultsToCursor(t *testing.T) {
	tree := New(sampleSections())
	tree.Next() // onto a.txt
	targets := tree.Targets()
	if len(targets) != 1 || targets[0].Addr != EntryAddr(Unstaged, "a.txt") {
		t.Fatalf("expected singleton cursor target, got %+v", targets)
	}
}

func TestTargetsUsesMarks(t *testing.T) {
	tree := New(sampleSections())
	tree.ToggleMark(EntryAddr(Unstaged, "a.txt"))
	tree.ToggleMark(EntryAddr(Unstaged, "b.txt"))
	targets := tree.Targets()
	if len(targets) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(targets))
	}
	tree.ClearMarks()
	if tree.HasMarks() {
		t.Fatal("marks should be cleared")
	}
}

func TestRebuildRestoresCursorByIdentity(t *testing.T) {
	tree := New(sampleSections())
	tree.Toggle(EntryAddr(Unstaged, "a.txt"))
	second := HunkAddr(Unstaged, "a.txt", "@@ -10,2 +10,3 @@")
	if !tree.MoveTo(second) {
		t.Fatal("could not position cursor on second hunk")
	}

	// refresh: first hunk staged away, second survives but sits at a new
	// tree position
	fresh := sampleSections()
	fresh[0].Entries[0].Hunks = fresh[0].Entries[0].Hunks[1:]
	tree.Rebuild(fresh)

	n, ok := tree.Cursor()
	if !ok {
		t.Fatal("cursor lost after rebuild")
	}
	if n.Addr != second {
		t.Fatalf("cursor should re-match by identity, got %+v", n.Addr)
	}
}

func TestRebuildCursorFallsBackToAncestor(t *testing.T) {
	tree := New(sampleSections())
	tree.Toggle(EntryAddr(Unstaged, "a.txt"))
	gone := HunkAddr(Unstaged, "a.txt", "@@ -1,3 +1,3 @@")
	if !tree.MoveTo(gone) {
		t.Fatal("could not position cursor")
	}

	fresh := sampleSections()
	fresh[0].Entries[0].Hunks = fresh[0].Entries[0].Hunks[1:] // first hunk vanishes
	tree.Rebuild(fresh)

	n, _ := tree.Cursor()
	if n.Addr != EntryAddr(Unstaged, "a.txt") {
		t.Fatalf("cursor should fall back to the entry, got %+v", n.Addr)
	}
}

func TestRebuildPreservesExpansionAndDropsDeadMarks(t *testing.T) {
	tree := New(sampleSections())
	tree.Toggle(EntryAddr(Unstaged, "a.txt"))
	tree.ToggleMark(EntryAddr(Unstaged, "a.txt"))
	tree.ToggleMark(EntryAddr(Unstaged, "b.txt"))

	fresh := sampleSections()
	fresh[0].Entries = fresh[0].Entries[:1] // b.txt vanishes
	tree.Rebuild(fresh)

	n, ok := tree.Resolve(EntryAddr(Unstaged, "a.txt"))
	if !ok || !n.Entry.Expanded {
		t.Fatal("expansion state should carry across rebuild by identity")
	}
	if tree.IsMarked(EntryAddr(Unstaged, "b.txt")) {
		t.Fatal("vanished node should drop out of the mark set")
	}
	if !tree.IsMarked(EntryAddr(Unstaged, "a.txt")) {
		t.Fatal("surviving mark should persist")
	}
}
