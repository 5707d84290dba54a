package tui

import (
	"testing"

	"github.com/interpretive-systems/stagium/internal/gitx"
	"github.com/interpretive-systems/stagium/internal/outline"
	"github.com/interpretive-systems/stagium/internal/unidiff"
)

func TestBuildSections_OrderAndDefaults(t *testing.T) {
	fake := modifiedRepo()
	fake.stashes = []gitx.Stash{{Ref: "stash@{0}", Subject: "wip"}}
	fake.commits = []gitx.Commit{{Hash: "deadbeef", Short: "deadbee", Subject: "first"}}
	fake.branches = []string{"main", "feature"}

	sections, branch, err := buildSections(fake, 10)
	if err != nil {
		t.Fatalf("buildSections: %v", err)
	}
	if branch != "main" {
		t.Fatalf("branch = %q", branch)
	}
	wantKinds := []outline.SectionKind{
		outline.Untracked, outline.Unstaged, outline.Staged,
		outline.Stashes, outline.RecentCommits, outline.Branches,
	}
	if len(sections) != len(wantKinds) {
		t.Fatalf("got %d sections", len(sections))
	}
	for i, s := range sections {
		if s.Kind != wantKinds[i] {
			t.Fatalf("section %d kind = %v, want %v", i, s.Kind, wantKinds[i])
		}
	}
	// working-tree sections start open, history sections closed
	for i, want := range []bool{true, true, true, false, false, false} {
		if sections[i].Expanded != want {
			t.Fatalf("section %d expanded = %v, want %v", i, sections[i].Expanded, want)
		}
	}
	if got := sections[5].Entries[0].Label; got != "* main" {
		t.Fatalf("current branch label = %q", got)
	}
	if e := sections[3].Entries[0]; e.DiffLoaded || e.Ref != "stash@{0}" {
		t.Fatalf("stash entry should lazy-load, got %+v", e)
	}
}

func TestBuildSections_UntrackedPreviewIsAllAdditions(t *testing.T) {
	fake := &fakeBackend{
		status: gitx.Status{
			Branch: "main",
			Files:  []gitx.FileStatus{{Path: "notes.txt", Index: '?', Worktree: '?'}},
		},
		worktree: map[string]string{"notes.txt": "hello\nworld\n"},
	}
	sections, _, err := buildSections(fake, 10)
	if err != nil {
		t.Fatalf("buildSections: %v", err)
	}
	entries := sections[0].Entries
	if len(entries) != 1 {
		t.Fatalf("untracked entries = %d", len(entries))
	}
	e := entries[0]
	if len(e.Hunks) != 1 {
		t.Fatalf("expected one synthetic hunk, got %d", len(e.Hunks))
	}
	for _, l := range e.Hunks[0].Hunk.Lines {
		if l.Kind != unidiff.LineAdded {
			t.Fatalf("untracked preview contains non-addition line %+v", l)
		}
	}
}

func TestBuildSections_RenameCarriesOldPath(t *testing.T) {
	fake := &fakeBackend{
		status: gitx.Status{
			Branch: "main",
			Files:  []gitx.FileStatus{{Path: "new.txt", OrigPath: "old.txt", Index: 'R', Worktree: '.'}},
		},
		stagedDiff: "diff --git a/old.txt b/new.txt\nsimilarity index 100%\nrename from old.txt\nrename to new.txt\n",
	}
	sections, _, err := buildSections(fake, 10)
	if err != nil {
		t.Fatalf("buildSections: %v", err)
	}
	e := sections[2].Entries[0]
	if e.OldPath != "old.txt" || e.Path != "new.txt" {
		t.Fatalf("rename paths wrong: %+v", e)
	}
	if e.Label != "old.txt → new.txt" {
		t.Fatalf("rename label = %q", e.Label)
	}
}

func TestPatchHunks_PrefixesHeadersWithPath(t *testing.T) {
	text := "diff --git a/x.go b/x.go\nindex 1111111..2222222 100644\n--- a/x.go\n+++ b/x.go\n@@ -1,1 +1,1 @@\n-a\n+b\n" +
		"diff --git a/y.go b/y.go\nindex 1111111..2222222 100644\n--- a/y.go\n+++ b/y.go\n@@ -1,1 +1,1 @@\n-c\n+d\n"
	nodes := patchHunks(text)
	if len(nodes) != 2 {
		t.Fatalf("hunks = %d", len(nodes))
	}
	if nodes[0].Hunk.Header == nodes[1].Hunk.Header {
		t.Fatal("hunk identities collide across files")
	}
	for i, want := range []string{"x.go: ", "y.go: "} {
		if got := nodes[i].Hunk.Header; len(got) < len(want) || got[:len(want)] != want {
			t.Fatalf("hunk %d header = %q, want %q prefix", i, got, want)
		}
	}
}
