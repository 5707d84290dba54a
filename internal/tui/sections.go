package tui

import (
	"fmt"
	"sort"

	"github.com/interpretive-systems/stagium/internal/gitx"
	"github.com/interpretive-systems/stagium/internal/outline"
	"github.com/interpretive-systems/stagium/internal/unidiff"
)

// buildSections assembles a full snapshot of every section from the backend.
// It is a pure query: no section construction mutates the repository.
func buildSections(b Backend, commitLimit int) ([]*outline.Section, string, error) {
	st, err := b.Status()
	if err != nil {
		return nil, "", err
	}
	unstagedText, err := b.Diff(false)
	if err != nil {
		return nil, "", err
	}
	stagedText, err := b.Diff(true)
	if err != nil {
		return nil, "", err
	}
	unstagedDiffs := diffsByPath(unidiff.Parse(unstagedText))
	stagedDiffs := diffsByPath(unidiff.Parse(stagedText))

	var untracked, unstaged, staged []*outline.Entry
	for _, f := range st.Files {
		switch {
		case f.Untracked():
			untracked = append(untracked, untrackedEntry(b, f.Path))
		default:
			if f.Unstaged() {
				unstaged = append(unstaged, fileEntry(f, unstagedDiffs))
			}
			if f.Staged() {
				staged = append(staged, fileEntry(f, stagedDiffs))
			}
		}
	}
	sortEntries(untracked)
	sortEntries(unstaged)
	sortEntries(staged)

	stashes, err := b.StashList()
	if err != nil {
		return nil, "", err
	}
	var stashEntries []*outline.Entry
	for _, s := range stashes {
		stashEntries = append(stashEntries, &outline.Entry{
			Label: s.Ref + ": " + s.Subject,
			Ref:   s.Ref,
		})
	}

	commits, err := b.RecentCommits(commitLimit)
	if err != nil {
		return nil, "", err
	}
	var commitEntries []*outline.Entry
	for _, c := range commits {
		commitEntries = append(commitEntries, &outline.Entry{
			Label: c.Short + " " + c.Subject,
			Ref:   c.Hash,
		})
	}

	branches, err := b.Branches()
	if err != nil {
		return nil, "", err
	}
	var branchEntries []*outline.Entry
	for i, name := range branches {
		label := "  " + name
		if i == 0 {
			label = "* " + name
		}
		branchEntries = append(branchEntries, &outline.Entry{
			Label:      label,
			Ref:        name,
			DiffLoaded: true, // branches have nothing to expand
		})
	}

	sections := []*outline.Section{
		{Kind: outline.Untracked, Title: "Untracked files", Entries: untracked, Expanded: true},
		{Kind: outline.Unstaged, Title: "Unstaged changes", Entries: unstaged, Expanded: true},
		{Kind: outline.Staged, Title: "Staged changes", Entries: staged, Expanded: true},
		{Kind: outline.Stashes, Title: "Stashes", Entries: stashEntries},
		{Kind: outline.RecentCommits, Title: "Recent commits", Entries: commitEntries},
		{Kind: outline.Branches, Title: "Branches", Entries: branchEntries},
	}
	return sections, st.Branch, nil
}

// fileEntry builds an entry for a tracked changed file, attaching the parsed
// hunks when the diff for its path was parseable.
func fileEntry(f gitx.FileStatus, diffs map[string]unidiff.FileDiff) *outline.Entry {
	e := &outline.Entry{
		Label:      f.Path,
		Path:       f.Path,
		OldPath:    f.Path,
		DiffLoaded: true,
	}
	if f.OrigPath != "" {
		e.OldPath = f.OrigPath
		e.Label = f.OrigPath + " → " + f.Path
	}
	fd, ok := diffs[f.Path]
	if !ok {
		return e
	}
	e.Binary = fd.Binary
	e.Unparsable = fd.Unparsable
	e.ParseErr = fd.ParseErr
	if fd.OldPath != "" && fd.OldPath != fd.NewPath {
		e.OldPath = fd.OldPath
	}
	e.Hunks = hunkNodes(fd.Hunks)
	return e
}

// untrackedEntry previews an untracked file as a synthetic all-additions
// diff so it folds and stages like everything else.
func untrackedEntry(b Backend, path string) *outline.Entry {
	e := &outline.Entry{
		Label:      path,
		Path:       path,
		OldPath:    path,
		DiffLoaded: true,
	}
	content, ok, err := b.ReadWorktreeFile(path)
	if err != nil {
		e.Unparsable = true
		e.ParseErr = err.Error()
		return e
	}
	if !ok {
		e.Binary = true
		return e
	}
	text, err := unidiff.Synthesize(path, content)
	if err != nil {
		e.Unparsable = true
		e.ParseErr = err.Error()
		return e
	}
	for _, fd := range unidiff.Parse(text) {
		e.Hunks = append(e.Hunks, hunkNodes(fd.Hunks)...)
	}
	return e
}

// patchHunks flattens a multi-file patch (a commit or stash diff) into hunk
// nodes, prefixing each header with its path so identities stay unique
// across files and the rendered header names the file.
func patchHunks(text string) []*outline.HunkNode {
	var nodes []*outline.HunkNode
	for _, fd := range unidiff.Parse(text) {
		path := fd.Path()
		for _, h := range fd.Hunks {
			h.Header = path + ": " + h.Header
			nodes = append(nodes, &outline.HunkNode{Hunk: h})
		}
	}
	return nodes
}

func hunkNodes(hunks []unidiff.Hunk) []*outline.HunkNode {
	nodes := make([]*outline.HunkNode, 0, len(hunks))
	for _, h := range hunks {
		nodes = append(nodes, &outline.HunkNode{Hunk: h})
	}
	return nodes
}

func diffsByPath(files []unidiff.FileDiff) map[string]unidiff.FileDiff {
	m := make(map[string]unidiff.FileDiff, len(files))
	for _, fd := range files {
		m[fd.Path()] = fd
	}
	return m
}

func sortEntries(entries []*outline.Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
}

// entryCountSuffix renders the "(n)" tail of a section title.
func entryCountSuffix(n int) string {
	return fmt.Sprintf(" (%d)", n)
}
