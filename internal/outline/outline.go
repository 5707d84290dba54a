// Package outline maintains the interactive status tree: sections of
// entries, entries of hunks, hunks of lines, with per-node expand state, a
// cursor, and a mark set. Nodes are addressed by content-derived identity
// keys, never by position, so state survives wholesale rebuilds.
package outline

import "github.com/interpretive-systems/stagium/internal/unidiff"

// SectionKind enumerates the top-level groupings.
type SectionKind int

// Section kinds.
const (
	Untracked SectionKind = iota
	Unstaged
	Staged
	Stashes
	RecentCommits
	Branches
	Custom
)

// NodeKind identifies what a flattened node points at.
type NodeKind int

// Node kinds.
const (
	KindSection NodeKind = iota
	KindEntry
	KindHunk
	KindLine
)

// Section is a named, ordered group of entries. Sections own their entries
// and are recreated wholesale on every refresh.
type Section struct {
	Kind     SectionKind
	Title    string
	Entries  []*Entry
	Expanded bool
}

// Entry is one addressable item within a section: a file, a stash ref, a
// commit, or a branch.
type Entry struct {
	Label      string // display label
	Path       string // file path, for file entries
	OldPath    string // pre-rename path, for building patches
	Ref        string // stash ref, commit hash, or branch name
	Binary     bool
	Unparsable bool
	ParseErr   string
	Hunks      []*HunkNode
	Expanded   bool
	DiffLoaded bool // stash/commit diffs are filled in on first expand
}

// ID returns the entry's identity key within its section.
func (e *Entry) ID() string {
	if e.Path != "" {
		return e.Path
	}
	return e.Ref
}

// HunkNode wraps a parsed hunk with its fold state. The hunk header is the
// identity key.
type HunkNode struct {
	Hunk     unidiff.Hunk
	Expanded bool
}

// Addr is the identity key of a node. Zero-value fields narrow the address:
// Entry=="" means the section itself, Hunk=="" the entry itself, Line==-1
// the hunk itself.
type Addr struct {
	Section SectionKind
	Entry   string
	Hunk    string
	Line    int
}

// SectionAddr returns the address of a section node.
func SectionAddr(kind SectionKind) Addr {
	return Addr{Section: kind, Line: -1}
}

// EntryAddr returns the address of an entry node.
func EntryAddr(kind SectionKind, id string) Addr {
	return Addr{Section: kind, Entry: id, Line: -1}
}

// HunkAddr returns the address of a hunk node.
func HunkAddr(kind SectionKind, id, header string) Addr {
	return Addr{Section: kind, Entry: id, Hunk: header, Line: -1}
}

// LineAddr returns the address of a line node.
func LineAddr(kind SectionKind, id, header string, line int) Addr {
	return Addr{Section: kind, Entry: id, Hunk: header, Line: line}
}

// Parent returns the address one level up, and false at a section.
func (a Addr) Parent() (Addr, bool) {
	switch {
	case a.Line >= 0:
		a.Line = -1
		return a, true
	case a.Hunk != "":
		a.Hunk = ""
		return a, true
	case a.Entry != "":
		a.Entry = ""
		return a, true
	default:
		return a, false
	}
}

// Node is one row of the flattened visible sequence.
type Node struct {
	Addr     Addr
	Kind     NodeKind
	Section  *Section
	Entry    *Entry
	HunkNode *HunkNode
	Line     *unidiff.Line
}

// Tree is the whole outline plus cursor and mark state.
type Tree struct {
	Sections []*Section

	flat   []Node
	cursor int
	marks  map[Addr]bool
}

// New builds a tree over the given sections with the cursor on the first
// visible node.
func New(sections []*Section) *Tree {
	t := &Tree{Sections: sections, marks: map[Addr]bool{}}
	t.Flatten()
	return t
}

// Flatten recomputes the visible sequence: a depth-first traversal that
// skips the children of collapsed nodes.
func (t *Tree) Flatten() {
	flat := make([]Node, 0, 64)
	for _, s := range t.Sections {
		flat = append(flat, Node{Addr: SectionAddr(s.Kind), Kind: KindSection, Section: s})
		if !s.Expanded {
			continue
		}
		for _, e := range s.Entries {
			flat = append(flat, Node{Addr: EntryAddr(s.Kind, e.ID()), Kind: KindEntry, Section: s, Entry: e})
			if !e.Expanded {
				continue
			}
			for _, h := range e.Hunks {
				flat = append(flat, Node{Addr: HunkAddr(s.Kind, e.ID(), h.Hunk.Header), Kind: KindHunk, Section: s, Entry: e, HunkNode: h})
				if !h.Expanded {
					continue
				}
				for i := range h.Hunk.Lines {
					flat = append(flat, Node{
						Addr: LineAddr(s.Kind, e.ID(), h.Hunk.Header, i),
						Kind: KindLine, Section: s, Entry: e, HunkNode: h,
						Line: &h.Hunk.Lines[i],
					})
				}
			}
		}
	}
	t.flat = flat
	t.clampCursor()
}

// Visible returns the flattened visible sequence.
func (t *Tree) Visible() []Node {
	return t.flat
}

// Len returns the number of visible nodes.
func (t *Tree) Len() int {
	return len(t.flat)
}

// CursorIndex returns the cursor's position in the visible sequence.
func (t *Tree) CursorIndex() int {
	return t.cursor
}

// Cursor returns the current node, or false on an empty tree.
func (t *Tree) Cursor() (Node, bool) {
	if len(t.flat) == 0 {
		return Node{}, false
	}
	return t.flat[t.cursor], true
}

// Next moves the cursor one visible node down. Moving past the end is a
// no-op; it reports whether the cursor moved.
func (t *Tree) Next() bool {
	if t.cursor >= len(t.flat)-1 {
		return false
	}
	t.cursor++
	return true
}

// Prev moves the cursor one visible node up, clamped at the first node.
func (t *Tree) Prev() bool {
	if t.cursor <= 0 {
		return false
	}
	t.cursor--
	return true
}

// First moves the cursor to the first visible node.
func (t *Tree) First() bool {
	if len(t.flat) == 0 || t.cursor == 0 {
		return false
	}
	t.cursor = 0
	return true
}

// Last moves the cursor to the last visible node.
func (t *Tree) Last() bool {
	if len(t.flat) == 0 || t.cursor == len(t.flat)-1 {
		return false
	}
	t.cursor = len(t.flat) - 1
	return true
}

// NextSection jumps to the next section header, if any.
func (t *Tree) NextSection() bool {
	for i := t.cursor + 1; i < len(t.flat); i++ {
		if t.flat[i].Kind == KindSection {
			t.cursor = i
			return true
		}
	}
	return false
}

// PrevSection jumps to the previous section header, if any.
func (t *Tree) PrevSection() bool {
	for i := t.cursor - 1; i >= 0; i-- {
		if t.flat[i].Kind == KindSection {
			t.cursor = i
			return true
		}
	}
	return false
}

// MoveTo places the cursor on the node with the given address.
func (t *Tree) MoveTo(addr Addr) bool {
	for i, n := range t.flat {
		if n.Addr == addr {
			t.cursor = i
			return true
		}
	}
	return false
}

// Resolve finds the node for an address in the full tree, expanded or not.
func (t *Tree) Resolve(addr Addr) (Node, bool) {
	for _, s := range t.Sections {
		if s.Kind != addr.Section {
			continue
		}
		if addr.Entry == "" {
			return Node{Addr: SectionAddr(s.Kind), Kind: KindSection, Section: s}, true
		}
		for _, e := range s.Entries {
			if e.ID() != addr.Entry {
				continue
			}
			if addr.Hunk == "" {
				return Node{Addr: EntryAddr(s.Kind, e.ID()), Kind: KindEntry, Section: s, Entry: e}, true
			}
			for _, h := range e.Hunks {
				if h.Hunk.Header != addr.Hunk {
					continue
				}
				if addr.Line < 0 {
					return Node{Addr: addr, Kind: KindHunk, Section: s, Entry: e, HunkNode: h}, true
				}
				if addr.Line < len(h.Hunk.Lines) {
					return Node{Addr: addr, Kind: KindLine, Section: s, Entry: e, HunkNode: h, Line: &h.Hunk.Lines[addr.Line]}, true
				}
				return Node{}, false
			}
			return Node{}, false
		}
		return Node{}, false
	}
	return Node{}, false
}

// Toggle flips the expand state of the addressed node. Folding a section
// with no entries, an entry with no hunks, or a hunk with no lines is a
// no-op; so is addressing a line. It reports whether anything changed.
func (t *Tree) Toggle(addr Addr) bool {
	n, ok := t.Resolve(addr)
	if !ok {
		return false
	}
	switch n.Kind {
	case KindSection:
		if len(n.Section.Entries) == 0 {
			return false
		}
		n.Section.Expanded = !n.Section.Expanded
	case KindEntry:
		if len(n.Entry.Hunks) == 0 {
			return false
		}
		n.Entry.Expanded = !n.Entry.Expanded
	case KindHunk:
		if len(n.HunkNode.Hunk.Lines) == 0 {
			return false
		}
		n.HunkNode.Expanded = !n.HunkNode.Expanded
	default:
		return false
	}
	t.Flatten()
	return true
}

// SetAllEntries expands or collapses every entry in every section, keeping
// the cursor on the same node or its nearest surviving ancestor.
func (t *Tree) SetAllEntries(expanded bool) {
	var cursorAddr Addr
	var hadCursor bool
	if n, ok := t.Cursor(); ok {
		cursorAddr = n.Addr
		hadCursor = true
	}
	for _, s := range t.Sections {
		for _, e := range s.Entries {
			if len(e.Hunks) > 0 {
				e.Expanded = expanded
			}
		}
	}
	t.Flatten()
	if !hadCursor {
		return
	}
	for addr, ok := cursorAddr, true; ok; addr, ok = addr.Parent() {
		if t.MoveTo(addr) {
			return
		}
	}
}

// ToggleMark flips membership of the addressed node in the mark set.
func (t *Tree) ToggleMark(addr Addr) {
	if t.marks[addr] {
		delete(t.marks, addr)
		return
	}
	if _, ok := t.Resolve(addr); ok {
		t.marks[addr] = true
	}
}

// IsMarked reports whether the address is in the mark set.
func (t *Tree) IsMarked(addr Addr) bool {
	return t.marks[addr]
}

// ClearMarks empties the mark set.
func (t *Tree) ClearMarks() {
	t.marks = map[Addr]bool{}
}

// HasMarks reports whether any node is marked.
func (t *Tree) HasMarks() bool {
	return len(t.marks) > 0
}

// Targets resolves the set of nodes the next action applies to: the marked
// nodes in visible order when any exist, otherwise the cursor node alone.
func (t *Tree) Targets() []Node {
	if len(t.marks) == 0 {
		if n, ok := t.Cursor(); ok {
			return []Node{n}
		}
		return nil
	}
	var out []Node
	seen := map[Addr]bool{}
	for _, n := range t.flat {
		if t.marks[n.Addr] && !seen[n.Addr] {
			out = append(out, n)
			seen[n.Addr] = true
		}
	}
	// marked but currently folded away: resolve directly so bulk actions
	// are not silently narrowed by fold state
	for addr := range t.marks {
		if seen[addr] {
			continue
		}
		if n, ok := t.Resolve(addr); ok {
			out = append(out, n)
		}
	}
	return out
}

// Rebuild replaces the whole tree with freshly built sections, restoring
// expansion, cursor, and marks by identity key. The cursor falls back to the
// nearest surviving ancestor, then to the first node of its old section,
// then clamps. Marks whose nodes vanished are dropped silently.
func (t *Tree) Rebuild(sections []*Section) {
	var cursorAddr Addr
	var hadCursor bool
	if n, ok := t.Cursor(); ok {
		cursorAddr = n.Addr
		hadCursor = true
	}
	oldSections := t.Sections
	oldIndex := t.cursor

	t.Sections = sections
	carryExpansion(oldSections, sections)
	t.Flatten()

	// restore marks that still resolve
	marks := map[Addr]bool{}
	for addr := range t.marks {
		if _, ok := t.Resolve(addr); ok {
			marks[addr] = true
		}
	}
	t.marks = marks

	if !hadCursor {
		t.cursor = 0
		t.clampCursor()
		return
	}
	for addr, ok := cursorAddr, true; ok; addr, ok = addr.Parent() {
		if t.MoveTo(addr) {
			return
		}
	}
	if t.MoveTo(SectionAddr(cursorAddr.Section)) {
		return
	}
	t.cursor = oldIndex
	t.clampCursor()
}

func (t *Tree) clampCursor() {
	if t.cursor >= len(t.flat) {
		t.cursor = len(t.flat) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
}

func carryExpansion(old, fresh []*Section) {
	prev := map[SectionKind]*Section{}
	for _, s := range old {
		prev[s.Kind] = s
	}
	for _, s := range fresh {
		ps, ok := prev[s.Kind]
		if !ok {
			continue
		}
		s.Expanded = ps.Expanded
		prevEntries := map[string]*Entry{}
		for _, e := range ps.Entries {
			prevEntries[e.ID()] = e
		}
		for _, e := range s.Entries {
			pe, ok := prevEntries[e.ID()]
			if !ok {
				continue
			}
			e.Expanded = pe.Expanded
			prevHunks := map[string]*HunkNode{}
			for _, h := range pe.Hunks {
				prevHunks[h.Hunk.Header] = h
			}
			for _, h := range e.Hunks {
				if ph, ok := prevHunks[h.Hunk.Header]; ok {
					h.Expanded = ph.Expanded
				}
			}
		}
	}
}
