// Package unidiff parses unified diff text, as produced by git, into an
// addressable structure of files, hunks, and lines. Input may contain ANSI
// styling escape sequences; these are interpreted into per-line styling
// metadata and never survive into line text.
package unidiff

import "strings"

// FileOp represents the type of operation performed on a file.
type FileOp int

// File operation types.
const (
	FileModified FileOp = iota
	FileAdded
	FileDeleted
	FileRenamed
	FileCopied
)

func (op FileOp) String() string {
	switch op {
	case FileAdded:
		return "new"
	case FileDeleted:
		return "deleted"
	case FileRenamed:
		return "renamed"
	case FileCopied:
		return "copied"
	default:
		return "modified"
	}
}

// FileDiff represents the changes to a single file.
type FileDiff struct {
	OldPath    string // without the a/ prefix; empty for new files
	NewPath    string // without the b/ prefix; empty for deleted files
	Op         FileOp
	Binary     bool // binary files carry no hunks
	Unparsable bool // malformed diff text; hunks are whatever parsed cleanly
	ParseErr   string
	Hunks      []Hunk
}

// Path returns the display path of the file: the new path when present,
// otherwise the old one.
func (f FileDiff) Path() string {
	if f.NewPath != "" {
		return f.NewPath
	}
	return f.OldPath
}

// LineKind represents the classification of a diff line.
type LineKind int

// Line kinds.
const (
	LineContext LineKind = iota
	LineAdded
	LineDeleted
)

// Style carries the SGR state painted on a line by the diff source. Zero
// value means unstyled. Colors are 256-palette indexes rendered as strings
// so they can feed lipgloss directly.
type Style struct {
	Fg    string
	Bg    string
	Bold  bool
	Faint bool
}

// IsZero reports whether no styling was captured.
func (s Style) IsZero() bool {
	return s == Style{}
}

// Line is a single diff line. Text never contains control sequences.
type Line struct {
	Kind      LineKind
	Text      string
	Style     Style
	NoNewline bool // followed by a "\ No newline at end of file" marker
}

// Hunk is a contiguous change region within a file's diff.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Section  string // optional function context after the closing @@
	Header   string // the verbatim @@ header line, escape-free
	Lines    []Line
}

// Reconstruct rebuilds the prefixed body text of the hunk, header included.
// Parsing a diff and reconstructing its hunks reproduces the stripped input.
func (h Hunk) Reconstruct() string {
	var b strings.Builder
	b.WriteString(h.Header)
	b.WriteByte('\n')
	for _, l := range h.Lines {
		b.WriteString(linePrefix(l.Kind))
		b.WriteString(l.Text)
		b.WriteByte('\n')
		if l.NoNewline {
			b.WriteString("\\ No newline at end of file\n")
		}
	}
	return b.String()
}

func linePrefix(k LineKind) string {
	switch k {
	case LineAdded:
		return "+"
	case LineDeleted:
		return "-"
	default:
		return " "
	}
}
