package unidiff

import (
	"bufio"
	"strconv"
	"strings"
)

// Parse converts raw diff text for one or more files into a sequence of
// FileDiffs. It is a pure function: the same input always yields the same
// structure. A malformed file poisons only itself; the files around it parse
// normally, and the bad one comes back with Unparsable set.
func Parse(text string) []FileDiff {
	s := bufio.NewScanner(strings.NewReader(text))
	s.Buffer(make([]byte, 0, 64*1024), 10*1024*1024) // allow large lines

	p := parser{}
	for s.Scan() {
		p.line(s.Text())
	}
	p.finish()
	return p.files
}

type parser struct {
	files []FileDiff
	sgr   sgrState

	cur       *FileDiff
	hunk      *Hunk
	oldRemain int
	newRemain int
	skipping  bool // rest of current file is discarded after a parse failure
}

func (p *parser) line(raw string) {
	clean, style := p.sgr.stripLine(raw)

	if strings.HasPrefix(clean, "diff --git ") {
		p.closeFile()
		p.startFile(clean)
		return
	}
	if strings.HasPrefix(clean, "diff --cc ") || strings.HasPrefix(clean, "diff --combined ") {
		p.closeFile()
		p.startCombinedFile(clean)
		return
	}
	if p.cur == nil || p.skipping {
		return
	}
	if p.hunk != nil && (p.oldRemain > 0 || p.newRemain > 0) {
		p.bodyLine(clean, style)
		return
	}
	p.headerLine(clean)
}

func (p *parser) startFile(clean string) {
	f := FileDiff{}
	tokens := diffLineTokens(strings.TrimSpace(clean[len("diff --git "):]))
	if len(tokens) >= 2 {
		f.OldPath = strings.TrimPrefix(tokens[0], "a/")
		f.NewPath = strings.TrimPrefix(tokens[1], "b/")
	}
	p.files = append(p.files, f)
	p.cur = &p.files[len(p.files)-1]
	p.hunk = nil
	p.skipping = false
	if len(tokens) < 2 {
		p.fail("malformed diff header")
	}
}

// startCombinedFile records a combined (merge) diff as its own entry. Git
// interleaves these into the regular diff stream during an unresolved merge.
// Combined hunks carry multiple parent columns and cannot be staged
// piecemeal, so the file surfaces as unparsable instead of bleeding into its
// neighbors.
func (p *parser) startCombinedFile(clean string) {
	rest := strings.TrimPrefix(clean, "diff --cc ")
	rest = strings.TrimPrefix(rest, "diff --combined ")
	f := FileDiff{}
	if tokens := diffLineTokens(strings.TrimSpace(rest)); len(tokens) > 0 {
		f.OldPath = tokens[0]
		f.NewPath = tokens[0]
	}
	p.files = append(p.files, f)
	p.cur = &p.files[len(p.files)-1]
	p.hunk = nil
	p.skipping = false
	p.fail("combined diff for unresolved merge")
}

func (p *parser) headerLine(clean string) {
	switch {
	case strings.HasPrefix(clean, "@@"):
		h, ok := parseHunkHeader(clean)
		if !ok {
			p.fail("malformed hunk header: " + clean)
			return
		}
		p.cur.Hunks = append(p.cur.Hunks, h)
		p.hunk = &p.cur.Hunks[len(p.cur.Hunks)-1]
		p.oldRemain = h.OldCount
		p.newRemain = h.NewCount
	case strings.HasPrefix(clean, "new file mode"):
		p.cur.Op = FileAdded
	case strings.HasPrefix(clean, "deleted file mode"):
		p.cur.Op = FileDeleted
	case strings.HasPrefix(clean, "rename from "):
		p.cur.Op = FileRenamed
		p.cur.OldPath = clean[len("rename from "):]
	case strings.HasPrefix(clean, "rename to "):
		p.cur.NewPath = clean[len("rename to "):]
	case strings.HasPrefix(clean, "copy from "):
		p.cur.Op = FileCopied
		p.cur.OldPath = clean[len("copy from "):]
	case strings.HasPrefix(clean, "copy to "):
		p.cur.NewPath = clean[len("copy to "):]
	case strings.HasPrefix(clean, "Binary files ") && strings.HasSuffix(clean, " differ"),
		strings.HasPrefix(clean, "GIT binary patch"):
		p.cur.Binary = true
	case strings.HasPrefix(clean, "--- "):
		if name := normalizeMarkerPath(clean[len("--- "):], "a/"); name == "" {
			p.cur.OldPath = ""
			if p.cur.Op == FileModified {
				p.cur.Op = FileAdded
			}
		}
	case strings.HasPrefix(clean, "+++ "):
		if name := normalizeMarkerPath(clean[len("+++ "):], "b/"); name == "" {
			p.cur.NewPath = ""
			if p.cur.Op == FileModified {
				p.cur.Op = FileDeleted
			}
		}
	case strings.HasPrefix(clean, "\\"):
		p.markNoNewline()
	case strings.HasPrefix(clean, "index "),
		strings.HasPrefix(clean, "old mode"),
		strings.HasPrefix(clean, "new mode"),
		strings.HasPrefix(clean, "similarity index"),
		strings.HasPrefix(clean, "dissimilarity index"),
		strings.HasPrefix(clean, "mode "):
		// extended headers carry no structure we address
	default:
		p.fail("unexpected line outside hunk: " + clean)
	}
}

func (p *parser) bodyLine(clean string, style Style) {
	if clean == "" {
		// some diff sources strip the single space off blank context lines
		p.addLine(Line{Kind: LineContext, Text: "", Style: style})
		p.oldRemain--
		p.newRemain--
		p.checkHunk()
		return
	}
	switch clean[0] {
	case ' ':
		p.addLine(Line{Kind: LineContext, Text: clean[1:], Style: style})
		p.oldRemain--
		p.newRemain--
	case '-':
		p.addLine(Line{Kind: LineDeleted, Text: clean[1:], Style: style})
		p.oldRemain--
	case '+':
		p.addLine(Line{Kind: LineAdded, Text: clean[1:], Style: style})
		p.newRemain--
	case '\\':
		p.markNoNewline()
		return
	default:
		p.fail("unexpected hunk body line: " + clean)
		return
	}
	p.checkHunk()
}

func (p *parser) checkHunk() {
	if p.oldRemain < 0 || p.newRemain < 0 {
		p.fail("hunk body longer than declared")
		return
	}
	if p.oldRemain == 0 && p.newRemain == 0 {
		p.hunk = nil
	}
}

func (p *parser) addLine(l Line) {
	p.hunk.Lines = append(p.hunk.Lines, l)
}

func (p *parser) markNoNewline() {
	if len(p.cur.Hunks) == 0 {
		return
	}
	h := &p.cur.Hunks[len(p.cur.Hunks)-1]
	if len(h.Lines) > 0 {
		h.Lines[len(h.Lines)-1].NoNewline = true
	}
}

// fail marks the current file unparsable and discards the rest of its text.
// Hunks that parsed cleanly before the failure are kept; a half-read hunk is
// dropped.
func (p *parser) fail(msg string) {
	if p.hunk != nil && (p.oldRemain > 0 || p.newRemain > 0) {
		p.cur.Hunks = p.cur.Hunks[:len(p.cur.Hunks)-1]
	}
	p.hunk = nil
	p.cur.Unparsable = true
	if p.cur.ParseErr == "" {
		p.cur.ParseErr = msg
	}
	p.skipping = true
}

// closeFile validates that the file we were reading did not end mid-hunk.
func (p *parser) closeFile() {
	if p.cur == nil || p.skipping {
		return
	}
	if p.hunk != nil && (p.oldRemain > 0 || p.newRemain > 0) {
		p.fail("truncated hunk")
	}
}

func (p *parser) finish() {
	p.closeFile()
}

// parseHunkHeader parses "@@ -l[,c] +l[,c] @@[ section]".
func parseHunkHeader(line string) (Hunk, bool) {
	var h Hunk
	h.Header = line
	rest, ok := strings.CutPrefix(line, "@@ -")
	if !ok {
		return h, false
	}
	oldPart, rest, ok := strings.Cut(rest, " +")
	if !ok {
		return h, false
	}
	newPart, rest, ok := strings.Cut(rest, " @@")
	if !ok {
		return h, false
	}
	if h.OldStart, h.OldCount, ok = parseRange(oldPart); !ok {
		return h, false
	}
	if h.NewStart, h.NewCount, ok = parseRange(newPart); !ok {
		return h, false
	}
	h.Section = strings.TrimPrefix(rest, " ")
	return h, true
}

func parseRange(s string) (start, count int, ok bool) {
	count = 1
	startPart, countPart, hasCount := strings.Cut(s, ",")
	n, err := strconv.Atoi(startPart)
	if err != nil {
		return 0, 0, false
	}
	start = n
	if hasCount {
		c, err := strconv.Atoi(countPart)
		if err != nil {
			return 0, 0, false
		}
		count = c
	}
	return start, count, true
}

// normalizeMarkerPath strips the a/ or b/ prefix from a ---/+++ marker path
// and maps /dev/null to the empty string.
func normalizeMarkerPath(s, prefix string) string {
	s = strings.TrimSpace(s)
	if s == "/dev/null" {
		return ""
	}
	if len(s) >= 2 && s[0] == '"' {
		if tokens := diffLineTokens(s); len(tokens) > 0 {
			s = tokens[0]
		}
	}
	return strings.TrimPrefix(s, prefix)
}

// diffLineTokens splits a diff header remainder into path tokens, honoring
// the C-style quoting git applies to unusual paths.
func diffLineTokens(s string) []string {
	var tokens []string
	for {
		s = strings.TrimLeft(s, " \t")
		if s == "" {
			break
		}
		if s[0] == '"' {
			var buf strings.Builder
			escaped := false
			i := 1
			for i < len(s) {
				ch := s[i]
				if escaped {
					buf.WriteByte(ch)
					escaped = false
					i++
					continue
				}
				if ch == '\\' {
					escaped = true
					i++
					continue
				}
				if ch == '"' {
					i++
					break
				}
				buf.WriteByte(ch)
				i++
			}
			tokens = append(tokens, buf.String())
			s = s[i:]
			continue
		}
		j := 0
		for j < len(s) && s[j] != ' ' && s[j] != '\t' {
			j++
		}
		tokens = append(tokens, s[:j])
		s = s[j:]
	}
	return tokens
}
