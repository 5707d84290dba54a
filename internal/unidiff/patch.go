package unidiff

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// BuildPatch produces a single-file patch containing exactly one hunk,
// suitable for git apply. pick selects which changed lines of the hunk to
// keep: additions that are not picked are dropped, deletions that are not
// picked are demoted to context. Context lines are always kept. A nil pick
// takes the hunk verbatim. Header counts are recomputed from the emitted
// lines.
func BuildPatch(f FileDiff, h Hunk, pick func(i int, l Line) bool) string {
	var body strings.Builder
	oldCount, newCount := 0, 0
	for i, l := range h.Lines {
		kind := l.Kind
		if kind != LineContext && pick != nil && !pick(i, l) {
			if kind == LineAdded {
				continue
			}
			kind = LineContext // unpicked deletion stays in both versions
		}
		body.WriteString(linePrefix(kind))
		body.WriteString(l.Text)
		body.WriteByte('\n')
		if l.NoNewline {
			body.WriteString("\\ No newline at end of file\n")
		}
		switch kind {
		case LineContext:
			oldCount++
			newCount++
		case LineDeleted:
			oldCount++
		case LineAdded:
			newCount++
		}
	}

	oldPath, newPath := "a/"+f.OldPath, "b/"+f.NewPath
	if f.OldPath == "" {
		oldPath = "/dev/null"
	}
	if f.NewPath == "" {
		newPath = "/dev/null"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n", oldPath)
	fmt.Fprintf(&b, "+++ %s\n", newPath)
	// The new-side start is advisory for a lone hunk; git apply locates the
	// hunk by its old-side position and content.
	fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@", h.OldStart, oldCount, h.OldStart, newCount)
	if h.Section != "" {
		b.WriteByte(' ')
		b.WriteString(h.Section)
	}
	b.WriteByte('\n')
	b.WriteString(body.String())
	return b.String()
}

// Synthesize builds unified diff text presenting content as an entirely new
// file at path, so untracked files flow through the same parse pipeline as
// tracked ones.
func Synthesize(path, content string) (string, error) {
	if content == "" {
		return "", nil
	}
	// difflib.SplitLines force-terminates the final line, so strip a trailing
	// newline first to avoid a phantom blank line in the preview.
	ud := difflib.UnifiedDiff{
		A:        nil,
		B:        difflib.SplitLines(strings.TrimSuffix(content, "\n")),
		FromFile: "/dev/null",
		ToFile:   "b/" + path,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", fmt.Errorf("synthesize %s: %w", path, err)
	}
	return "diff --git a/" + path + " b/" + path + "\nnew file mode 100644\n" + text, nil
}
