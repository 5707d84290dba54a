package tui

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// highlighter colors context lines per file type. Added and deleted lines
// keep their diff colors; mixing the two reads worse than either alone.
type highlighter struct {
	style  *chroma.Style
	lexers map[string]chroma.Lexer // nil value caches "no lexer for this path"
}

func newHighlighter(styleName string) *highlighter {
	st := styles.Get(styleName)
	if st == nil {
		st = styles.Fallback
	}
	return &highlighter{style: st, lexers: map[string]chroma.Lexer{}}
}

// line returns text with terminal escape coloring, or text unchanged when
// the path has no lexer or tokenizing fails.
func (h *highlighter) line(path, text string) string {
	if text == "" {
		return text
	}
	lx, cached := h.lexers[path]
	if !cached {
		lx = lexers.Match(path)
		if lx != nil {
			lx = chroma.Coalesce(lx)
		}
		h.lexers[path] = lx
	}
	if lx == nil {
		return text
	}
	it, err := lx.Tokenise(nil, text)
	if err != nil {
		return text
	}
	var b strings.Builder
	if err := formatters.TTY256.Format(&b, h.style, it); err != nil {
		return text
	}
	return strings.TrimSuffix(b.String(), "\n")
}
