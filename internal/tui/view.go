package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/interpretive-systems/stagium/internal/outline"
	"github.com/interpretive-systems/stagium/internal/unidiff"
)

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.width < 20 || m.height < 6 {
		return ansi.Truncate("stagium (terminal too small)", m.width, "…")
	}

	hr := m.theme.DividerText(strings.Repeat("─", m.width))

	var b strings.Builder
	b.WriteString(m.topBar())
	b.WriteByte('\n')
	b.WriteString(m.headLine())
	b.WriteByte('\n')
	b.WriteString(hr)
	b.WriteByte('\n')

	contentHeight := m.contentHeight()
	var content []string
	if m.mode == modeHelp {
		content = m.helpLines()
	} else {
		content = m.treeLines(contentHeight)
	}
	for i := 0; i < contentHeight; i++ {
		if i < len(content) {
			b.WriteString(ansi.Truncate(content[i], m.width, "…"))
		}
		b.WriteByte('\n')
	}

	if m.mode == modeCommit {
		for _, line := range m.commitOverlayLines() {
			b.WriteString(ansi.Truncate(line, m.width, "…"))
			b.WriteByte('\n')
		}
	}

	b.WriteString(hr)
	b.WriteByte('\n')
	b.WriteString(padToWidth(m.bottomBar(), m.width))
	return b.String()
}

func (m model) topBar() string {
	left := "stagium"
	if m.branch != "" {
		left = "On branch " + m.branch
	}
	right := "stagium"
	leftS := m.theme.SectionText(left)
	avail := m.width - lipgloss.Width(leftS) - lipgloss.Width(right)
	if avail < 1 {
		return ansi.Truncate(leftS, m.width, "…")
	}
	return leftS + strings.Repeat(" ", avail) + m.theme.DividerText(right)
}

func (m model) headLine() string {
	head := m.head
	if head == "" {
		head = "(no commits yet)"
	}
	return m.theme.DividerText(ansi.Truncate("Head: "+head, m.width, "…"))
}

// treeLines renders the visible window of the outline.
func (m model) treeLines(height int) []string {
	if !m.loaded {
		return []string{m.theme.DividerText("Reading repository...")}
	}
	rows := m.tree.Visible()
	if len(rows) == 0 {
		return []string{m.theme.DividerText("Nothing to show.")}
	}
	end := m.offset + height
	if end > len(rows) {
		end = len(rows)
	}
	out := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		out = append(out, m.renderRow(rows[i], i == m.tree.CursorIndex()))
	}
	return out
}

// renderRow draws one node. The cursor row is rendered from plain text with
// a single style so its background spans the whole width; everything else
// composes per-segment colors.
func (m model) renderRow(n outline.Node, isCursor bool) string {
	if isCursor {
		st := lipgloss.NewStyle().
			Background(lipgloss.Color(m.theme.CursorBg)).
			Bold(true)
		if fg := m.rowFg(n); fg != "" {
			st = st.Foreground(lipgloss.Color(fg))
		}
		return st.Render(padToWidth(m.gutterPlain(n)+nodePlainText(n), m.width))
	}
	return m.gutter(n) + m.styledRowText(n)
}

// rowFg is the classification foreground used on the cursor row.
func (m model) rowFg(n outline.Node) string {
	switch n.Kind {
	case outline.KindSection:
		return m.theme.SectionColor
	case outline.KindHunk:
		return m.theme.MetaColor
	case outline.KindLine:
		if n.Line.Style.Fg != "" {
			return n.Line.Style.Fg
		}
		switch n.Line.Kind {
		case unidiff.LineAdded:
			return m.theme.AddColor
		case unidiff.LineDeleted:
			return m.theme.DelColor
		}
	}
	return ""
}

func (m model) gutterPlain(n outline.Node) string {
	if m.tree.IsMarked(n.Addr) {
		return "* "
	}
	return "  "
}

func (m model) gutter(n outline.Node) string {
	if m.tree.IsMarked(n.Addr) {
		return m.theme.MarkText("* ")
	}
	return "  "
}

func (m model) styledRowText(n outline.Node) string {
	switch n.Kind {
	case outline.KindSection:
		return m.theme.SectionText(nodePlainText(n))
	case outline.KindEntry:
		text := "  " + expander(entryExpandable(n.Entry), n.Entry.Expanded) + " " + n.Entry.Label
		switch {
		case n.Entry.Unparsable:
			return text + m.theme.ErrorText(" (unparsable: "+n.Entry.ParseErr+")")
		case n.Entry.Binary:
			return text + m.theme.MetaText(" (binary)")
		}
		return text
	case outline.KindHunk:
		return m.theme.MetaText(nodePlainText(n))
	case outline.KindLine:
		text := nodePlainText(n)
		if fg := n.Line.Style.Fg; fg != "" {
			st := lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
			if n.Line.Style.Bold {
				st = st.Bold(true)
			}
			return st.Render(text)
		}
		switch n.Line.Kind {
		case unidiff.LineAdded:
			return m.theme.AddText(text)
		case unidiff.LineDeleted:
			return m.theme.DelText(text)
		}
		if m.syntax {
			return "      " + m.hl.line(n.Entry.Path, " "+n.Line.Text)
		}
		return text
	}
	return nodePlainText(n)
}

// nodePlainText is the row's text without any styling. Search matches
// against it and the cursor row restyles it wholesale.
func nodePlainText(n outline.Node) string {
	switch n.Kind {
	case outline.KindSection:
		return expander(len(n.Section.Entries) > 0, n.Section.Expanded) + " " +
			n.Section.Title + entryCountSuffix(len(n.Section.Entries))
	case outline.KindEntry:
		text := "  " + expander(entryExpandable(n.Entry), n.Entry.Expanded) + " " + n.Entry.Label
		switch {
		case n.Entry.Unparsable:
			text += " (unparsable: " + n.Entry.ParseErr + ")"
		case n.Entry.Binary:
			text += " (binary)"
		}
		return text
	case outline.KindHunk:
		return "    " + expander(len(n.HunkNode.Hunk.Lines) > 0, n.HunkNode.Expanded) + " " +
			n.HunkNode.Hunk.Header
	case outline.KindLine:
		var prefix string
		switch n.Line.Kind {
		case unidiff.LineAdded:
			prefix = "+"
		case unidiff.LineDeleted:
			prefix = "-"
		default:
			prefix = " "
		}
		return "      " + prefix + n.Line.Text
	}
	return ""
}

func entryExpandable(e *outline.Entry) bool {
	return len(e.Hunks) > 0 || !e.DiffLoaded
}

func expander(expandable, expanded bool) string {
	switch {
	case !expandable:
		return " "
	case expanded:
		return "▾"
	default:
		return "▸"
	}
}

func (m model) commitOverlayLines() []string {
	title := "Commit message (ctrl+s to commit, esc to cancel)"
	if m.commitAmend {
		title = "Amend commit message (ctrl+s to amend, esc to cancel)"
	}
	lines := []string{m.theme.SectionText(title)}
	lines = append(lines, strings.Split(m.commitInput.View(), "\n")...)
	return lines
}

func (m model) helpLines() []string {
	lines := []string{m.theme.SectionText("Keys"), ""}
	for _, e := range helpEntries() {
		lines = append(lines, fmt.Sprintf("  %-12s %s", e.Keys, e.Help))
	}
	lines = append(lines, "", m.theme.DividerText("press any key to close"))
	return lines
}

func (m model) bottomBar() string {
	switch m.mode {
	case modeStash:
		return "Stash message (enter to stash, esc to cancel): " + m.stashInput.View()
	case modeSearch:
		return m.searchInput.View()
	case modeConfirmDiscard:
		return m.theme.ErrorText(fmt.Sprintf("Discard %d change(s)? press y to confirm", len(m.pendingOps)))
	}
	if m.busy {
		return m.spin.View() + " working..."
	}
	if m.status != "" {
		if m.statusErr {
			return m.theme.ErrorText(m.status)
		}
		return m.status
	}
	return m.theme.DividerText("?: help  s: stage  u: unstage  x: discard  c: commit  q: quit")
}

func padToWidth(s string, w int) string {
	width := lipgloss.Width(s)
	if width == w {
		return s
	}
	if width < w {
		return s + strings.Repeat(" ", w-width)
	}
	return ansi.Truncate(s, w, "…")
}
