package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/interpretive-systems/stagium/internal/logging"
	"github.com/interpretive-systems/stagium/internal/outline"
	"github.com/interpretive-systems/stagium/internal/prefs"
)

type uiMode int

const (
	modeNormal uiMode = iota
	modeHelp
	modeCommit
	modeStash
	modeConfirmDiscard
	modeSearch
)

// Options configures the program.
type Options struct {
	Backend Backend
	Logger  logging.Logger
	Theme   string // "dark" or "light"
	Commits int    // recent-commits section depth
	Syntax  bool   // highlight context lines
}

type model struct {
	backend Backend
	log     logging.Logger
	theme   Theme
	hl      *highlighter

	tree   *outline.Tree
	branch string
	head   string
	loaded bool

	width  int
	height int
	offset int

	mode        uiMode
	commitInput textarea.Model
	commitAmend bool
	stashInput  textinput.Model
	searchInput textinput.Model
	searchQuery string
	pendingOps  []func() error

	status    string
	statusErr bool
	statusSeq int

	busy    bool
	spin    spinner.Model
	syntax  bool
	commits int
}

func newModel(opts Options) model {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	commits := opts.Commits
	if commits <= 0 {
		commits = 10
	}
	theme := loadThemeFromRepo(opts.Backend.Root(), opts.Theme)

	ci := textarea.New()
	ci.Placeholder = "Commit message"
	ci.ShowLineNumbers = false
	ci.SetHeight(5)

	si := textinput.New()
	si.Placeholder = "Stash message (optional)"

	qi := textinput.New()
	qi.Prompt = "/"

	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))

	return model{
		backend:     opts.Backend,
		log:         log,
		theme:       theme,
		hl:          newHighlighter(theme.ChromaStyle),
		tree:        outline.New(nil),
		commitInput: ci,
		stashInput:  si,
		searchInput: qi,
		spin:        sp,
		syntax:      opts.Syntax,
		commits:     commits,
	}
}

// NewProgram builds the Bubble Tea program. The caller keeps the handle so
// external event sources can post RefreshRequestMsg via Send.
func NewProgram(opts Options) *tea.Program {
	return tea.NewProgram(newModel(opts), tea.WithAltScreen())
}

// Run instantiates and runs the program until quit.
func Run(opts Options) error {
	_, err := NewProgram(opts).Run()
	return err
}

func (m model) Init() tea.Cmd {
	return tea.Batch(refreshCmd(m.backend, m.commits), m.spin.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureVisible()
		return m, nil

	case RefreshRequestMsg:
		if m.busy {
			return m, nil
		}
		return m, refreshCmd(m.backend, m.commits)

	case refreshedMsg:
		if msg.err != nil {
			m.log.Error("refresh failed", "error", msg.err)
			cmd := m.setStatus(fmt.Sprintf("refresh failed: %v", msg.err), true)
			return m, cmd
		}
		m.tree.Rebuild(msg.sections)
		m.branch = msg.branch
		m.head = msg.head
		m.loaded = true
		m.ensureVisible()
		return m, nil

	case mutationDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.log.Error("mutation failed", "verb", msg.verb, "error", msg.err)
			cmd := m.setStatus(fmt.Sprintf("%s failed: %v", msg.verb, msg.err), true)
			return m, cmd
		}
		m.tree.ClearMarks()
		cmd := m.setStatus(msg.verb+" done", false)
		return m, tea.Batch(cmd, refreshCmd(m.backend, m.commits))

	case entryDiffMsg:
		if msg.err != nil {
			cmd := m.setStatus(fmt.Sprintf("load diff failed: %v", msg.err), true)
			return m, cmd
		}
		if n, ok := m.tree.Resolve(msg.addr); ok && n.Kind == outline.KindEntry {
			n.Entry.Hunks = msg.hunks
			n.Entry.DiffLoaded = true
			n.Entry.Expanded = len(msg.hunks) > 0
			m.tree.Flatten()
			m.ensureVisible()
		}
		return m, nil

	case yankedMsg:
		if msg.err != nil {
			cmd := m.setStatus(fmt.Sprintf("copy failed: %v", msg.err), true)
			return m, cmd
		}
		cmd := m.setStatus("copied "+msg.what, false)
		return m, cmd

	case execDoneMsg:
		if msg.err != nil {
			cmd := m.setStatus(fmt.Sprintf("git log failed: %v", msg.err), true)
			return m, cmd
		}
		return m, refreshCmd(m.backend, m.commits)

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
			m.statusErr = false
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeHelp:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		default:
			m.mode = modeNormal
			return m, nil
		}

	case modeCommit:
		switch msg.String() {
		case "esc":
			m.mode = modeNormal
			cmd := m.setStatus("commit cancelled", false)
			return m, cmd
		case "ctrl+s":
			message := strings.TrimSpace(m.commitInput.Value())
			if message == "" {
				cmd := m.setStatus("empty commit message", true)
				return m, cmd
			}
			m.mode = modeNormal
			m.busy = true
			return m, tea.Batch(commitCmd(m.backend, message, m.commitAmend), m.spin.Tick)
		default:
			var cmd tea.Cmd
			m.commitInput, cmd = m.commitInput.Update(msg)
			return m, cmd
		}

	case modeStash:
		switch msg.String() {
		case "esc":
			m.mode = modeNormal
			return m, nil
		case "enter":
			m.mode = modeNormal
			m.busy = true
			return m, tea.Batch(stashCmd(m.backend, strings.TrimSpace(m.stashInput.Value())), m.spin.Tick)
		default:
			var cmd tea.Cmd
			m.stashInput, cmd = m.stashInput.Update(msg)
			return m, cmd
		}

	case modeSearch:
		switch msg.String() {
		case "esc":
			m.mode = modeNormal
			return m, nil
		case "enter":
			m.mode = modeNormal
			m.searchQuery = strings.TrimSpace(m.searchInput.Value())
			if m.searchQuery != "" && !m.searchMove(1) {
				cmd := m.setStatus("no match for "+m.searchQuery, false)
				return m, cmd
			}
			return m, nil
		default:
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			return m, cmd
		}

	case modeConfirmDiscard:
		m.mode = modeNormal
		if msg.String() == "y" {
			ops := m.pendingOps
			m.pendingOps = nil
			m.busy = true
			return m, tea.Batch(runMutation("discard", ops), m.spin.Tick)
		}
		m.pendingOps = nil
		cmd := m.setStatus("discard cancelled", false)
		return m, cmd
	}
	return m.handleNormalKey(msg)
}

func (m model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cur, hasCursor := m.tree.Cursor()
	action := actionFor(cur.Kind, hasCursor, msg.String())
	switch action {
	case ActionQuit:
		return m, tea.Quit
	case ActionToggleHelp:
		m.mode = modeHelp
		return m, nil
	case ActionRefresh:
		if m.busy {
			return m, nil
		}
		return m, refreshCmd(m.backend, m.commits)

	case ActionMoveDown:
		m.tree.Next()
		m.ensureVisible()
	case ActionMoveUp:
		m.tree.Prev()
		m.ensureVisible()
	case ActionGoToTop:
		m.tree.First()
		m.ensureVisible()
	case ActionGoToBottom:
		m.tree.Last()
		m.ensureVisible()
	case ActionNextSection:
		m.tree.NextSection()
		m.ensureVisible()
	case ActionPrevSection:
		m.tree.PrevSection()
		m.ensureVisible()

	case ActionToggleFold:
		if cur.Kind == outline.KindEntry && !cur.Entry.DiffLoaded {
			return m, loadEntryDiffCmd(m.backend, cur.Addr)
		}
		m.tree.Toggle(cur.Addr)
		m.ensureVisible()
	case ActionExpandAll:
		m.tree.SetAllEntries(true)
		m.ensureVisible()
	case ActionCollapseAll:
		m.tree.SetAllEntries(false)
		m.ensureVisible()

	case ActionMark:
		m.tree.ToggleMark(cur.Addr)
		m.tree.Next()
		m.ensureVisible()
	case ActionClearMarks:
		m.tree.ClearMarks()

	case ActionStage:
		if m.busy {
			return m, nil
		}
		ops := planStage(m.backend, m.tree.Targets())
		if len(ops) == 0 {
			return m, nil
		}
		m.busy = true
		return m, tea.Batch(runMutation("stage", ops), m.spin.Tick)
	case ActionUnstage:
		if m.busy {
			return m, nil
		}
		ops := planUnstage(m.backend, m.tree.Targets())
		if len(ops) == 0 {
			return m, nil
		}
		m.busy = true
		return m, tea.Batch(runMutation("unstage", ops), m.spin.Tick)
	case ActionDiscard:
		if m.busy {
			return m, nil
		}
		ops := planDiscard(m.backend, m.tree.Targets())
		if len(ops) == 0 {
			return m, nil
		}
		m.pendingOps = ops
		m.mode = modeConfirmDiscard

	case ActionOpenCommit, ActionOpenAmend:
		if m.busy {
			return m, nil
		}
		m.mode = modeCommit
		m.commitAmend = action == ActionOpenAmend
		m.commitInput.Reset()
		cmd := m.commitInput.Focus()
		return m, cmd
	case ActionOpenStash:
		if m.busy {
			return m, nil
		}
		m.mode = modeStash
		m.stashInput.Reset()
		cmd := m.stashInput.Focus()
		return m, cmd

	case ActionOpenSearch:
		m.mode = modeSearch
		m.searchInput.Reset()
		cmd := m.searchInput.Focus()
		return m, cmd
	case ActionSearchNext:
		m.searchMove(1)
		m.ensureVisible()
	case ActionSearchPrevious:
		m.searchMove(-1)
		m.ensureVisible()

	case ActionYank:
		return m, yankCmd(cur)
	case ActionLogView:
		return m, logCmd(m.backend.Root())
	case ActionToggleSyntax:
		m.syntax = !m.syntax
		if err := prefs.SaveSyntax(m.backend.Root(), m.syntax); err != nil {
			m.log.Warn("save syntax pref", "error", err)
		}
	}
	return m, nil
}

// searchMove advances the cursor to the next visible row matching the query
// in direction dir, without wrapping. Reports whether it moved.
func (m *model) searchMove(dir int) bool {
	if m.searchQuery == "" {
		return false
	}
	q := strings.ToLower(m.searchQuery)
	rows := m.tree.Visible()
	for i := m.tree.CursorIndex() + dir; i >= 0 && i < len(rows); i += dir {
		if strings.Contains(strings.ToLower(nodePlainText(rows[i])), q) {
			m.tree.MoveTo(rows[i].Addr)
			m.ensureVisible()
			return true
		}
	}
	return false
}

func (m *model) setStatus(s string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.status = s
	m.statusErr = isErr
	return clearStatusCmd(m.statusSeq)
}

// ensureVisible scrolls the viewport just enough to keep the cursor inside
// it, never recentering.
func (m *model) ensureVisible() {
	ch := m.contentHeight()
	if ch < 1 {
		ch = 1
	}
	cur := m.tree.CursorIndex()
	if cur < m.offset {
		m.offset = cur
	}
	if cur >= m.offset+ch {
		m.offset = cur - ch + 1
	}
	if max := m.tree.Len() - ch; m.offset > max {
		m.offset = max
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// contentHeight is the tree viewport height after chrome and overlays.
func (m *model) contentHeight() int {
	h := m.height - 5 // branch + head + two rules + bottom bar
	if m.mode == modeCommit {
		h -= m.commitInput.Height() + 1 // textarea plus its title line
	}
	if h < 1 {
		h = 1
	}
	return h
}
