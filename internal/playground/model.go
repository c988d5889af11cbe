// Package playground is an interactive Bubble Tea host for an edit session.
// It translates keystrokes, pastes and mouse input into edit actions,
// renders the buffer with its selection and shows engine diagnostics live.
package playground

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/textstate/internal/edit"
	"github.com/zjrosen/textstate/internal/keys"
	"github.com/zjrosen/textstate/internal/log"
	"github.com/zjrosen/textstate/internal/pubsub"
	"github.com/zjrosen/textstate/internal/session"
	"github.com/zjrosen/textstate/internal/text"
)

const (
	headerHeight           = 1
	defaultDiagnosticLines = 5
)

// Config configures the playground.
type Config struct {
	ShowDiagnostics bool
	TabWidth        int
	LayoutCacheTTL  time.Duration

	// DiagnosticLines is the height of the diagnostics pane. Default: 5.
	DiagnosticLines int
}

// Model is the playground state.
type Model struct {
	ctx  context.Context
	sess *session.Session
	snap session.Snapshot

	keys   keys.EditorKeyMap
	help   help.Model
	layout *layouter

	width    int
	height   int
	scroll   int
	dragging bool

	showDiagnostics bool
	diagLimit       int
	diagnostics     []string

	snapshots *pubsub.ContinuousListener[session.Snapshot]
	logs      *log.LogListener
}

// New creates a playground over sess. Listeners stop when ctx is cancelled.
func New(ctx context.Context, sess *session.Session, cfg Config) Model {
	limit := cfg.DiagnosticLines
	if limit <= 0 {
		limit = defaultDiagnosticLines
	}
	return Model{
		ctx:             ctx,
		sess:            sess,
		snap:            sess.Snapshot(),
		keys:            keys.Editor,
		help:            help.New(),
		layout:          newLayouter(cfg.TabWidth, cfg.LayoutCacheTTL),
		showDiagnostics: cfg.ShowDiagnostics,
		diagLimit:       limit,
		snapshots:       pubsub.NewContinuousListener(ctx, sess.Broker(), pubsub.ReplacedEvent),
		logs:            log.NewListener(ctx),
	}
}

// Snapshot returns the state the playground is currently showing.
func (m Model) Snapshot() session.Snapshot {
	return m.snap
}

// ShowingDiagnostics reports whether the diagnostics pane is open.
func (m Model) ShowingDiagnostics() bool {
	return m.showDiagnostics
}

// Diagnostics returns the lines shown in the diagnostics pane.
func (m Model) Diagnostics() []string {
	return m.diagnostics
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.snapshots.Listen()}
	if m.logs != nil {
		cmds = append(cmds, m.logs.Listen())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ensureVisible()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case pubsub.Event[session.Snapshot]:
		// Only out-of-band replacements arrive here; our own Apply results
		// are taken directly.
		m.snap = msg.Payload
		m.ensureVisible()
		return m, m.snapshots.Listen()

	case log.LogEvent:
		// apply already reports rejected carets for this model's actions.
		if msg.Payload.Category != log.CatCaret {
			m.pushDiagnostic(msg.Payload.Compact())
		}
		if m.logs == nil {
			return m, nil
		}
		return m, m.logs.Listen()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.ensureVisible()
		return m, nil
	case key.Matches(msg, m.keys.ToggleDiagnostics):
		m.showDiagnostics = !m.showDiagnostics
		m.ensureVisible()
		return m, nil
	}

	if action, ok := m.actionForKey(msg); ok {
		m.apply(action)
	}
	return m, nil
}

// actionForKey maps a keystroke to an edit action.
func (m Model) actionForKey(msg tea.KeyMsg) (edit.Action, bool) {
	if msg.Paste {
		return edit.Paste{Text: string(msg.Runes)}, true
	}

	k := m.keys
	switch {
	case key.Matches(msg, k.Left):
		return edit.Move{Movement: text.Left}, true
	case key.Matches(msg, k.Right):
		return edit.Move{Movement: text.Right}, true
	case key.Matches(msg, k.Up):
		return edit.Move{Movement: text.Up}, true
	case key.Matches(msg, k.Down):
		return edit.Move{Movement: text.Down}, true
	case key.Matches(msg, k.WordLeft):
		return edit.Move{Movement: text.LeftWord}, true
	case key.Matches(msg, k.WordRight):
		return edit.Move{Movement: text.RightWord}, true
	case key.Matches(msg, k.LineStart):
		return edit.Move{Movement: text.PrecedingLineBreak}, true
	case key.Matches(msg, k.LineEnd):
		return edit.Move{Movement: text.NextLineBreak}, true
	case key.Matches(msg, k.DocStart):
		return edit.Move{Movement: text.StartOfDocument}, true
	case key.Matches(msg, k.DocEnd):
		return edit.Move{Movement: text.EndOfDocument}, true

	case key.Matches(msg, k.SelectLeft):
		return edit.ModifySelection{Movement: text.Left}, true
	case key.Matches(msg, k.SelectRight):
		return edit.ModifySelection{Movement: text.Right}, true
	case key.Matches(msg, k.SelectUp):
		return edit.ModifySelection{Movement: text.Up}, true
	case key.Matches(msg, k.SelectDown):
		return edit.ModifySelection{Movement: text.Down}, true
	case key.Matches(msg, k.SelectWordLeft):
		return edit.ModifySelection{Movement: text.LeftWord}, true
	case key.Matches(msg, k.SelectWordRight):
		return edit.ModifySelection{Movement: text.RightWord}, true
	case key.Matches(msg, k.SelectLineStart):
		return edit.ModifySelection{Movement: text.PrecedingLineBreak}, true
	case key.Matches(msg, k.SelectLineEnd):
		return edit.ModifySelection{Movement: text.NextLineBreak}, true
	case key.Matches(msg, k.SelectAll):
		return edit.SelectAll{}, true

	case key.Matches(msg, k.WordBackspace):
		return edit.JumpBackspace{Movement: text.LeftWord}, true
	case key.Matches(msg, k.WordDelete):
		return edit.JumpDelete{Movement: text.RightWord}, true
	case key.Matches(msg, k.Backspace):
		return edit.Backspace{}, true
	case key.Matches(msg, k.Delete):
		return edit.Delete{}, true
	case key.Matches(msg, k.Newline):
		return edit.Insert{Text: "\n"}, true
	}

	if msg.Alt {
		return nil, false
	}
	switch msg.Type {
	case tea.KeyRunes:
		return edit.Insert{Text: string(msg.Runes)}, true
	case tea.KeySpace:
		return edit.Insert{Text: " "}, true
	case tea.KeyTab:
		return edit.Insert{Text: "\t"}, true
	}
	return nil, false
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !m.inTextArea(msg.Y) {
			return
		}
		var mods edit.Modifiers
		if msg.Shift {
			mods |= edit.ModShift
		}
		if msg.Ctrl {
			mods |= edit.ModCtrl
		}
		if msg.Alt {
			mods |= edit.ModAlt
		}
		m.dragging = true
		m.apply(edit.Click{Offset: m.hitTest(msg.X, msg.Y), Mods: mods})
	case tea.MouseActionMotion:
		if !m.dragging {
			return
		}
		m.apply(edit.Drag{Offset: m.hitTest(msg.X, msg.Y)})
	case tea.MouseActionRelease:
		m.dragging = false
	}
}

func (m Model) inTextArea(y int) bool {
	if y < headerHeight {
		return false
	}
	h := m.textHeight()
	return h == 0 || y < headerHeight+h
}

func (m Model) hitTest(x, y int) int {
	return m.layout.HitTest(m.ctx, m.snap.Text, y-headerHeight+m.scroll, x)
}

func (m *Model) apply(action edit.Action) {
	m.snap = m.sess.Apply(m.ctx, action)
	for _, offset := range m.snap.Rejected {
		m.pushDiagnostic(fmt.Sprintf("%s: caret rejected at offset %d", action.ID(), offset))
	}
	m.ensureVisible()
}

func (m *Model) pushDiagnostic(line string) {
	m.diagnostics = append(m.diagnostics, line)
	if over := len(m.diagnostics) - m.diagLimit; over > 0 {
		m.diagnostics = m.diagnostics[over:]
	}
}

// ensureVisible scrolls so the active end of the selection is on screen.
func (m *Model) ensureVisible() {
	h := m.textHeight()
	if h <= 0 {
		return
	}
	row, _ := m.layout.Position(m.ctx, m.snap.Text, m.snap.Selection.End)
	if row < m.scroll {
		m.scroll = row
	}
	if row >= m.scroll+h {
		m.scroll = row - h + 1
	}
}

// textHeight is the number of rows available for the buffer, or 0 before
// the first WindowSizeMsg.
func (m Model) textHeight() int {
	if m.height <= 0 {
		return 0
	}
	used := headerHeight + 1 + lipgloss.Height(m.help.View(m.keys))
	if m.showDiagnostics {
		used += m.diagLimit + 1
	}
	return max(m.height-used, 1)
}
