package playground

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/textstate/internal/edit"
	"github.com/zjrosen/textstate/internal/log"
	"github.com/zjrosen/textstate/internal/pubsub"
	"github.com/zjrosen/textstate/internal/session"
	"github.com/zjrosen/textstate/internal/text"
)

func newTestModel(t *testing.T, initial string) Model {
	t.Helper()
	sess := session.New(initial, session.WithEngineConfig(edit.Config{
		CheckInvariants: true,
		Diagnostics:     edit.DiagnosticsFunc(func(string, ...any) {}),
	}))
	t.Cleanup(sess.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	m := New(ctx, sess, Config{TabWidth: 4, LayoutCacheTTL: time.Minute})
	return update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func keyMsg(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func TestNew_ShowsSessionState(t *testing.T) {
	m := newTestModel(t, "hello")
	require.Equal(t, "hello", m.Snapshot().Text)
	require.Equal(t, text.Caret(5), m.Snapshot().Selection)
	require.NotNil(t, m.Init())
}

func TestUpdate_TypingAndEditing(t *testing.T) {
	m := newTestModel(t, "")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hello")})
	m = update(t, m, keyMsg(tea.KeySpace))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("world")})
	require.Equal(t, "hello world", m.Snapshot().Text)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace, Alt: true})
	require.Equal(t, "hello ", m.Snapshot().Text)
	require.Equal(t, "delete.jump_backward", m.Snapshot().LastAction)

	m = update(t, m, keyMsg(tea.KeyBackspace))
	require.Equal(t, "hello", m.Snapshot().Text)

	m = update(t, m, keyMsg(tea.KeyEnter))
	require.Equal(t, "hello\n", m.Snapshot().Text)

	m = update(t, m, keyMsg(tea.KeyTab))
	require.Equal(t, "hello\n\t", m.Snapshot().Text)
}

func TestUpdate_MovementAndSelection(t *testing.T) {
	m := newTestModel(t, "one two")

	m = update(t, m, keyMsg(tea.KeyCtrlShiftLeft))
	require.Equal(t, text.NewSelection(7, 4), m.Snapshot().Selection)

	m = update(t, m, keyMsg(tea.KeyLeft))
	require.Equal(t, text.Caret(4), m.Snapshot().Selection, "left collapses the range")

	m = update(t, m, keyMsg(tea.KeyHome))
	require.Equal(t, text.Caret(0), m.Snapshot().Selection)

	m = update(t, m, keyMsg(tea.KeyShiftEnd))
	require.Equal(t, text.NewSelection(0, 7), m.Snapshot().Selection)

	m = update(t, m, keyMsg(tea.KeyDelete))
	require.Empty(t, m.Snapshot().Text)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("abc")})
	m = update(t, m, keyMsg(tea.KeyCtrlA))
	require.Equal(t, text.NewSelection(0, 3), m.Snapshot().Selection)
}

func TestUpdate_Paste(t *testing.T) {
	m := newTestModel(t, "ab")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("xy"), Paste: true})
	require.Equal(t, "abxy", m.Snapshot().Text)
	require.Equal(t, "insert.paste", m.Snapshot().LastAction)
}

func TestUpdate_AltRunesIgnored(t *testing.T) {
	m := newTestModel(t, "ab")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("z"), Alt: true})
	require.Equal(t, "ab", m.Snapshot().Text)
}

func TestUpdate_Quit(t *testing.T) {
	m := newTestModel(t, "")
	_, cmd := m.Update(keyMsg(tea.KeyEsc))
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestUpdate_MouseClickAndDrag(t *testing.T) {
	m := newTestModel(t, "ab\n日本")

	press := func(x, y int, shift bool) tea.MouseMsg {
		return tea.MouseMsg{X: x, Y: y, Shift: shift, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	}

	m = update(t, m, press(1, headerHeight, false))
	require.Equal(t, text.Caret(1), m.Snapshot().Selection)

	m = update(t, m, tea.MouseMsg{X: 2, Y: headerHeight + 1, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	require.Equal(t, text.NewSelection(1, 6), m.Snapshot().Selection)

	m = update(t, m, tea.MouseMsg{X: 2, Y: headerHeight + 1, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	m = update(t, m, tea.MouseMsg{X: 0, Y: headerHeight, Action: tea.MouseActionMotion})
	require.Equal(t, text.NewSelection(1, 6), m.Snapshot().Selection, "motion without a press is ignored")

	m = update(t, m, press(0, headerHeight, false))
	m = update(t, m, press(3, headerHeight+1, true))
	require.Equal(t, text.NewSelection(0, 9), m.Snapshot().Selection, "right half of a wide cell lands after it")

	m = update(t, m, press(0, 0, false))
	require.Equal(t, text.NewSelection(0, 9), m.Snapshot().Selection, "header clicks are ignored")
}

func TestApply_RejectedCaretShownInDiagnostics(t *testing.T) {
	m := newTestModel(t, "ae\u0301")
	m.apply(edit.Click{Offset: 2})

	require.Equal(t, []string{"pointer.click: caret rejected at offset 2"}, m.Diagnostics())
	require.Contains(t, m.View(), "rejected [2]")
}

func TestDiagnostics_Bounded(t *testing.T) {
	m := newTestModel(t, "")
	for i := range 10 {
		m.pushDiagnostic(string(rune('a' + i)))
	}
	require.Equal(t, []string{"f", "g", "h", "i", "j"}, m.Diagnostics())
}

func TestUpdate_OutOfBandSnapshot(t *testing.T) {
	m := newTestModel(t, "old")

	m = update(t, m, pubsub.Event[session.Snapshot]{
		Type:    pubsub.ReplacedEvent,
		Payload: session.Snapshot{Text: "new text", Selection: text.Caret(3), Revision: 9},
	})
	require.Equal(t, "new text", m.Snapshot().Text)
	require.Equal(t, text.Caret(3), m.Snapshot().Selection)
}

func TestView_RendersBufferAndStatus(t *testing.T) {
	m := newTestModel(t, "first\nsecond")
	view := m.View()
	require.Contains(t, view, "first")
	require.Contains(t, view, "second")
	require.Contains(t, view, "sel 12..12")
	require.Contains(t, view, "rev 0")
}

func TestView_ScrollsToCaret(t *testing.T) {
	m := newTestModel(t, "")
	m = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 8})
	for i := range 20 {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{rune('a' + i)}})
		m = update(t, m, keyMsg(tea.KeyEnter))
	}
	view := m.View()
	require.Contains(t, view, "t")
	require.NotContains(t, view, "\na\n")
	require.Positive(t, m.scroll)
}

func TestToggleDiagnosticsAndHelp(t *testing.T) {
	m := newTestModel(t, "")
	require.False(t, m.showDiagnostics)
	m = update(t, m, keyMsg(tea.KeyF2))
	require.True(t, m.showDiagnostics)
	require.Contains(t, m.View(), "debug logging off")

	m = update(t, m, keyMsg(tea.KeyF1))
	require.True(t, m.help.ShowAll)
}

func TestUpdate_LogEvents(t *testing.T) {
	m := newTestModel(t, "")

	m = update(t, m, log.LogEvent{
		Type:    pubsub.LoggedEvent,
		Payload: log.Entry{Level: log.LevelInfo, Category: log.CatSession, Msg: "session created", Fields: []log.Field{{Key: "len", Value: 0}}},
	})
	m = update(t, m, log.LogEvent{
		Type:    pubsub.LoggedEvent,
		Payload: log.Entry{Level: log.LevelWarn, Category: log.CatCaret, Msg: "caret rejected"},
	})

	require.Equal(t, []string{"[INFO] [session] session created len=0"}, m.Diagnostics(),
		"caret warnings are reported by the model itself")
}
