package edit

import (
	"slices"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/textstate/internal/text"
)

func TestDo_InsertAndPaste(t *testing.T) {
	e, _ := newTestEngine(t)
	buf := text.NewBuffer("hello")
	sel := text.Caret(5)

	e.Do(&sel, Insert{Text: " world"}, buf)
	require.Equal(t, "hello world", buf.String())
	require.Equal(t, text.Caret(11), sel)

	e.Do(&sel, Paste{Text: "!"}, buf)
	require.Equal(t, "hello world!", buf.String())
	require.Equal(t, text.Caret(12), sel)
}

func TestDo_RepeatedBackspace(t *testing.T) {
	e, _ := newTestEngine(t)
	buf := text.NewBuffer("hello")
	sel := text.Caret(5)

	e.Do(&sel, Backspace{}, buf)
	require.Equal(t, "hell", buf.String())
	require.Equal(t, text.Caret(4), sel)

	for i := 0; i < 4; i++ {
		e.Do(&sel, Backspace{}, buf)
	}
	require.Equal(t, "", buf.String())
	require.Equal(t, text.Caret(0), sel)

	// Backspace on an empty buffer stays put.
	e.Do(&sel, Backspace{}, buf)
	require.Equal(t, text.Caret(0), sel)
}

func TestDo_Delete(t *testing.T) {
	e, _ := newTestEngine(t)
	buf := text.NewBuffer("ab")
	sel := text.Caret(0)

	e.Do(&sel, Delete{}, buf)
	require.Equal(t, "b", buf.String())
	require.Equal(t, text.Caret(0), sel)
}

func TestDo_JumpBackspace(t *testing.T) {
	e, _ := newTestEngine(t)
	buf := text.NewBuffer("hello brave world")
	sel := text.Caret(17)

	e.Do(&sel, JumpBackspace{Movement: text.LeftWord}, buf)

	require.Equal(t, "hello brave ", buf.String())
	require.Equal(t, text.Caret(12), sel)
}

func TestDo_JumpDelete(t *testing.T) {
	e, _ := newTestEngine(t)
	buf := text.NewBuffer("hello brave world")
	sel := text.Caret(5)

	e.Do(&sel, JumpDelete{Movement: text.RightWord}, buf)

	require.Equal(t, "hello world", buf.String())
	require.Equal(t, text.Caret(5), sel)
}

func TestDo_JumpBackspace_AtStartDeletesNothing(t *testing.T) {
	e, _ := newTestEngine(t)
	buf := text.NewBuffer("abc")
	sel := text.Caret(0)

	e.Do(&sel, JumpBackspace{Movement: text.PrecedingLineBreak}, buf)

	require.Equal(t, "abc", buf.String())
	require.Equal(t, text.Caret(0), sel)
}

func TestDo_MoveAndModify(t *testing.T) {
	e, _ := newTestEngine(t)
	buf := text.NewBuffer("hello")
	sel := text.Caret(2)

	e.Do(&sel, ModifySelection{Movement: text.Right}, buf)
	e.Do(&sel, ModifySelection{Movement: text.Right}, buf)
	require.Equal(t, text.NewSelection(2, 4), sel)

	e.Do(&sel, Move{Movement: text.Left}, buf)
	require.Equal(t, text.Caret(2), sel, "move without modify collapses to the range start")

	e.Do(&sel, Move{Movement: text.EndOfDocument}, buf)
	require.Equal(t, text.Caret(5), sel)
	require.Equal(t, "hello", buf.String())
}

func TestDo_SelectAll(t *testing.T) {
	e, _ := newTestEngine(t)
	buf := text.NewBuffer("hello")
	sel := text.Caret(2)

	e.Do(&sel, SelectAll{}, buf)
	require.Equal(t, text.NewSelection(0, 5), sel)

	e.Do(&sel, Insert{Text: "bye"}, buf)
	require.Equal(t, "bye", buf.String())
	require.Equal(t, text.Caret(3), sel)
}

func TestDo_Click(t *testing.T) {
	e, diag := newTestEngine(t)
	buf := text.NewBuffer("hello")
	sel := text.Caret(0)

	e.Do(&sel, Click{Offset: 3}, buf)
	require.Equal(t, text.Caret(3), sel)
	diag.AssertNotCalled(t, "Warn", mock.Anything, mock.Anything)
}

func TestDo_ClickInsideClusterIsIgnored(t *testing.T) {
	diag := &mockDiagnostics{}
	diag.On("Warn", mock.Anything, mock.Anything).Once()
	e := NewEngine(Config{Diagnostics: diag})

	buf := text.NewBuffer("ab" + combining)
	sel := text.Caret(1)

	e.Do(&sel, Click{Offset: 3}, buf)

	require.Equal(t, text.Caret(1), sel)
	require.Equal(t, "ab"+combining, buf.String())
	diag.AssertExpectations(t)
}

func TestDo_ShiftClickExtends(t *testing.T) {
	e, _ := newTestEngine(t)
	buf := text.NewBuffer("hello")
	sel := text.Caret(1)

	e.Do(&sel, Click{Offset: 4, Mods: ModShift}, buf)
	require.Equal(t, text.NewSelection(1, 4), sel)

	e.Do(&sel, Click{Offset: 0, Mods: ModShift | ModCtrl}, buf)
	require.Equal(t, text.NewSelection(1, 0), sel)
}

func TestDo_DragIsNotValidated(t *testing.T) {
	e, diag := newTestEngine(t)
	buf := text.NewBuffer("a" + combining)
	sel := text.Caret(0)

	e.Do(&sel, Drag{Offset: 2}, buf)

	require.Equal(t, text.NewSelection(0, 2), sel)
	diag.AssertNotCalled(t, "Warn", mock.Anything, mock.Anything)
}

func TestActionIDs(t *testing.T) {
	actions := []Action{
		Insert{}, Paste{}, Backspace{}, Delete{}, JumpBackspace{}, JumpDelete{},
		Move{}, ModifySelection{}, SelectAll{}, Click{}, Drag{},
	}
	seen := make(map[string]bool)
	for _, a := range actions {
		id := a.ID()
		require.Contains(t, id, ".")
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}

	require.True(t, Insert{}.ChangesContent())
	require.True(t, JumpDelete{}.ChangesContent())
	require.False(t, Move{}.ChangesContent())
	require.False(t, Drag{}.ChangesContent())
}

func TestDo_EditsThatJoinClusters(t *testing.T) {
	right := ModifySelection{Movement: text.Right}
	tests := []struct {
		name    string
		initial string
		sel     text.Selection
		actions []Action
		want    string
		wantSel text.Selection
	}{
		{
			name:    "range delete pulls a mark onto the base",
			initial: "e\n\n\n\n\u0301",
			sel:     text.Caret(1),
			actions: []Action{right, right, right, right, Backspace{}, Backspace{}},
			want:    "e\u0301",
			wantSel: text.Caret(0),
		},
		{
			name:    "backspace pulls a mark onto the base",
			initial: "x\n\u0301",
			sel:     text.Caret(2),
			actions: []Action{Backspace{}, Backspace{}},
			want:    "x\u0301",
			wantSel: text.Caret(0),
		},
		{
			name:    "forward delete pairs regional indicators",
			initial: "\U0001F1FA\n\U0001F1F8",
			sel:     text.Caret(4),
			actions: []Action{Delete{}},
			want:    "\U0001F1FA\U0001F1F8",
			wantSel: text.Caret(0),
		},
		{
			name:    "insert before a lone mark",
			initial: "\u0301",
			sel:     text.Caret(0),
			actions: []Action{Insert{Text: "e"}},
			want:    "e\u0301",
			wantSel: text.Caret(3),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t)
			buf := text.NewBuffer(tt.initial)
			sel := tt.sel

			for _, action := range tt.actions {
				e.Do(&sel, action, buf)
				require.True(t, sel.InBounds(buf), "after %s: %+v len %d", action.ID(), sel, buf.Len())
				require.True(t, sel.OnBoundaries(buf), "after %s: %+v in %q", action.ID(), sel, buf.String())
				require.True(t, utf8.ValidString(buf.String()))
			}
			require.Equal(t, tt.want, buf.String())
			require.Equal(t, tt.wantSel, sel)
		})
	}
}

// ============================================================================
// Properties
// ============================================================================

// clusters never merge with their neighbours, so any concatenation has
// boundaries exactly at the joins.
var clusters = []string{
	"a", "b", "Z", " ", ".", "\n", "日", combining, family, "\U0001F1FA\U0001F1F8",
}

// joining adds a lone combining mark and a lone regional indicator. Either
// can merge with whatever ends up before it once the text between them is
// deleted or an insertion lands next to it.
var joining = append(slices.Clone(clusters), "\u0301", "\U0001F1FA")

var movements = []text.Movement{
	text.Left, text.Right, text.Up, text.Down, text.LeftWord, text.RightWord,
	text.PrecedingLineBreak, text.NextLineBreak, text.StartOfDocument, text.EndOfDocument,
}

func drawText(t *rapid.T, label string) string {
	return drawFrom(t, clusters, label)
}

func drawFrom(t *rapid.T, alphabet []string, label string) string {
	parts := rapid.SliceOfN(rapid.SampledFrom(alphabet), 0, 12).Draw(t, label)
	return strings.Join(parts, "")
}

func drawBoundary(t *rapid.T, buf *text.Buffer, label string) int {
	return rapid.SampledFrom(text.Boundaries(buf.String())).Draw(t, label)
}

// drawAction draws an action the way a host would produce it: pointer
// offsets for drags and shift-clicks are already resolved to boundaries.
func drawAction(t *rapid.T, alphabet []string, buf *text.Buffer) Action {
	switch rapid.IntRange(0, 11).Draw(t, "kind") {
	case 0:
		return Insert{Text: drawFrom(t, alphabet, "insert")}
	case 1:
		return Paste{Text: drawFrom(t, alphabet, "paste")}
	case 2:
		return Backspace{}
	case 3:
		return Delete{}
	case 4:
		return JumpBackspace{Movement: rapid.SampledFrom(movements).Draw(t, "movement")}
	case 5:
		return JumpDelete{Movement: rapid.SampledFrom(movements).Draw(t, "movement")}
	case 6:
		return Move{Movement: rapid.SampledFrom(movements).Draw(t, "movement")}
	case 7:
		return ModifySelection{Movement: rapid.SampledFrom(movements).Draw(t, "movement")}
	case 8:
		return SelectAll{}
	case 9:
		return Click{Offset: rapid.IntRange(-2, buf.Len()+2).Draw(t, "offset")}
	case 10:
		return Click{Offset: drawBoundary(t, buf, "offset"), Mods: ModShift}
	default:
		return Drag{Offset: drawBoundary(t, buf, "offset")}
	}
}

func TestProperty_SelectionStaysValid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := NewEngine(Config{
			CheckInvariants: true,
			Diagnostics:     DiagnosticsFunc(func(string, ...any) {}),
		})
		buf := text.NewBuffer(drawFrom(t, joining, "initial"))
		sel := text.Caret(drawBoundary(t, buf, "caret"))

		steps := rapid.IntRange(1, 30).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			action := drawAction(t, joining, buf)
			e.Do(&sel, action, buf)

			require.True(t, utf8.ValidString(buf.String()), "after %s: %q", action.ID(), buf.String())
			require.GreaterOrEqual(t, sel.Min(), 0, "after %s", action.ID())
			require.LessOrEqual(t, sel.Max(), buf.Len(), "after %s", action.ID())
			require.True(t, sel.OnBoundaries(buf), "after %s: %+v in %q", action.ID(), sel, buf.String())
		}
	})
}

func TestProperty_BackspaceRemovesOneCluster(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := NewEngine(Config{CheckInvariants: true})
		before := drawText(t, "before")
		last := rapid.SampledFrom(clusters).Draw(t, "last")
		buf := text.NewBuffer(before + last)
		sel := text.Caret(buf.Len())

		e.Do(&sel, Backspace{}, buf)

		require.Equal(t, before, buf.String())
		require.Equal(t, text.Caret(len(before)), sel)
	})
}

func TestProperty_SelectionActionsKeepContent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := NewEngine(Config{CheckInvariants: true})
		initial := drawText(t, "initial")
		buf := text.NewBuffer(initial)
		sel := text.Caret(drawBoundary(t, buf, "caret"))

		for i := 0; i < 10; i++ {
			action := drawAction(t, clusters, buf)
			if action.ChangesContent() {
				continue
			}
			e.Do(&sel, action, buf)
			require.Equal(t, initial, buf.String(), "after %s", action.ID())
		}
	})
}
