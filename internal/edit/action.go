package edit

import "github.com/zjrosen/textstate/internal/text"

// Action is one discrete edit request from the host. The set of actions is
// closed: every implementation lives in this file and Engine.Do handles each
// of them.
type Action interface {
	// ID returns a hierarchical identifier used for logging and tracing,
	// e.g. "insert.text", "delete.backward", "pointer.click".
	ID() string

	// ChangesContent reports whether the action can modify the buffer.
	ChangesContent() bool

	isAction()
}

// Modifiers is the set of modifier keys held during a pointer action.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Shift reports whether shift was held.
func (m Modifiers) Shift() bool { return m&ModShift != 0 }

// ============================================================================
// Base structs for reducing boilerplate in Action implementations
// ============================================================================

type contentBase struct{}

func (contentBase) ChangesContent() bool { return true }
func (contentBase) isAction()            {}

type selectionBase struct{}

func (selectionBase) ChangesContent() bool { return false }
func (selectionBase) isAction()            {}

// ============================================================================
// Content actions
// ============================================================================

// Insert types text at the selection, replacing any selected content.
type Insert struct {
	contentBase
	Text string
}

func (Insert) ID() string { return "insert.text" }

// Paste inserts a pasted payload. It edits exactly like Insert.
type Paste struct {
	contentBase
	Text string
}

func (Paste) ID() string { return "insert.paste" }

// Backspace deletes the grapheme before the caret, or the selected range.
type Backspace struct{ contentBase }

func (Backspace) ID() string { return "delete.backward" }

// Delete deletes the grapheme after the caret, or the selected range.
type Delete struct{ contentBase }

func (Delete) ID() string { return "delete.forward" }

// JumpBackspace extends the selection by Movement, then deletes backward.
type JumpBackspace struct {
	contentBase
	Movement text.Movement
}

func (JumpBackspace) ID() string { return "delete.jump_backward" }

// JumpDelete extends the selection by Movement, then deletes forward.
type JumpDelete struct {
	contentBase
	Movement text.Movement
}

func (JumpDelete) ID() string { return "delete.jump_forward" }

// ============================================================================
// Selection actions
// ============================================================================

// Move collapses the selection to a caret at the movement target.
type Move struct {
	selectionBase
	Movement text.Movement
}

func (Move) ID() string { return "move.caret" }

// ModifySelection moves the active end, keeping the anchor.
type ModifySelection struct {
	selectionBase
	Movement text.Movement
}

func (ModifySelection) ID() string { return "move.extend" }

// SelectAll selects the whole buffer.
type SelectAll struct{ selectionBase }

func (SelectAll) ID() string { return "select.all" }

// Click is a pointer press already resolved to a buffer offset.
type Click struct {
	selectionBase
	Offset int
	Mods   Modifiers
}

func (Click) ID() string { return "pointer.click" }

// Drag is pointer motion with the button held, resolved to a buffer offset.
type Drag struct {
	selectionBase
	Offset int
}

func (Drag) ID() string { return "pointer.drag" }
