// Package edit implements the edit engine: the action dispatcher and the
// primitives it is built from (insert, caret placement, movement, backward
// and forward deletion).
//
// The engine is synchronous and keeps no state of its own between calls.
// The selection and buffer belong to the caller, who must serialise calls
// for a given session.
package edit

import (
	"errors"
	"fmt"

	"github.com/zjrosen/textstate/internal/log"
	"github.com/zjrosen/textstate/internal/text"
)

// ErrResolverContract is the panic value (wrapped) raised when invariant
// checking is on and the movement resolver returns an out-of-bounds or
// misaligned selection.
var ErrResolverContract = errors.New("movement resolver returned invalid selection")

// Config configures an Engine. Zero fields get defaults.
type Config struct {
	// Resolver computes selections for movements. Default: text.ResolveMovement.
	Resolver text.MovementFunc

	// DeleteBoundary picks where a backspace starts. Default: text.OffsetForDeleteBackwards.
	DeleteBoundary text.DeleteBoundaryFunc

	// Diagnostics receives rejected caret placements. Default: LogDiagnostics.
	Diagnostics Diagnostics

	// CheckInvariants asserts that resolver output is in bounds and on
	// grapheme boundaries. Meant for tests and debug builds.
	CheckInvariants bool
}

// Engine applies edit actions to a selection and a buffer.
type Engine struct {
	resolver        text.MovementFunc
	deleteBoundary  text.DeleteBoundaryFunc
	diag            Diagnostics
	checkInvariants bool
}

// NewEngine creates an engine from cfg.
func NewEngine(cfg Config) *Engine {
	e := &Engine{
		resolver:        cfg.Resolver,
		deleteBoundary:  cfg.DeleteBoundary,
		diag:            cfg.Diagnostics,
		checkInvariants: cfg.CheckInvariants,
	}
	if e.resolver == nil {
		e.resolver = text.ResolveMovement
	}
	if e.deleteBoundary == nil {
		e.deleteBoundary = text.OffsetForDeleteBackwards
	}
	if e.diag == nil {
		e.diag = LogDiagnostics{Category: log.CatCaret}
	}
	return e
}

// Do applies action to sel and buf. It never fails: invalid caret placements
// are reported to Diagnostics and otherwise ignored.
func (e *Engine) Do(sel *text.Selection, action Action, buf text.EditableText) {
	switch a := action.(type) {
	case Insert:
		e.Insert(sel, buf, a.Text)
	case Paste:
		e.Insert(sel, buf, a.Text)
	case Backspace:
		e.DeleteBackward(sel, buf)
	case Delete:
		e.DeleteForward(sel, buf)
	case JumpBackspace:
		e.MoveSelection(sel, a.Movement, buf, true)
		e.DeleteBackward(sel, buf)
	case JumpDelete:
		e.MoveSelection(sel, a.Movement, buf, true)
		e.DeleteForward(sel, buf)
	case Move:
		e.MoveSelection(sel, a.Movement, buf, false)
	case ModifySelection:
		e.MoveSelection(sel, a.Movement, buf, true)
	case SelectAll:
		*sel = text.All(buf)
	case Click:
		if a.Mods.Shift() {
			sel.End = a.Offset
		} else {
			e.CaretTo(sel, buf, a.Offset)
		}
	case Drag:
		// Unlike Click, drag offsets are not validated.
		sel.End = a.Offset
	default:
		// Unreachable while Action stays sealed.
		log.Error(log.CatEdit, "unhandled edit action", "type", fmt.Sprintf("%T", action))
	}
}

// Insert replaces the selected range (empty for a caret) with s and leaves a
// caret after the inserted text.
func (e *Engine) Insert(sel *text.Selection, buf text.EditableText, s string) {
	// The buffer may have been changed since sel was last validated.
	*sel = sel.ConstrainTo(buf)

	buf.ReplaceRange(sel.Range(), s)
	// s can join with the cluster after it; the caret goes past the joined
	// cluster.
	*sel = text.Caret(text.BoundaryAtOrAfter(buf, sel.Min()+len(s)))
}

// CaretTo moves sel to a caret at offset if offset is a grapheme boundary of
// buf. Otherwise sel is left alone, one diagnostic is emitted and false is
// returned.
func (e *Engine) CaretTo(sel *text.Selection, buf text.EditableText, offset int) bool {
	if !buf.IsGraphemeBoundary(offset) {
		e.diag.Warn("cannot place caret at non-boundary offset", "offset", offset, "len", buf.Len())
		return false
	}
	*sel = text.Caret(offset)
	return true
}

// MoveSelection replaces sel with the resolver's result for m. The result is
// trusted unless the engine was built with CheckInvariants.
func (e *Engine) MoveSelection(sel *text.Selection, m text.Movement, buf text.EditableText, modify bool) {
	next := e.resolver(m, *sel, buf, modify)
	if e.checkInvariants && (!next.InBounds(buf) || !next.OnBoundaries(buf)) {
		panic(fmt.Errorf("%w: %s from %+v gave %+v (len %d)", ErrResolverContract, m, *sel, next, buf.Len()))
	}
	*sel = next
}

// DeleteBackward removes the grapheme cluster before a caret, or the selected
// range, and leaves a caret where the removed content began.
func (e *Engine) DeleteBackward(sel *text.Selection, buf text.EditableText) {
	if sel.IsCaret() {
		*sel = sel.ConstrainTo(buf)
		cursor := sel.End
		newCursor := e.deleteBoundary(*sel, buf)
		buf.ReplaceRange(text.Range{Start: newCursor, End: cursor}, "")
		e.placeCaret(sel, buf, newCursor)
		return
	}
	start := sel.Min()
	buf.ReplaceRange(sel.Range(), "")
	e.placeCaret(sel, buf, start)
}

// placeCaret moves sel to a caret at offset after a deletion. Removing text
// can join the clusters on either side of offset; when CaretTo rejects the
// offset for that reason the caret goes to the start of the joined cluster.
func (e *Engine) placeCaret(sel *text.Selection, buf text.EditableText, offset int) {
	if !e.CaretTo(sel, buf, offset) {
		*sel = text.Caret(text.BoundaryAtOrBefore(buf, offset))
	}
}

// DeleteForward removes the grapheme cluster after a caret, or the selected
// range. A caret at the end of the buffer is left as is.
func (e *Engine) DeleteForward(sel *text.Selection, buf text.EditableText) {
	if !sel.IsCaret() {
		e.DeleteBackward(sel, buf)
		return
	}
	// Content before the caret is never touched.
	if _, ok := buf.NextGraphemeOffset(sel.End); !ok {
		return
	}
	e.MoveSelection(sel, text.Right, buf, false)
	e.DeleteBackward(sel, buf)
}
