package text

import (
	"errors"
	"fmt"
)

// ErrUnknownMovement is returned by ParseMovement for names it does not know.
var ErrUnknownMovement = errors.New("unknown movement")

// Movement is a kind of cursor motion.
type Movement int

const (
	Left Movement = iota
	Right
	Up
	Down
	LeftWord
	RightWord
	PrecedingLineBreak
	NextLineBreak
	StartOfDocument
	EndOfDocument
)

var movementNames = [...]string{
	Left:               "left",
	Right:              "right",
	Up:                 "up",
	Down:               "down",
	LeftWord:           "left_word",
	RightWord:          "right_word",
	PrecedingLineBreak: "preceding_line_break",
	NextLineBreak:      "next_line_break",
	StartOfDocument:    "start_of_document",
	EndOfDocument:      "end_of_document",
}

func (m Movement) String() string {
	if m < 0 || int(m) >= len(movementNames) {
		return fmt.Sprintf("movement(%d)", int(m))
	}
	return movementNames[m]
}

// ParseMovement returns the movement with the given snake_case name.
func ParseMovement(name string) (Movement, error) {
	for i, n := range movementNames {
		if n == name {
			return Movement(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMovement, name)
}

// MovementFunc computes the selection that results from applying a movement.
// Implementations must return a selection that is in bounds and whose ends
// sit on grapheme boundaries; the engine does not re-check.
type MovementFunc func(m Movement, s Selection, t EditableText, modify bool) Selection

// ResolveMovement is the default MovementFunc.
//
// When modify is false the result is a caret at the movement target. When
// modify is true the anchor is kept and only the active end moves. Left,
// Right and the word motions on a range without modify collapse it to the
// corresponding edge instead of moving.
func ResolveMovement(m Movement, s Selection, t EditableText, modify bool) Selection {
	nav, _ := t.(Navigator)
	collapse := !s.IsCaret() && !modify

	var offset int
	switch m {
	case Left:
		if collapse {
			offset = s.Min()
		} else {
			offset = prevOffset(nav, t, s.End)
		}
	case Right:
		if collapse {
			offset = s.Max()
		} else if next, ok := t.NextGraphemeOffset(s.End); ok {
			offset = next
		} else {
			offset = s.End
		}
	case LeftWord:
		switch {
		case collapse:
			offset = s.Min()
		case nav != nil:
			offset, _ = nav.PrevWordOffset(s.End)
		default:
			offset = prevOffset(nil, t, s.End)
		}
	case RightWord:
		offset = s.End
		switch {
		case collapse:
			offset = s.Max()
		case nav != nil:
			if next, ok := nav.NextWordOffset(s.End); ok {
				offset = next
			}
		default:
			if next, ok := t.NextGraphemeOffset(s.End); ok {
				offset = next
			}
		}
	case Up:
		offset = verticalOffset(nav, t, s.End, -1)
	case Down:
		offset = verticalOffset(nav, t, s.End, 1)
	case PrecedingLineBreak:
		if nav != nil {
			offset = nav.PrecedingLineBreak(s.End)
		}
	case NextLineBreak:
		offset = t.Len()
		if nav != nil {
			offset = nav.NextLineBreak(s.End)
		}
	case StartOfDocument:
		offset = 0
	case EndOfDocument:
		offset = t.Len()
	default:
		offset = s.End
	}

	start := offset
	if modify {
		start = s.Start
	}
	return Selection{Start: start, End: offset}
}

func prevOffset(nav Navigator, t EditableText, offset int) int {
	if nav != nil {
		prev, _ := nav.PrevGraphemeOffset(offset)
		return prev
	}
	return PrevBoundary(t, offset)
}

// PrevBoundary returns the last grapheme boundary strictly before offset,
// or 0. It only needs IsGraphemeBoundary, so it works with any EditableText.
func PrevBoundary(t EditableText, offset int) int {
	offset = min(offset, t.Len())
	for offset--; offset > 0; offset-- {
		if t.IsGraphemeBoundary(offset) {
			return offset
		}
	}
	return 0
}

// verticalOffset moves to the same grapheme column on the line above
// (dir < 0) or below (dir > 0), clamped to that line's length. Moving up
// from the first line goes to 0; moving down from the last goes to Len().
func verticalOffset(nav Navigator, t EditableText, offset, dir int) int {
	if nav == nil {
		if dir < 0 {
			return 0
		}
		return t.Len()
	}

	lineStart := nav.PrecedingLineBreak(offset)
	column := GraphemeCount(nav.Slice(Range{Start: lineStart, End: offset}))

	var target int
	if dir < 0 {
		if lineStart == 0 {
			return 0
		}
		target = nav.PrecedingLineBreak(lineStart - 1)
	} else {
		lineEnd := nav.NextLineBreak(offset)
		if lineEnd == t.Len() {
			return t.Len()
		}
		next, _ := nav.NextGraphemeOffset(lineEnd)
		target = next
	}

	targetEnd := nav.NextLineBreak(target)
	for ; column > 0 && target < targetEnd; column-- {
		target, _ = nav.NextGraphemeOffset(target)
	}
	return target
}
