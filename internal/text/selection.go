package text

// Range is a half-open byte range [Start, End) into a text buffer.
type Range struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// IsEmpty reports whether the range covers no bytes.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// Selection is a caret or a range selection measured in UTF-8 byte offsets.
//
// Start is the anchor: it stays fixed while a selection is being extended.
// End is the active end: it is the side moved by movements, drags and
// shift-clicks. The two ends may appear in either order.
type Selection struct {
	Start int
	End   int
}

// NewSelection returns a selection anchored at start with its active end at end.
func NewSelection(start, end int) Selection {
	return Selection{Start: start, End: end}
}

// Caret returns a zero-width selection at offset.
func Caret(offset int) Selection {
	return Selection{Start: offset, End: offset}
}

// All returns a selection covering the whole of t.
func All(t EditableText) Selection {
	return Selection{Start: 0, End: t.Len()}
}

// IsCaret reports whether the anchor and the active end coincide.
func (s Selection) IsCaret() bool {
	return s.Start == s.End
}

// Min returns the smaller of the two ends.
func (s Selection) Min() int {
	return min(s.Start, s.End)
}

// Max returns the larger of the two ends.
func (s Selection) Max() int {
	return max(s.Start, s.End)
}

// Range returns the selected bytes as an ordered half-open range.
func (s Selection) Range() Range {
	return Range{Start: s.Min(), End: s.Max()}
}

// InBounds reports whether both ends lie within [0, t.Len()].
func (s Selection) InBounds(t EditableText) bool {
	return s.Min() >= 0 && s.Max() <= t.Len()
}

// OnBoundaries reports whether both ends sit on grapheme cluster boundaries of t.
func (s Selection) OnBoundaries(t EditableText) bool {
	return t.IsGraphemeBoundary(s.Start) && t.IsGraphemeBoundary(s.End)
}

// ConstrainTo clamps both ends into [0, t.Len()] and snaps each end back to
// the nearest grapheme boundary at or before it.
//
// The buffer can be changed behind the selection's back, so callers that are
// about to edit use this to avoid handing an invalid range to ReplaceRange.
func (s Selection) ConstrainTo(t EditableText) Selection {
	return Selection{
		Start: BoundaryAtOrBefore(t, s.Start),
		End:   BoundaryAtOrBefore(t, s.End),
	}
}

// BoundaryAtOrBefore clamps offset into [0, t.Len()] and returns the nearest
// grapheme boundary at or before it.
func BoundaryAtOrBefore(t EditableText, offset int) int {
	offset = max(0, min(offset, t.Len()))
	for offset > 0 && !t.IsGraphemeBoundary(offset) {
		offset--
	}
	return offset
}

// BoundaryAtOrAfter clamps offset into [0, t.Len()] and returns the nearest
// grapheme boundary at or after it.
func BoundaryAtOrAfter(t EditableText, offset int) int {
	offset = max(0, min(offset, t.Len()))
	for offset < t.Len() && !t.IsGraphemeBoundary(offset) {
		offset++
	}
	return offset
}
