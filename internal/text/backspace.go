package text

// DeleteBoundaryFunc computes where a backspace starts deleting from.
type DeleteBoundaryFunc func(s Selection, t EditableText) int

// OffsetForDeleteBackwards returns the start of the content a single
// backspace removes. For a caret this is the previous grapheme cluster
// boundary, so a base letter with its combining marks, a ZWJ emoji sequence
// or a flag pair is removed as one unit. For a range it is the range start.
//
// A caret inside a cluster is treated as sitting at the cluster's start.
func OffsetForDeleteBackwards(s Selection, t EditableText) int {
	if !s.IsCaret() {
		return s.Min()
	}
	end := BoundaryAtOrBefore(t, s.End)
	if end <= 0 {
		return 0
	}
	if nav, ok := t.(Navigator); ok {
		prev, _ := nav.PrevGraphemeOffset(end)
		return prev
	}
	return PrevBoundary(t, end)
}
