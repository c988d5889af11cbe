package text

import (
	"slices"
	"strings"
)

// Buffer is a grapheme-aware string buffer implementing EditableText and
// Navigator. Boundary queries are answered from a boundary table that is
// rebuilt lazily after each mutation.
//
// A Buffer is not safe for concurrent use.
type Buffer struct {
	s          string
	boundaries []int // nil when stale
}

// NewBuffer returns a buffer holding s.
func NewBuffer(s string) *Buffer {
	return &Buffer{s: s}
}

// String returns the current content.
func (b *Buffer) String() string {
	return b.s
}

// SetString replaces the whole content.
func (b *Buffer) SetString(s string) {
	b.s = s
	b.boundaries = nil
}

// Len returns the content length in bytes.
func (b *Buffer) Len() int {
	return len(b.s)
}

// Slice returns the content covered by r.
func (b *Buffer) Slice(r Range) string {
	return b.s[r.Start:r.End]
}

// ReplaceRange replaces the bytes in r with s.
// It panics if r is out of bounds or reversed, like a slice expression.
func (b *Buffer) ReplaceRange(r Range, s string) {
	b.s = b.s[:r.Start] + s + b.s[r.End:]
	b.boundaries = nil
}

func (b *Buffer) table() []int {
	if b.boundaries == nil {
		b.boundaries = Boundaries(b.s)
	}
	return b.boundaries
}

// IsGraphemeBoundary reports whether offset lies between two grapheme clusters.
func (b *Buffer) IsGraphemeBoundary(offset int) bool {
	if offset < 0 || offset > len(b.s) {
		return false
	}
	_, found := slices.BinarySearch(b.table(), offset)
	return found
}

// NextGraphemeOffset returns the first boundary after offset.
func (b *Buffer) NextGraphemeOffset(offset int) (int, bool) {
	if offset >= len(b.s) {
		return 0, false
	}
	t := b.table()
	i, found := slices.BinarySearch(t, offset)
	if found {
		i++
	}
	return t[i], true
}

// PrevGraphemeOffset returns the last boundary before offset.
func (b *Buffer) PrevGraphemeOffset(offset int) (int, bool) {
	if offset <= 0 {
		return 0, false
	}
	offset = min(offset, len(b.s))
	t := b.table()
	i, _ := slices.BinarySearch(t, offset)
	return t[i-1], true
}

// PrevWordOffset returns the start of the word before offset, skipping any
// whitespace directly in front of it.
func (b *Buffer) PrevWordOffset(offset int) (int, bool) {
	if offset <= 0 {
		return 0, false
	}
	offset = min(offset, len(b.s))
	t := b.table()
	i, _ := slices.BinarySearch(t, offset)

	// t[i-1]..t[i] is the cluster just before the cursor.
	for i > 0 && graphemeType(b.s[t[i-1]:t[i]]) == graphemeWhitespace {
		i--
	}
	if i == 0 {
		return 0, true
	}
	class := graphemeType(b.s[t[i-1]:t[i]])
	for i > 0 && graphemeType(b.s[t[i-1]:t[i]]) == class {
		i--
	}
	return t[i], true
}

// NextWordOffset returns the end of the word after offset, skipping any
// whitespace directly after it.
func (b *Buffer) NextWordOffset(offset int) (int, bool) {
	if offset >= len(b.s) {
		return 0, false
	}
	offset = max(offset, 0)
	t := b.table()
	i, found := slices.BinarySearch(t, offset)
	if !found {
		i--
	}

	last := len(t) - 1
	for i < last && graphemeType(b.s[t[i]:t[i+1]]) == graphemeWhitespace {
		i++
	}
	if i == last {
		return len(b.s), true
	}
	class := graphemeType(b.s[t[i]:t[i+1]])
	for i < last && graphemeType(b.s[t[i]:t[i+1]]) == class {
		i++
	}
	return t[i], true
}

// PrecedingLineBreak returns the start of the line containing offset.
func (b *Buffer) PrecedingLineBreak(offset int) int {
	offset = max(0, min(offset, len(b.s)))
	return strings.LastIndexByte(b.s[:offset], '\n') + 1
}

// NextLineBreak returns the end of the line containing offset, which is the
// offset of its line terminator or Len() on the last line. A "\r\n" pair is
// one grapheme cluster, so the line ends before the "\r".
func (b *Buffer) NextLineBreak(offset int) int {
	offset = max(0, min(offset, len(b.s)))
	i := strings.IndexByte(b.s[offset:], '\n')
	if i < 0 {
		return len(b.s)
	}
	end := offset + i
	if end > offset && b.s[end-1] == '\r' {
		end--
	}
	return end
}
