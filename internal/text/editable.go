// Package text provides the text model used by the edit engine: selections,
// the EditableText capability, a grapheme-aware string buffer, the default
// movement resolver and the backspace boundary rule.
//
// Offset units:
//
// All offsets in this package are UTF-8 byte offsets into the buffer, the
// same units ReplaceRange addresses content with. A single grapheme cluster
// can span many bytes (e.g. "e" + U+0301, or a ZWJ emoji family), so an
// offset is only a valid cursor position when it also falls on a grapheme
// cluster boundary.
package text

// EditableText is the minimal capability the edit engine needs from a text
// buffer. Implementations own their storage; the engine never looks inside.
type EditableText interface {
	// Len returns the length of the content in bytes.
	Len() int

	// IsGraphemeBoundary reports whether offset lies between two grapheme
	// clusters. 0 and Len() are always boundaries; offsets outside the
	// content never are.
	IsGraphemeBoundary(offset int) bool

	// NextGraphemeOffset returns the end of the grapheme cluster starting at
	// offset, or false when offset is at (or past) the end of the content.
	NextGraphemeOffset(offset int) (int, bool)

	// ReplaceRange replaces the bytes in r with s.
	ReplaceRange(r Range, s string)
}

// Navigator is implemented by buffers that can answer the richer queries
// used by the default movement resolver. Buffers that only implement
// EditableText still work; the resolver falls back to boundary scanning.
type Navigator interface {
	EditableText

	PrevGraphemeOffset(offset int) (int, bool)
	PrevWordOffset(offset int) (int, bool)
	NextWordOffset(offset int) (int, bool)
	PrecedingLineBreak(offset int) int
	NextLineBreak(offset int) int
	Slice(r Range) string
}
