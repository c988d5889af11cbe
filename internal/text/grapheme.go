package text

import (
	"iter"
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Character classes used for word motion.
const (
	graphemeWhitespace = iota
	graphemeWord
	graphemePunctuation
)

// GraphemeCount returns the number of grapheme clusters in s.
// For example: "hello" = 5, "é" = 1, "👨‍👩‍👧‍👦" = 1.
func GraphemeCount(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// Boundaries returns every grapheme cluster boundary in s as ascending byte
// offsets, including 0 and len(s).
func Boundaries(s string) []int {
	out := make([]int, 1, len(s)+1)
	for off, cluster := range Clusters(s) {
		out = append(out, off+len(cluster))
	}
	return out
}

// GraphemeDisplayWidth returns the terminal cell width of one cluster.
func GraphemeDisplayWidth(cluster string) int {
	if cluster == "" {
		return 0
	}
	return runewidth.StringWidth(cluster)
}

// graphemeType classifies a cluster by its first rune. Letters, digits and
// '_' are word characters; emoji count as punctuation.
func graphemeType(cluster string) int {
	for _, r := range cluster {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			return graphemeWhitespace
		case r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r):
			return graphemeWord
		default:
			return graphemePunctuation
		}
	}
	return graphemeWhitespace
}

// Clusters yields each grapheme cluster of s with its starting byte offset.
//
//	for off, cluster := range text.Clusters("éx") { ... }
func Clusters(s string) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		state, off := -1, 0
		for rest := s; rest != ""; {
			var cluster string
			cluster, rest, _, state = uniseg.StepString(rest, state)
			if !yield(off, cluster) {
				return
			}
			off += len(cluster)
		}
	}
}
