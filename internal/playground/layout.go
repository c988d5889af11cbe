package playground

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/zjrosen/textstate/internal/cachemanager"
	"github.com/zjrosen/textstate/internal/log"
	"github.com/zjrosen/textstate/internal/text"
)

// LineLayout maps the grapheme boundaries of one line to terminal cells.
// Offsets[i] is a byte offset into the line and Cells[i] the column at which
// the grapheme starting there is drawn. The last entry is the end of line.
type LineLayout struct {
	Offsets []int
	Cells   []int
}

// Width is the total number of cells the line occupies.
func (l LineLayout) Width() int {
	if len(l.Cells) == 0 {
		return 0
	}
	return l.Cells[len(l.Cells)-1]
}

// OffsetAt returns the boundary nearest to column col. A click on the right
// half of a wide grapheme lands after it.
func (l LineLayout) OffsetAt(col int) int {
	if len(l.Offsets) == 0 || col <= 0 {
		return 0
	}
	i := sort.SearchInts(l.Cells, col)
	if i >= len(l.Cells) {
		return l.Offsets[len(l.Offsets)-1]
	}
	if l.Cells[i] == col || i == 0 {
		return l.Offsets[i]
	}
	left, right := l.Cells[i-1], l.Cells[i]
	if col-left < right-col {
		return l.Offsets[i-1]
	}
	return l.Offsets[i]
}

// CellAt returns the column of the boundary at byte offset off, or of the
// nearest boundary before it.
func (l LineLayout) CellAt(off int) int {
	i := sort.SearchInts(l.Offsets, off)
	if i < len(l.Offsets) && l.Offsets[i] == off {
		return l.Cells[i]
	}
	if i == 0 {
		return 0
	}
	return l.Cells[i-1]
}

// layoutLine computes the layout of a single line without its terminator.
// Tabs advance to the next multiple of tabWidth.
func layoutLine(line string, tabWidth int) LineLayout {
	n := text.GraphemeCount(line)
	l := LineLayout{
		Offsets: make([]int, 0, n+1),
		Cells:   make([]int, 0, n+1),
	}
	col := 0
	for off, cluster := range text.Clusters(line) {
		l.Offsets = append(l.Offsets, off)
		l.Cells = append(l.Cells, col)
		col += cellWidth(cluster, col, tabWidth)
	}
	l.Offsets = append(l.Offsets, len(line))
	l.Cells = append(l.Cells, col)
	return l
}

func cellWidth(cluster string, col, tabWidth int) int {
	if cluster == "\t" {
		if tabWidth <= 0 {
			return 0
		}
		return tabWidth - col%tabWidth
	}
	return text.GraphemeDisplayWidth(cluster)
}

// layouter turns screen positions into byte offsets, caching per-line
// layouts keyed by line content.
type layouter struct {
	tabWidth int
	ttl      time.Duration
	cache    *cachemanager.ReadThroughCache[string, LineLayout, string]
}

func newLayouter(tabWidth int, ttl time.Duration) *layouter {
	l := &layouter{tabWidth: tabWidth, ttl: ttl}
	l.cache = cachemanager.NewReadThroughCache[string, LineLayout, string](
		cachemanager.NewInMemoryCacheManager[string, LineLayout]("line-layouts", ttl, cachemanager.DefaultCleanupInterval),
		func(_ context.Context, line string) (LineLayout, error) {
			return layoutLine(line, tabWidth), nil
		},
		ttl <= 0,
	)
	return l
}

// CacheStats reports layout cache effectiveness.
func (l *layouter) CacheStats() cachemanager.Stats {
	return l.cache.Stats()
}

func (l *layouter) layout(ctx context.Context, line string) LineLayout {
	layout, err := l.cache.GetWithRefresh(ctx, line, line, l.ttl)
	if err != nil {
		log.ErrorErr(log.CatCache, "layout failed", err)
		return layoutLine(line, l.tabWidth)
	}
	return layout
}

// docLine is one line of the document without its terminator.
type docLine struct {
	start int
	text  string
}

// splitLines splits content at '\n'. A '\r' before the '\n' is left out of
// the line so that hit-testing past the end never lands inside a CRLF.
func splitLines(content string) []docLine {
	var lines []docLine
	start := 0
	for {
		i := strings.IndexByte(content[start:], '\n')
		if i < 0 {
			lines = append(lines, docLine{start: start, text: content[start:]})
			return lines
		}
		line := content[start : start+i]
		line = strings.TrimSuffix(line, "\r")
		lines = append(lines, docLine{start: start, text: line})
		start += i + 1
	}
}

// HitTest converts a row and column within the text area into a byte offset
// of content. Rows past the last line map to the end of the document.
func (l *layouter) HitTest(ctx context.Context, content string, row, col int) int {
	if row < 0 {
		return 0
	}
	lines := splitLines(content)
	if row >= len(lines) {
		return len(content)
	}
	dl := lines[row]
	return dl.start + l.layout(ctx, dl.text).OffsetAt(col)
}

// Position returns the row and column at which offset is drawn.
func (l *layouter) Position(ctx context.Context, content string, offset int) (row, col int) {
	lines := splitLines(content)
	for i, dl := range lines {
		end := dl.start + len(dl.text)
		last := i == len(lines)-1
		if offset <= end || last {
			return i, l.layout(ctx, dl.text).CellAt(min(offset, end) - dl.start)
		}
		if offset < lines[i+1].start {
			// Inside a line terminator.
			return i, l.layout(ctx, dl.text).Width()
		}
	}
	return 0, 0
}
