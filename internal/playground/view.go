package playground

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/textstate/internal/log"
	"github.com/zjrosen/textstate/internal/text"
)

// View implements tea.Model.
func (m Model) View() string {
	sections := []string{
		m.renderHeader(),
		m.renderText(),
		m.renderStatus(),
	}
	if m.showDiagnostics {
		sections = append(sections, m.renderDiagnostics())
	}
	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	id := m.snap.SessionID
	if len(id) > 8 {
		id = id[:8]
	}
	return titleStyle.Render("textstate") + statusStyle.Render("session "+id)
}

type runKind int

const (
	runPlain runKind = iota
	runSelected
	runCaret
)

// lineRenderer batches consecutive cells with the same styling.
type lineRenderer struct {
	out  strings.Builder
	run  strings.Builder
	kind runKind
}

func (r *lineRenderer) add(kind runKind, s string) {
	if kind != r.kind {
		r.flush()
		r.kind = kind
	}
	r.run.WriteString(s)
}

func (r *lineRenderer) flush() {
	if r.run.Len() == 0 {
		return
	}
	switch r.kind {
	case runSelected:
		r.out.WriteString(selectionStyle.Render(r.run.String()))
	case runCaret:
		r.out.WriteString(caretStyle.Render(r.run.String()))
	default:
		r.out.WriteString(textStyle.Render(r.run.String()))
	}
	r.run.Reset()
}

func (r *lineRenderer) String() string {
	r.flush()
	return r.out.String()
}

func (m Model) renderText() string {
	sel := m.snap.Selection
	lo, hi, caret := sel.Min(), sel.Max(), sel.End
	lines := splitLines(m.snap.Text)

	first, last := 0, len(lines)
	if h := m.textHeight(); h > 0 {
		first = min(m.scroll, len(lines))
		last = min(first+h, len(lines))
	}

	rows := make([]string, 0, last-first)
	for i := first; i < last; i++ {
		dl := lines[i]
		var r lineRenderer
		col := 0
		for start, cluster := range text.Clusters(dl.text) {
			off := dl.start + start
			w := cellWidth(cluster, col, m.layout.tabWidth)
			if cluster == "\t" {
				cluster = strings.Repeat(" ", w)
			}
			col += w

			switch {
			case off == caret:
				r.add(runCaret, cluster)
			case off >= lo && off < hi:
				r.add(runSelected, cluster)
			default:
				r.add(runPlain, cluster)
			}
		}

		// The cell after the last grapheme stands for the line terminator.
		end := dl.start + len(dl.text)
		next := len(m.snap.Text) + 1
		if i+1 < len(lines) {
			next = lines[i+1].start
		}
		switch {
		case caret >= end && caret < next:
			r.add(runCaret, " ")
		case end >= lo && end < hi:
			r.add(runSelected, " ")
		}
		rows = append(rows, r.String())
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderStatus() string {
	sel := m.snap.Selection
	status := fmt.Sprintf("sel %d..%d  len %d  rev %d", sel.Start, sel.End, len(m.snap.Text), m.snap.Revision)
	if m.snap.LastAction != "" {
		status += "  " + m.snap.LastAction
	}
	if m.showDiagnostics {
		if stats := m.layout.CacheStats(); stats.Hits+stats.Misses > 0 {
			status += fmt.Sprintf("  layout cache %.0f%% of %d lines", stats.HitRate()*100, stats.Entries)
		}
	}
	out := statusStyle.Render(status)
	if n := len(m.snap.Rejected); n > 0 {
		out += "  " + warningStyle.Render(fmt.Sprintf("rejected %v", m.snap.Rejected))
	}
	return out
}

func (m Model) renderDiagnostics() string {
	lines := make([]string, m.diagLimit)
	start := m.diagLimit - len(m.diagnostics)
	copy(lines[max(start, 0):], m.diagnostics)
	if len(m.diagnostics) == 0 && !log.Enabled() {
		lines[m.diagLimit-1] = "debug logging off (run with --debug for engine logs)"
	}

	style := diagnosticsStyle
	if m.width > 0 {
		style = style.Width(m.width).MaxWidth(m.width)
		for i, l := range lines {
			lines[i] = ansi.Truncate(l, m.width, "…")
		}
	}
	return style.Render(strings.Join(lines, "\n"))
}
