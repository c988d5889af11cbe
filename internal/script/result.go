package script

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/zjrosen/textstate/internal/session"
)

// Result is the outcome of a replay.
type Result struct {
	Initial string
	Final   session.Snapshot

	// Steps holds the snapshot after each action.
	Steps []session.Snapshot
}

// Rejected returns every caret offset refused during the replay.
func (r *Result) Rejected() []int {
	var out []int
	for _, s := range r.Steps {
		out = append(out, s.Rejected...)
	}
	return out
}

// Diffs computes a semantic diff from the initial to the final text.
func (r *Result) Diffs() []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(r.Initial, r.Final.Text, false)
	return dmp.DiffCleanupSemantic(diffs)
}

// Diff renders Diffs inline, marking removals as [-text-] and insertions as
// {+text+}. Identical texts produce the text unchanged.
func (r *Result) Diff() string {
	var sb strings.Builder
	for _, d := range r.Diffs() {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			sb.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			sb.WriteString("[-")
			sb.WriteString(d.Text)
			sb.WriteString("-]")
		case diffmatchpatch.DiffInsert:
			sb.WriteString("{+")
			sb.WriteString(d.Text)
			sb.WriteString("+}")
		}
	}
	return sb.String()
}

// PrettyDiff renders Diffs with ANSI colors for terminals.
func (r *Result) PrettyDiff() string {
	return diffmatchpatch.New().DiffPrettyText(r.Diffs())
}
