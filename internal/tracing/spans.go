package tracing

// Span attribute keys for edit tracing.
const (
	AttrSessionID = "session.id"
	AttrRevision  = "session.revision"

	AttrActionID      = "action.id"
	AttrActionContent = "action.changes_content"

	AttrSelBeforeStart = "selection.before.start"
	AttrSelBeforeEnd   = "selection.before.end"
	AttrSelAfterStart  = "selection.after.start"
	AttrSelAfterEnd    = "selection.after.end"

	AttrBufferLen = "buffer.len"
	AttrOffset    = "caret.offset"
)

// SpanPrefixAction prefixes span names; the action ID completes them,
// e.g. "edit.delete.backward".
const SpanPrefixAction = "edit."

// Event names for span events.
const (
	EventCaretRejected = "caret.rejected"
)
