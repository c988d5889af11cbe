package edit

import "github.com/zjrosen/textstate/internal/log"

// Diagnostics receives non-fatal warnings from the engine. Implementations
// must not influence the edit that reported them.
type Diagnostics interface {
	Warn(msg string, fields ...any)
}

// LogDiagnostics forwards warnings to the global logger.
type LogDiagnostics struct {
	Category log.Category
}

// Warn logs msg at warn level.
func (d LogDiagnostics) Warn(msg string, fields ...any) {
	cat := d.Category
	if cat == "" {
		cat = log.CatCaret
	}
	log.Warn(cat, msg, fields...)
}

// DiagnosticsFunc adapts a function to the Diagnostics interface.
type DiagnosticsFunc func(msg string, fields ...any)

// Warn calls f.
func (f DiagnosticsFunc) Warn(msg string, fields ...any) { f(msg, fields...) }
