// Package log provides structured logging for textstate.
// Entries carry a level, a category and key/value fields. They are written to
// a file opened with tea.LogToFile (only with --debug or TEXTSTATE_DEBUG) and
// published to listeners such as the playground diagnostics pane.
package log

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/textstate/internal/pubsub"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config string ("debug", "info", "warn", "error") to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelDebug, fmt.Errorf("unknown log level %q", s)
	}
}

// Category groups related log messages.
type Category string

const (
	CatEdit    Category = "edit"    // Dispatcher and edit primitives
	CatCaret   Category = "caret"   // Rejected caret placements
	CatSession Category = "session" // Session lifecycle and snapshots
	CatConfig  Category = "config"  // Configuration loading/saving
	CatScript  Category = "script"  // Action script parsing and replay
	CatTrace   Category = "trace"   // Tracing provider setup
	CatUI      Category = "ui"      // Playground updates
	CatCache   Category = "cache"   // Layout cache operations
	CatWatch   Category = "watch"   // Script file watching
	CatJournal Category = "journal" // Snapshot journal persistence
)

// Field is one key/value pair attached to an entry.
type Field struct {
	Key   string
	Value any
}

// Entry is a single log record.
type Entry struct {
	Time     time.Time
	Level    Level
	Category Category
	Msg      string
	Fields   []Field
}

// String formats e as one line:
//
//	2025-12-06T10:45:00 [WARN] [caret] caret rejected offset=2 text="a b"
//
// String values containing spaces or quotes are quoted.
func (e Entry) String() string {
	return e.Time.Format("2006-01-02T15:04:05") + " " + e.Compact()
}

// Compact is String without the timestamp.
func (e Entry) Compact() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] [%s] %s", e.Level, e.Category, e.Msg)
	for _, f := range e.Fields {
		sb.WriteByte(' ')
		sb.WriteString(f.Key)
		sb.WriteByte('=')
		sb.WriteString(formatValue(f.Value))
	}
	return sb.String()
}

// Field returns the value of the first field named key.
func (e Entry) Field(key string) (any, bool) {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

func formatValue(v any) string {
	s, ok := v.(string)
	if !ok {
		return fmt.Sprint(v)
	}
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

// Logger writes entries and fans them out to listeners.
type Logger struct {
	mu       sync.Mutex
	closer   io.Closer
	writer   io.Writer
	enabled  bool
	minLevel Level
	broker   *pubsub.Broker[Entry]
}

var defaultLogger *Logger

// InitWithTeaLog opens path with tea.LogToFile and installs it as the global
// log. The returned cleanup closes the file.
func InitWithTeaLog(path string, prefix string) (func(), error) {
	f, err := tea.LogToFile(path, prefix)
	if err != nil {
		return nil, err
	}
	defaultLogger = newLogger(f, f)
	return func() { _ = f.Close() }, nil
}

// InitWriter installs a global log writing to w, for tests and embedding.
func InitWriter(w io.Writer) {
	defaultLogger = newLogger(w, nil)
}

// Reset removes the global log; subsequent calls are no-ops.
func Reset() {
	if defaultLogger != nil {
		defaultLogger.broker.Close()
		if defaultLogger.closer != nil {
			_ = defaultLogger.closer.Close()
		}
	}
	defaultLogger = nil
}

func newLogger(w io.Writer, closer io.Closer) *Logger {
	return &Logger{
		closer:   closer,
		writer:   w,
		enabled:  true,
		minLevel: LevelDebug,
		broker:   pubsub.NewBroker[Entry](),
	}
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if defaultLogger != nil {
		defaultLogger.mu.Lock()
		defaultLogger.enabled = enabled
		defaultLogger.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if defaultLogger != nil {
		defaultLogger.mu.Lock()
		defaultLogger.minLevel = level
		defaultLogger.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	log(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	log(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	log(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	log(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	log(LevelError, cat, msg, fields...)
}

// pairFields turns alternating keys and values into Fields. An orphan key
// gets the value "<missing>".
func pairFields(kv []any) []Field {
	fields := make([]Field, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		f := Field{Key: fmt.Sprint(kv[i]), Value: "<missing>"}
		if i+1 < len(kv) {
			f.Value = kv[i+1]
		}
		fields = append(fields, f)
	}
	return fields
}

func log(level Level, cat Category, msg string, fields ...any) {
	l := defaultLogger
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled || level < l.minLevel {
		return
	}

	entry := Entry{
		Time:     time.Now(),
		Level:    level,
		Category: cat,
		Msg:      msg,
		Fields:   pairFields(fields),
	}

	if l.writer != nil {
		_, _ = io.WriteString(l.writer, entry.String()+"\n")
	}
	l.broker.Publish(pubsub.LoggedEvent, entry)
}

// LogEvent is a pubsub event carrying a log entry.
type LogEvent = pubsub.Event[Entry]

// LogListener wraps a continuous listener for log events.
type LogListener = pubsub.ContinuousListener[Entry]

// NewListener subscribes to log entries until ctx is cancelled. It returns
// nil when logging is not initialised.
func NewListener(ctx context.Context) *LogListener {
	if defaultLogger == nil {
		return nil
	}
	return pubsub.NewContinuousListener(ctx, defaultLogger.broker, pubsub.LoggedEvent)
}

// Enabled reports whether the global logger is initialised and accepting entries.
func Enabled() bool {
	l := defaultLogger
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}
