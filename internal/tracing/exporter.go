package tracing

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// FileExporter appends one JSON line per finished action span, so a replayed
// script can be inspected with jq. It implements sdktrace.SpanExporter.
type FileExporter struct {
	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
}

// NewFileExporter opens path for appending, creating it and any missing
// parent directories.
func NewFileExporter(path string) (*FileExporter, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("create trace directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600) // #nosec G304 -- path is cleaned above
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	return &FileExporter{f: f, enc: json.NewEncoder(f)}, nil
}

// ExportSpans implements sdktrace.SpanExporter.
func (e *FileExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	if len(spans) == 0 {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.f == nil {
		return fmt.Errorf("trace file closed")
	}

	for _, span := range spans {
		if err := e.enc.Encode(NewActionRecord(span)); err != nil {
			return fmt.Errorf("encode span %s: %w", span.Name(), err)
		}
	}
	return nil
}

// Shutdown closes the file. Calling it again is a no-op.
func (e *FileExporter) Shutdown(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.f == nil {
		return nil
	}
	err := e.f.Close()
	e.f, e.enc = nil, nil
	return err
}

// Range is a selection as it appears in an exported record.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ActionRecord is the exported form of one action span. The attributes the
// action middleware sets are lifted into typed fields; anything else lands
// in Extra.
type ActionRecord struct {
	TraceID  string `json:"trace_id"`
	SpanID   string `json:"span_id"`
	ParentID string `json:"parent_span_id,omitempty"`
	Name     string `json:"name"`

	SessionID      string `json:"session_id,omitempty"`
	Revision       uint64 `json:"revision"`
	ActionID       string `json:"action_id,omitempty"`
	ChangesContent bool   `json:"changes_content"`
	Before         *Range `json:"before,omitempty"`
	After          *Range `json:"after,omitempty"`
	BufferLen      int    `json:"buffer_len"`

	// Rejected lists the offsets carried by caret.rejected events, in order.
	Rejected []int `json:"rejected,omitempty"`

	Start      time.Time      `json:"start"`
	DurationUs int64          `json:"duration_us"`
	Failed     bool           `json:"failed,omitempty"`
	Error      string         `json:"error,omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// NewActionRecord flattens a finished span into an ActionRecord.
func NewActionRecord(span sdktrace.ReadOnlySpan) ActionRecord {
	sc := span.SpanContext()
	rec := ActionRecord{
		TraceID:    sc.TraceID().String(),
		SpanID:     sc.SpanID().String(),
		Name:       span.Name(),
		Start:      span.StartTime(),
		DurationUs: span.EndTime().Sub(span.StartTime()).Microseconds(),
	}
	if parent := span.Parent(); parent.IsValid() {
		rec.ParentID = parent.SpanID().String()
	}
	if st := span.Status(); st.Code == codes.Error {
		rec.Failed, rec.Error = true, st.Description
	}

	var before, after Range
	var hasBefore, hasAfter bool
	for _, kv := range span.Attributes() {
		switch string(kv.Key) {
		case AttrSessionID:
			rec.SessionID = kv.Value.AsString()
		case AttrRevision:
			rec.Revision = uint64(max(kv.Value.AsInt64(), 0))
		case AttrActionID:
			rec.ActionID = kv.Value.AsString()
		case AttrActionContent:
			rec.ChangesContent = kv.Value.AsBool()
		case AttrBufferLen:
			rec.BufferLen = intValue(kv)
		case AttrSelBeforeStart:
			before.Start, hasBefore = intValue(kv), true
		case AttrSelBeforeEnd:
			before.End, hasBefore = intValue(kv), true
		case AttrSelAfterStart:
			after.Start, hasAfter = intValue(kv), true
		case AttrSelAfterEnd:
			after.End, hasAfter = intValue(kv), true
		default:
			if rec.Extra == nil {
				rec.Extra = make(map[string]any)
			}
			rec.Extra[string(kv.Key)] = kv.Value.AsInterface()
		}
	}
	if hasBefore {
		rec.Before = &before
	}
	if hasAfter {
		rec.After = &after
	}

	for _, evt := range span.Events() {
		if evt.Name != EventCaretRejected {
			continue
		}
		for _, kv := range evt.Attributes {
			if kv.Key == AttrOffset {
				rec.Rejected = append(rec.Rejected, intValue(kv))
			}
		}
	}
	return rec
}

func intValue(kv attribute.KeyValue) int {
	return int(kv.Value.AsInt64())
}
