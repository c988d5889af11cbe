// Package session binds a buffer, a selection and an edit engine into a
// single editing session that hosts drive with actions. Every applied action
// is traced, logged and published to subscribers as a Snapshot.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/textstate/internal/edit"
	"github.com/zjrosen/textstate/internal/log"
	"github.com/zjrosen/textstate/internal/pubsub"
	"github.com/zjrosen/textstate/internal/text"
	"github.com/zjrosen/textstate/internal/tracing"
)

// ErrInvalidSelection is returned by SetSelection for selections that are
// out of bounds or split a grapheme cluster.
var ErrInvalidSelection = errors.New("invalid selection")

// Snapshot is an immutable view of a session after an update.
type Snapshot struct {
	SessionID string
	Revision  uint64
	Text      string
	Selection text.Selection

	// LastAction is the ID of the action that produced this snapshot, empty
	// for out-of-band updates.
	LastAction string

	// Rejected lists caret offsets refused while applying LastAction.
	Rejected []int
}

// Option configures a Session.
type Option func(*Session)

// WithID overrides the generated session ID.
func WithID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

// WithEngineConfig sets the engine configuration. Diagnostics set here still
// receive every warning; the session only observes them.
func WithEngineConfig(cfg edit.Config) Option {
	return func(s *Session) {
		s.engineCfg = cfg
	}
}

// WithTracer records one span per applied action.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Session) {
		s.tracer = tracer
	}
}

// WithBroker publishes snapshots on an existing broker instead of a private one.
func WithBroker(broker *pubsub.Broker[Snapshot]) Option {
	return func(s *Session) {
		s.broker = broker
	}
}

// Session owns one buffer and its selection. Apply, SetText, SetSelection
// and Snapshot take mu, so calls from several goroutines are serialised.
type Session struct {
	mu sync.Mutex

	id       string
	buf      *text.Buffer
	sel      text.Selection
	revision uint64
	rejected []int

	engineCfg edit.Config
	engine    *edit.Engine
	tracer    trace.Tracer
	step      tracing.StepFunc

	broker *pubsub.Broker[Snapshot]
}

// New creates a session over initial with a caret at the end of the text.
func New(initial string, opts ...Option) *Session {
	s := &Session{
		buf: text.NewBuffer(initial),
		sel: text.Caret(len(initial)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.New().String()
	}
	if s.broker == nil {
		s.broker = pubsub.NewBroker[Snapshot]()
	}

	cfg := s.engineCfg
	inner := cfg.Diagnostics
	if inner == nil {
		inner = edit.LogDiagnostics{Category: log.CatCaret}
	}
	cfg.Diagnostics = edit.DiagnosticsFunc(func(msg string, fields ...any) {
		if offset, ok := offsetField(fields); ok {
			s.rejected = append(s.rejected, offset)
		}
		inner.Warn(msg, append(fields, "session", s.id)...)
	})
	s.engine = edit.NewEngine(cfg)
	s.step = tracing.NewActionMiddleware(tracing.MiddlewareConfig{Tracer: s.tracer})(s.apply)

	log.Debug(log.CatSession, "session created", "session", s.id, "len", len(initial))
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Apply runs action against the session and returns the resulting snapshot.
func (s *Session) Apply(ctx context.Context, action edit.Action) Snapshot {
	s.mu.Lock()
	rev := s.revision
	step := s.step(ctx, action)
	snap := s.snapshotLocked()
	snap.LastAction = action.ID()
	snap.Rejected = step.Rejected
	s.mu.Unlock()

	eventType := pubsub.MovedEvent
	if snap.Revision != rev {
		eventType = pubsub.EditedEvent
	}
	s.broker.Publish(eventType, snap)
	return snap
}

// ApplyAll applies actions in order, stopping early if ctx is cancelled.
func (s *Session) ApplyAll(ctx context.Context, actions []edit.Action) (Snapshot, error) {
	snap := s.Snapshot()
	for i, action := range actions {
		if err := ctx.Err(); err != nil {
			return snap, fmt.Errorf("apply action %d: %w", i, err)
		}
		snap = s.Apply(ctx, action)
	}
	return snap, nil
}

// apply is the innermost step, wrapped by the tracing middleware.
func (s *Session) apply(_ context.Context, action edit.Action) tracing.Step {
	before := s.sel
	s.rejected = s.rejected[:0]

	prev := s.buf.String()
	s.engine.Do(&s.sel, action, s.buf)
	if action.ChangesContent() && s.buf.String() != prev {
		s.revision++
	}

	log.Debug(log.CatSession, "applied action",
		"session", s.id,
		"action", action.ID(),
		"before", before,
		"after", s.sel,
		"revision", s.revision)

	return tracing.Step{
		SessionID: s.id,
		Revision:  s.revision,
		Action:    action,
		Before:    before,
		After:     s.sel,
		BufferLen: s.buf.Len(),
		Rejected:  slices.Clone(s.rejected),
	}
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		SessionID: s.id,
		Revision:  s.revision,
		Text:      s.buf.String(),
		Selection: s.sel,
	}
}

// SetText replaces the buffer content without touching the selection, the
// way an external writer would. The next edit constrains the stale selection.
func (s *Session) SetText(content string) {
	s.mu.Lock()
	s.buf.SetString(content)
	s.revision++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	log.Debug(log.CatSession, "text replaced out of band", "session", s.id, "len", len(content))
	s.broker.Publish(pubsub.ReplacedEvent, snap)
}

// SetSelection replaces the selection. It must lie on grapheme boundaries.
func (s *Session) SetSelection(sel text.Selection) error {
	s.mu.Lock()
	if !sel.InBounds(s.buf) || !sel.OnBoundaries(s.buf) {
		n := s.buf.Len()
		s.mu.Unlock()
		return fmt.Errorf("%w: %d..%d in buffer of length %d", ErrInvalidSelection, sel.Start, sel.End, n)
	}
	s.sel = sel
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.broker.Publish(pubsub.ReplacedEvent, snap)
	return nil
}

// Subscribe returns a channel of snapshots, closed when ctx is done or the
// session is closed. Actions publish EditedEvent or MovedEvent; SetText and
// SetSelection publish ReplacedEvent.
func (s *Session) Subscribe(ctx context.Context) <-chan pubsub.Event[Snapshot] {
	return s.broker.Subscribe(ctx)
}

// Broker exposes the snapshot broker, e.g. for a pubsub.ContinuousListener.
func (s *Session) Broker() *pubsub.Broker[Snapshot] {
	return s.broker
}

// Close shuts down all subscriptions.
func (s *Session) Close() {
	s.broker.Close()
	log.Debug(log.CatSession, "session closed", "session", s.id)
}

func offsetField(fields []any) (int, bool) {
	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok && key == "offset" {
			offset, ok := fields[i+1].(int)
			return offset, ok
		}
	}
	return 0, false
}
