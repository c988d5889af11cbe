package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/textstate/internal/edit"
	"github.com/zjrosen/textstate/internal/text"
)

// Step describes one applied action.
type Step struct {
	SessionID string
	Revision  uint64
	Action    edit.Action
	Before    text.Selection
	After     text.Selection
	BufferLen int

	// Rejected holds the offsets of caret placements the engine refused
	// while applying Action.
	Rejected []int
}

// StepFunc applies a single action and reports what happened.
type StepFunc func(ctx context.Context, action edit.Action) Step

// MiddlewareConfig configures the action middleware.
type MiddlewareConfig struct {
	// Tracer creates spans. If nil, the middleware is a pass-through.
	Tracer trace.Tracer
}

// NewActionMiddleware wraps a StepFunc so every action runs inside a span
// named after the action ID, annotated with the selection before and after.
// Rejected caret placements become span events; they do not mark the span
// as failed.
func NewActionMiddleware(cfg MiddlewareConfig) func(StepFunc) StepFunc {
	if cfg.Tracer == nil {
		return func(next StepFunc) StepFunc { return next }
	}

	return func(next StepFunc) StepFunc {
		return func(ctx context.Context, action edit.Action) Step {
			ctx, span := cfg.Tracer.Start(ctx, SpanPrefixAction+action.ID(),
				trace.WithSpanKind(trace.SpanKindInternal),
			)
			defer span.End()

			step := next(ctx, action)

			span.SetAttributes(
				attribute.String(AttrSessionID, step.SessionID),
				attribute.Int64(AttrRevision, int64(step.Revision)), //nolint:gosec // revisions never approach MaxInt64
				attribute.String(AttrActionID, action.ID()),
				attribute.Bool(AttrActionContent, action.ChangesContent()),
				attribute.Int(AttrSelBeforeStart, step.Before.Start),
				attribute.Int(AttrSelBeforeEnd, step.Before.End),
				attribute.Int(AttrSelAfterStart, step.After.Start),
				attribute.Int(AttrSelAfterEnd, step.After.End),
				attribute.Int(AttrBufferLen, step.BufferLen),
			)
			for _, offset := range step.Rejected {
				span.AddEvent(EventCaretRejected, trace.WithAttributes(
					attribute.Int(AttrOffset, offset),
				))
			}
			span.SetStatus(codes.Ok, "")
			return step
		}
	}
}
