package pubsub

import (
	"context"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
)

// ListenCmd returns a command that waits for the next event on ch whose type
// is in types (any type when types is empty) and returns it as a tea.Msg.
// It returns nil once ctx is cancelled or ch is closed.
func ListenCmd[T any](ctx context.Context, ch <-chan Event[T], types ...EventType) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case <-ctx.Done():
				return nil
			case event, ok := <-ch:
				if !ok {
					return nil
				}
				if len(types) == 0 || slices.Contains(types, event.Type) {
					return event
				}
			}
		}
	}
}

// ContinuousListener holds one subscription for a Bubble Tea model. Call
// Listen from Init and again after handling each event.
type ContinuousListener[T any] struct {
	ctx   context.Context
	ch    <-chan Event[T]
	types []EventType
}

// NewContinuousListener subscribes to broker, keeping only events of the
// given types (all events when none are given).
func NewContinuousListener[T any](ctx context.Context, broker *Broker[T], types ...EventType) *ContinuousListener[T] {
	return &ContinuousListener[T]{
		ctx:   ctx,
		ch:    broker.Subscribe(ctx),
		types: types,
	}
}

// Listen returns a command that waits for the next matching event.
func (l *ContinuousListener[T]) Listen() tea.Cmd {
	return ListenCmd(l.ctx, l.ch, l.types...)
}
