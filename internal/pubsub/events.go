// Package pubsub fans session snapshots and log lines out to subscribers.
package pubsub

import "time"

// EventType classifies a published event.
type EventType string

const (
	// EditedEvent follows an action that changed the buffer content.
	EditedEvent EventType = "edited"
	// MovedEvent follows an action that left the content as it was, such as
	// a caret movement or a backspace at the start of the buffer.
	MovedEvent EventType = "moved"
	// ReplacedEvent follows an out-of-band change made without an action.
	ReplacedEvent EventType = "replaced"
	// LoggedEvent carries a formatted log line.
	LoggedEvent EventType = "logged"
)

// Event is a published payload with its type and publish time.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}
