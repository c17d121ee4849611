// Package bus publishes analytics events about logged interactions.
package bus

import (
	"context"
)

// Handler is a function that handles events.
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for event bus implementations. Publishing is
// fire-and-forget: a bus failure never fails the request that produced
// the event.
type Bus interface {
	// Publish publishes an event to a topic.
	Publish(ctx context.Context, topic string, event Event) error

	// Subscribe subscribes to events on a topic.
	Subscribe(ctx context.Context, topic string, handler Handler) error

	// Close closes the bus and releases resources.
	Close() error
}

// Event represents a bus event.
type Event struct {
	// ID is the unique event identifier.
	ID string `json:"id"`

	// Type is the event type (e.g., "interaction.recorded").
	Type string `json:"type"`

	// Source is the service that generated the event.
	Source string `json:"source"`

	// Timestamp is when the event was created, in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`

	// Payload contains the event data.
	Payload any `json:"payload"`
}

// Event types emitted by the service.
const (
	// TypeInteractionRecorded fires after an interaction is written to
	// the log, for both successful and failed requests.
	TypeInteractionRecorded = "interaction.recorded"

	// TypeIndexCompleted fires after the FAQ dataset is indexed.
	TypeIndexCompleted = "index.completed"
)
