package analytics

import (
	"context"
	"testing"

	"github.com/legalqa/legal-rag/internal/bus"
	"github.com/legalqa/legal-rag/internal/interaction"
	"github.com/legalqa/legal-rag/internal/pkg/logger"
)

func publish(t *testing.T, b bus.Bus, topic string, event bus.Event) {
	t.Helper()
	if err := b.Publish(context.Background(), topic, event); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
}

func TestSubscriberCountsInteractions(t *testing.T) {
	b := bus.NewMemoryBus()
	sub := NewSubscriber(logger.Default())

	if err := sub.Attach(context.Background(), b, "events"); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}

	publish(t, b, "events", bus.Event{
		Type:    bus.TypeInteractionRecorded,
		Payload: interaction.Record{UserQuery: "q", AIResponse: "a"},
	})
	publish(t, b, "events", bus.Event{
		Type:    bus.TypeInteractionRecorded,
		Payload: interaction.Record{UserQuery: "q", AIResponse: "Error: boom", ErrorOccurred: true},
	})
	publish(t, b, "events", bus.Event{
		Type:    bus.TypeIndexCompleted,
		Payload: map[string]any{"faqs": 12},
	})

	// Close drains in-flight handlers before counters are read.
	b.Close()

	queries, errs, indexRuns := sub.Snapshot()
	if queries != 2 {
		t.Errorf("queries = %d, want 2", queries)
	}
	if errs != 1 {
		t.Errorf("errors = %d, want 1", errs)
	}
	if indexRuns != 1 {
		t.Errorf("indexRuns = %d, want 1", indexRuns)
	}
}

func TestSubscriberDecodedPayload(t *testing.T) {
	b := bus.NewMemoryBus()
	sub := NewSubscriber(logger.Default())

	if err := sub.Attach(context.Background(), b, "events"); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}

	// Events delivered through Kafka arrive with a JSON-decoded payload.
	publish(t, b, "events", bus.Event{
		Type:    bus.TypeInteractionRecorded,
		Payload: map[string]any{"user_query": "q", "error_occurred": true},
	})

	b.Close()

	queries, errs, _ := sub.Snapshot()
	if queries != 1 || errs != 1 {
		t.Errorf("queries = %d, errors = %d, want 1 and 1", queries, errs)
	}
}

func TestSubscriberIgnoresUnknownEvents(t *testing.T) {
	b := bus.NewMemoryBus()
	sub := NewSubscriber(logger.Default())

	if err := sub.Attach(context.Background(), b, "events"); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}

	publish(t, b, "events", bus.Event{Type: "something.else"})

	b.Close()

	queries, errs, indexRuns := sub.Snapshot()
	if queries != 0 || errs != 0 || indexRuns != 0 {
		t.Errorf("counters = %d/%d/%d, want all zero", queries, errs, indexRuns)
	}
}
