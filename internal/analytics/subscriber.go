// Package analytics consumes interaction events from the bus and keeps
// rolling in-process counters for operational logging.
package analytics

import (
	"context"
	"sync"

	"github.com/legalqa/legal-rag/internal/bus"
	"github.com/legalqa/legal-rag/internal/interaction"
	"github.com/legalqa/legal-rag/internal/pkg/logger"
)

// Subscriber tallies interaction and index events. Counters reset when the
// process restarts; durable history lives in the interaction store.
type Subscriber struct {
	log *logger.Logger

	mu        sync.Mutex
	queries   uint64
	errors    uint64
	indexRuns uint64
}

// NewSubscriber creates an analytics subscriber.
func NewSubscriber(log *logger.Logger) *Subscriber {
	return &Subscriber{
		log: log.WithComponent("analytics"),
	}
}

// Attach subscribes the counters to the event stream on a topic.
func (s *Subscriber) Attach(ctx context.Context, b bus.Bus, topic string) error {
	return b.Subscribe(ctx, topic, s.handle)
}

func (s *Subscriber) handle(_ context.Context, event bus.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch event.Type {
	case bus.TypeInteractionRecorded:
		s.queries++
		if errorOccurred(event.Payload) {
			s.errors++
		}
		s.log.Debug("interaction recorded",
			"queries", s.queries,
			"errors", s.errors,
		)
	case bus.TypeIndexCompleted:
		s.indexRuns++
		s.log.Info("index run completed", "runs", s.indexRuns)
	}

	return nil
}

// Snapshot returns the current counter values.
func (s *Subscriber) Snapshot() (queries, errors, indexRuns uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries, s.errors, s.indexRuns
}

// errorOccurred reads the error flag from an event payload. In-process
// delivery carries the typed record; delivery through Kafka carries the
// JSON-decoded form.
func errorOccurred(payload any) bool {
	switch p := payload.(type) {
	case interaction.Record:
		return p.ErrorOccurred
	case map[string]any:
		flag, _ := p["error_occurred"].(bool)
		return flag
	}
	return false
}
