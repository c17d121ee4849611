// Package pipeline orchestrates the question answering flow: embed the
// query, retrieve similar FAQs, compose an answer, and log the interaction.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/legalqa/legal-rag/internal/bus"
	"github.com/legalqa/legal-rag/internal/faq"
	"github.com/legalqa/legal-rag/internal/generation"
	"github.com/legalqa/legal-rag/internal/interaction"
	"github.com/legalqa/legal-rag/internal/pkg/logger"
)

// Embedder converts a query into its embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever finds FAQs similar to a query embedding.
type Retriever interface {
	Retrieve(ctx context.Context, vector []float32, category string) ([]faq.Retrieved, error)
}

// Composer produces the answer text for a query and its retrieved FAQs.
type Composer interface {
	Compose(ctx context.Context, query string, retrieved []faq.Retrieved) string
}

// Recorder appends interactions to the persistent log.
type Recorder interface {
	Record(ctx context.Context, rec interaction.Record) error
}

// Request is a question submitted to the pipeline. Input validation happens
// at the HTTP layer; the pipeline assumes a well-formed query.
type Request struct {
	Query          string
	Category       string
	IncludeSources bool
}

// Response is the answer with its metadata.
type Response struct {
	Answer         string          `json:"answer"`
	Sources        []faq.Retrieved `json:"sources"`
	ResponseTimeMS int64           `json:"response_time_ms"`
	Timestamp      time.Time       `json:"timestamp"`
}

// Service runs the question answering pipeline. Every request produces
// exactly one interaction log entry, successful or not.
type Service struct {
	embedder  Embedder
	retriever Retriever
	composer  Composer
	recorder  Recorder
	events    bus.Bus
	topic     string
	log       *logger.Logger
}

// NewService creates a pipeline service. events may be nil to disable
// analytics publishing.
func NewService(embedder Embedder, retriever Retriever, composer Composer, recorder Recorder, events bus.Bus, topic string, log *logger.Logger) *Service {
	return &Service{
		embedder:  embedder,
		retriever: retriever,
		composer:  composer,
		recorder:  recorder,
		events:    events,
		topic:     topic,
		log:       log.WithComponent("pipeline"),
	}
}

// Ask answers a question. Embedding and retrieval failures propagate to the
// caller after a best-effort error log entry; generation failures never do,
// the composer degrades to a deterministic fallback instead.
func (s *Service) Ask(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	s.log.Info("processing query", "query", truncate(req.Query, 100))

	vector, err := s.embedder.Embed(ctx, req.Query)
	if err != nil {
		s.recordError(ctx, req.Query, err, start)
		return nil, err
	}

	retrieved, err := s.retriever.Retrieve(ctx, vector, req.Category)
	if err != nil {
		s.recordError(ctx, req.Query, err, start)
		return nil, err
	}

	var answer string
	var sources []faq.Retrieved
	if len(retrieved) == 0 {
		s.log.Warn("no relevant FAQs found above threshold")
		answer = generation.NoResultsAnswer
		sources = []faq.Retrieved{}
	} else {
		answer = s.composer.Compose(ctx, req.Query, retrieved)
		if req.IncludeSources {
			sources = retrieved
		} else {
			sources = []faq.Retrieved{}
		}
	}

	elapsed := time.Since(start).Milliseconds()

	rec := interaction.Record{
		Timestamp:       time.Now().UTC(),
		UserQuery:       req.Query,
		RetrievedFAQIDs: faqIDs(retrieved),
		AIResponse:      answer,
		ResponseTimeMS:  elapsed,
		RelevanceScores: scores(retrieved),
		ErrorOccurred:   false,
	}
	if err := s.recorder.Record(ctx, rec); err != nil {
		s.log.WithError(err).Error("failed to log interaction")
		s.recordError(ctx, req.Query, err, start)
		return nil, err
	}

	s.publish(ctx, rec)

	s.log.Info("query processed", "elapsed_ms", elapsed, "matches", len(retrieved))

	return &Response{
		Answer:         answer,
		Sources:        sources,
		ResponseTimeMS: elapsed,
		Timestamp:      rec.Timestamp,
	}, nil
}

// recordError writes a best-effort error entry to the interaction log.
// Failures here are swallowed; the original error is what the caller sees.
func (s *Service) recordError(ctx context.Context, query string, cause error, start time.Time) {
	rec := interaction.Record{
		Timestamp:       time.Now().UTC(),
		UserQuery:       query,
		RetrievedFAQIDs: []string{},
		AIResponse:      fmt.Sprintf("Error: %s", cause.Error()),
		ResponseTimeMS:  time.Since(start).Milliseconds(),
		RelevanceScores: []float32{},
		ErrorOccurred:   true,
	}
	if err := s.recorder.Record(ctx, rec); err != nil {
		s.log.WithError(err).Error("failed to log error interaction")
		return
	}
	s.publish(ctx, rec)
}

// publish emits an interaction.recorded event. Bus failures only warn.
func (s *Service) publish(ctx context.Context, rec interaction.Record) {
	if s.events == nil {
		return
	}

	event := bus.Event{
		ID:        fmt.Sprintf("%d", rec.Timestamp.UnixNano()),
		Type:      bus.TypeInteractionRecorded,
		Source:    "legal-rag",
		Timestamp: rec.Timestamp.UnixMilli(),
		Payload:   rec,
	}
	if err := s.events.Publish(ctx, s.topic, event); err != nil {
		s.log.WithError(err).Warn("failed to publish interaction event")
	}
}

func faqIDs(retrieved []faq.Retrieved) []string {
	ids := make([]string, len(retrieved))
	for i, r := range retrieved {
		ids[i] = r.FAQID
	}
	return ids
}

func scores(retrieved []faq.Retrieved) []float32 {
	out := make([]float32, len(retrieved))
	for i, r := range retrieved {
		out[i] = r.SimilarityScore
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
