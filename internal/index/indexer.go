// Package index loads the FAQ dataset and populates the vector collection
// at startup.
package index

import (
	"context"
	"fmt"
	"time"

	"github.com/legalqa/legal-rag/internal/bus"
	"github.com/legalqa/legal-rag/internal/faq"
	apperrors "github.com/legalqa/legal-rag/internal/pkg/errors"
	"github.com/legalqa/legal-rag/internal/pkg/logger"
	"github.com/legalqa/legal-rag/internal/qdrant"
)

// Embedder produces embeddings for FAQ questions in batch.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Store is the slice of the Qdrant client the indexer uses.
type Store interface {
	EnsureCollection(ctx context.Context, cfg qdrant.CollectionConfig) error
	RecreateCollection(ctx context.Context, cfg qdrant.CollectionConfig) error
	CountPoints(ctx context.Context, collection string) (uint64, error)
	UpsertPoints(ctx context.Context, collection string, payloads []qdrant.FAQPayload, vectors [][]float32) error
}

// Indexer ensures the FAQ collection exists and is populated.
type Indexer struct {
	store      Store
	embedder   Embedder
	collection string
	dimension  int
	faqPath    string
	events     bus.Bus
	topic      string
	log        *logger.Logger
}

// NewIndexer creates an indexer. events may be nil.
func NewIndexer(store Store, embedder Embedder, collection string, dimension int, faqPath string, events bus.Bus, topic string, log *logger.Logger) *Indexer {
	return &Indexer{
		store:      store,
		embedder:   embedder,
		collection: collection,
		dimension:  dimension,
		faqPath:    faqPath,
		events:     events,
		topic:      topic,
		log:        log.WithComponent("index"),
	}
}

// Run makes the collection ready to serve queries. When force is false and
// the collection already holds points, indexing is skipped, so restarts do
// not re-embed the dataset. When force is true the collection is rebuilt
// from scratch.
func (i *Indexer) Run(ctx context.Context, force bool) error {
	collCfg := qdrant.CollectionConfig{
		Name:       i.collection,
		VectorSize: uint64(i.dimension),
	}

	if force {
		i.log.Info("forced reindex, recreating collection", "collection", i.collection)
		if err := i.store.RecreateCollection(ctx, collCfg); err != nil {
			return fmt.Errorf("recreating collection: %w", err)
		}
	} else {
		if err := i.store.EnsureCollection(ctx, collCfg); err != nil {
			return fmt.Errorf("ensuring collection: %w", err)
		}

		count, err := i.store.CountPoints(ctx, i.collection)
		if err != nil {
			return fmt.Errorf("counting points: %w", err)
		}
		if count > 0 {
			i.log.Info("collection already populated, skipping indexing", "points", count)
			return nil
		}
	}

	items, err := faq.LoadFile(i.faqPath)
	if err != nil {
		return fmt.Errorf("loading FAQ dataset: %w", err)
	}

	i.log.Info("indexing FAQ dataset", "faqs", len(items))

	vectors, err := i.embedder.EmbedBatch(ctx, faq.Questions(items))
	if err != nil {
		return fmt.Errorf("embedding FAQ questions: %w", err)
	}
	if len(vectors) != len(items) {
		return apperrors.ValidationError("embedding count does not match FAQ count").
			WithDetail("faqs", fmt.Sprintf("%d", len(items))).
			WithDetail("vectors", fmt.Sprintf("%d", len(vectors)))
	}

	payloads := make([]qdrant.FAQPayload, len(items))
	for idx, item := range items {
		payloads[idx] = qdrant.FAQPayload{
			FAQID:    item.ID,
			Question: item.Question,
			Answer:   item.Answer,
			Category: item.Category,
			Keywords: item.Keywords,
		}
	}

	if err := i.store.UpsertPoints(ctx, i.collection, payloads, vectors); err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}

	i.log.Info("indexing complete", "faqs", len(items))
	i.publishCompleted(ctx, len(items))

	return nil
}

func (i *Indexer) publishCompleted(ctx context.Context, count int) {
	if i.events == nil {
		return
	}

	now := time.Now().UTC()
	event := bus.Event{
		ID:        fmt.Sprintf("%d", now.UnixNano()),
		Type:      bus.TypeIndexCompleted,
		Source:    "legal-rag",
		Timestamp: now.UnixMilli(),
		Payload:   map[string]any{"collection": i.collection, "faqs": count},
	}
	if err := i.events.Publish(ctx, i.topic, event); err != nil {
		i.log.WithError(err).Warn("failed to publish index event")
	}
}
