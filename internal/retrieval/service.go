// Package retrieval finds the FAQ entries most similar to a user question.
package retrieval

import (
	"context"

	"github.com/legalqa/legal-rag/internal/faq"
	apperrors "github.com/legalqa/legal-rag/internal/pkg/errors"
	"github.com/legalqa/legal-rag/internal/pkg/logger"
	"github.com/legalqa/legal-rag/internal/qdrant"
)

// Searcher is the slice of the Qdrant client the retrieval service uses.
type Searcher interface {
	Search(ctx context.Context, collection string, req qdrant.SearchRequest) ([]qdrant.SearchResult, error)
}

// Service performs similarity search over the indexed FAQ collection.
type Service struct {
	searcher   Searcher
	collection string
	topK       uint64
	threshold  float32
	log        *logger.Logger
}

// NewService creates a retrieval service bound to one collection.
func NewService(searcher Searcher, collection string, topK int, threshold float32, log *logger.Logger) *Service {
	if topK <= 0 {
		topK = 2
	}

	return &Service{
		searcher:   searcher,
		collection: collection,
		topK:       uint64(topK),
		threshold:  threshold,
		log:        log.WithComponent("retrieval"),
	}
}

// Retrieve returns up to topK FAQs scoring at or above the similarity
// threshold, ordered by descending similarity. An empty result is a normal
// outcome, not an error. A non-empty category restricts the search.
func (s *Service) Retrieve(ctx context.Context, vector []float32, category string) ([]faq.Retrieved, error) {
	threshold := s.threshold
	results, err := s.searcher.Search(ctx, s.collection, qdrant.SearchRequest{
		Vector:         vector,
		Limit:          s.topK,
		ScoreThreshold: &threshold,
		Category:       category,
	})
	if err != nil {
		return nil, apperrors.QdrantError("similarity search failed", err)
	}

	retrieved := make([]faq.Retrieved, 0, len(results))
	for _, r := range results {
		retrieved = append(retrieved, faq.Retrieved{
			FAQID:           r.Payload.FAQID,
			Question:        r.Payload.Question,
			Answer:          r.Payload.Answer,
			Category:        r.Payload.Category,
			SimilarityScore: r.Score,
		})
	}

	s.log.Debug("retrieval complete", "matches", len(retrieved))
	return retrieved, nil
}
