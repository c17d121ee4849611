// Package embedding converts text into fixed-dimension vectors using the
// OpenAI embeddings API.
package embedding

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/legalqa/legal-rag/internal/openai"
	apperrors "github.com/legalqa/legal-rag/internal/pkg/errors"
	"github.com/legalqa/legal-rag/internal/pkg/logger"
)

// API is the slice of the OpenAI client the embedding service depends on.
type API interface {
	CreateEmbedding(ctx context.Context, req openai.EmbeddingRequest) (openai.EmbeddingResponse, error)
}

// Service generates embeddings for queries and FAQ questions. Errors from the
// upstream provider propagate to the caller; they are never masked here.
type Service struct {
	api       API
	model     string
	dimension int
	cache     Cache
	log       *logger.Logger
}

// NewService creates a new embedding service. cache may be nil to disable
// query-embedding caching.
func NewService(api API, model string, dimension int, cache Cache, log *logger.Logger) *Service {
	return &Service{
		api:       api,
		model:     model,
		dimension: dimension,
		cache:     cache,
		log:       log.WithComponent("embedding"),
	}
}

// Dimension returns the configured embedding dimension.
func (s *Service) Dimension() int {
	return s.dimension
}

// Embed converts a single text into its embedding vector.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.ValidationError("text to embed cannot be empty")
	}

	if s.cache != nil {
		if vec, ok := s.cache.Get(ctx, text); ok {
			s.log.Debug("embedding cache hit")
			return vec, nil
		}
	}

	vectors, err := s.request(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, text, vectors[0])
	}

	return vectors[0], nil
}

// EmbedBatch converts multiple texts in a single API call. The returned
// slice preserves input order: vectors[i] embeds texts[i].
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, apperrors.ValidationError("no texts to embed")
	}
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, apperrors.ValidationError("text to embed cannot be empty").
				WithDetail("index", itoa(i))
		}
	}

	return s.request(ctx, texts)
}

func (s *Service) request(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := s.api.CreateEmbedding(ctx, openai.EmbeddingRequest{
		Model: s.model,
		Input: texts,
	})
	if err != nil {
		return nil, classify(err)
	}

	if len(resp.Data) != len(texts) {
		return nil, apperrors.OpenAIError("embedding count mismatch", nil).
			WithDetail("expected", itoa(len(texts))).
			WithDetail("got", itoa(len(resp.Data)))
	}

	// The API may return entries out of order; restore by input index.
	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(texts) {
			return nil, apperrors.OpenAIError("embedding index out of range", nil)
		}
		vectors[item.Index] = item.Embedding
	}

	for i, vec := range vectors {
		if len(vec) != s.dimension {
			return nil, apperrors.OpenAIError("unexpected embedding dimension", nil).
				WithDetail("index", itoa(i)).
				WithDetail("expected", itoa(s.dimension)).
				WithDetail("got", itoa(len(vec)))
		}
	}

	return vectors, nil
}

// classify maps a raw client error to the service error taxonomy: client-side
// rejections become validation errors, everything else is an upstream failure.
func classify(err error) error {
	if apiErr, ok := err.(*openai.APIError); ok {
		switch {
		case apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusUnprocessableEntity:
			return apperrors.Wrap(apperrors.CodeValidation, "embedding provider rejected input", err)
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return apperrors.Wrap(apperrors.CodeUnavailable, "embedding provider rate limited", err)
		default:
			return apperrors.OpenAIError("embedding request failed", err)
		}
	}
	return apperrors.Wrap(apperrors.CodeUnavailable, "embedding provider unreachable", err)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
