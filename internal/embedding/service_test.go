package embedding

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/legalqa/legal-rag/internal/openai"
	apperrors "github.com/legalqa/legal-rag/internal/pkg/errors"
	"github.com/legalqa/legal-rag/internal/pkg/logger"
)

type fakeAPI struct {
	calls int
	resp  openai.EmbeddingResponse
	err   error
}

func (f *fakeAPI) CreateEmbedding(_ context.Context, req openai.EmbeddingRequest) (openai.EmbeddingResponse, error) {
	f.calls++
	if f.err != nil {
		return openai.EmbeddingResponse{}, f.err
	}
	return f.resp, nil
}

func embResp(vectors ...[]float32) openai.EmbeddingResponse {
	var resp openai.EmbeddingResponse
	for i, v := range vectors {
		resp.Data = append(resp.Data, struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}{Index: i, Embedding: v})
	}
	return resp
}

func TestEmbed(t *testing.T) {
	api := &fakeAPI{resp: embResp([]float32{0.1, 0.2})}
	svc := NewService(api, "text-embedding-3-small", 2, nil, logger.Default())

	vec, err := svc.Embed(context.Background(), "what is bail?")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vec) != 2 {
		t.Errorf("len(vec) = %d, want 2", len(vec))
	}
}

func TestEmbedEmptyText(t *testing.T) {
	svc := NewService(&fakeAPI{}, "m", 2, nil, logger.Default())

	_, err := svc.Embed(context.Background(), "   ")
	if err == nil {
		t.Fatal("expected error for empty text")
	}
	if !apperrors.IsValidation(err) {
		t.Errorf("error = %v, want validation", err)
	}
}

func TestEmbedUsesCache(t *testing.T) {
	api := &fakeAPI{resp: embResp([]float32{0.1, 0.2})}
	svc := NewService(api, "m", 2, NewMemoryCache(10), logger.Default())

	ctx := context.Background()
	if _, err := svc.Embed(ctx, "same question"); err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if _, err := svc.Embed(ctx, "same question"); err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	if api.calls != 1 {
		t.Errorf("api calls = %d, want 1 (second should hit cache)", api.calls)
	}
}

func TestEmbedDimensionMismatch(t *testing.T) {
	api := &fakeAPI{resp: embResp([]float32{0.1, 0.2, 0.3})}
	svc := NewService(api, "m", 2, nil, logger.Default())

	if _, err := svc.Embed(context.Background(), "question"); err == nil {
		t.Error("expected error for wrong dimension")
	}
}

func TestEmbedBatchOrder(t *testing.T) {
	// Provider returns entries out of order; the service must restore them.
	resp := embResp([]float32{1, 1}, []float32{2, 2})
	resp.Data[0].Index = 1
	resp.Data[1].Index = 0
	api := &fakeAPI{resp: resp}

	svc := NewService(api, "m", 2, nil, logger.Default())

	vectors, err := svc.EmbedBatch(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}

	if vectors[0][0] != 2 || vectors[1][0] != 1 {
		t.Errorf("vectors = %v, want order restored by index", vectors)
	}
}

func TestEmbedBatchEmpty(t *testing.T) {
	svc := NewService(&fakeAPI{}, "m", 2, nil, logger.Default())

	if _, err := svc.EmbedBatch(context.Background(), nil); err == nil {
		t.Error("expected error for empty batch")
	}
	if _, err := svc.EmbedBatch(context.Background(), []string{"ok", ""}); err == nil {
		t.Error("expected error for blank entry")
	}
}

func TestEmbedCountMismatch(t *testing.T) {
	api := &fakeAPI{resp: embResp([]float32{1, 1})}
	svc := NewService(api, "m", 2, nil, logger.Default())

	if _, err := svc.EmbedBatch(context.Background(), []string{"a", "b"}); err == nil {
		t.Error("expected error for count mismatch")
	}
}

func TestClassifyErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"bad request", &openai.APIError{StatusCode: http.StatusBadRequest}, apperrors.CodeValidation},
		{"rate limited", &openai.APIError{StatusCode: http.StatusTooManyRequests}, apperrors.CodeUnavailable},
		{"server error", &openai.APIError{StatusCode: http.StatusInternalServerError}, apperrors.CodeOpenAI},
		{"network error", errors.New("dial tcp: refused"), apperrors.CodeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{err: tt.err}
			svc := NewService(api, "m", 2, nil, logger.Default())

			_, err := svc.Embed(context.Background(), "question")
			if err == nil {
				t.Fatal("expected error")
			}

			appErr, ok := err.(*apperrors.AppError)
			if !ok {
				t.Fatalf("error = %T, want *AppError", err)
			}
			if appErr.Code != tt.code {
				t.Errorf("code = %s, want %s", appErr.Code, tt.code)
			}
		})
	}
}
