package server

import (
	"context"
	"net/http"
	"time"
)

// HealthClient is the slice of the Qdrant client the health check uses.
type HealthClient interface {
	HealthCheck(ctx context.Context) error
	CountPoints(ctx context.Context, collection string) (uint64, error)
}

// HealthHandler reports component health.
type HealthHandler struct {
	qdrant           HealthClient
	collection       string
	openaiConfigured bool
	version          string
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(qdrant HealthClient, collection string, openaiConfigured bool, version string) *HealthHandler {
	return &HealthHandler{
		qdrant:           qdrant,
		collection:       collection,
		openaiConfigured: openaiConfigured,
		version:          version,
	}
}

// HealthResponse is the JSON body for /api/health.
type HealthResponse struct {
	Status           string `json:"status"` // healthy, degraded, unhealthy
	QdrantConnected  bool   `json:"qdrant_connected"`
	OpenAIConfigured bool   `json:"openai_configured"`
	FAQsLoaded       uint64 `json:"faqs_loaded"`
	Version          string `json:"version,omitempty"`
}

// HandleHealth handles GET /api/health. The service is healthy when both the
// vector store and the generator are usable, degraded when exactly one is,
// and unhealthy when neither is or when the check itself fails.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := HealthResponse{
		OpenAIConfigured: h.openaiConfigured,
		Version:          h.version,
	}

	resp.QdrantConnected = h.qdrant.HealthCheck(ctx) == nil

	if resp.QdrantConnected {
		count, err := h.qdrant.CountPoints(ctx, h.collection)
		if err != nil {
			resp.Status = "unhealthy"
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		resp.FAQsLoaded = count
	}

	switch {
	case resp.QdrantConnected && resp.OpenAIConfigured:
		resp.Status = "healthy"
	case resp.QdrantConnected || resp.OpenAIConfigured:
		resp.Status = "degraded"
	default:
		resp.Status = "unhealthy"
	}

	status := http.StatusOK
	if resp.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// HandleLiveness handles GET /healthz. It only confirms the process is
// serving; dependency health belongs to /api/health.
func (h *HealthHandler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
