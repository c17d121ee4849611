package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/legalqa/legal-rag/internal/interaction"
	"github.com/legalqa/legal-rag/internal/pipeline"
	apperrors "github.com/legalqa/legal-rag/internal/pkg/errors"
	"github.com/legalqa/legal-rag/internal/pkg/logger"
)

const (
	minQueryLength = 5
	maxQueryLength = 500

	defaultLogsLimit = 50
	maxLogsLimit     = 1000
)

// Counter reports how many FAQ points a collection holds.
type Counter interface {
	CountPoints(ctx context.Context, collection string) (uint64, error)
}

// Handler provides HTTP handlers for the Q&A API.
type Handler struct {
	pipeline   *pipeline.Service
	store      *interaction.Store
	counter    Counter
	collection string
	log        *logger.Logger
}

// NewHandler creates the API handler.
func NewHandler(p *pipeline.Service, store *interaction.Store, counter Counter, collection string, log *logger.Logger) *Handler {
	return &Handler{
		pipeline:   p,
		store:      store,
		counter:    counter,
		collection: collection,
		log:        log.WithComponent("api"),
	}
}

// AskRequest is the JSON request body for /api/ask.
type AskRequest struct {
	Query          string `json:"query"`
	IncludeSources *bool  `json:"include_sources,omitempty"`
	Category       string `json:"category,omitempty"`
}

// HandleAsk handles POST /api/ask.
func (h *Handler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, apperrors.InvalidRequestError("invalid request body"))
		return
	}

	// Length bounds are in characters, not bytes; multibyte queries count
	// one per rune.
	query := strings.TrimSpace(req.Query)
	if n := utf8.RuneCountInString(query); n < minQueryLength || n > maxQueryLength {
		apperrors.WriteError(w, apperrors.ValidationError("query must be between 5 and 500 characters"))
		return
	}

	includeSources := true
	if req.IncludeSources != nil {
		includeSources = *req.IncludeSources
	}

	resp, err := h.pipeline.Ask(r.Context(), pipeline.Request{
		Query:          query,
		Category:       req.Category,
		IncludeSources: includeSources,
	})
	if err != nil {
		h.log.WithError(err).Error("error processing query")
		apperrors.WriteErrorWithStatus(w, http.StatusInternalServerError,
			apperrors.New(apperrors.CodeInternal, "An error occurred while processing your question. Please try again."))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleLogs handles GET /api/logs.
func (h *Handler) HandleLogs(w http.ResponseWriter, r *http.Request) {
	limit := defaultLogsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			apperrors.WriteError(w, apperrors.ValidationError("limit must be a positive integer"))
			return
		}
		limit = n
	}
	if limit > maxLogsLimit {
		limit = maxLogsLimit
	}

	logs, err := h.store.ListRecent(r.Context(), limit)
	if err != nil {
		h.log.WithError(err).Error("error retrieving logs")
		apperrors.WriteErrorWithStatus(w, http.StatusInternalServerError,
			apperrors.New(apperrors.CodeLogging, "Failed to retrieve interaction logs"))
		return
	}

	writeJSON(w, http.StatusOK, logs)
}

// StatsResponse is the JSON body for /api/stats.
type StatsResponse struct {
	interaction.Stats
	FAQsInDatabase uint64 `json:"faqs_in_database"`
}

// HandleStats handles GET /api/stats.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		h.log.WithError(err).Error("error retrieving stats")
		apperrors.WriteErrorWithStatus(w, http.StatusInternalServerError,
			apperrors.New(apperrors.CodeLogging, "Failed to retrieve statistics"))
		return
	}

	var count uint64
	if h.counter != nil {
		count, err = h.counter.CountPoints(r.Context(), h.collection)
		if err != nil {
			h.log.WithError(err).Warn("error counting FAQs for stats")
		}
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		Stats:          stats,
		FAQsInDatabase: count,
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
