// Package server provides the HTTP server that wires all services together.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/legalqa/legal-rag/internal/analytics"
	"github.com/legalqa/legal-rag/internal/bus"
	"github.com/legalqa/legal-rag/internal/config"
	"github.com/legalqa/legal-rag/internal/embedding"
	"github.com/legalqa/legal-rag/internal/generation"
	"github.com/legalqa/legal-rag/internal/index"
	"github.com/legalqa/legal-rag/internal/interaction"
	"github.com/legalqa/legal-rag/internal/openai"
	"github.com/legalqa/legal-rag/internal/pipeline"
	"github.com/legalqa/legal-rag/internal/pkg/logger"
	"github.com/legalqa/legal-rag/internal/pkg/middleware"
	"github.com/legalqa/legal-rag/internal/qdrant"
	"github.com/legalqa/legal-rag/internal/retrieval"
)

// Server is the main HTTP server that wires all services together.
type Server struct {
	cfg        *config.Config
	version    string
	log        *logger.Logger
	httpServer *http.Server

	// Services
	events   bus.Bus
	qdrant   *qdrant.Client
	store    *interaction.Store
	indexer  *index.Indexer
	pipeline *pipeline.Service

	// Handlers
	handler *Handler
	health  *HealthHandler

	redisCache *embedding.RedisCache

	mu      sync.RWMutex
	started bool
}

// New creates a new server with all dependencies.
func New(cfg *config.Config, version string, log *logger.Logger) (*Server, error) {
	s := &Server{
		cfg:     cfg,
		version: version,
		log:     log,
	}

	events, err := bus.NewBus(cfg.Bus, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}
	s.events = events

	qc, err := qdrant.NewClient(qdrant.ClientConfig{
		Host:    cfg.Qdrant.Host,
		Port:    cfg.Qdrant.Port,
		APIKey:  cfg.Qdrant.APIKey,
		UseTLS:  cfg.Qdrant.UseTLS,
		Timeout: cfg.Qdrant.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}
	s.qdrant = qc

	oc, err := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	cache, err := s.newEmbeddingCache()
	if err != nil {
		return nil, err
	}

	embedder := embedding.NewService(oc, cfg.OpenAI.EmbeddingModel, cfg.OpenAI.EmbeddingDimension, cache, log)

	retriever := retrieval.NewService(qc, cfg.Qdrant.Collection, cfg.Retrieval.TopK, cfg.Retrieval.SimilarityThreshold, log)

	composer := generation.NewComposer(oc, cfg.OpenAI.LLMModel, cfg.OpenAI.LLMTemperature, cfg.OpenAI.MaxTokens, log)

	store, err := interaction.NewStore(cfg.Data.LogDB, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open interaction store: %w", err)
	}
	s.store = store

	s.indexer = index.NewIndexer(qc, embedder, cfg.Qdrant.Collection, cfg.OpenAI.EmbeddingDimension, cfg.Data.FAQPath, events, cfg.Bus.KafkaTopic, log)

	s.pipeline = pipeline.NewService(embedder, retriever, composer, store, events, cfg.Bus.KafkaTopic, log)

	if err := analytics.NewSubscriber(log).Attach(context.Background(), events, cfg.Bus.KafkaTopic); err != nil {
		log.WithError(err).Warn("failed to attach analytics subscriber")
	}

	s.handler = NewHandler(s.pipeline, store, qc, cfg.Qdrant.Collection, log)
	s.health = NewHealthHandler(qc, cfg.Qdrant.Collection, cfg.OpenAI.APIKey != "", s.version)

	return s, nil
}

func (s *Server) newEmbeddingCache() (embedding.Cache, error) {
	switch s.cfg.Cache.Type {
	case "redis":
		ttl := time.Duration(s.cfg.Cache.TTL) * time.Second
		rc, err := embedding.NewRedisCache(s.cfg.Cache.RedisURL, ttl, s.log)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis cache: %w", err)
		}
		s.redisCache = rc
		return rc, nil
	default:
		return embedding.NewMemoryCache(s.cfg.Cache.Size), nil
	}
}

// Index populates the vector collection before serving. force rebuilds the
// collection from scratch.
func (s *Server) Index(ctx context.Context, force bool) error {
	return s.indexer.Run(ctx, force)
}

// Start starts the HTTP server. It blocks until the server exits.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("server already started")
	}
	s.started = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         s.cfg.Address(),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	s.log.Info("starting HTTP server", "addr", s.cfg.Address())
	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the server and closes all services.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.WithError(err).Error("HTTP shutdown error")
		}
	}

	if s.qdrant != nil {
		s.qdrant.Close()
	}
	if s.store != nil {
		s.store.Close()
	}
	if s.redisCache != nil {
		s.redisCache.Close()
	}
	if s.events != nil {
		s.events.Close()
	}

	s.started = false
	s.log.Info("server stopped")

	return nil
}

// setupRoutes configures all HTTP routes and middleware.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/ask", s.handler.HandleAsk)
	mux.HandleFunc("GET /api/logs", s.handler.HandleLogs)
	mux.HandleFunc("GET /api/stats", s.handler.HandleStats)
	mux.HandleFunc("GET /api/health", s.health.HandleHealth)
	mux.HandleFunc("GET /healthz", s.health.HandleLiveness)

	var handler http.Handler = mux

	if s.cfg.Security.RateLimit > 0 {
		rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(s.cfg.Security.RateLimit),
			Burst:             s.cfg.Security.RateLimit * 2,
			CleanupInterval:   time.Minute,
		})
		handler = rl.Middleware(handler)
	}

	handler = middleware.CORS(s.cfg.Security.CORSOrigins, handler)

	return wrapWithLogging(handler, s.log)
}

// wrapWithLogging wraps a handler with request logging.
func wrapWithLogging(handler http.Handler, log *logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		handler.ServeHTTP(wrapped, r)

		log.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration", time.Since(start),
		)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
