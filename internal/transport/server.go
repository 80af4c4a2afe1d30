// Package transport serves pipeline results over a read-only JSON API.
// The server never mutates analytics state; it publishes whatever run the
// owner hands it via SetResult.
package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"insightlens/internal/config"
	"insightlens/internal/middleware"
	"insightlens/internal/pipeline"
)

// Server publishes the latest pipeline run over HTTP.
type Server struct {
	cfg    config.ServerConfig
	logger *slog.Logger

	mu     sync.RWMutex
	latest *pipeline.Result

	registry       *prometheus.Registry
	requestsServed prometheus.Counter
}

// NewServer builds a server. A nil logger falls back to slog.Default. Each
// server carries its own metrics registry so multiple instances can coexist.
func NewServer(cfg config.ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	registry := prometheus.NewRegistry()
	return &Server{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		requestsServed: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "insightlens_api_requests_total",
			Help: "Total API requests served.",
		}),
	}
}

// SetResult publishes a finished run. Safe for concurrent use with request
// handling.
func (s *Server) SetResult(result *pipeline.Result) {
	s.mu.Lock()
	s.latest = result
	s.mu.Unlock()
}

// Routes assembles the router with the full middleware chain.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredLogger(s.logger))
	r.Use(middleware.Recoverer(s.logger))
	if s.cfg.RateLimit.Enabled {
		r.Use(middleware.NewRateLimiter(s.cfg.RateLimit.RPS, s.cfg.RateLimit.Burst, s.logger).Handler)
	}
	r.Use(s.countRequests)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/health", s.getHealth)
		r.Get("/run", s.getRun)
		r.Get("/insights", s.getInsights)
		r.Get("/customers", s.getCustomers)
		r.Get("/scores", s.getScores)
		r.Get("/segments", s.getSegments)
		r.Get("/models", s.getModels)
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return r
}

// ListenAndServe runs the server until the context is canceled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.Routes(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("report server listening", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requestsServed.Inc()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) result() *pipeline.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}
