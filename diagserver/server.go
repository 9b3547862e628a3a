// SPDX-License-Identifier: MIT

// Package diagserver exposes the runtime's operational HTTP surface:
// Prometheus metrics, health, and runtime inspection and swapping of the
// directive filter.
package diagserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/corefold/diaglog/metrics"
	"github.com/corefold/diaglog/zlog"
)

// Config configures the diagnostics server.
type Config struct {
	// Addr is the listen address, e.g. ":9100".
	Addr string

	// RequestsPerMinute caps requests per client IP. Zero disables limiting.
	RequestsPerMinute int

	// ReadHeaderTimeout guards against slow-header clients.
	ReadHeaderTimeout time.Duration
}

// Server is the diagnostics HTTP server.
type Server struct {
	cfg Config
	srv *http.Server
}

// Handler builds the diagnostics router.
func Handler(cfg Config) http.Handler {
	r := chi.NewRouter()
	if cfg.RequestsPerMinute > 0 {
		r.Use(httprate.LimitByIP(cfg.RequestsPerMinute, time.Minute))
	}
	r.Use(requestLogger)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", handleHealthz)
	r.Get("/logging", handleGetFilter)
	r.Put("/logging", handlePutFilter)
	return r
}

// New creates a diagnostics server.
func New(cfg Config) *Server {
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = 5 * time.Second
	}
	return &Server{
		cfg: cfg,
		srv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           Handler(cfg),
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		},
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger := zlog.WithComponent("diagserver")
		logger.Info().
			Str(zlog.FieldEvent, "server.listening").
			Str("addr", s.cfg.Addr).
			Msg("diagnostics server listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func handleGetFilter(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(zlog.CurrentFilter().String() + "\n"))
}

// handlePutFilter swaps the directive filter. The body is the raw directive
// string. An unparseable filter is rejected with 422 and the active filter
// is untouched.
func handlePutFilter(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 4096))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	raw := strings.TrimSpace(string(body))
	if raw == "" {
		http.Error(w, "empty filter", http.StatusBadRequest)
		return
	}

	old := zlog.CurrentFilter().String()
	f, err := zlog.ParseFilter(raw)
	if err != nil {
		metrics.RecordFilterReload("rejected")
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	zlog.SetFilter(f)
	metrics.RecordFilterReload("applied")

	logger := zlog.WithComponent("diagserver")
	logger.Info().
		Str(zlog.FieldEvent, "filter.swapped").
		Str(zlog.FieldOldFilter, old).
		Str(zlog.FieldNewFilter, f.String()).
		Msg("directive filter swapped via API")

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(f.String() + "\n"))
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(w, r)
		logger := zlog.WithComponent("diagserver")
		logger.Debug().
			Str(zlog.FieldEvent, "request.handled").
			Str(zlog.FieldRequestID, requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}
