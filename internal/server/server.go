// Package server exposes a growth session over JSON/HTTP.
//
// Read endpoints return snapshots of the engine state, write endpoints step,
// start, pause or reset the garden. Prometheus metrics are served at /metrics
// and a liveness check at /healthz.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds the HTTP interface and the session it serves.
type Server struct {
	Session *Session

	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds the HTTP server for session on httpAddr.
func NewServer(session *Session, httpAddr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		Session: session,
		logger:  logger.With("component", "http"),
	}

	mux := http.NewServeMux()
	s.registerHTTPHandlers(mux)

	// Recovery must be outer-most to catch everything.
	var handler http.Handler = mux
	handler = s.LoggingMiddleware(handler)
	handler = s.RecoveryMiddleware(handler)

	rootMux := http.NewServeMux()
	rootMux.HandleFunc("GET /healthz", s.handleHealthz)
	rootMux.Handle("GET /metrics", promhttp.Handler())
	rootMux.Handle("/", handler)
	s.httpServer = &http.Server{
		Addr:              httpAddr,
		Handler:           rootMux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Run serves until Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server startup failed: %w", err)
	}
	return nil
}

// Shutdown stops the HTTP server, waiting up to five seconds for in-flight
// requests.
func (s *Server) Shutdown() {
	s.logger.Info("starting graceful shutdown of HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}
}
