package server

import (
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sanonone/glyphgarden/pkg/metrics"
)

// requestIDHeader carries the id that ties a response to its log line.
const requestIDHeader = "X-Request-ID"

// RecoveryMiddleware turns a panic into a 500 carrying the request id, with
// the stack logged under the same id.
func (s *Server) RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				id := w.Header().Get(requestIDHeader)
				s.logger.Error("panic recovered in HTTP handler",
					"error", err,
					"request_id", id,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				s.writeHTTPResponse(w, http.StatusInternalServerError, map[string]string{
					"error":      "Internal Server Error",
					"request_id": id,
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleware tags each request with an id, logs it and records its
// duration and status. Metrics are labelled by route pattern so unknown
// paths cannot grow the label set.
func (s *Server) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		wrapped := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.logger.Info("HTTP request",
			"request_id", id,
			"method", r.Method,
			"route", route,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", duration.String(),
			"ip", r.RemoteAddr,
		)

		metrics.HttpRequestDuration.WithLabelValues(r.Method, route).Observe(duration.Seconds())
		metrics.HttpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
	})
}

// responseWrapper captures the status code.
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
