package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sanonone/glyphgarden/pkg/growth"
)

func (s *Server) registerHTTPHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/report", s.handleReport)
	mux.HandleFunc("GET /v1/nodes", s.handleNodes)
	mux.HandleFunc("GET /v1/connections", s.handleConnections)
	mux.HandleFunc("GET /v1/patterns", s.handlePatterns)
	mux.HandleFunc("GET /v1/reflections", s.handleReflections)
	mux.HandleFunc("GET /v1/trajectory", s.handleTrajectory)
	mux.HandleFunc("GET /v1/structure", s.handleStructure)

	mux.HandleFunc("POST /v1/grow", s.handleGrow)
	mux.HandleFunc("POST /v1/start", s.handleStart)
	mux.HandleFunc("POST /v1/pause", s.handlePause)
	mux.HandleFunc("POST /v1/reset", s.handleReset)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// snapshot reads one view of the engine under the session lock and writes it.
func (s *Server) snapshot(w http.ResponseWriter, view func(e *growth.Engine) any) {
	var payload any
	s.Session.Do(func(e *growth.Engine) { payload = view(e) })
	s.writeHTTPResponse(w, http.StatusOK, payload)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, s.Session.Report())
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	s.snapshot(w, func(e *growth.Engine) any { return e.Nodes() })
}

func (s *Server) handleConnections(w http.ResponseWriter, r *http.Request) {
	s.snapshot(w, func(e *growth.Engine) any { return e.Connections() })
}

func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	s.snapshot(w, func(e *growth.Engine) any { return e.EmergentPatterns() })
}

func (s *Server) handleReflections(w http.ResponseWriter, r *http.Request) {
	s.snapshot(w, func(e *growth.Engine) any { return e.SelfReflectionHistory() })
}

func (s *Server) handleTrajectory(w http.ResponseWriter, r *http.Request) {
	s.snapshot(w, func(e *growth.Engine) any { return e.ReadingTrajectory() })
}

func (s *Server) handleStructure(w http.ResponseWriter, r *http.Request) {
	s.snapshot(w, func(e *growth.Engine) any { return e.SemanticStructure() })
}

func (s *Server) handleGrow(w http.ResponseWriter, r *http.Request) {
	ticks := 1
	if raw := r.URL.Query().Get("ticks"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxTicksPerCall {
			s.writeHTTPError(w, http.StatusBadRequest, "ticks must be an integer between 1 and "+strconv.Itoa(MaxTicksPerCall))
			return
		}
		ticks = n
	}
	s.writeHTTPResponse(w, http.StatusOK, s.Session.Step(ticks))
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.Session.Start()
	s.writeHTTPResponse(w, http.StatusOK, map[string]bool{"running": true})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.Session.Pause()
	s.writeHTTPResponse(w, http.StatusOK, map[string]bool{"running": false})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.Session.Reset()
	s.logger.Info("session reset")
	s.writeHTTPResponse(w, http.StatusOK, s.Session.Report())
}

func (s *Server) writeHTTPResponse(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeHTTPError(w http.ResponseWriter, statusCode int, message string) {
	s.writeHTTPResponse(w, statusCode, map[string]string{"error": message})
}
