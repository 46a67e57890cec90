package server

import (
	"sync"

	"github.com/sanonone/glyphgarden/pkg/growth"
)

// MaxTicksPerCall bounds one explicit grow request.
const MaxTicksPerCall = 1000

// Session serializes access to a growth engine shared by the HTTP server,
// the background runner and the MCP tools.
type Session struct {
	mu     sync.Mutex
	engine *growth.Engine
}

// NewSession wraps e, initializing it when needed.
func NewSession(e *growth.Engine) *Session {
	e.Initialize()
	return &Session{engine: e}
}

// Do runs fn with exclusive access to the engine. fn must not retain it.
func (s *Session) Do(fn func(e *growth.Engine)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.engine)
}

// StepResult summarizes the engine after an explicit grow.
type StepResult struct {
	Ticks           int  `json:"ticks"`
	Generation      int  `json:"generation"`
	NodeCount       int  `json:"node_count"`
	ConnectionCount int  `json:"connection_count"`
	ActiveNodes     int  `json:"active_nodes"`
	Running         bool `json:"running"`
}

// Step advances the garden by ticks generations, clamped to
// [1, MaxTicksPerCall]. A paused engine is stepped and stays paused.
func (s *Session) Step(ticks int) StepResult {
	ticks = min(max(ticks, 1), MaxTicksPerCall)

	var res StepResult
	s.Do(func(e *growth.Engine) {
		paused := !e.Running()
		e.Start()
		for i := 0; i < ticks; i++ {
			e.Grow()
		}
		if paused {
			e.Pause()
		}
		res = StepResult{
			Ticks:           ticks,
			Generation:      e.Generation(),
			NodeCount:       len(e.Nodes()),
			ConnectionCount: len(e.Connections()),
			ActiveNodes:     e.QueueLen(),
			Running:         e.Running(),
		}
	})
	return res
}

// Tick runs one generation if the engine is running.
func (s *Session) Tick() {
	s.Do(func(e *growth.Engine) { e.Grow() })
}

func (s *Session) Start() { s.Do(func(e *growth.Engine) { e.Start() }) }

func (s *Session) Pause() { s.Do(func(e *growth.Engine) { e.Pause() }) }

// Reset replants the seeds of the same text.
func (s *Session) Reset() { s.Do(func(e *growth.Engine) { e.Reset() }) }

func (s *Session) Report() growth.SystemReport {
	var r growth.SystemReport
	s.Do(func(e *growth.Engine) { r = e.SystemReport() })
	return r
}
