package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sanonone/glyphgarden/internal/server"
	"github.com/sanonone/glyphgarden/pkg/growth"
	"github.com/sanonone/glyphgarden/pkg/semantic"
)

const defaultPatternLimit = 20

type Service struct {
	session *server.Session
}

func NewService(session *server.Session) *Service {
	return &Service{session: session}
}

// --- Tool Handlers ---

func (s *Service) Grow(ctx context.Context, req *mcp.CallToolRequest, args GrowArgs) (*mcp.CallToolResult, GrowResult, error) {
	if args.Ticks < 0 || args.Ticks > server.MaxTicksPerCall {
		return nil, GrowResult{}, fmt.Errorf("ticks must be between 1 and %d, got %d", server.MaxTicksPerCall, args.Ticks)
	}
	res := s.session.Step(args.Ticks)
	return nil, GrowResult(res), nil
}

func (s *Service) SystemReport(ctx context.Context, req *mcp.CallToolRequest, args ReportArgs) (*mcp.CallToolResult, ReportResult, error) {
	var (
		r        growth.SystemReport
		insights []string
	)
	s.session.Do(func(e *growth.Engine) {
		r = e.SystemReport()
		if h := e.SelfReflectionHistory(); len(h) > 0 {
			insights = h[len(h)-1].Insights
		}
	})
	if insights == nil {
		insights = []string{}
	}

	return nil, ReportResult{
		Generation:       r.Generation,
		Running:          r.Running,
		NodeCount:        r.NodeCount,
		ConnectionCount:  r.ConnectionCount,
		ActiveNodes:      r.ActiveNodes,
		PatternCount:     r.PatternCount,
		ReflectionCount:  r.ReflectionCount,
		AverageEnergy:    r.AverageEnergy,
		AverageCurvature: r.AverageCurvature,
		MaxGeneration:    r.MaxGeneration,
		MemoryBytes:      r.Memory.Total,
		LatestInsights:   insights,
	}, nil
}

func (s *Service) EmergentPatterns(ctx context.Context, req *mcp.CallToolRequest, args PatternsArgs) (*mcp.CallToolResult, PatternsResult, error) {
	switch semantic.PatternType(args.Type) {
	case "", semantic.PatternCluster, semantic.PatternBridge, semantic.PatternSpiral, semantic.PatternFractal:
	default:
		return nil, PatternsResult{}, fmt.Errorf("unknown pattern type %q", args.Type)
	}
	limit := args.Limit
	if limit <= 0 {
		limit = defaultPatternLimit
	}

	var patterns []semantic.Pattern
	s.session.Do(func(e *growth.Engine) { patterns = e.EmergentPatterns() })

	out := PatternsResult{Patterns: []PatternSummary{}}
	for i := len(patterns) - 1; i >= 0 && len(out.Patterns) < limit; i-- {
		p := patterns[i]
		if args.Type != "" && string(p.Type) != args.Type {
			continue
		}
		out.Patterns = append(out.Patterns, PatternSummary{
			ID:        p.ID,
			Type:      string(p.Type),
			NodeCount: len(p.NodeIDs),
			Strength:  p.Strength,
			Dimension: p.Dimension,
			CenterX:   p.Center.X,
			CenterY:   p.Center.Y,
		})
	}
	return nil, out, nil
}

func (s *Service) Reset(ctx context.Context, req *mcp.CallToolRequest, args ResetArgs) (*mcp.CallToolResult, ResetResult, error) {
	s.session.Reset()
	return nil, ResetResult{Status: "reset", NodeCount: s.session.Report().NodeCount}, nil
}
