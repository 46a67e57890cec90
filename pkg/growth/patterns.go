package growth

import (
	"fmt"
	"math"
	"runtime/debug"
	"slices"

	"github.com/sanonone/glyphgarden/pkg/metrics"
	"github.com/sanonone/glyphgarden/pkg/semantic"
	"github.com/sanonone/glyphgarden/pkg/types"
)

const (
	minPatternNodes  = 10
	clusterOverlap   = 0.7
	fractalDimension = 0.05
)

// recordPatterns runs emergent pattern recognition and keeps the patterns
// that are not already recorded.
func (e *Engine) recordPatterns() {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("emergent pattern recognition failed",
				"generation", e.generation,
				"error", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
		}
	}()

	found := e.semantic.RecognizeEmergentPatterns(e.nodes.all(), e.connections)
	added := 0
	for _, p := range found.All() {
		if e.knownPattern(p) {
			continue
		}
		e.patterns = append(e.patterns, p)
		metrics.PatternsTotal.WithLabelValues(string(p.Type)).Inc()
		added++
	}
	e.patterns = trimOldest(e.patterns, maxPatterns)
	if added > 0 {
		e.logger.Debug("emergent patterns recorded", "added", added, "total", len(e.patterns))
	}
}

func (e *Engine) knownPattern(p semantic.Pattern) bool {
	for _, q := range e.patterns {
		if q.Type == p.Type && samePattern(p, q) {
			return true
		}
	}
	return false
}

// samePattern compares two patterns of the same type.
func samePattern(a, b semantic.Pattern) bool {
	switch a.Type {
	case semantic.PatternCluster:
		return overlap(a.NodeIDs, b.NodeIDs) >= clusterOverlap
	case semantic.PatternBridge, semantic.PatternSpiral:
		return slices.Equal(a.NodeIDs, b.NodeIDs)
	case semantic.PatternFractal:
		return math.Abs(a.Dimension-b.Dimension) <= fractalDimension
	}
	return false
}

// overlap is the size of the intersection relative to the smaller set.
func overlap(a, b []types.NodeID) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[types.NodeID]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	shared := 0
	for _, id := range b {
		if _, ok := set[id]; ok {
			shared++
		}
	}
	return float64(shared) / float64(min(len(a), len(b)))
}
