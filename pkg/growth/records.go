package growth

import (
	"time"

	"github.com/sanonone/glyphgarden/pkg/semantic"
	"github.com/sanonone/glyphgarden/pkg/types"
)

const (
	maxTrajectory        = 500
	maxCollocationFields = 200
	maxPatterns          = 100
	maxReflections       = 50
	maxConnections       = 2000
)

// NodeSnapshot is the part of a node a trajectory entry keeps.
type NodeSnapshot struct {
	ID       types.NodeID `json:"id"`
	Char     string       `json:"char"`
	Position types.Vec2   `json:"position"`
	Energy   float64      `json:"energy"`
}

func snapshot(n *types.Node) NodeSnapshot {
	return NodeSnapshot{ID: n.ID, Char: n.Char, Position: n.Position, Energy: n.Energy}
}

// SemanticContext describes the field around a node when it was read.
type SemanticContext struct {
	Complexity     float64 `json:"complexity"`
	MaxCollocation float64 `json:"max_collocation"`
	Neighbors      int     `json:"neighbors"`
}

// CognitiveContext describes the simulated reader when the node was read.
type CognitiveContext struct {
	Load      float64        `json:"load"`
	Focus     []types.NodeID `json:"focus"`
	Curvature float64        `json:"curvature"`
}

// TrajectoryEntry records one processed node. To is nil when the node
// produced no successor.
type TrajectoryEntry struct {
	Generation int              `json:"generation"`
	From       NodeSnapshot     `json:"from"`
	To         *NodeSnapshot    `json:"to,omitempty"`
	Direction  types.Vec2       `json:"direction"`
	Semantic   SemanticContext  `json:"semantic"`
	Cognitive  CognitiveContext `json:"cognitive"`
	Timestamp  time.Time        `json:"timestamp"`
}

// Adjustment is one parameter change made by self-reflection.
type Adjustment struct {
	Param string  `json:"param"`
	From  float64 `json:"from"`
	To    float64 `json:"to"`
}

// Reflection is a snapshot of the engine's aggregate state together with the
// insights and parameter adjustments derived from it.
type Reflection struct {
	ID               string              `json:"id"`
	Generation       int                 `json:"generation"`
	Timestamp        time.Time           `json:"timestamp"`
	NodeCount        int                 `json:"node_count"`
	AverageResonance float64             `json:"average_resonance"`
	SemanticDensity  float64             `json:"semantic_density"`
	VisualComplexity float64             `json:"visual_complexity"`
	CognitiveLoad    float64             `json:"cognitive_load"`
	Insights         []string            `json:"insights"`
	Adjustments      []Adjustment        `json:"adjustments"`
	Field            semantic.SelfReport `json:"field"`
}

// appendCapped appends v and drops the oldest entries beyond limit.
func appendCapped[T any](s []T, limit int, v ...T) []T {
	s = append(s, v...)
	return trimOldest(s, limit)
}

// trimOldest keeps the newest limit entries of s.
func trimOldest[T any](s []T, limit int) []T {
	if len(s) <= limit {
		return s
	}
	return append(s[:0:0], s[len(s)-limit:]...)
}
