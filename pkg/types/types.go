// Package types holds the value types shared by the spatial index, the
// semantic force field and the growth engine.
package types

import (
	"math"
	"time"
)

// Vec2 is a point or direction on the canvas plane.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v-o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v*s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the Euclidean distance between v and o.
func (v Vec2) Dist(o Vec2) float64 { return math.Hypot(v.X-o.X, v.Y-o.Y) }

// Normalize returns the unit vector of v. The zero vector stays zero.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Rotate returns v rotated counter-clockwise by theta radians.
func (v Vec2) Rotate(theta float64) Vec2 {
	s, c := math.Sincos(theta)
	return Vec2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// Perp returns v rotated by +90 degrees.
func (v Vec2) Perp() Vec2 { return Vec2{-v.Y, v.X} }

// Angle returns the direction of v in radians.
func (v Vec2) Angle() float64 { return math.Atan2(v.Y, v.X) }

// IsFinite reports whether both coordinates are finite numbers.
func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// FromAngle returns the unit vector pointing at theta radians.
func FromAngle(theta float64) Vec2 {
	s, c := math.Sincos(theta)
	return Vec2{c, s}
}

// NodeID is the arena key of a node. IDs are assigned sequentially, so their
// order is the creation order.
type NodeID uint64

// BranchKind tags the creation path of a node.
type BranchKind string

const (
	// BranchNone marks seeds and ordinary successors.
	BranchNone BranchKind = ""
	// BranchSemantic marks nodes spawned by the branching step.
	BranchSemantic BranchKind = "semantic"
	// BranchAvoidance marks nodes spawned after a rejected successor.
	BranchAvoidance BranchKind = "avoidance"
)

// ReadingDepth describes how deep in the text a node was "read".
type ReadingDepth struct {
	Temporal  float64 `json:"temporal"`
	Semantic  float64 `json:"semantic"`
	Cognitive float64 `json:"cognitive"`
	Cultural  float64 `json:"cultural"`
}

// TemporalLayer is a snapshot of when a node was created.
type TemporalLayer struct {
	Generation int       `json:"generation"`
	Timestamp  time.Time `json:"timestamp"`
	Phase      float64   `json:"phase"`
}

// Node is one grown character instance. Apart from Children, a node is never
// mutated once it has been added to the graph.
type Node struct {
	ID                  NodeID        `json:"id"`
	Char                string        `json:"char"`
	Position            Vec2          `json:"position"`
	Velocity            Vec2          `json:"velocity"`
	Energy              float64       `json:"energy"`
	Generation          int           `json:"generation"`
	TextIndex           int           `json:"text_index"`
	Parent              NodeID        `json:"parent,omitempty"`
	HasParent           bool          `json:"has_parent"`
	Children            []NodeID      `json:"children,omitempty"`
	Curvature           float64       `json:"curvature"`
	SemanticResonance   float64       `json:"semantic_resonance"`
	CollocationStrength float64       `json:"collocation_strength"`
	ReadingDepth        ReadingDepth  `json:"reading_depth"`
	TemporalLayer       TemporalLayer `json:"temporal_layer"`
	Branch              BranchKind    `json:"branch,omitempty"`
}

// Clone returns a copy of n that does not share the Children slice.
func (n *Node) Clone() *Node {
	c := *n
	if n.Children != nil {
		c.Children = append([]NodeID(nil), n.Children...)
	}
	return &c
}

// VisualTier is the stroke weight class of a connection.
type VisualTier string

const (
	VisualPrimary   VisualTier = "primary"
	VisualSecondary VisualTier = "secondary"
	VisualTertiary  VisualTier = "tertiary"
)

// SemanticTier classifies the semantic relation between two connected nodes.
type SemanticTier string

const (
	SemanticCollocation SemanticTier = "collocation"
	SemanticSimilarity  SemanticTier = "similarity"
	SemanticContrast    SemanticTier = "contrast"
	SemanticNeutral     SemanticTier = "neutral"
)

// Interference describes the wave pattern a renderer may draw along a connection.
type Interference struct {
	Amplitude float64 `json:"amplitude"`
	Frequency float64 `json:"frequency"`
	Phase     float64 `json:"phase"`
}

// Connection is a directed parent -> child edge. It is unique by (From, To).
type Connection struct {
	From         NodeID       `json:"from"`
	To           NodeID       `json:"to"`
	Visual       VisualTier   `json:"visual"`
	Semantic     SemanticTier `json:"semantic"`
	Interference Interference `json:"interference"`
	Curvature    float64      `json:"curvature"`
	Resonance    float64      `json:"resonance"`
}

// Key returns the uniqueness key of the connection.
func (c Connection) Key() [2]NodeID { return [2]NodeID{c.From, c.To} }

// Clamp limits v to [lo, hi]. NaN collapses to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 { return Clamp(v, 0, 1) }
