package growth

import (
	"log/slog"
	"strconv"

	"github.com/sanonone/glyphgarden/pkg/semantic"
	"github.com/sanonone/glyphgarden/pkg/spatial"
	"github.com/sanonone/glyphgarden/pkg/types"
)

// SpatialIndexer is the proximity capability the engine grows against.
type SpatialIndexer interface {
	Insert(n *types.Node) bool
	Remove(id types.NodeID) bool
	Query(p types.Vec2, radius float64) []*types.Node
	FindNearest(p types.Vec2, maxDistance float64) (*types.Node, bool)
	Len() int
	Clear()
	Cleanup()
	Stats() spatial.Stats
}

// SemanticSource is the force field capability that steers growth.
type SemanticSource interface {
	AnalyzeSemanticStructure(text string)
	AnalyzeTokens(tokens []string)
	Similarity(a, b string) float64
	SemanticDistance(a, b string) float64
	Collocation(a, b string) float64
	Complexity(word string) float64
	CalculateSemanticForce(source, target string, spatialDistance float64) semantic.Force
	SimulateReadingBody(node *types.Node, nodes []*types.Node) semantic.ReadingState
	VisualizeCollocationSensation(node *types.Node, nearby []*types.Node) []semantic.Sensation
	RecognizeEmergentPatterns(nodes []*types.Node, connections []types.Connection) semantic.Patterns
	GenerateSelfReflectivePattern() semantic.SelfReport
	AverageCognitiveLoad() float64
	Structure() semantic.Structure
}

var (
	_ SemanticSource = (*semantic.ForceField)(nil)
	_ SemanticSource = NopSemantic{}
	_ SpatialIndexer = (*GridIndexer)(nil)
	_ SpatialIndexer = NopSpatial{}
)

// GridIndexer adapts the uniform grid index to node pointers.
type GridIndexer struct {
	idx *spatial.Index[*types.Node]
}

// NewGridIndexer creates a grid over a width x height canvas.
func NewGridIndexer(width, height, cellSize float64, logger *slog.Logger) *GridIndexer {
	return &GridIndexer{idx: spatial.New[*types.Node](spatial.Config{
		Width:    width,
		Height:   height,
		CellSize: cellSize,
		Logger:   logger,
	})}
}

func itemID(id types.NodeID) string { return strconv.FormatUint(uint64(id), 10) }

func (g *GridIndexer) Insert(n *types.Node) bool {
	if n == nil {
		return false
	}
	return g.idx.Insert(spatial.Item[*types.Node]{ID: itemID(n.ID), Position: n.Position, Value: n})
}

func (g *GridIndexer) Remove(id types.NodeID) bool { return g.idx.Remove(itemID(id)) }

func (g *GridIndexer) Query(p types.Vec2, radius float64) []*types.Node {
	items := g.idx.Query(p, radius)
	out := make([]*types.Node, len(items))
	for i, it := range items {
		out[i] = it.Value
	}
	return out
}

func (g *GridIndexer) FindNearest(p types.Vec2, maxDistance float64) (*types.Node, bool) {
	it, ok := g.idx.FindNearest(p, maxDistance)
	return it.Value, ok
}

func (g *GridIndexer) Len() int             { return g.idx.Len() }
func (g *GridIndexer) Clear()               { g.idx.Clear() }
func (g *GridIndexer) Cleanup()             { g.idx.Cleanup() }
func (g *GridIndexer) Stats() spatial.Stats { return g.idx.Stats() }

// NopSpatial indexes nothing: every query is empty, so growth runs without
// collision checks.
type NopSpatial struct{}

func (NopSpatial) Insert(*types.Node) bool                             { return true }
func (NopSpatial) Remove(types.NodeID) bool                            { return false }
func (NopSpatial) Query(types.Vec2, float64) []*types.Node             { return []*types.Node{} }
func (NopSpatial) FindNearest(types.Vec2, float64) (*types.Node, bool) { return nil, false }
func (NopSpatial) Len() int                                            { return 0 }
func (NopSpatial) Clear()                                              {}
func (NopSpatial) Cleanup()                                            {}
func (NopSpatial) Stats() spatial.Stats                                { return spatial.Stats{} }

// NopSemantic is a field with no forces: only identical characters are
// similar and nothing is ever collocated.
type NopSemantic struct{}

func (NopSemantic) AnalyzeSemanticStructure(string) {}

func (NopSemantic) AnalyzeTokens([]string) {}

func (NopSemantic) Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	return 0
}

func (NopSemantic) SemanticDistance(string, string) float64 { return 1 }
func (NopSemantic) Collocation(string, string) float64      { return 0 }
func (NopSemantic) Complexity(string) float64               { return 0 }
func (NopSemantic) AverageCognitiveLoad() float64           { return 0 }

func (NopSemantic) CalculateSemanticForce(string, string, float64) semantic.Force {
	return semantic.Force{}
}

func (NopSemantic) SimulateReadingBody(node *types.Node, _ []*types.Node) semantic.ReadingState {
	if node == nil {
		return semantic.ReadingState{}
	}
	return semantic.ReadingState{Direction: node.Velocity.Normalize(), Focus: []types.NodeID{}}
}

func (NopSemantic) VisualizeCollocationSensation(*types.Node, []*types.Node) []semantic.Sensation {
	return []semantic.Sensation{}
}

func (NopSemantic) RecognizeEmergentPatterns([]*types.Node, []types.Connection) semantic.Patterns {
	return semantic.Patterns{
		Clusters: []semantic.Pattern{},
		Bridges:  []semantic.Pattern{},
		Spirals:  []semantic.Pattern{},
		Fractals: []semantic.Pattern{},
	}
}

func (NopSemantic) GenerateSelfReflectivePattern() semantic.SelfReport {
	return semantic.SelfReport{TopCollocations: []semantic.CollocationStrength{}}
}

func (NopSemantic) Structure() semantic.Structure {
	return semantic.Structure{
		Associations: map[string]map[string]float64{},
		Collocations: map[string]float64{},
	}
}
