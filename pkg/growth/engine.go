// Package growth grows a branching graph of character nodes across a bounded
// canvas.
//
// The Engine owns an arena of nodes, the parent -> child connections between
// them, a spatial index and a semantic source. Each call to Grow advances
// every active node by one generation: the successor direction is composed
// from physical repulsion, semantic forces, a simulated reading body and a
// sinusoidal interference term, then checked for collisions before it is
// accepted. After the node loop the engine records emergent patterns and,
// every tenth generation, reflects on its own state and retunes a few
// parameters.
//
// Basic usage:
//
//	e := growth.New(text, growth.DefaultOptions())
//	e.Initialize()
//	e.Start()
//	for i := 0; i < 100; i++ {
//	    e.Grow()
//	}
//	report := e.SystemReport()
//
// An Engine is not safe for concurrent use; callers serialize access.
package growth

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/sanonone/glyphgarden/pkg/semantic"
	"github.com/sanonone/glyphgarden/pkg/spatial"
	"github.com/sanonone/glyphgarden/pkg/textanalyzer"
	"github.com/sanonone/glyphgarden/pkg/types"
)

const (
	defaultWidth    = 800
	defaultHeight   = 600
	defaultCellSize = 50

	// DefaultMaxNodes is the arena size that triggers memory cleanup.
	DefaultMaxNodes = 1000
)

// Options configures an Engine.
type Options struct {
	// CanvasWidth, CanvasHeight and CellSize describe the grid. Non-positive
	// or non-finite values fall back to 800x600 with 50 unit cells.
	CanvasWidth  float64
	CanvasHeight float64
	CellSize     float64

	// Params is sanitized on construction.
	Params Params

	// Seed seeds the engine's RNG when Rand is nil.
	Seed int64
	Rand *rand.Rand

	// Clock stamps nodes and reflections. Default: wall clock.
	Clock  Clock
	Logger *slog.Logger

	// MaxNodes triggers PerformMemoryCleanup at the end of a tick.
	// Default: 1000.
	MaxNodes int

	// Spatial and Semantic build the engine's collaborators, on construction
	// and again on Reset. Nil selects the grid index and the ForceField.
	Spatial  func(width, height, cellSize float64) SpatialIndexer
	Semantic func() SemanticSource
}

// DefaultOptions returns an 800x600 canvas with the stock parameters.
//
// Defaults:
//   - Canvas: 800x600, 50 unit cells
//   - Seed: 42
//   - MaxNodes: 1000
func DefaultOptions() Options {
	return Options{
		CanvasWidth:  defaultWidth,
		CanvasHeight: defaultHeight,
		CellSize:     defaultCellSize,
		Params:       DefaultParams(),
		Seed:         42,
		MaxNodes:     DefaultMaxNodes,
	}
}

// Engine is the growth simulation.
type Engine struct {
	width, height, cellSize float64
	maxNodes                int

	params Params
	rng    *rand.Rand
	clock  Clock
	logger *slog.Logger

	newSpatial  func(width, height, cellSize float64) SpatialIndexer
	newSemantic func() SemanticSource
	spatial     SpatialIndexer
	semantic    SemanticSource

	text      string
	graphemes []string

	nodes       *arena
	nextID      types.NodeID
	connections []types.Connection
	connKeys    map[[2]types.NodeID]struct{}
	queue       []types.NodeID

	collocationFields []semantic.Sensation
	trajectory        []TrajectoryEntry
	patterns          []semantic.Pattern
	reflections       []Reflection

	generation  int
	running     bool
	initialized bool
}

func validDimension(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return def
	}
	return v
}

// New creates an engine for sourceText. Call Initialize to plant the seeds.
func New(sourceText string, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "growth")

	e := &Engine{
		width:    validDimension(opts.CanvasWidth, defaultWidth),
		height:   validDimension(opts.CanvasHeight, defaultHeight),
		cellSize: validDimension(opts.CellSize, defaultCellSize),
		maxNodes: opts.MaxNodes,
		params:   opts.Params.Sanitize(),
		rng:      opts.Rand,
		clock:    opts.Clock,
		logger:   logger,
		text:     sourceText,
	}
	if e.width != opts.CanvasWidth || e.height != opts.CanvasHeight || e.cellSize != opts.CellSize {
		logger.Warn("invalid canvas geometry, using defaults",
			"width", opts.CanvasWidth, "height", opts.CanvasHeight, "cell_size", opts.CellSize)
	}
	if e.maxNodes <= 0 {
		e.maxNodes = DefaultMaxNodes
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(opts.Seed))
	}
	if e.clock == nil {
		e.clock = systemClock{}
	}

	e.newSpatial = opts.Spatial
	if e.newSpatial == nil {
		e.newSpatial = func(w, h, cell float64) SpatialIndexer {
			return NewGridIndexer(w, h, cell, logger)
		}
	}
	e.newSemantic = opts.Semantic
	if e.newSemantic == nil {
		e.newSemantic = func() SemanticSource {
			return semantic.New(semantic.Options{Clock: e.clock.Now, Logger: logger})
		}
	}

	e.clear()
	return e
}

// clear drops all state and rebuilds the collaborators.
func (e *Engine) clear() {
	e.spatial = e.newSpatial(e.width, e.height, e.cellSize)
	e.semantic = e.newSemantic()
	e.nodes = newArena()
	e.nextID = 1
	e.connections = nil
	e.connKeys = make(map[[2]types.NodeID]struct{})
	e.queue = nil
	e.collocationFields = nil
	e.trajectory = nil
	e.patterns = nil
	e.reflections = nil
	e.generation = 0
	e.running = false
	e.initialized = false
}

// Initialize analyzes the source text and plants the seed nodes on a ring
// around the canvas center. It is a no-op after the first call; use Reset to
// start over.
func (e *Engine) Initialize() {
	if e.initialized {
		e.logger.Debug("initialize skipped: already initialized")
		return
	}
	e.initialized = true

	e.graphemes = textanalyzer.GraphemeAnalyzer{}.Analyze(e.text)
	e.semantic.AnalyzeSemanticStructure(e.text)
	// Node chars are graphemes with their case and punctuation, so the
	// character-level pass must see them unchanged.
	e.semantic.AnalyzeTokens(e.graphemes)

	n := len(e.graphemes)
	if n == 0 {
		e.logger.Warn("empty source text, no seeds planted")
		return
	}

	count := int(math.Floor(math.Sqrt(float64(n)) / 5))
	count = min(max(count, 1), 10)
	center := types.Vec2{X: e.width / 2, Y: e.height / 2}
	now := e.clock.Now()

	for i := 0; i < count; i++ {
		angle := 2 * math.Pi * float64(i) / float64(count)
		radius := 100 + e.rng.Float64()*50
		pos := center.Add(types.FromAngle(angle).Scale(radius))
		pos = types.Vec2{X: types.Clamp(pos.X, 0, e.width), Y: types.Clamp(pos.Y, 0, e.height)}
		heading := angle + (e.rng.Float64()*0.5 - 0.25)
		idx := i * n / count

		seed := &types.Node{
			Char:      e.graphemes[idx],
			Position:  pos,
			Velocity:  types.FromAngle(heading),
			Energy:    e.params.InitialEnergy,
			TextIndex: idx,
			ReadingDepth: types.ReadingDepth{
				Temporal: 1,
				Semantic: e.semantic.Complexity(e.graphemes[idx]),
			},
			TemporalLayer: types.TemporalLayer{Timestamp: now},
		}
		e.addNode(seed)
		e.queue = append(e.queue, seed.ID)
	}
	e.logger.Info("engine initialized", "graphemes", n, "seeds", count)
	e.updateGauges()
}

// addNode assigns the next id and registers n in the arena and the index.
func (e *Engine) addNode(n *types.Node) {
	n.ID = e.nextID
	e.nextID++
	e.nodes.put(n)
	if !e.spatial.Insert(n) {
		e.logger.Debug("node not indexed", "id", n.ID)
	}
}

// Start enables Grow.
func (e *Engine) Start() { e.running = true }

// Pause disables Grow from the next call on.
func (e *Engine) Pause() { e.running = false }

// Running reports whether Grow advances the simulation.
func (e *Engine) Running() bool { return e.running }

// Reset clears every collection, rebuilds the index and the semantic source
// and plants fresh seeds. The engine is left paused.
func (e *Engine) Reset() {
	e.clear()
	e.Initialize()
	e.logger.Info("engine reset")
}

// Nodes returns copies of the live nodes in creation order.
func (e *Engine) Nodes() []*types.Node {
	all := e.nodes.all()
	out := make([]*types.Node, len(all))
	for i, n := range all {
		out[i] = n.Clone()
	}
	return out
}

// Node returns a copy of the node with the given id.
func (e *Engine) Node(id types.NodeID) (*types.Node, bool) {
	n, ok := e.nodes.get(id)
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

// Connections returns a copy of the connection list, oldest first.
func (e *Engine) Connections() []types.Connection {
	return append([]types.Connection{}, e.connections...)
}

// SemanticStructure returns the semantic source's graphs.
func (e *Engine) SemanticStructure() semantic.Structure { return e.semantic.Structure() }

// CollocationFields returns the recorded collocation sensations.
func (e *Engine) CollocationFields() []semantic.Sensation {
	return append([]semantic.Sensation{}, e.collocationFields...)
}

// ReadingTrajectory returns the recorded trajectory, oldest first.
func (e *Engine) ReadingTrajectory() []TrajectoryEntry {
	return append([]TrajectoryEntry{}, e.trajectory...)
}

// EmergentPatterns returns the recorded patterns, oldest first.
func (e *Engine) EmergentPatterns() []semantic.Pattern {
	return append([]semantic.Pattern{}, e.patterns...)
}

// SelfReflectionHistory returns the recorded reflections, oldest first.
func (e *Engine) SelfReflectionHistory() []Reflection {
	return append([]Reflection{}, e.reflections...)
}

// SpatialStats returns the index counters.
func (e *Engine) SpatialStats() spatial.Stats { return e.spatial.Stats() }

// Params returns the current parameters.
func (e *Engine) Params() Params { return e.params }

// SetParams replaces the parameters after sanitizing them.
func (e *Engine) SetParams(p Params) { e.params = p.Sanitize() }

// Generation returns the number of executed ticks.
func (e *Engine) Generation() int { return e.generation }

// QueueLen returns the number of active nodes.
func (e *Engine) QueueLen() int { return len(e.queue) }
