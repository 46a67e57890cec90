package growth

import (
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/sanonone/glyphgarden/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const poem = "the river bends where the willow leans and the stone remembers every " +
	"word the water spoke in the long blue evening before the lamps were lit"

var fixedClock = ClockFunc(func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) })

func testOptions() Options {
	opts := DefaultOptions()
	opts.Rand = rand.New(rand.NewSource(42))
	opts.Clock = fixedClock
	return opts
}

func nopOptions() Options {
	opts := testOptions()
	opts.CanvasWidth, opts.CanvasHeight = 4000, 4000
	opts.Spatial = func(float64, float64, float64) SpatialIndexer { return NopSpatial{} }
	opts.Semantic = func() SemanticSource { return NopSemantic{} }
	return opts
}

func growTicks(e *Engine, n int) {
	for i := 0; i < n; i++ {
		e.Grow()
	}
}

func TestSixCharacterText(t *testing.T) {
	// 1. A 6-grapheme text plants clamp(floor(sqrt(6)/5), 1, 10) = 1 seed.
	e := New("abcdef", testOptions())
	e.Initialize()
	require.Len(t, e.Nodes(), 1)
	assert.Equal(t, 1, e.QueueLen())

	// 2. Five ticks never produce a generation deeper than 5.
	e.Start()
	growTicks(e, 5)

	nodes := e.Nodes()
	assert.GreaterOrEqual(t, len(nodes), 1)
	for _, n := range nodes {
		assert.LessOrEqual(t, n.Generation, 5)
		assert.Less(t, n.TextIndex, 6)
	}
}

func TestExhaustedNodeLeavesQueue(t *testing.T) {
	e := New("abcdefghij", testOptions())
	e.Initialize()
	require.Equal(t, 1, e.QueueLen())

	seed, ok := e.nodes.get(e.queue[0])
	require.True(t, ok)
	seed.Energy = 0

	e.Start()
	e.Grow()

	assert.Equal(t, 0, e.QueueLen(), "a node without energy is terminal")
	assert.Len(t, e.Nodes(), 1, "and produces no successor")
	assert.Empty(t, e.Connections())
	assert.Equal(t, 1, e.Generation())
}

func TestSeedCount(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want int
	}{
		{"tiny", 3, 1},
		{"just below two", 99, 1},
		{"two seeds", 100, 2},
		{"five seeds", 625, 5},
		{"capped", 10000, 10},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := New(strings.Repeat("x", tc.n), testOptions())
			e.Initialize()
			assert.Len(t, e.Nodes(), tc.want)
		})
	}
}

func TestSeedsRingTheCenter(t *testing.T) {
	e := New(strings.Repeat("abcde", 200), testOptions())
	e.Initialize()
	center := types.Vec2{X: 400, Y: 300}
	nodes := e.Nodes()
	require.Len(t, nodes, 6)
	for i, n := range nodes {
		d := n.Position.Dist(center)
		assert.GreaterOrEqual(t, d, 100.0)
		assert.LessOrEqual(t, d, 150.0)
		assert.Equal(t, i*1000/6, n.TextIndex)
		assert.False(t, n.HasParent)
		assert.Equal(t, 100.0, n.Energy)
		assert.InDelta(t, 1.0, n.Velocity.Len(), 1e-9)
	}
}

func TestEmptyText(t *testing.T) {
	e := New("   ", testOptions())
	e.Initialize()
	e.Start()
	e.Grow()
	assert.Empty(t, e.Nodes())
	assert.Equal(t, 0, e.Generation(), "grow is a no-op with an empty queue")
}

func TestGrowWhilePaused(t *testing.T) {
	e := New(poem, testOptions())
	e.Initialize()
	e.Grow()
	assert.Equal(t, 0, e.Generation())

	e.Start()
	assert.True(t, e.Running())
	e.Grow()
	e.Pause()
	e.Grow()
	assert.Equal(t, 1, e.Generation())
}

func TestInitializeIsIdempotent(t *testing.T) {
	e := New(poem, testOptions())
	e.Initialize()
	n := len(e.Nodes())
	e.Initialize()
	assert.Len(t, e.Nodes(), n)
}

func TestInvalidGeometryFallsBack(t *testing.T) {
	opts := testOptions()
	opts.CanvasWidth, opts.CanvasHeight, opts.CellSize = -1, math.NaN(), 0
	e := New(poem, opts)
	st := e.SpatialStats()
	assert.Equal(t, 16, st.Columns)
	assert.Equal(t, 12, st.Rows)
	assert.Equal(t, 50.0, st.CellSize)
}

func TestGrowthInvariants(t *testing.T) {
	e := New(strings.Repeat(poem+" ", 4), testOptions())
	e.Initialize()
	e.Start()
	growTicks(e, 60)

	nodes := e.Nodes()
	require.Greater(t, len(nodes), 10)
	byID := make(map[types.NodeID]*types.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	t.Run("unique connections", func(t *testing.T) {
		seen := make(map[[2]types.NodeID]bool)
		for _, c := range e.Connections() {
			assert.False(t, seen[c.Key()], "duplicate connection %v", c.Key())
			seen[c.Key()] = true

			child, ok := byID[c.To]
			require.True(t, ok)
			assert.True(t, child.HasParent)
			assert.Equal(t, c.From, child.Parent)
		}
	})

	t.Run("physical spacing", func(t *testing.T) {
		related := func(a, b *types.Node) bool {
			return (a.HasParent && a.Parent == b.ID) || (b.HasParent && b.Parent == a.ID)
		}
		for i, a := range nodes {
			for _, b := range nodes[i+1:] {
				if related(a, b) {
					continue
				}
				assert.GreaterOrEqual(t, a.Position.Dist(b.Position), physicalThreshold,
					"nodes %d and %d", a.ID, b.ID)
			}
		}
	})

	t.Run("lineage", func(t *testing.T) {
		for _, n := range nodes {
			assert.True(t, e.inBounds(n.Position))
			if !n.HasParent {
				continue
			}
			parent, ok := byID[n.Parent]
			if !ok {
				continue
			}
			assert.LessOrEqual(t, n.Energy, parent.Energy)
			assert.Equal(t, parent.Generation+1, n.Generation)
			assert.Equal(t, parent.TextIndex+1, n.TextIndex)
			assert.Contains(t, parent.Children, n.ID)
		}
	})

	t.Run("bounded logs", func(t *testing.T) {
		assert.LessOrEqual(t, len(e.ReadingTrajectory()), maxTrajectory)
		assert.LessOrEqual(t, len(e.EmergentPatterns()), maxPatterns)
		assert.LessOrEqual(t, len(e.CollocationFields()), maxCollocationFields)
		assert.Equal(t, e.SpatialStats().ItemCount, len(nodes))
	})
}

func TestSeededGrowthIsDeterministic(t *testing.T) {
	run := func() []*types.Node {
		e := New(poem, testOptions())
		e.Initialize()
		e.Start()
		growTicks(e, 25)
		return e.Nodes()
	}
	a, b := run(), run()
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Position, b[i].Position)
		assert.Equal(t, a[i].Char, b[i].Char)
	}
}

func TestNopCollaborators(t *testing.T) {
	e := New(poem, nopOptions())
	e.Initialize()
	e.Start()
	growTicks(e, 12)

	assert.Greater(t, len(e.Nodes()), 1)
	assert.Equal(t, e.SpatialStats().ItemCount, 0)
	assert.Empty(t, e.SemanticStructure().Collocations)
	assert.Len(t, e.SelfReflectionHistory(), 1, "reflection runs on generation 10")
	for _, c := range e.Connections() {
		assert.Equal(t, types.SemanticContrast, c.Semantic, "everything is maximally distant")
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	e := New(poem, testOptions())
	e.Initialize()
	nodes := e.Nodes()
	nodes[0].Char = "changed"
	n, ok := e.Node(nodes[0].ID)
	require.True(t, ok)
	assert.NotEqual(t, "changed", n.Char)

	_, ok = e.Node(9999)
	assert.False(t, ok)
}

func TestReset(t *testing.T) {
	e := New(poem, testOptions())
	e.Initialize()
	seeds := len(e.Nodes())
	e.Start()
	growTicks(e, 12)
	require.Greater(t, len(e.Nodes()), seeds)

	e.Reset()
	assert.False(t, e.Running())
	assert.Equal(t, 0, e.Generation())
	assert.Len(t, e.Nodes(), seeds)
	assert.Empty(t, e.Connections())
	assert.Empty(t, e.ReadingTrajectory())
	assert.Empty(t, e.SelfReflectionHistory())
	assert.Empty(t, e.EmergentPatterns())
	assert.Equal(t, seeds, e.SpatialStats().ItemCount)
}

func TestMemoryCleanup(t *testing.T) {
	opts := testOptions()
	opts.CanvasWidth, opts.CanvasHeight = 4000, 4000
	opts.Semantic = func() SemanticSource { return NopSemantic{} }
	e := New(strings.Repeat("abcdefghijklmnopqrstuvwxyz", 100), opts)
	e.Initialize()
	e.Start()
	growTicks(e, 4)

	before := e.Nodes()
	require.GreaterOrEqual(t, len(before), 20)

	e.maxNodes = 20
	e.PerformMemoryCleanup()

	after := e.Nodes()
	require.Len(t, after, 16)
	assert.Equal(t, before[len(before)-16:][0].ID, after[0].ID, "the newest nodes survive")
	assert.Equal(t, 16, e.SpatialStats().ItemCount, "index rebuilt from survivors")

	alive := make(map[types.NodeID]bool)
	for _, n := range after {
		alive[n.ID] = true
	}
	for _, c := range e.Connections() {
		assert.True(t, alive[c.From] && alive[c.To])
	}
	for _, id := range e.queue {
		assert.True(t, alive[id])
	}
}

func TestCleanupRunsAtMaxNodes(t *testing.T) {
	opts := nopOptions()
	opts.MaxNodes = 30
	e := New(strings.Repeat("abcdefghijklmnopqrstuvwxyz", 100), opts)
	e.Initialize()
	e.Start()
	for i := 0; i < 15; i++ {
		e.Grow()
		assert.Less(t, len(e.Nodes()), 30)
	}
}

func TestSetParamsSanitizes(t *testing.T) {
	e := New(poem, testOptions())
	p := DefaultParams()
	p.SemanticGravity = 7
	p.BranchProbability = math.NaN()
	e.SetParams(p)
	assert.Equal(t, 1.0, e.Params().SemanticGravity)
	assert.Equal(t, 0.0, e.Params().BranchProbability)
}

func TestSystemReport(t *testing.T) {
	opts := testOptions()
	opts.CanvasWidth, opts.CanvasHeight = 2000, 2000
	e := New(poem, opts)
	e.Initialize()
	e.Start()
	growTicks(e, 10)

	r := e.SystemReport()
	assert.Equal(t, 10, r.Generation)
	assert.True(t, r.Running)
	assert.Equal(t, len(e.Nodes()), r.NodeCount)
	assert.Equal(t, len(e.Connections()), r.ConnectionCount)
	assert.LessOrEqual(t, r.MaxGeneration, 10)
	assert.Greater(t, r.AverageEnergy, 0.0)
	assert.Equal(t, r.Memory.Nodes+r.Memory.Connections+r.Memory.Index+r.Memory.Logs+r.Memory.Text, r.Memory.Total)
	assert.Greater(t, r.Memory.Total, int64(0))
	assert.NotNil(t, r.Field.TopCollocations)
}
