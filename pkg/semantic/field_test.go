package semantic

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/sanonone/glyphgarden/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestField(opts Options) *ForceField {
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return fixedTime }
	}
	return New(opts)
}

func TestEmbeddingIsDeterministic(t *testing.T) {
	e := HashEmbedder{}
	a := e.Embed("river")
	b := e.Embed("river")
	require.Len(t, a, DefaultDimension)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, e.Embed("stone"))
	assert.Len(t, HashEmbedder{Dim: 8}.Embed("x"), 8)
}

func TestIdenticalCharsHaveSimilarityOne(t *testing.T) {
	f := newTestField(Options{})
	e := HashEmbedder{}
	assert.InDelta(t, 1.0, CosineSimilarity(e.Embed("a"), e.Embed("a")), 1e-12)
	assert.Equal(t, 1.0, f.Similarity("a", "a"))
}

func TestCosineSimilarityEdgeCases(t *testing.T) {
	assert.Equal(t, 0.0, CosineSimilarity([]float64{0, 0}, []float64{1, 1}))
	assert.Equal(t, 0.0, CosineSimilarity([]float64{1}, []float64{1, 2}))
	assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
	assert.InDelta(t, -1.0, CosineSimilarity([]float64{1, 0}, []float64{-1, 0}), 1e-12)
}

func TestHashWrapsLikeInt32(t *testing.T) {
	assert.Equal(t, int32(97), Hash("a"))
	assert.Equal(t, int32(97*31+98), Hash("ab"))
	// Long input must wrap rather than saturate.
	assert.NotPanics(t, func() { Hash(strings.Repeat("z", 10000)) })
}

func TestAnalyzeRecordsAssociationsAndCollocations(t *testing.T) {
	f := newTestField(Options{})
	f.AnalyzeSemanticStructure("the moon the moon rises")

	st := f.Structure()
	assert.Equal(t, 1.0, st.Associations["the"]["the"], "repeated word pairs with itself")
	assert.InDelta(t, 0.2, st.Collocations["the_moon"], 1e-9)
	assert.InDelta(t, 0.1, st.Collocations["moon_the"], 1e-9)
	assert.InDelta(t, 0.1, st.Collocations["moon_rises"], 1e-9)

	for w, edges := range st.Associations {
		for w2, s := range edges {
			assert.Greater(t, s, associationThreshold, "%s->%s", w, w2)
			assert.LessOrEqual(t, s, 1.0)
		}
	}
}

func TestCollocationSaturates(t *testing.T) {
	f := newTestField(Options{})
	for i := 0; i < 30; i++ {
		f.AnalyzeSemanticStructure("ink well")
	}
	assert.Equal(t, 1.0, f.Collocation("ink", "well"))
	assert.Equal(t, 1.0, f.Collocation("well", "ink"), "falls back to the reverse key")
	assert.Equal(t, 0.0, f.Collocation("ink", "paper"))
}

func TestSemanticDistanceDefaults(t *testing.T) {
	f := newTestField(Options{})
	assert.Equal(t, 1.0, f.SemanticDistance("never", "seen"))
	f.AnalyzeSemanticStructure("echo echo")
	assert.Equal(t, 0.0, f.SemanticDistance("echo", "echo"))
}

func TestCalculateSemanticForceBounds(t *testing.T) {
	f := newTestField(Options{})
	f.AnalyzeSemanticStructure("a b a b c a b a d e f g a a a b b")

	chars := []string{"a", "b", "c", "d", "zz", ""}
	distances := []float64{0, -5, 0.0001, 1, 14.9, 30, 1e6, math.MaxFloat64}
	for _, s := range chars {
		for _, tgt := range chars {
			for _, d := range distances {
				fr := f.CalculateSemanticForce(s, tgt, d)
				assert.GreaterOrEqual(t, fr.Attraction, 0.0)
				assert.LessOrEqual(t, fr.Attraction, 1.0)
				assert.GreaterOrEqual(t, fr.Repulsion, 0.0)
				assert.LessOrEqual(t, fr.Repulsion, 1.0)
				assert.GreaterOrEqual(t, fr.Lateral, -1.0)
				assert.LessOrEqual(t, fr.Lateral, 1.0)
			}
		}
	}
	assert.Equal(t, Force{}, f.CalculateSemanticForce("a", "b", math.NaN()))
}

func TestCalculateSemanticForceFormula(t *testing.T) {
	f := newTestField(Options{})
	// Unknown pair: semantic distance 1, collocation 0.
	fr := f.CalculateSemanticForce("p", "q", 3)
	assert.Equal(t, 0.0, fr.Attraction)
	assert.InDelta(t, 1.0, fr.Repulsion, 1e-12)
	assert.InDelta(t, math.Sin(3*math.Pi)*0.2, fr.Lateral, 1e-12)

	fr = f.CalculateSemanticForce("p", "q", 0.5)
	assert.Equal(t, 0.0, fr.Repulsion)
	assert.InDelta(t, 0.2, fr.Lateral, 1e-12)
}

func TestAssociationGraphStaysBounded(t *testing.T) {
	f := newTestField(Options{MaxAssociations: 50, MaxAnalyzeTokens: 400})
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 5; round++ {
		words := make([]string, 300)
		for i := range words {
			words[i] = fmt.Sprintf("w%d", rng.Intn(5000))
		}
		f.AnalyzeSemanticStructure(strings.Join(words, " "))
		a, _, _ := f.Sizes()
		assert.LessOrEqual(t, a, 50)
	}
}

func TestCollocationTableStaysBounded(t *testing.T) {
	f := newTestField(Options{MaxCollocations: 40})
	words := make([]string, 500)
	for i := range words {
		words[i] = fmt.Sprintf("c%d", i)
	}
	f.AnalyzeSemanticStructure(strings.Join(words, " "))
	_, c, _ := f.Sizes()
	assert.LessOrEqual(t, c, 40)
	assert.Greater(t, c, 0)
}

func TestEvictionKeepsStrongestCollocations(t *testing.T) {
	f := newTestField(Options{MaxCollocations: 10})
	for i := 0; i < 5; i++ {
		f.AnalyzeSemanticStructure("strong bond")
	}
	words := make([]string, 40)
	for i := range words {
		words[i] = fmt.Sprintf("weak%d", i)
	}
	f.AnalyzeSemanticStructure(strings.Join(words, " "))

	assert.InDelta(t, 0.5, f.Collocation("strong", "bond"), 1e-9)
	_, c, _ := f.Sizes()
	assert.LessOrEqual(t, c, 10)
}

func TestKeepTopIsDeterministic(t *testing.T) {
	entries := []RankEntry{
		{Key: "b", Score: 1}, {Key: "a", Score: 1}, {Key: "c", Score: 3}, {Key: "d", Score: 0},
	}
	assert.Equal(t, []string{"c", "a"}, KeepTop(entries, 2))
	assert.Equal(t, []string{"c", "a", "b", "d"}, KeepTop(entries, 10))
	assert.Nil(t, KeepTop(entries, 0))
	assert.True(t, RankLess(RankEntry{"x", 2}, RankEntry{"a", 1}))
	assert.True(t, RankLess(RankEntry{"a", 1}, RankEntry{"b", 1}))
}

func TestReadingHistoryStaysBounded(t *testing.T) {
	f := newTestField(Options{MaxHistory: 20})
	node := &types.Node{ID: 1, Char: "r", Position: types.Vec2{X: 10, Y: 10}, Velocity: types.Vec2{X: 1}}
	for i := 0; i < 75; i++ {
		f.SimulateReadingBody(node, nil)
		_, _, h := f.Sizes()
		assert.LessOrEqual(t, h, 20)
	}
	assert.Len(t, f.History(), 20)
}

func TestSimulateReadingBody(t *testing.T) {
	f := newTestField(Options{})
	node := &types.Node{ID: 1, Char: "a", Position: types.Vec2{X: 100, Y: 100}, Velocity: types.Vec2{X: 1}}
	others := []*types.Node{
		node,
		{ID: 2, Char: "b", Position: types.Vec2{X: 100, Y: 140}},
		{ID: 3, Char: "c", Position: types.Vec2{X: 100, Y: 160}},
		{ID: 4, Char: "d", Position: types.Vec2{X: 500, Y: 500}},
	}

	st := f.SimulateReadingBody(node, others)
	assert.ElementsMatch(t, []types.NodeID{2, 3}, st.Focus)
	assert.InDelta(t, 1.0, st.Direction.Len(), 1e-9)
	assert.GreaterOrEqual(t, st.CognitiveLoad, 0.0)
	assert.LessOrEqual(t, st.CognitiveLoad, 1.0)
	assert.Equal(t, gesture("a"), st.Gesture, "gesture memory is stable")

	hist := f.History()
	require.Len(t, hist, 1)
	assert.Equal(t, types.NodeID(1), hist[0].NodeID)
	assert.Equal(t, 2, hist[0].AttentionCount)
	assert.Equal(t, fixedTime, hist[0].Timestamp)

	assert.Equal(t, ReadingState{}, f.SimulateReadingBody(nil, others))
}

func TestVisualizeCollocationSensation(t *testing.T) {
	f := newTestField(Options{})
	for i := 0; i < 8; i++ {
		f.AnalyzeSemanticStructure("x y")
	}
	a := &types.Node{ID: 1, Char: "x", Position: types.Vec2{X: 0, Y: 0}}
	b := &types.Node{ID: 2, Char: "y", Position: types.Vec2{X: 10, Y: 0}}
	c := &types.Node{ID: 3, Char: "z", Position: types.Vec2{X: 0, Y: 10}}

	out := f.VisualizeCollocationSensation(a, []*types.Node{a, b, c})
	require.Len(t, out, 1)
	s := out[0]
	assert.Equal(t, types.NodeID(2), s.To)
	assert.Len(t, s.Points, sensationPoints)
	assert.Equal(t, types.Vec2{X: 5, Y: 0}, s.Center)
	for _, p := range s.Points {
		assert.InDelta(t, s.Strength*sensationRadius, p.Dist(s.Center), 1e-9)
	}
	assert.Equal(t, s.Strength, s.Resonance.Amplitude)
	assert.GreaterOrEqual(t, s.Resonance.Phase, 0.0)
	assert.Less(t, s.Resonance.Phase, 2*math.Pi)

	assert.Empty(t, f.VisualizeCollocationSensation(nil, nil))
}

func TestRecognizeClustersAndFractals(t *testing.T) {
	f := newTestField(Options{})
	var nodes []*types.Node
	for i := 0; i < 4; i++ {
		nodes = append(nodes, &types.Node{ID: types.NodeID(i + 1), Char: "q", Position: types.Vec2{X: float64(i * 5), Y: 0}})
	}
	p := f.RecognizeEmergentPatterns(nodes, nil)
	require.Len(t, p.Clusters, 1)
	assert.Equal(t, []types.NodeID{1, 2, 3, 4}, p.Clusters[0].NodeIDs)
	assert.NotEmpty(t, p.Clusters[0].ID)
	assert.Empty(t, p.Bridges)
	assert.NotNil(t, p.Spirals)
	assert.NotNil(t, p.Fractals)
}

func TestRecognizeSpirals(t *testing.T) {
	f := newTestField(Options{})
	// A node that turns a quarter circle on every step.
	for i := 0; i < 6; i++ {
		n := &types.Node{
			ID:       types.NodeID(i + 1),
			Char:     "s",
			Position: types.Vec2{X: 400, Y: 300},
			Velocity: types.FromAngle(float64(i) * math.Pi / 2),
		}
		f.SimulateReadingBody(n, nil)
	}
	// Directions are blended with the gesture, so check the detector on the
	// recorded history rather than assuming exact angles.
	p := f.RecognizeEmergentPatterns(nil, nil)
	for _, s := range p.Spirals {
		assert.Len(t, s.NodeIDs, spiralWindow)
		assert.Greater(t, s.Strength, 1.0)
	}

	f.history = nil
	for i := 0; i < 5; i++ {
		f.appendHistory(ReadingEvent{NodeID: types.NodeID(i), Direction: types.FromAngle(float64(i) * 1.2)})
	}
	p = f.RecognizeEmergentPatterns(nil, nil)
	require.Len(t, p.Spirals, 1)
	assert.InDelta(t, 4.8/math.Pi, p.Spirals[0].Strength, 1e-9)
}

func TestRecognizeBridges(t *testing.T) {
	f := newTestField(Options{})
	// "moon" and "river" sit at embedding distance ~0.91, inside the bridge band.
	d := 1 - f.Similarity("moon", "river")
	require.Greater(t, d, bridgeMin)
	require.Less(t, d, bridgeMax)

	nodes := []*types.Node{
		{ID: 1, Char: "moon", Position: types.Vec2{X: 0, Y: 0}},
		{ID: 2, Char: "river", Position: types.Vec2{X: 10, Y: 0}},
		{ID: 3, Char: "moon", Position: types.Vec2{X: 20, Y: 0}},
	}
	conns := []types.Connection{{From: 1, To: 2}, {From: 1, To: 3}, {From: 1, To: 99}}
	p := f.RecognizeEmergentPatterns(nodes, conns)
	require.Len(t, p.Bridges, 1)
	assert.Equal(t, []types.NodeID{1, 2}, p.Bridges[0].NodeIDs)
	assert.Equal(t, types.Vec2{X: 5, Y: 0}, p.Bridges[0].Center)
	assert.InDelta(t, d, p.Bridges[0].Strength, 1e-12)
}

func TestFractalScore(t *testing.T) {
	_, _, ok := FractalScore(nil)
	assert.False(t, ok)

	// A dense square lattice: counts drop by ~9 per scale, slopes ~2.
	var pts []types.Vec2
	for x := 0; x < 270; x += 10 {
		for y := 0; y < 270; y += 10 {
			pts = append(pts, types.Vec2{X: float64(x) + 0.5, Y: float64(y) + 0.5})
		}
	}
	dim, sim, ok := FractalScore(pts)
	require.True(t, ok)
	assert.InDelta(t, 2.0, dim, 0.3)
	assert.Greater(t, sim, fractalThreshold)
}

func TestDetectorPanicIsContained(t *testing.T) {
	f := newTestField(Options{})
	assert.NotPanics(t, func() {
		f.guard("boom", func() { panic("boom") })
	})
}

func TestSelfReportOnEmptyField(t *testing.T) {
	f := newTestField(Options{})
	r := f.GenerateSelfReflectivePattern()
	assert.Equal(t, 0, r.AssociationSize)
	assert.Equal(t, 0.0, r.AverageCognitiveLoad)
	assert.NotNil(t, r.TopCollocations)
	assert.Empty(t, r.TopCollocations)
}

func TestSelfReport(t *testing.T) {
	f := newTestField(Options{})
	f.AnalyzeSemanticStructure("red sky red sky at night")
	node := &types.Node{ID: 1, Char: "r", Position: types.Vec2{X: 1, Y: 1}}
	f.SimulateReadingBody(node, nil)
	f.SimulateReadingBody(node, []*types.Node{{ID: 2, Position: types.Vec2{X: 2, Y: 2}}})

	r := f.GenerateSelfReflectivePattern()
	assert.Equal(t, 2, r.HistorySize)
	assert.Equal(t, 1, r.AnalyzeCalls)
	assert.InDelta(t, math.Sqrt(0.5), r.AttentionSpread, 1e-9, "sample deviation of {0, 1}")
	require.NotEmpty(t, r.TopCollocations)
	assert.Equal(t, CollocationStrength{First: "red", Second: "sky", Strength: 0.2}, r.TopCollocations[0])
	assert.InDelta(t, f.AverageCognitiveLoad(), r.AverageCognitiveLoad, 1e-12)
}

func TestAnalyzeTokensKeepsTokensVerbatim(t *testing.T) {
	f := newTestField(Options{})
	f.AnalyzeTokens([]string{"T", "h", "e", ".", "F"})

	assert.Positive(t, f.Collocation("T", "h"))
	assert.Positive(t, f.Collocation("e", "."))
	assert.Zero(t, f.Collocation("t", "h"), "no lowercasing")
	assert.Zero(t, f.Collocation("e", "F"), "punctuation stays a token")

	// The word path lowercases and drops punctuation.
	f.AnalyzeSemanticStructure("Fox. Jumps")
	assert.Positive(t, f.Collocation("fox", "jumps"))
}

func TestCachesStayBounded(t *testing.T) {
	f := newTestField(Options{})
	n := maxSimilarityCache + 50
	for i := 0; i < n; i++ {
		f.Similarity(fmt.Sprintf("w%d", i), fmt.Sprintf("v%d", i%7))
	}
	assert.LessOrEqual(t, f.embedCache.Len(), maxEmbeddingCache)
	assert.LessOrEqual(t, f.simCache.Len(), maxSimilarityCache)

	// Evicted entries are recomputed to the same value.
	assert.Equal(t, f.Similarity("w0", "v0"), newTestField(Options{}).Similarity("w0", "v0"))
}
