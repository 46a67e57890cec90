package semantic

import (
	"fmt"
	"math"
	"runtime/debug"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sanonone/glyphgarden/pkg/types"
	"gonum.org/v1/gonum/stat"
)

// PatternType names an emergent pattern detector.
type PatternType string

const (
	PatternCluster PatternType = "cluster"
	PatternBridge  PatternType = "bridge"
	PatternSpiral  PatternType = "spiral"
	PatternFractal PatternType = "fractal"
)

const (
	clusterSimilarity = 0.7
	clusterMinSize    = 3
	bridgeMin         = 0.8
	bridgeMax         = 0.95
	spiralWindow      = 5
	fractalThreshold  = 0.6
)

// fractalScales are the grid cell sizes compared by the fractal detector.
var fractalScales = [...]float64{10, 30, 90, 270}

// Pattern is a descriptive observation over the grown graph.
type Pattern struct {
	ID         string         `json:"id"`
	Type       PatternType    `json:"type"`
	NodeIDs    []types.NodeID `json:"node_ids,omitempty"`
	Strength   float64        `json:"strength"`
	Center     types.Vec2     `json:"center"`
	Dimension  float64        `json:"dimension,omitempty"`
	DetectedAt time.Time      `json:"detected_at"`
}

// Patterns groups the results of the four detectors.
type Patterns struct {
	Clusters []Pattern `json:"clusters"`
	Bridges  []Pattern `json:"bridges"`
	Spirals  []Pattern `json:"spirals"`
	Fractals []Pattern `json:"fractals"`
}

// All flattens the groups in detector order.
func (p Patterns) All() []Pattern {
	out := make([]Pattern, 0, len(p.Clusters)+len(p.Bridges)+len(p.Spirals)+len(p.Fractals))
	out = append(out, p.Clusters...)
	out = append(out, p.Bridges...)
	out = append(out, p.Spirals...)
	return append(out, p.Fractals...)
}

// RecognizeEmergentPatterns runs the cluster, bridge, spiral and fractal
// detectors. A failing detector is logged and contributes nothing.
func (f *ForceField) RecognizeEmergentPatterns(nodes []*types.Node, connections []types.Connection) Patterns {
	p := Patterns{
		Clusters: []Pattern{},
		Bridges:  []Pattern{},
		Spirals:  []Pattern{},
		Fractals: []Pattern{},
	}
	now := f.now()
	f.guard("clusters", func() { p.Clusters = f.detectClusters(nodes, now) })
	f.guard("bridges", func() { p.Bridges = f.detectBridges(nodes, connections, now) })
	f.guard("spirals", func() { p.Spirals = f.detectSpirals(now) })
	f.guard("fractals", func() { p.Fractals = detectFractals(nodes, now) })
	return p
}

// guard runs fn and turns a panic into a logged error.
func (f *ForceField) guard(stage string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("pattern detector failed",
				"stage", stage,
				"error", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn()
}

func newPattern(t PatternType, now time.Time) Pattern {
	return Pattern{ID: uuid.New().String(), Type: t, DetectedAt: now}
}

func (f *ForceField) detectClusters(nodes []*types.Node, now time.Time) []Pattern {
	out := []Pattern{}
	visited := make([]bool, len(nodes))
	for i, seed := range nodes {
		if visited[i] || seed == nil {
			continue
		}
		visited[i] = true
		members := []int{i}
		for q := 0; q < len(members); q++ {
			cur := nodes[members[q]]
			for j, other := range nodes {
				if visited[j] || other == nil {
					continue
				}
				if f.Similarity(cur.Char, other.Char) > clusterSimilarity {
					visited[j] = true
					members = append(members, j)
				}
			}
		}
		if len(members) < clusterMinSize {
			continue
		}

		pat := newPattern(PatternCluster, now)
		var center types.Vec2
		for _, m := range members {
			pat.NodeIDs = append(pat.NodeIDs, nodes[m].ID)
			center = center.Add(nodes[m].Position)
		}
		sort.Slice(pat.NodeIDs, func(a, b int) bool { return pat.NodeIDs[a] < pat.NodeIDs[b] })
		pat.Center = center.Scale(1 / float64(len(members)))
		pat.Strength = math.Min(1, float64(len(members))/float64(len(nodes)))
		out = append(out, pat)
	}
	return out
}

func (f *ForceField) detectBridges(nodes []*types.Node, connections []types.Connection, now time.Time) []Pattern {
	out := []Pattern{}
	byID := make(map[types.NodeID]*types.Node, len(nodes))
	for _, n := range nodes {
		if n != nil {
			byID[n.ID] = n
		}
	}
	for _, c := range connections {
		from, ok1 := byID[c.From]
		to, ok2 := byID[c.To]
		if !ok1 || !ok2 {
			continue
		}
		dist := 1 - f.Similarity(from.Char, to.Char)
		if dist <= bridgeMin || dist >= bridgeMax {
			continue
		}
		pat := newPattern(PatternBridge, now)
		pat.NodeIDs = []types.NodeID{c.From, c.To}
		pat.Strength = dist
		pat.Center = from.Position.Add(to.Position).Scale(0.5)
		out = append(out, pat)
	}
	return out
}

// turnAngle is the unsigned angle between two directions, in [0, pi].
func turnAngle(a, b types.Vec2) float64 {
	if a.Len() == 0 || b.Len() == 0 {
		return 0
	}
	d := math.Abs(b.Angle() - a.Angle())
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}

func (f *ForceField) detectSpirals(now time.Time) []Pattern {
	out := []Pattern{}
	for start := 0; start+spiralWindow <= len(f.history); start++ {
		window := f.history[start : start+spiralWindow]
		total := 0.0
		for k := 1; k < len(window); k++ {
			total += turnAngle(window[k-1].Direction, window[k].Direction)
		}
		if total <= math.Pi {
			continue
		}
		pat := newPattern(PatternSpiral, now)
		var center types.Vec2
		for _, ev := range window {
			pat.NodeIDs = append(pat.NodeIDs, ev.NodeID)
			center = center.Add(ev.Position)
		}
		pat.Center = center.Scale(1 / float64(len(window)))
		pat.Strength = total / math.Pi
		out = append(out, pat)
	}
	return out
}

// FractalScore computes the box-counting slopes between consecutive scales
// and their self-similarity 1/(1+variance). ok is false when fewer than two
// slopes are defined.
func FractalScore(positions []types.Vec2) (dimension, selfSimilarity float64, ok bool) {
	counts := make([]float64, len(fractalScales))
	for i, s := range fractalScales {
		cells := make(map[[2]int64]struct{})
		for _, p := range positions {
			cells[[2]int64{int64(math.Floor(p.X / s)), int64(math.Floor(p.Y / s))}] = struct{}{}
		}
		counts[i] = float64(len(cells))
	}

	slopes := make([]float64, 0, len(counts)-1)
	for k := 0; k+1 < len(counts); k++ {
		if counts[k] == 0 || counts[k+1] == 0 {
			continue
		}
		slope := math.Log(counts[k]/counts[k+1]) / math.Log(3)
		if !math.IsNaN(slope) && !math.IsInf(slope, 0) {
			slopes = append(slopes, slope)
		}
	}
	if len(slopes) < 2 {
		return 0, 0, false
	}
	return stat.Mean(slopes, nil), 1 / (1 + stat.Variance(slopes, nil)), true
}

func detectFractals(nodes []*types.Node, now time.Time) []Pattern {
	positions := make([]types.Vec2, 0, len(nodes))
	var center types.Vec2
	for _, n := range nodes {
		if n != nil && n.Position.IsFinite() {
			positions = append(positions, n.Position)
			center = center.Add(n.Position)
		}
	}
	dim, sim, ok := FractalScore(positions)
	if !ok || sim <= fractalThreshold {
		return []Pattern{}
	}
	pat := newPattern(PatternFractal, now)
	pat.Strength = sim
	pat.Dimension = dim
	pat.Center = center.Scale(1 / float64(len(positions)))
	return []Pattern{pat}
}
