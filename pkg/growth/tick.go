package growth

import (
	"math"
	"time"

	"github.com/sanonone/glyphgarden/pkg/metrics"
	"github.com/sanonone/glyphgarden/pkg/types"
)

const (
	neighborRadius  = 50.0
	repulsionRadius = 30.0
	repulsionScale  = 0.3
	readingRadius   = 100.0

	// minBranchEnergy is the parent energy a semantic branch requires.
	minBranchEnergy = 50.0
	branchEnergy    = 0.8
	maxBranchChance = 0.8
)

// Grow runs one generation. It does nothing while the engine is paused or
// when no node is active.
func (e *Engine) Grow() {
	if !e.running || len(e.queue) == 0 {
		return
	}
	start := time.Now()

	var next []types.NodeID
	for _, id := range e.queue {
		node, ok := e.nodes.get(id)
		if !ok {
			continue
		}
		next = append(next, e.step(node)...)
	}
	e.queue = next
	e.generation++

	if e.nodes.len() >= minPatternNodes {
		e.recordPatterns()
	}
	if e.generation%reflectEvery == 0 {
		e.reflect()
	}
	if e.nodes.len() >= e.maxNodes {
		e.PerformMemoryCleanup()
	}

	metrics.GrowthTicksTotal.Inc()
	metrics.TickDuration.Observe(time.Since(start).Seconds())
	e.updateGauges()
}

func (e *Engine) updateGauges() {
	metrics.GraphSize.WithLabelValues("nodes").Set(float64(e.nodes.len()))
	metrics.GraphSize.WithLabelValues("connections").Set(float64(len(e.connections)))
	metrics.GraphSize.WithLabelValues("queue").Set(float64(len(e.queue)))
}

// neighbors returns the nodes within radius of p, excluding the given id.
func (e *Engine) neighbors(p types.Vec2, radius float64, exclude types.NodeID) []*types.Node {
	found := e.spatial.Query(p, radius)
	out := make([]*types.Node, 0, len(found))
	for _, n := range found {
		if n != nil && n.ID != exclude {
			out = append(out, n)
		}
	}
	return out
}

// step advances one active node and returns the ids of the nodes it spawned.
func (e *Engine) step(node *types.Node) []types.NodeID {
	if node.Energy <= 0 || node.TextIndex+1 >= len(e.graphemes) {
		return nil
	}
	p := e.params
	near := e.neighbors(node.Position, neighborRadius, node.ID)

	physical := node.Velocity
	for _, n := range near {
		d := n.Position.Dist(node.Position)
		if d < repulsionRadius && d > 0 {
			away := node.Position.Sub(n.Position).Normalize()
			physical = physical.Add(away.Scale((repulsionRadius - d) / repulsionRadius * repulsionScale))
		}
	}
	physical = physical.Normalize()
	if physical.Len() == 0 {
		physical = types.FromAngle(e.rng.Float64() * 2 * math.Pi)
	}

	var force types.Vec2
	for _, n := range near {
		toward := n.Position.Sub(node.Position)
		f := e.semantic.CalculateSemanticForce(node.Char, n.Char, toward.Len())
		toward = toward.Normalize()
		force = force.Add(toward.Scale(f.Attraction - f.Repulsion)).Add(toward.Perp().Scale(f.Lateral))
	}
	blend := physical.Scale(1 - p.SemanticGravity).Add(force.Scale(p.SemanticGravity))

	reading := e.semantic.SimulateReadingBody(node, e.neighbors(node.Position, readingRadius, node.ID))
	embodied := reading.Direction
	if embodied.Len() == 0 {
		embodied = blend.Normalize()
	}

	wave := math.Sin(float64(node.Generation)*0.1 + float64(node.TextIndex)*0.05)
	direction := blend.Scale(1 - p.EmbodimentFactor).
		Add(embodied.Scale(p.EmbodimentFactor)).
		Add(blend.Perp().Scale(wave * p.InterferenceAmplitude)).
		Normalize()
	if direction.Len() == 0 {
		direction = physical
	}

	maxColl, strongColl := 0.0, 0
	for _, n := range near {
		c := e.semantic.Collocation(node.Char, n.Char)
		maxColl = math.Max(maxColl, c)
		if c > 0.5 {
			strongColl++
		}
	}
	complexity := e.semantic.Complexity(node.Char)
	curvature := types.Clamp01((p.InitialEnergy-node.Energy)/p.InitialEnergy + maxColl*0.3 + complexity*0.2)
	// The turn spans [-c*pi/2, c*pi/2] narrowed by StraightPreference: at 1
	// it halves, at 0 the full range applies.
	turn := (e.rng.Float64()*2 - 1) * curvature * math.Pi / 2 * (1 - p.StraightPreference*0.5)
	direction = direction.Rotate(turn)

	decay := types.Clamp(p.EnergyDecay+reading.CognitiveLoad*0.3-maxColl*p.CollocationResonance*0.2, 0.1, 1)
	char := e.graphemes[node.TextIndex+1]
	ctx := growthContext{
		curvature:  curvature,
		complexity: complexity,
		maxColl:    maxColl,
		load:       reading.CognitiveLoad,
	}

	var spawned []types.NodeID
	var successor *types.Node
	candidate := node.Position.Add(direction.Scale(p.CharacterSpacing))
	if reason := e.conflict(candidate, char, node.ID); reason == "" {
		successor = e.spawn(node, candidate, direction, char, math.Max(0, node.Energy-decay), types.BranchNone, ctx)
	} else {
		metrics.ConflictsTotal.WithLabelValues(reason).Inc()
		successor = e.avoidanceBranch(node, char, ctx)
	}
	if successor != nil {
		spawned = append(spawned, successor.ID)
	}

	if b := e.semanticBranch(node, near, char, strongColl, complexity, ctx); b != nil {
		spawned = append(spawned, b.ID)
	}

	entry := TrajectoryEntry{
		Generation: node.Generation,
		From:       snapshot(node),
		Direction:  direction,
		Semantic: SemanticContext{
			Complexity:     complexity,
			MaxCollocation: maxColl,
			Neighbors:      len(near),
		},
		Cognitive: CognitiveContext{
			Load:      reading.CognitiveLoad,
			Focus:     reading.Focus,
			Curvature: curvature,
		},
		Timestamp: e.clock.Now(),
	}
	if successor != nil {
		to := snapshot(successor)
		entry.To = &to
	}
	e.trajectory = appendCapped(e.trajectory, maxTrajectory, entry)

	return spawned
}

// growthContext carries the per-step values stamped onto spawned nodes.
type growthContext struct {
	curvature  float64
	complexity float64
	maxColl    float64
	load       float64
}

// spawn creates a child of parent at pos, links and classifies the
// connection and collects the collocation sensations around the child.
func (e *Engine) spawn(parent *types.Node, pos, direction types.Vec2, char string, energy float64, kind types.BranchKind, ctx growthContext) *types.Node {
	gen := parent.Generation + 1
	textIndex := parent.TextIndex + 1
	semDist := e.semantic.SemanticDistance(parent.Char, char)
	coll := e.semantic.Collocation(parent.Char, char)

	child := &types.Node{
		Char:                char,
		Position:            pos,
		Velocity:            direction,
		Energy:              math.Min(energy, parent.Energy),
		Generation:          gen,
		TextIndex:           textIndex,
		Parent:              parent.ID,
		HasParent:           true,
		Curvature:           ctx.curvature,
		SemanticResonance:   types.Clamp01((1-semDist)*0.5 + coll*0.5),
		CollocationStrength: ctx.maxColl,
		ReadingDepth: types.ReadingDepth{
			Temporal:  math.Pow(e.params.TemporalDecay, float64(gen)),
			Semantic:  ctx.complexity,
			Cognitive: ctx.load,
			Cultural:  coll,
		},
		TemporalLayer: types.TemporalLayer{
			Generation: gen,
			Timestamp:  e.clock.Now(),
			Phase:      math.Mod(float64(gen)*0.1+float64(textIndex)*0.05, 2*math.Pi),
		},
		Branch: kind,
	}
	e.addNode(child)
	parent.Children = append(parent.Children, child.ID)

	conn := e.classify(parent, child)
	if _, dup := e.connKeys[conn.Key()]; !dup {
		e.connKeys[conn.Key()] = struct{}{}
		e.connections = append(e.connections, conn)
	}

	if kind != types.BranchNone {
		metrics.BranchesTotal.WithLabelValues(string(kind)).Inc()
	}

	around := e.neighbors(child.Position, neighborRadius, child.ID)
	if fields := e.semantic.VisualizeCollocationSensation(child, around); len(fields) > 0 {
		e.collocationFields = appendCapped(e.collocationFields, maxCollocationFields, fields...)
	}
	return child
}

// semanticBranch draws the branching chance and, on success, spawns a child
// in the most semantically interesting of 24 directions.
func (e *Engine) semanticBranch(node *types.Node, near []*types.Node, char string, strongColl int, complexity float64, ctx growthContext) *types.Node {
	p := e.params
	depth := 1 / (1 + float64(node.Generation)*0.1)
	chance := types.Clamp(p.BranchProbability+math.Min(0.3, complexity/10)+0.1*float64(strongColl)*depth, 0, maxBranchChance)
	if e.rng.Float64() >= chance || node.Energy <= minBranchEnergy {
		return nil
	}

	type similar struct {
		angle, sim float64
	}
	var aligned []similar
	for _, n := range near {
		if sim := e.semantic.Similarity(node.Char, n.Char); sim > 0.5 {
			aligned = append(aligned, similar{n.Position.Sub(node.Position).Angle(), sim})
		}
	}

	bestAngle, bestScore := 0.0, math.Inf(-1)
	for k := 0; k < 24; k++ {
		a := 2 * math.Pi * float64(k) / 24
		alignment := 0.0
		for _, s := range aligned {
			alignment += math.Max(0, math.Cos(a-s.angle)) * s.sim
		}
		if len(aligned) > 0 {
			alignment /= float64(len(aligned))
		}
		score := math.Abs(math.Sin(3*a+float64(node.Generation)*0.1))*0.3 + alignment
		if score > bestScore {
			bestAngle, bestScore = a, score
		}
	}

	dir := types.FromAngle(bestAngle)
	pos := node.Position.Add(dir.Scale(p.CharacterSpacing))
	if reason := e.conflict(pos, char, node.ID); reason != "" {
		metrics.ConflictsTotal.WithLabelValues(reason).Inc()
		return nil
	}
	return e.spawn(node, pos, dir, char, node.Energy*branchEnergy, types.BranchSemantic, ctx)
}
