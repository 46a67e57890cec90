package growth

import (
	"math"

	"github.com/sanonone/glyphgarden/pkg/types"
)

const (
	conflictRadius    = 25.0
	physicalThreshold = 15.0
	semanticThreshold = 0.3
	minSpacing        = 1.0

	avoidanceAngles   = 16
	freedomRadius     = 30.0
	minAvoidanceScore = 0.3
)

// Conflict reasons, used as metric labels.
const (
	conflictPhysical = "physical"
	conflictSemantic = "semantic"
	conflictBounds   = "bounds"
)

// conflict reports why a node for char at pos would be rejected, or "" when
// it is acceptable. The parent is never considered a collision.
func (e *Engine) conflict(pos types.Vec2, char string, parent types.NodeID) string {
	if !e.inBounds(pos) {
		return conflictBounds
	}
	for _, n := range e.neighbors(pos, conflictRadius, parent) {
		d := n.Position.Dist(pos)
		if d < physicalThreshold {
			return conflictPhysical
		}
		if d < conflictRadius && e.semantic.SemanticDistance(char, n.Char) < semanticThreshold {
			return conflictSemantic
		}
	}
	return ""
}

func (e *Engine) inBounds(p types.Vec2) bool {
	return p.IsFinite() && p.X >= 0 && p.Y >= 0 && p.X <= e.width && p.Y <= e.height
}

// freedom scores how open the space around pos is for char: spatial freedom
// from the nearest node times the mean semantic distance to the nodes around.
func (e *Engine) freedom(pos types.Vec2, char string, parent types.NodeID) float64 {
	around := e.neighbors(pos, freedomRadius, parent)
	if len(around) == 0 {
		return 1
	}
	nearest, semDist := math.Inf(1), 0.0
	for _, n := range around {
		nearest = math.Min(nearest, n.Position.Dist(pos))
		semDist += e.semantic.SemanticDistance(char, n.Char)
	}
	return math.Min(1, nearest/freedomRadius) * (semDist / float64(len(around)))
}

// avoidanceBranch scans the directions around a node whose successor was
// rejected and spawns a branch in the freest one, if it is free enough.
func (e *Engine) avoidanceBranch(node *types.Node, char string, ctx growthContext) *types.Node {
	bestAngle, bestScore := 0.0, math.Inf(-1)
	for k := 0; k < avoidanceAngles; k++ {
		a := 2 * math.Pi * float64(k) / avoidanceAngles
		pos := node.Position.Add(types.FromAngle(a).Scale(e.params.CharacterSpacing))
		if !e.inBounds(pos) {
			continue
		}
		if score := e.freedom(pos, char, node.ID); score > bestScore {
			bestAngle, bestScore = a, score
		}
	}
	if bestScore <= minAvoidanceScore {
		return nil
	}

	dir := types.FromAngle(bestAngle)
	pos := node.Position.Add(dir.Scale(e.params.CharacterSpacing))
	if reason := e.conflict(pos, char, node.ID); reason != "" {
		return nil
	}
	return e.spawn(node, pos, dir, char, node.Energy*branchEnergy, types.BranchAvoidance, ctx)
}
