package growth

import (
	"math"

	"github.com/sanonone/glyphgarden/pkg/types"
)

// Semantic tier thresholds.
const (
	collocationTier = 0.7
	similarityTier  = 0.4
	contrastTier    = 0.8
)

// visualTier grades a connection by the energy of its parent.
func (e *Engine) visualTier(parentEnergy float64) types.VisualTier {
	switch {
	case parentEnergy > e.params.CoilingThreshold:
		return types.VisualPrimary
	case parentEnergy > e.params.CoilingThreshold*0.5:
		return types.VisualSecondary
	default:
		return types.VisualTertiary
	}
}

func semanticTier(coll, semDist float64) types.SemanticTier {
	switch {
	case coll > collocationTier:
		return types.SemanticCollocation
	case semDist < similarityTier:
		return types.SemanticSimilarity
	case semDist > contrastTier:
		return types.SemanticContrast
	default:
		return types.SemanticNeutral
	}
}

// interference derives the wave drawn along a connection from the ratio of
// semantic distance to the parent's remaining energy.
func (e *Engine) interference(parentEnergy, semDist, coll float64) types.Interference {
	ratio := semDist / math.Max(0.01, parentEnergy/e.params.InitialEnergy)
	return types.Interference{
		Amplitude: types.Clamp01(ratio*0.5) * (1 - coll*0.5),
		Frequency: 1 + coll*2,
		Phase:     math.Mod(ratio*math.Pi, 2*math.Pi),
	}
}

// classify builds the connection parent -> child.
func (e *Engine) classify(parent, child *types.Node) types.Connection {
	semDist := e.semantic.SemanticDistance(parent.Char, child.Char)
	coll := e.semantic.Collocation(parent.Char, child.Char)
	return types.Connection{
		From:         parent.ID,
		To:           child.ID,
		Visual:       e.visualTier(parent.Energy),
		Semantic:     semanticTier(coll, semDist),
		Interference: e.interference(parent.Energy, semDist, coll),
		Curvature:    child.Curvature,
		Resonance:    child.SemanticResonance,
	}
}
