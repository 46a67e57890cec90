package semantic

import (
	"math"

	"github.com/sanonone/glyphgarden/pkg/types"
)

const (
	sensationThreshold = 0.5
	sensationPoints    = 12
	sensationRadius    = 20.0
)

// Resonance is the wave descriptor attached to a sensation ring.
type Resonance struct {
	Frequency float64 `json:"frequency"`
	Amplitude float64 `json:"amplitude"`
	Phase     float64 `json:"phase"`
}

// Sensation is a visualization hint: a ring of points between two strongly
// collocated nodes. The engine passes it through untouched.
type Sensation struct {
	From      types.NodeID `json:"from"`
	To        types.NodeID `json:"to"`
	Strength  float64      `json:"strength"`
	Center    types.Vec2   `json:"center"`
	Points    []types.Vec2 `json:"points"`
	Resonance Resonance    `json:"resonance"`
}

// pseudoFrequency maps a word to a stable frequency in [1, 3).
func pseudoFrequency(word string) float64 {
	return 1 + float64(absHash(word)%100)/50
}

// VisualizeCollocationSensation emits a ring for every neighbor whose
// collocation with node exceeds 0.5.
func (f *ForceField) VisualizeCollocationSensation(node *types.Node, nearby []*types.Node) []Sensation {
	out := make([]Sensation, 0)
	if node == nil {
		return out
	}
	for _, other := range nearby {
		if other == nil || other.ID == node.ID {
			continue
		}
		strength := f.Collocation(node.Char, other.Char)
		if strength <= sensationThreshold {
			continue
		}

		center := node.Position.Add(other.Position).Scale(0.5)
		radius := strength * sensationRadius
		points := make([]types.Vec2, sensationPoints)
		for i := range points {
			theta := 2 * math.Pi * float64(i) / sensationPoints
			points[i] = center.Add(types.FromAngle(theta).Scale(radius))
		}

		fa, fb := pseudoFrequency(node.Char), pseudoFrequency(other.Char)
		out = append(out, Sensation{
			From:     node.ID,
			To:       other.ID,
			Strength: strength,
			Center:   center,
			Points:   points,
			Resonance: Resonance{
				Frequency: (fa + fb) / 2,
				Amplitude: strength,
				Phase:     math.Mod(math.Abs(fa-fb)*math.Pi, 2*math.Pi),
			},
		})
	}
	return out
}
