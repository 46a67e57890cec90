package semantic

import (
	"math"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/sanonone/glyphgarden/pkg/types"
)

const (
	// attentionK is the number of nearest nodes a simulated reader attends to.
	attentionK = 5
	// attentionRadius bounds the attention focus.
	attentionRadius = 100.0
)

// ReadingEvent is one entry of the rolling reading history.
type ReadingEvent struct {
	NodeID         types.NodeID `json:"node_id"`
	Char           string       `json:"char"`
	Position       types.Vec2   `json:"position"`
	Direction      types.Vec2   `json:"direction"`
	CognitiveLoad  float64      `json:"cognitive_load"`
	AttentionCount int          `json:"attention_count"`
	Timestamp      time.Time    `json:"timestamp"`
}

// ReadingState is the synthetic reading body computed for one node.
type ReadingState struct {
	Direction     types.Vec2     `json:"direction"`
	CognitiveLoad float64        `json:"cognitive_load"`
	Focus         []types.NodeID `json:"focus"`
	Gesture       types.Vec2     `json:"gesture"`
}

// CognitiveLoad scores how demanding word is to read right now, in [0,1].
func (f *ForceField) CognitiveLoad(word string) float64 {
	length := math.Min(1, float64(utf8.RuneCountInString(word))/5)
	history := math.Min(1, float64(len(f.history))/float64(f.maxHistory))
	return types.Clamp01(0.3*length + 0.4*f.Complexity(word) + 0.3*history)
}

// gesture is the body-memory direction for word, stable across calls.
func gesture(word string) types.Vec2 {
	deg := float64(absHash(word) % 360)
	return types.FromAngle(deg * math.Pi / 180)
}

// SimulateReadingBody blends the direction toward the reader's attention
// focus with the character's body-memory gesture and records the event.
func (f *ForceField) SimulateReadingBody(node *types.Node, nodes []*types.Node) ReadingState {
	if node == nil || !node.Position.IsFinite() {
		f.logger.Debug("reading body rejected: invalid node")
		return ReadingState{}
	}

	type candidate struct {
		n *types.Node
		d float64
	}
	cands := make([]candidate, 0, len(nodes))
	for _, other := range nodes {
		if other == nil || other.ID == node.ID {
			continue
		}
		if d := other.Position.Dist(node.Position); d <= attentionRadius {
			cands = append(cands, candidate{other, d})
		}
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].d != cands[j].d {
			return cands[i].d < cands[j].d
		}
		return cands[i].n.ID < cands[j].n.ID
	})
	if len(cands) > attentionK {
		cands = cands[:attentionK]
	}

	attention := node.Velocity.Normalize()
	focus := make([]types.NodeID, 0, len(cands))
	if len(cands) > 0 {
		var centroid types.Vec2
		for _, c := range cands {
			centroid = centroid.Add(c.n.Position)
			focus = append(focus, c.n.ID)
		}
		centroid = centroid.Scale(1 / float64(len(cands)))
		if dir := centroid.Sub(node.Position).Normalize(); dir.Len() > 0 {
			attention = dir
		}
	}

	load := f.CognitiveLoad(node.Char)
	g := gesture(node.Char)
	w := 1 - load*0.5
	direction := attention.Scale(w).Add(g.Scale(1 - w)).Normalize()

	f.appendHistory(ReadingEvent{
		NodeID:         node.ID,
		Char:           node.Char,
		Position:       node.Position,
		Direction:      direction,
		CognitiveLoad:  load,
		AttentionCount: len(focus),
		Timestamp:      f.now(),
	})

	return ReadingState{
		Direction:     direction,
		CognitiveLoad: load,
		Focus:         focus,
		Gesture:       g,
	}
}

// History returns a copy of the reading history, oldest first.
func (f *ForceField) History() []ReadingEvent {
	return append([]ReadingEvent(nil), f.history...)
}
