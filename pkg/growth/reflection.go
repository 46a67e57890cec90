package growth

import (
	"fmt"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/sanonone/glyphgarden/pkg/metrics"
	"github.com/sanonone/glyphgarden/pkg/types"
	"gonum.org/v1/gonum/stat"
)

const (
	reflectEvery = 10

	highDensity    = 0.7
	highComplexity = 0.8
	highLoad       = 0.7
	lowThreshold   = 0.3
)

// reflect snapshots the aggregate state, derives insights and retunes
// SemanticGravity, InterferenceAmplitude and EnergyDecay.
func (e *Engine) reflect() {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("self-reflection failed",
				"generation", e.generation,
				"error", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
		}
	}()

	r := e.snapshotReflection()
	r.Insights = e.insights(r)
	r.Adjustments = e.retune(r)
	e.reflections = appendCapped(e.reflections, maxReflections, r)

	e.logger.Info("self-reflection",
		"generation", r.Generation,
		"density", r.SemanticDensity,
		"complexity", r.VisualComplexity,
		"load", r.CognitiveLoad,
		"adjustments", len(r.Adjustments),
	)
}

func (e *Engine) snapshotReflection() Reflection {
	nodes := e.nodes.all()
	r := Reflection{
		ID:            uuid.New().String(),
		Generation:    e.generation,
		Timestamp:     e.clock.Now(),
		NodeCount:     len(nodes),
		CognitiveLoad: e.semantic.AverageCognitiveLoad(),
		Insights:      []string{},
		Adjustments:   []Adjustment{},
		Field:         e.semantic.GenerateSelfReflectivePattern(),
	}
	if len(nodes) == 0 {
		return r
	}

	resonance := make([]float64, len(nodes))
	curvature := make([]float64, len(nodes))
	for i, n := range nodes {
		resonance[i] = n.SemanticResonance
		curvature[i] = n.Curvature
	}
	r.AverageResonance = stat.Mean(resonance, nil)
	r.VisualComplexity = stat.Mean(curvature, nil)

	typed := 0
	for _, c := range e.connections {
		if c.Semantic != types.SemanticNeutral {
			typed++
		}
	}
	r.SemanticDensity = float64(typed) / float64(len(nodes))
	return r
}

// insights turns the snapshot into short observations, at most
// ReflexivityDepth of them.
func (e *Engine) insights(r Reflection) []string {
	var out []string
	switch {
	case r.SemanticDensity > highDensity:
		out = append(out, "semantic weave is dense")
	case r.SemanticDensity < lowThreshold:
		out = append(out, "semantic weave is sparse")
	}
	switch {
	case r.VisualComplexity > highComplexity:
		out = append(out, "strokes are coiling")
	case r.VisualComplexity < lowThreshold:
		out = append(out, "strokes run straight")
	}
	switch {
	case r.CognitiveLoad > highLoad:
		out = append(out, "reading is strained")
	case r.CognitiveLoad < lowThreshold:
		out = append(out, "reading is effortless")
	}
	if r.AverageResonance > highDensity {
		out = append(out, "neighbors resonate")
	}
	if limit := int(e.params.ReflexivityDepth); len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// retune scales the three adaptive parameters and returns what changed.
func (e *Engine) retune(r Reflection) []Adjustment {
	adj := []Adjustment{}
	scale := func(name string, v *float64, metric, high, down, up float64) {
		var factor float64
		switch {
		case metric > high:
			factor = down
		case metric < lowThreshold:
			factor = up
		default:
			return
		}
		prev := *v
		*v = types.Clamp(prev*factor, 0.1, 1)
		if *v == prev {
			return
		}
		dir := "up"
		if *v < prev {
			dir = "down"
		}
		metrics.ReflectionAdjustmentsTotal.WithLabelValues(name, dir).Inc()
		adj = append(adj, Adjustment{Param: name, From: prev, To: *v})
	}

	scale("semantic_gravity", &e.params.SemanticGravity, r.SemanticDensity, highDensity, 0.9, 1.05)
	scale("interference_amplitude", &e.params.InterferenceAmplitude, r.VisualComplexity, highComplexity, 0.9, 1.1)
	scale("energy_decay", &e.params.EnergyDecay, r.CognitiveLoad, highLoad, 0.95, 1.05)
	return adj
}
