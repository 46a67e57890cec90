package growth

import "github.com/sanonone/glyphgarden/pkg/types"

// Params are the global growth tunables. They may be changed between ticks
// with SetParams; self-reflection retunes SemanticGravity,
// InterferenceAmplitude and EnergyDecay on its own.
type Params struct {
	InitialEnergy         float64 `json:"initial_energy" yaml:"initial_energy"`
	EnergyDecay           float64 `json:"energy_decay" yaml:"energy_decay"`
	StraightPreference    float64 `json:"straight_preference" yaml:"straight_preference"`
	BranchProbability     float64 `json:"branch_probability" yaml:"branch_probability"`
	IntersectionPenalty   float64 `json:"intersection_penalty" yaml:"intersection_penalty"`
	CoilingThreshold      float64 `json:"coiling_threshold" yaml:"coiling_threshold"`
	CharacterSpacing      float64 `json:"character_spacing" yaml:"character_spacing"`
	LineSpacing           float64 `json:"line_spacing" yaml:"line_spacing"`
	SemanticGravity       float64 `json:"semantic_gravity" yaml:"semantic_gravity"`
	CollocationResonance  float64 `json:"collocation_resonance" yaml:"collocation_resonance"`
	InterferenceAmplitude float64 `json:"interference_amplitude" yaml:"interference_amplitude"`
	EmbodimentFactor      float64 `json:"embodiment_factor" yaml:"embodiment_factor"`
	TemporalDecay         float64 `json:"temporal_decay" yaml:"temporal_decay"`
	ReflexivityDepth      float64 `json:"reflexivity_depth" yaml:"reflexivity_depth"`
}

// DefaultParams returns the stock tuning.
func DefaultParams() Params {
	return Params{
		InitialEnergy:         100,
		EnergyDecay:           0.5,
		StraightPreference:    0.7,
		BranchProbability:     0.05,
		IntersectionPenalty:   0.5,
		CoilingThreshold:      30,
		CharacterSpacing:      16,
		LineSpacing:           20,
		SemanticGravity:       0.3,
		CollocationResonance:  0.5,
		InterferenceAmplitude: 0.2,
		EmbodimentFactor:      0.3,
		TemporalDecay:         0.95,
		ReflexivityDepth:      3,
	}
}

type bound struct{ lo, hi float64 }

// fields pairs every parameter with its allowed range.
func (p *Params) fields() []struct {
	v *float64
	b bound
} {
	return []struct {
		v *float64
		b bound
	}{
		{&p.InitialEnergy, bound{1, 1000}},
		{&p.EnergyDecay, bound{0.1, 1}},
		{&p.StraightPreference, bound{0, 1}},
		{&p.BranchProbability, bound{0, 0.8}},
		{&p.IntersectionPenalty, bound{0, 1}},
		{&p.CoilingThreshold, bound{0, 1000}},
		{&p.CharacterSpacing, bound{minSpacing, 200}},
		{&p.LineSpacing, bound{1, 200}},
		{&p.SemanticGravity, bound{0, 1}},
		{&p.CollocationResonance, bound{0, 1}},
		{&p.InterferenceAmplitude, bound{0, 1}},
		{&p.EmbodimentFactor, bound{0, 1}},
		{&p.TemporalDecay, bound{0, 1}},
		{&p.ReflexivityDepth, bound{1, 10}},
	}
}

// Sanitize clamps every parameter into its range. NaN collapses to the
// lower bound.
func (p Params) Sanitize() Params {
	for _, f := range p.fields() {
		*f.v = types.Clamp(*f.v, f.b.lo, f.b.hi)
	}
	return p
}
