package semantic

import (
	"strings"

	"gonum.org/v1/gonum/stat"
)

const topCollocations = 10

// CollocationStrength is one entry of the collocation table.
type CollocationStrength struct {
	First    string  `json:"first"`
	Second   string  `json:"second"`
	Strength float64 `json:"strength"`
}

// SelfReport aggregates the field's state for the adaptive feedback step.
// Every field is populated, also when the field is empty.
type SelfReport struct {
	AssociationSize      int                   `json:"association_size"`
	AssociationEdges     int                   `json:"association_edges"`
	CollocationSize      int                   `json:"collocation_size"`
	HistorySize          int                   `json:"history_size"`
	AverageCognitiveLoad float64               `json:"average_cognitive_load"`
	AttentionSpread      float64               `json:"attention_spread"`
	TopCollocations      []CollocationStrength `json:"top_collocations"`
	AnalyzeCalls         int                   `json:"analyze_calls"`
}

// GenerateSelfReflectivePattern summarizes graph sizes, reading load and
// attention spread.
func (f *ForceField) GenerateSelfReflectivePattern() SelfReport {
	r := SelfReport{
		AssociationSize: len(f.associations),
		CollocationSize: len(f.collocations),
		HistorySize:     len(f.history),
		TopCollocations: []CollocationStrength{},
		AnalyzeCalls:    f.analyzeCalls,
	}
	for _, edges := range f.associations {
		r.AssociationEdges += len(edges)
	}

	if len(f.history) > 0 {
		loads := make([]float64, len(f.history))
		attention := make([]float64, len(f.history))
		for i, ev := range f.history {
			loads[i] = ev.CognitiveLoad
			attention[i] = float64(ev.AttentionCount)
		}
		r.AverageCognitiveLoad = stat.Mean(loads, nil)
		if len(attention) > 1 {
			r.AttentionSpread = stat.StdDev(attention, nil)
		}
	}

	entries := make([]RankEntry, 0, len(f.collocations))
	for key, s := range f.collocations {
		entries = append(entries, RankEntry{Key: key, Score: s})
	}
	for _, key := range KeepTop(entries, topCollocations) {
		first, second, _ := strings.Cut(key, "_")
		r.TopCollocations = append(r.TopCollocations, CollocationStrength{
			First:    first,
			Second:   second,
			Strength: f.collocations[key],
		})
	}
	return r
}

// AverageCognitiveLoad is the mean load over the reading history, 0 when empty.
func (f *ForceField) AverageCognitiveLoad() float64 {
	if len(f.history) == 0 {
		return 0
	}
	total := 0.0
	for _, ev := range f.history {
		total += ev.CognitiveLoad
	}
	return total / float64(len(f.history))
}
