package growth

import (
	"github.com/sanonone/glyphgarden/pkg/semantic"
	"github.com/sanonone/glyphgarden/pkg/spatial"
	"gonum.org/v1/gonum/stat"
)

// Rough per-entry footprints used by the memory estimate.
const (
	nodeBytes        = 320
	connectionBytes  = 96
	trajectoryBytes  = 224
	sensationBytes   = 272
	patternBytes     = 160
	reflectionBytes  = 512
	indexEntryBytes  = 48
	queueEntryBytes  = 8
	childEntryBytes  = 8
	graphemeOverhead = 16
)

// MemoryEstimate approximates the bytes held by the engine's collections.
type MemoryEstimate struct {
	Nodes       int64 `json:"nodes"`
	Connections int64 `json:"connections"`
	Index       int64 `json:"index"`
	Logs        int64 `json:"logs"`
	Text        int64 `json:"text"`
	Total       int64 `json:"total"`
}

// SystemReport aggregates the engine's metrics for inspection.
type SystemReport struct {
	Generation        int                 `json:"generation"`
	Running           bool                `json:"running"`
	NodeCount         int                 `json:"node_count"`
	ConnectionCount   int                 `json:"connection_count"`
	ActiveNodes       int                 `json:"active_nodes"`
	PatternCount      int                 `json:"pattern_count"`
	ReflectionCount   int                 `json:"reflection_count"`
	TrajectoryLength  int                 `json:"trajectory_length"`
	CollocationFields int                 `json:"collocation_fields"`
	AverageEnergy     float64             `json:"average_energy"`
	AverageCurvature  float64             `json:"average_curvature"`
	MaxGeneration     int                 `json:"max_generation"`
	TextLength        int                 `json:"text_length"`
	Params            Params              `json:"params"`
	Spatial           spatial.Stats       `json:"spatial"`
	Field             semantic.SelfReport `json:"field"`
	Memory            MemoryEstimate      `json:"memory"`
}

// SystemReport returns a snapshot of the aggregate metrics and a memory
// estimate.
func (e *Engine) SystemReport() SystemReport {
	nodes := e.nodes.all()
	r := SystemReport{
		Generation:        e.generation,
		Running:           e.running,
		NodeCount:         len(nodes),
		ConnectionCount:   len(e.connections),
		ActiveNodes:       len(e.queue),
		PatternCount:      len(e.patterns),
		ReflectionCount:   len(e.reflections),
		TrajectoryLength:  len(e.trajectory),
		CollocationFields: len(e.collocationFields),
		TextLength:        len(e.graphemes),
		Params:            e.params,
		Spatial:           e.spatial.Stats(),
		Field:             e.semantic.GenerateSelfReflectivePattern(),
	}

	children := 0
	if len(nodes) > 0 {
		energy := make([]float64, len(nodes))
		curvature := make([]float64, len(nodes))
		for i, n := range nodes {
			energy[i] = n.Energy
			curvature[i] = n.Curvature
			r.MaxGeneration = max(r.MaxGeneration, n.Generation)
			children += len(n.Children)
		}
		r.AverageEnergy = stat.Mean(energy, nil)
		r.AverageCurvature = stat.Mean(curvature, nil)
	}

	text := int64(0)
	for _, g := range e.graphemes {
		text += int64(len(g)) + graphemeOverhead
	}
	m := MemoryEstimate{
		Nodes:       int64(len(nodes))*nodeBytes + int64(children)*childEntryBytes,
		Connections: int64(len(e.connections)) * connectionBytes,
		Index:       int64(r.Spatial.ItemCount)*indexEntryBytes + int64(len(e.queue))*queueEntryBytes,
		Logs: int64(len(e.trajectory))*trajectoryBytes +
			int64(len(e.collocationFields))*sensationBytes +
			int64(len(e.patterns))*patternBytes +
			int64(len(e.reflections))*reflectionBytes,
		Text: text,
	}
	m.Total = m.Nodes + m.Connections + m.Index + m.Logs + m.Text
	r.Memory = m
	return r
}
