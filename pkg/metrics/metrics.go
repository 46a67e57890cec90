package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Global metric variables.
// 'promauto' registers them on the default registry at package init.

var (
	// HttpRequestsTotal counts requests to the inspection server,
	// labeled by method, route pattern, and status code.
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glyphgarden_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	// HttpRequestDuration measures server response time.
	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "glyphgarden_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"method", "path"},
	)

	// GrowthTicksTotal counts generations actually executed by Grow.
	GrowthTicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "glyphgarden_growth_ticks_total",
			Help: "Total number of growth generations executed",
		},
	)

	// TickDuration measures how long one generation takes.
	TickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "glyphgarden_growth_tick_duration_seconds",
			Help:    "Duration of one growth generation in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
	)

	// GraphSize tracks the current node and connection counts.
	GraphSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "glyphgarden_graph_size",
			Help: "Current number of graph elements",
		},
		[]string{"kind"}, // "nodes", "connections", "queue"
	)

	// ConflictsTotal counts rejected successor candidates by reason.
	ConflictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glyphgarden_growth_conflicts_total",
			Help: "Rejected successor candidates",
		},
		[]string{"reason"}, // "physical", "semantic", "bounds"
	)

	// BranchesTotal counts created branches by kind.
	BranchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glyphgarden_growth_branches_total",
			Help: "Created branch nodes",
		},
		[]string{"kind"},
	)

	// SpatialCacheTotal counts radius query cache lookups.
	SpatialCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glyphgarden_spatial_cache_lookups_total",
			Help: "Spatial query cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss"
	)

	// PatternsTotal counts newly recorded emergent patterns by type.
	PatternsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glyphgarden_emergent_patterns_total",
			Help: "Emergent patterns recorded",
		},
		[]string{"type"},
	)

	// ReflectionAdjustmentsTotal counts adaptive parameter changes.
	ReflectionAdjustmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glyphgarden_reflection_adjustments_total",
			Help: "Parameters retuned by self-reflection",
		},
		[]string{"param", "direction"},
	)

	// MemoryCleanupsTotal counts bulk purges of the node arena.
	MemoryCleanupsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "glyphgarden_memory_cleanups_total",
			Help: "Memory cleanup passes performed",
		},
	)
)
