package mcp

// --- Tool Arguments ---

type GrowArgs struct {
	Ticks int `json:"ticks,omitempty" jsonschema:"Number of generations to grow, between 1 and 1000 (default 1)"`
}

type ReportArgs struct{}

type PatternsArgs struct {
	Type  string `json:"type,omitempty" jsonschema:"Only return patterns of this type: cluster, bridge, spiral or fractal"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max number of patterns, newest first (default 20)"`
}

type ResetArgs struct{}

// --- Tool Results ---

type GrowResult struct {
	Ticks           int  `json:"ticks"`
	Generation      int  `json:"generation"`
	NodeCount       int  `json:"node_count"`
	ConnectionCount int  `json:"connection_count"`
	ActiveNodes     int  `json:"active_nodes"`
	Running         bool `json:"running"`
}

type ReportResult struct {
	Generation       int      `json:"generation"`
	Running          bool     `json:"running"`
	NodeCount        int      `json:"node_count"`
	ConnectionCount  int      `json:"connection_count"`
	ActiveNodes      int      `json:"active_nodes"`
	PatternCount     int      `json:"pattern_count"`
	ReflectionCount  int      `json:"reflection_count"`
	AverageEnergy    float64  `json:"average_energy"`
	AverageCurvature float64  `json:"average_curvature"`
	MaxGeneration    int      `json:"max_generation"`
	MemoryBytes      int64    `json:"memory_bytes"`
	LatestInsights   []string `json:"latest_insights"`
}

type PatternSummary struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	NodeCount int     `json:"node_count"`
	Strength  float64 `json:"strength"`
	Dimension float64 `json:"dimension,omitempty"`
	CenterX   float64 `json:"center_x"`
	CenterY   float64 `json:"center_y"`
}

type PatternsResult struct {
	Patterns []PatternSummary `json:"patterns"`
}

type ResetResult struct {
	Status    string `json:"status"`
	NodeCount int    `json:"node_count"`
}
