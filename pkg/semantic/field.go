// Package semantic implements the synthetic force field that steers growth.
//
// The field keeps three bounded collections: an association graph of
// word -> word similarities, a collocation table of adjacent-token strengths,
// and a rolling reading history. From them it derives pairwise force vectors,
// an embodied reading direction, collocation sensation hints, emergent
// pattern observations and a self report. All outputs are deterministic for a
// given input sequence and clamped to their documented domains.
//
// A ForceField is not safe for concurrent use.
package semantic

import (
	"log/slog"
	"math"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sanonone/glyphgarden/pkg/textanalyzer"
	"github.com/sanonone/glyphgarden/pkg/types"
)

const (
	DefaultMaxAssociations = 1000
	DefaultMaxCollocations = 2000
	DefaultMaxHistory      = 500

	// associationThreshold is the minimum similarity recorded as an edge.
	associationThreshold = 0.3
	// collocationStep is added to a bigram strength on every occurrence.
	collocationStep = 0.1
	// cleanupEvery is the number of analyze calls between cap checks.
	cleanupEvery = 100
	// defaultMaxAnalyzeTokens bounds the distinct tokens paired per analyze call.
	defaultMaxAnalyzeTokens = 512

	maxSimilarityCache = 20000
	maxEmbeddingCache  = 5000
)

// Options configures a ForceField. Zero values select the defaults.
type Options struct {
	Embedder         Embedder
	Analyzer         textanalyzer.Analyzer
	Clock            func() time.Time
	Logger           *slog.Logger
	MaxAssociations  int
	MaxCollocations  int
	MaxHistory       int
	MaxAnalyzeTokens int
}

// Force is the interference pattern between two characters.
type Force struct {
	Attraction float64 `json:"attraction"` // [0,1]
	Repulsion  float64 `json:"repulsion"`  // [0,1]
	Lateral    float64 `json:"lateral"`    // [-1,1]
}

// ForceField is the semantic source of the growth engine.
type ForceField struct {
	embedder Embedder
	analyzer textanalyzer.Analyzer
	now      func() time.Time
	logger   *slog.Logger

	associations map[string]map[string]float64
	collocations map[string]float64
	history      []ReadingEvent

	maxAssociations  int
	maxCollocations  int
	maxHistory       int
	maxAnalyzeTokens int

	// Both caches evict least recently used entries on insert.
	embedCache *lru.Cache[string, []float64]
	simCache   *lru.Cache[[2]string, float64]

	analyzeCalls int
}

// New creates an empty field.
func New(opts Options) *ForceField {
	f := &ForceField{
		embedder:         opts.Embedder,
		analyzer:         opts.Analyzer,
		now:              opts.Clock,
		logger:           opts.Logger,
		maxAssociations:  opts.MaxAssociations,
		maxCollocations:  opts.MaxCollocations,
		maxHistory:       opts.MaxHistory,
		maxAnalyzeTokens: opts.MaxAnalyzeTokens,
		associations:     make(map[string]map[string]float64),
		collocations:     make(map[string]float64),
	}
	// lru.New only fails for a non-positive size.
	f.embedCache, _ = lru.New[string, []float64](maxEmbeddingCache)
	f.simCache, _ = lru.New[[2]string, float64](maxSimilarityCache)
	if f.embedder == nil {
		f.embedder = HashEmbedder{Dim: DefaultDimension}
	}
	if f.analyzer == nil {
		f.analyzer = textanalyzer.WordAnalyzer{}
	}
	if f.now == nil {
		f.now = time.Now
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	f.logger = f.logger.With("component", "semantic")
	if f.maxAssociations <= 0 {
		f.maxAssociations = DefaultMaxAssociations
	}
	if f.maxCollocations <= 0 {
		f.maxCollocations = DefaultMaxCollocations
	}
	if f.maxHistory <= 0 {
		f.maxHistory = DefaultMaxHistory
	}
	if f.maxAnalyzeTokens <= 0 {
		f.maxAnalyzeTokens = defaultMaxAnalyzeTokens
	}
	return f
}

// Embedding returns the (cached) vector of word.
func (f *ForceField) Embedding(word string) []float64 {
	if v, ok := f.embedCache.Get(word); ok {
		return v
	}
	v := f.embedder.Embed(word)
	f.embedCache.Add(word, v)
	return v
}

// Similarity is the embedding cosine of a and b clamped to [0,1].
// Equal words always have similarity 1.
func (f *ForceField) Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	key := [2]string{a, b}
	if b < a {
		key = [2]string{b, a}
	}
	if s, ok := f.simCache.Get(key); ok {
		return s
	}
	s := types.Clamp01(CosineSimilarity(f.Embedding(a), f.Embedding(b)))
	f.simCache.Add(key, s)
	return s
}

// AnalyzeSemanticStructure feeds text into the association graph and the
// collocation table.
func (f *ForceField) AnalyzeSemanticStructure(text string) {
	f.AnalyzeTokens(f.analyzer.Analyze(text))
}

// AnalyzeTokens is AnalyzeSemanticStructure for tokens that are already
// split. Tokens are used verbatim, so case and punctuation are kept.
func (f *ForceField) AnalyzeTokens(tokens []string) {
	f.analyzeCalls++
	defer func() {
		if f.analyzeCalls%cleanupEvery == 0 {
			f.enforceCaps()
		}
	}()
	if len(tokens) == 0 {
		return
	}

	// Pairs are taken over distinct tokens in order of first appearance;
	// a repeated token pairs with itself at similarity 1.
	seen := make(map[string]int, len(tokens))
	distinct := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		seen[tok]++
		if seen[tok] == 1 && len(distinct) < f.maxAnalyzeTokens {
			distinct = append(distinct, tok)
		}
	}
	for i, w1 := range distinct {
		if seen[w1] > 1 {
			f.addAssociation(w1, w1, 1)
		}
		for _, w2 := range distinct[i+1:] {
			if sim := f.Similarity(w1, w2); sim > associationThreshold {
				f.addAssociation(w1, w2, sim)
			}
		}
	}

	for _, bg := range textanalyzer.Bigrams(tokens) {
		f.addCollocation(bg.Key())
	}
}

func (f *ForceField) addAssociation(w1, w2 string, sim float64) {
	edges, ok := f.associations[w1]
	if !ok {
		if len(f.associations) >= f.maxAssociations {
			f.evictAssociations()
		}
		edges = make(map[string]float64)
		f.associations[w1] = edges
	}
	edges[w2] = types.Clamp01(sim)
}

func (f *ForceField) addCollocation(key string) {
	cur, ok := f.collocations[key]
	if !ok && len(f.collocations) >= f.maxCollocations {
		f.evictCollocations()
	}
	f.collocations[key] = math.Min(1, cur+collocationStep)
}

// graphSimilarity looks the pair up in either direction.
func (f *ForceField) graphSimilarity(a, b string) (float64, bool) {
	if s, ok := f.associations[a][b]; ok {
		return s, true
	}
	if s, ok := f.associations[b][a]; ok {
		return s, true
	}
	return 0, false
}

// SemanticDistance is 1 - graph similarity; pairs never observed are at distance 1.
func (f *ForceField) SemanticDistance(a, b string) float64 {
	if s, ok := f.graphSimilarity(a, b); ok {
		return 1 - s
	}
	return 1
}

// Collocation returns the strength of a_b, falling back to b_a.
func (f *ForceField) Collocation(a, b string) float64 {
	if s, ok := f.collocations[a+"_"+b]; ok {
		return s
	}
	return f.collocations[b+"_"+a]
}

// Complexity measures how connected word is in the association graph, in [0,1].
func (f *ForceField) Complexity(word string) float64 {
	return math.Min(1, float64(len(f.associations[word]))/10)
}

// CalculateSemanticForce derives the attraction / repulsion / lateral triple
// of two characters at the given spatial distance.
func (f *ForceField) CalculateSemanticForce(source, target string, spatialDistance float64) Force {
	if math.IsNaN(spatialDistance) || math.IsInf(spatialDistance, 0) {
		f.logger.Debug("force rejected: invalid distance", "source", source, "target", target)
		return Force{}
	}
	semDist := math.Max(f.SemanticDistance(source, target), 0.1)
	coll := f.Collocation(source, target)
	ratio := math.Max(spatialDistance, 0.1) / semDist

	return Force{
		Attraction: types.Clamp01(coll - ratio*0.3),
		Repulsion:  types.Clamp01((ratio - 1) * 0.5),
		Lateral:    types.Clamp(math.Sin(ratio*math.Pi)*0.2, -1, 1),
	}
}

// Structure is a copy of the association graph and the collocation table.
type Structure struct {
	Associations map[string]map[string]float64 `json:"associations"`
	Collocations map[string]float64            `json:"collocations"`
}

// Structure returns a deep copy of the field's graphs.
func (f *ForceField) Structure() Structure {
	s := Structure{
		Associations: make(map[string]map[string]float64, len(f.associations)),
		Collocations: make(map[string]float64, len(f.collocations)),
	}
	for w, edges := range f.associations {
		cp := make(map[string]float64, len(edges))
		for k, v := range edges {
			cp[k] = v
		}
		s.Associations[w] = cp
	}
	for k, v := range f.collocations {
		s.Collocations[k] = v
	}
	return s
}

// Sizes reports the sizes of the bounded collections.
func (f *ForceField) Sizes() (associations, collocations, history int) {
	return len(f.associations), len(f.collocations), len(f.history)
}
