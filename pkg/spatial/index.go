// Package spatial provides a uniform grid index over the canvas with a bounded
// LRU cache of radius queries.
//
// The index is not safe for concurrent use. Invalid input never panics: it is
// logged at debug level and answered with a neutral value (false, empty slice).
package spatial

import (
	"log/slog"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sanonone/glyphgarden/pkg/metrics"
	"github.com/sanonone/glyphgarden/pkg/types"
)

const (
	defaultWidth        = 800
	defaultHeight       = 600
	defaultCellSize     = 50
	defaultMaxCacheSize = 100

	// nearestCap bounds the expanding-ring search of FindNearest.
	nearestCap = 1000
)

// nearestRadii are the escalating radii tried by FindNearest before maxDistance.
var nearestRadii = [...]float64{50, 100, 200, 500}

// Config configures a grid index.
type Config struct {
	Width        float64
	Height       float64
	CellSize     float64
	MaxCacheSize int
	Logger       *slog.Logger
}

// Item is an indexed entry. Items with an empty ID can be inserted but cannot
// be removed by id.
type Item[T any] struct {
	ID       string
	Position types.Vec2
	Value    T
}

type cellKey struct{ col, row int }

type queryKey struct{ x, y, r int64 }

// Stats is a point-in-time view of the index, intended for reports.
type Stats struct {
	ItemCount    int     `json:"item_count"`
	CellCount    int     `json:"cell_count"`
	CacheSize    int     `json:"cache_size"`
	MaxCacheSize int     `json:"max_cache_size"`
	CacheHits    uint64  `json:"cache_hits"`
	CacheMisses  uint64  `json:"cache_misses"`
	Queries      uint64  `json:"queries"`
	CellSize     float64 `json:"cell_size"`
	Columns      int     `json:"columns"`
	Rows         int     `json:"rows"`
}

// Index buckets items into fixed-size square cells.
type Index[T any] struct {
	cellSize   float64
	cols, rows int

	cells     map[cellKey][]Item[T]
	byID      map[string]cellKey
	itemCount int

	cache        *lru.Cache[queryKey, []Item[T]]
	maxCacheSize int
	hits, misses uint64
	queries      uint64

	logger *slog.Logger
}

// New creates an index for the given canvas. Non-positive or non-finite
// geometry falls back to 800x600 with 50 unit cells.
func New[T any](cfg Config) *Index[T] {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "spatial")

	width := positiveOr(cfg.Width, defaultWidth)
	height := positiveOr(cfg.Height, defaultHeight)
	cellSize := positiveOr(cfg.CellSize, defaultCellSize)
	maxCache := cfg.MaxCacheSize
	if maxCache <= 0 {
		maxCache = defaultMaxCacheSize
	}

	cols := int(math.Ceil(width / cellSize))
	rows := int(math.Ceil(height / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	// lru.New only fails for a non-positive size, which is excluded above.
	cache, _ := lru.New[queryKey, []Item[T]](maxCache)

	return &Index[T]{
		cellSize:     cellSize,
		cols:         cols,
		rows:         rows,
		cells:        make(map[cellKey][]Item[T]),
		byID:         make(map[string]cellKey),
		cache:        cache,
		maxCacheSize: maxCache,
		logger:       logger,
	}
}

func positiveOr(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return def
	}
	return v
}

// cellOf computes the clamped cell for a position.
func (idx *Index[T]) cellOf(p types.Vec2) cellKey {
	return cellKey{
		col: clampInt(int(math.Floor(p.X/idx.cellSize)), 0, idx.cols-1),
		row: clampInt(int(math.Floor(p.Y/idx.cellSize)), 0, idx.rows-1),
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Insert adds an item to its cell. An item whose ID is already indexed
// replaces the previous one. It returns false when the position is not finite.
func (idx *Index[T]) Insert(item Item[T]) bool {
	if !item.Position.IsFinite() {
		idx.logger.Debug("insert rejected: invalid position", "id", item.ID, "x", item.Position.X, "y", item.Position.Y)
		return false
	}
	if item.ID != "" {
		if _, exists := idx.byID[item.ID]; exists {
			idx.Remove(item.ID)
		}
	}

	key := idx.cellOf(item.Position)
	idx.cells[key] = append(idx.cells[key], item)
	if item.ID != "" {
		idx.byID[item.ID] = key
	}
	idx.itemCount++
	idx.cache.Purge()
	return true
}

// Remove deletes every item carrying id. It returns true if anything was removed.
func (idx *Index[T]) Remove(id string) bool {
	if id == "" {
		idx.logger.Debug("remove rejected: empty id")
		return false
	}
	key, ok := idx.byID[id]
	if !ok {
		return false
	}

	list := idx.cells[key]
	kept := list[:0]
	removed := 0
	for _, it := range list {
		if it.ID == id {
			removed++
			continue
		}
		kept = append(kept, it)
	}
	// Drop references held by the tail of the reused backing array.
	for i := len(kept); i < len(list); i++ {
		list[i] = Item[T]{}
	}

	if len(kept) == 0 {
		delete(idx.cells, key)
	} else {
		idx.cells[key] = kept
	}
	delete(idx.byID, id)
	idx.itemCount -= removed

	if removed > 0 {
		idx.cache.Purge()
	}
	return removed > 0
}

// Update moves an item by removing it and inserting it again.
func (idx *Index[T]) Update(item Item[T]) bool {
	if item.ID != "" {
		idx.Remove(item.ID)
	}
	return idx.Insert(item)
}

// Query returns all items within radius of p (inclusive). A +Inf radius
// returns every item. The returned slice is shared with the query cache and
// must not be modified.
func (idx *Index[T]) Query(p types.Vec2, radius float64) []Item[T] {
	if !p.IsFinite() || math.IsNaN(radius) || radius < 0 {
		idx.logger.Debug("query rejected: invalid input", "x", p.X, "y", p.Y, "radius", radius)
		return []Item[T]{}
	}
	idx.queries++

	r := int64(math.MaxInt64)
	if radius < math.MaxInt32 {
		r = int64(math.Round(radius))
	}
	key := queryKey{int64(math.Round(p.X)), int64(math.Round(p.Y)), r}
	if cached, ok := idx.cache.Get(key); ok {
		idx.hits++
		metrics.SpatialCacheTotal.WithLabelValues("hit").Inc()
		return cached
	}
	idx.misses++
	metrics.SpatialCacheTotal.WithLabelValues("miss").Inc()

	result := idx.scan(p, radius)
	idx.cache.Add(key, result)
	return result
}

// scan walks the cells overlapping the bounding square of the query circle.
func (idx *Index[T]) scan(p types.Vec2, radius float64) []Item[T] {
	center := idx.cellOf(p)
	span := max(idx.cols, idx.rows)
	if c := math.Ceil(radius / idx.cellSize); c < float64(span) {
		span = int(c)
	}

	minCol := clampInt(center.col-span, 0, idx.cols-1)
	maxCol := clampInt(center.col+span, 0, idx.cols-1)
	minRow := clampInt(center.row-span, 0, idx.rows-1)
	maxRow := clampInt(center.row+span, 0, idx.rows-1)

	result := make([]Item[T], 0)
	for col := minCol; col <= maxCol; col++ {
		for row := minRow; row <= maxRow; row++ {
			for _, it := range idx.cells[cellKey{col, row}] {
				if it.Position.Dist(p) <= radius {
					result = append(result, it)
				}
			}
		}
	}
	return result
}

// FindNearest searches rings of escalating radius and returns the closest
// item found at the first radius that yields any candidate. It is an
// early-exit heuristic, bounded at 1000 units.
func (idx *Index[T]) FindNearest(p types.Vec2, maxDistance float64) (Item[T], bool) {
	var zero Item[T]
	if !p.IsFinite() || math.IsNaN(maxDistance) || maxDistance < 0 {
		idx.logger.Debug("findNearest rejected: invalid input", "x", p.X, "y", p.Y, "max_distance", maxDistance)
		return zero, false
	}
	limit := math.Min(maxDistance, nearestCap)

	radii := append(nearestRadii[:], maxDistance)
	for _, r := range radii {
		r = math.Min(r, limit)
		candidates := idx.Query(p, r)
		if len(candidates) == 0 {
			continue
		}
		best := candidates[0]
		bestDist := best.Position.Dist(p)
		for _, c := range candidates[1:] {
			if d := c.Position.Dist(p); d < bestDist {
				best, bestDist = c, d
			}
		}
		return best, true
	}
	return zero, false
}

// ItemsInBounds returns the items inside the axis-aligned rectangle
// (inclusive). The result is not cached.
func (idx *Index[T]) ItemsInBounds(minX, minY, maxX, maxY float64) []Item[T] {
	lo, hi := types.Vec2{X: minX, Y: minY}, types.Vec2{X: maxX, Y: maxY}
	if !lo.IsFinite() || !hi.IsFinite() {
		idx.logger.Debug("itemsInBounds rejected: invalid bounds")
		return []Item[T]{}
	}
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	if minY > maxY {
		minY, maxY = maxY, minY
	}

	a := idx.cellOf(types.Vec2{X: minX, Y: minY})
	b := idx.cellOf(types.Vec2{X: maxX, Y: maxY})

	result := make([]Item[T], 0)
	for col := a.col; col <= b.col; col++ {
		for row := a.row; row <= b.row; row++ {
			for _, it := range idx.cells[cellKey{col, row}] {
				pos := it.Position
				if pos.X >= minX && pos.X <= maxX && pos.Y >= minY && pos.Y <= maxY {
					result = append(result, it)
				}
			}
		}
	}
	return result
}

// All returns every indexed item in cell order.
func (idx *Index[T]) All() []Item[T] {
	result := make([]Item[T], 0, idx.itemCount)
	for _, list := range idx.cells {
		result = append(result, list...)
	}
	return result
}

// Len returns the number of indexed items.
func (idx *Index[T]) Len() int { return idx.itemCount }

// Clear drops all cells, counters and cached queries.
func (idx *Index[T]) Clear() {
	idx.cells = make(map[cellKey][]Item[T])
	idx.byID = make(map[string]cellKey)
	idx.itemCount = 0
	idx.hits, idx.misses, idx.queries = 0, 0, 0
	idx.cache.Purge()
}

// Cleanup drops empty cells and shrinks the cache to half its capacity,
// keeping the most recently used entries.
func (idx *Index[T]) Cleanup() {
	for key, list := range idx.cells {
		if len(list) == 0 {
			delete(idx.cells, key)
		}
	}
	half := idx.maxCacheSize / 2
	if half < 1 {
		half = 1
	}
	if evicted := idx.cache.Resize(half); evicted > 0 {
		idx.logger.Debug("query cache shrunk", "evicted", evicted)
	}
	idx.cache.Resize(idx.maxCacheSize)
}

// Stats returns the current counters.
func (idx *Index[T]) Stats() Stats {
	return Stats{
		ItemCount:    idx.itemCount,
		CellCount:    len(idx.cells),
		CacheSize:    idx.cache.Len(),
		MaxCacheSize: idx.maxCacheSize,
		CacheHits:    idx.hits,
		CacheMisses:  idx.misses,
		Queries:      idx.queries,
		CellSize:     idx.cellSize,
		Columns:      idx.cols,
		Rows:         idx.rows,
	}
}
