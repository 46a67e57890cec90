package semantic

import (
	"github.com/tidwall/btree"
)

// RankEntry is one candidate of a keep-top-N eviction pass.
type RankEntry struct {
	Key   string
	Score float64
}

// RankLess orders entries by descending score, breaking ties by ascending key,
// so eviction never depends on map iteration order.
func RankLess(a, b RankEntry) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Key < b.Key
}

// KeepTop returns the keys of the n best entries according to RankLess.
func KeepTop(entries []RankEntry, n int) []string {
	if n <= 0 {
		return nil
	}
	tr := btree.NewBTreeG[RankEntry](RankLess)
	for _, e := range entries {
		tr.Set(e)
	}
	keys := make([]string, 0, min(n, len(entries)))
	tr.Scan(func(e RankEntry) bool {
		keys = append(keys, e.Key)
		return len(keys) < n
	})
	return keys
}

// keepSize is the target size after an eviction pass: 80% of the cap.
func keepSize(limit int) int {
	n := limit * 8 / 10
	if n < 1 {
		n = 1
	}
	return n
}

// evictAssociations keeps the 80% best-connected roots.
func (f *ForceField) evictAssociations() {
	entries := make([]RankEntry, 0, len(f.associations))
	for word, edges := range f.associations {
		entries = append(entries, RankEntry{Key: word, Score: float64(len(edges))})
	}
	kept := KeepTop(entries, keepSize(f.maxAssociations))

	next := make(map[string]map[string]float64, len(kept))
	for _, word := range kept {
		next[word] = f.associations[word]
	}
	f.logger.Debug("association graph evicted", "before", len(f.associations), "after", len(next))
	f.associations = next
}

// evictCollocations keeps the 80% strongest collocations.
func (f *ForceField) evictCollocations() {
	entries := make([]RankEntry, 0, len(f.collocations))
	for key, strength := range f.collocations {
		entries = append(entries, RankEntry{Key: key, Score: strength})
	}
	kept := KeepTop(entries, keepSize(f.maxCollocations))

	next := make(map[string]float64, len(kept))
	for _, key := range kept {
		next[key] = f.collocations[key]
	}
	f.logger.Debug("collocation table evicted", "before", len(f.collocations), "after", len(next))
	f.collocations = next
}

// appendHistory records a reading event, dropping the oldest at the cap.
func (f *ForceField) appendHistory(ev ReadingEvent) {
	if len(f.history) >= f.maxHistory {
		drop := len(f.history) - f.maxHistory + 1
		copy(f.history, f.history[drop:])
		f.history = f.history[:len(f.history)-drop]
	}
	f.history = append(f.history, ev)
}

// enforceCaps brings every bounded collection back under its cap.
func (f *ForceField) enforceCaps() {
	if len(f.associations) > f.maxAssociations {
		f.evictAssociations()
	}
	if len(f.collocations) > f.maxCollocations {
		f.evictCollocations()
	}
	if len(f.history) > f.maxHistory {
		f.history = append([]ReadingEvent(nil), f.history[len(f.history)-f.maxHistory:]...)
	}
}
