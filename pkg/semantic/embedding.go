package semantic

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultDimension is the length of HashEmbedder vectors when Dim is unset.
const DefaultDimension = 32

// Embedder maps a word to a fixed-length vector. Implementations must be
// deterministic: the same word always yields the same vector.
type Embedder interface {
	Embed(word string) []float64
}

// HashEmbedder derives a pseudo-embedding from a rolling string hash fed into
// a trigonometric basis. It carries no linguistic meaning.
type HashEmbedder struct {
	Dim int
}

// Embed implements Embedder.
func (e HashEmbedder) Embed(word string) []float64 {
	dim := e.Dim
	if dim <= 0 {
		dim = DefaultDimension
	}
	h := float64(Hash(word))
	v := make([]float64, dim)
	for i := range v {
		fi := float64(i)
		v[i] = math.Sin(h*0.001*(fi+1)) * math.Cos(h*0.0007+fi*0.5)
	}
	return v
}

// Hash is the 31-multiplier rolling hash over the runes of s, wrapping at 32 bits.
func Hash(s string) int32 {
	var h int32
	for _, r := range s {
		h = h*31 + int32(r)
	}
	return h
}

// absHash returns |Hash(s)| as a non-negative int64.
func absHash(s string) int64 {
	h := int64(Hash(s))
	if h < 0 {
		h = -h
	}
	return h
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Mismatched lengths and zero-norm vectors yield 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	sim := floats.Dot(a, b) / (na * nb)
	// Rounding can push identical vectors slightly past 1.
	return math.Max(-1, math.Min(1, sim))
}
