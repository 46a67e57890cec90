// Package textanalyzer turns the source text into the units the force field
// and the growth engine consume: word tokens, adjacent-token bigrams and
// graphemes.
package textanalyzer

import (
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/graphemes"
)

// Analyzer is the interface every tokenizer implements.
type Analyzer interface {
	// Analyze takes a string of text and turns it into a slice of tokens.
	Analyze(text string) []string
}

// WordAnalyzer splits on whitespace and sentence punctuation and lowercases.
type WordAnalyzer struct{}

// Analyze implements Analyzer.
func (WordAnalyzer) Analyze(text string) []string { return Tokenize(text) }

// GraphemeAnalyzer yields one token per non-space grapheme cluster.
type GraphemeAnalyzer struct{}

// Analyze implements Analyzer.
func (GraphemeAnalyzer) Analyze(text string) []string {
	out := make([]string, 0, len(text))
	for _, g := range Graphemes(text) {
		if strings.TrimSpace(g) != "" {
			out = append(out, g)
		}
	}
	return out
}

// isSeparator matches whitespace and sentence punctuation.
func isSeparator(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '.', ',', ';', ':', '!', '?', '"', '(', ')', '[', ']', '{', '}',
		'。', '、', '！', '？', '«', '»', '“', '”':
		return true
	}
	return false
}

// Tokenize splits text into lowercase word tokens.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), isSeparator)
}

// Bigram is a pair of adjacent tokens.
type Bigram struct {
	First, Second string
}

// Key returns the collocation table key "first_second".
func (b Bigram) Key() string { return b.First + "_" + b.Second }

// Bigrams returns the adjacent-token pairs of tokens, in order.
func Bigrams(tokens []string) []Bigram {
	if len(tokens) < 2 {
		return nil
	}
	out := make([]Bigram, 0, len(tokens)-1)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, Bigram{tokens[i], tokens[i+1]})
	}
	return out
}

// Graphemes splits text into user-perceived characters, keeping whitespace.
func Graphemes(text string) []string {
	out := make([]string, 0, len(text))
	tokens := graphemes.FromString(text)
	for tokens.Next() {
		out = append(out, tokens.Value())
	}
	return out
}
