package textanalyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	got := Tokenize("The rain, the RAIN!  Falls.\nSoftly? yes")
	assert.Equal(t, []string{"the", "rain", "the", "rain", "falls", "softly", "yes"}, got)
	assert.Empty(t, Tokenize("  ...  "))
}

func TestBigrams(t *testing.T) {
	got := Bigrams([]string{"a", "b", "c"})
	assert.Equal(t, []Bigram{{"a", "b"}, {"b", "c"}}, got)
	assert.Equal(t, "a_b", got[0].Key())
	assert.Nil(t, Bigrams([]string{"solo"}))
}

func TestGraphemes(t *testing.T) {
	assert.Equal(t, []string{"h", "é", " ", "👍🏽"}, Graphemes("hé 👍🏽"))

	var a GraphemeAnalyzer
	assert.Equal(t, []string{"h", "é", "👍🏽"}, a.Analyze("hé 👍🏽"))

	var w WordAnalyzer
	assert.Equal(t, []string{"hé", "👍🏽"}, w.Analyze("hé 👍🏽"))
}
