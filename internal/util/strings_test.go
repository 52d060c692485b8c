package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinOrNone(t *testing.T) {
	assert.Equal(t, "(none)", JoinOrNone(nil))
	assert.Equal(t, "(none)", JoinOrNone([]string{}))
	assert.Equal(t, "gpu1", JoinOrNone([]string{"gpu1"}))
	assert.Equal(t, "gpu1, gpu2, login", JoinOrNone([]string{"gpu1", "gpu2", "login"}))
}

func TestJoinOrDefault(t *testing.T) {
	assert.Equal(t, "all hosts", JoinOrDefault(nil, "all hosts"))
	assert.Equal(t, "", JoinOrDefault([]string{}, ""))
	assert.Equal(t, "gpu1, gpu2", JoinOrDefault([]string{"gpu1", "gpu2"}, "all hosts"))
}

func TestPluralize(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, "hosts"},
		{1, "host"},
		{2, "hosts"},
		{-1, "hosts"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Pluralize(tt.count, "host", "hosts"), "count %d", tt.count)
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"", "gpu", 3},
		{"gpu", "", 3},
		{"gpu1", "gpu1", 0},
		{"gpu1", "gpu2", 1},      // substitution
		{"gpu1", "gpu10", 1},     // insertion
		{"gpu10", "gpu1", 1},     // deletion
		{"lgoin", "login", 2},    // transposition (2 edits)
		{"gpu1", "GPU1", 3},      // case-sensitive
		{"kitten", "sitting", 3}, // classic example
	}

	for _, tt := range tests {
		t.Run(tt.a+"->"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, LevenshteinDistance(tt.a, tt.b))
		})
	}
}

func TestSuggestSimilar(t *testing.T) {
	candidates := []string{"gpu1", "gpu2", "gpu10", "login", "dgx-a"}

	tests := []struct {
		name     string
		input    string
		max      int
		expected []string
	}{
		{"typo suggests closest first", "gpu3", 2, []string{"gpu1", "gpu2", "gpu10"}},
		{"tighter limit", "gpu3", 1, []string{"gpu1", "gpu2"}},
		{"transposed letters", "lgoin", 2, []string{"login"}},
		{"missing dash", "dgxa", 2, []string{"dgx-a"}},
		{"case insensitive exact match", "GPU1", 2, []string{"gpu1"}},
		{"no close match returns nil", "storage", 2, nil},
		{"empty input returns nil", "", 2, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SuggestSimilar(tt.input, candidates, tt.max))
		})
	}
}

func TestSuggestSimilar_EmptyCandidates(t *testing.T) {
	assert.Nil(t, SuggestSimilar("gpu1", nil, 2))
	assert.Nil(t, SuggestSimilar("gpu1", []string{}, 2))
}

func TestDidYouMean(t *testing.T) {
	assert.Equal(t, "Run 'gpudash hosts'", DidYouMean(nil, "Run 'gpudash hosts'"))
	assert.Equal(t, "Did you mean 'gpu1'?", DidYouMean([]string{"gpu1"}, ""))
	assert.Equal(t, "Did you mean one of 'gpu1', 'gpu2'?", DidYouMean([]string{"gpu1", "gpu2"}, ""))
}
