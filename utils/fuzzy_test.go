package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"The Trading Hub!":  "trading hub",
		"  trading   HUB ":  "trading hub",
		"Trading-Hub (Pro)": "trading hub pro",
		"The The Club":      "the club",
		"":                  "",
	}
	for input, want := range cases {
		assert.Equal(t, want, NormalizeName(input), "input %q", input)
	}
}

func TestNameSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, NameSimilarity("The Trading Hub", "trading hub!"))
	assert.Zero(t, NameSimilarity("", "trading hub"))

	// A single typo stays well above the default threshold
	assert.Greater(t, NameSimilarity("Trading Hub", "Tradding Hub"), DefaultFuzzyThreshold)
	// Unrelated names stay well below
	assert.Less(t, NameSimilarity("Trading Hub", "Pixel Art Academy"), DefaultFuzzyThreshold)
}

func TestBestNameMatch(t *testing.T) {
	candidates := []string{"Trading Hub", "Pixel Art Academy", "Fitness Coaching Club"}

	idx, score := BestNameMatch("the trading hub", candidates, 0)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 1.0, score)

	idx, score = BestNameMatch("Fitness Coachng Club", candidates, 0)
	assert.Equal(t, 2, idx)
	assert.Greater(t, score, DefaultFuzzyThreshold)

	idx, _ = BestNameMatch("Completely Unrelated", candidates, 0)
	assert.Equal(t, -1, idx)

	idx, _ = BestNameMatch("anything", nil, 0.5)
	assert.Equal(t, -1, idx)
}
