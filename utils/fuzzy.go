package utils

import (
	"strings"

	"github.com/agext/levenshtein"
)

// DefaultFuzzyThreshold is the minimum similarity for a CSV import row to be
// matched to an existing product by name.
const DefaultFuzzyThreshold = 0.82

// NormalizeName lowercases and collapses whitespace/punctuation so that
// "The Trading Hub!" and "trading hub" compare equal.
func NormalizeName(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	out := strings.TrimSpace(b.String())
	// Drop a leading article; import sheets are inconsistent about them.
	out = strings.TrimPrefix(out, "the ")
	return out
}

// NameSimilarity returns a 0..1 similarity between two product names.
func NameSimilarity(a, b string) float64 {
	na, nb := NormalizeName(a), NormalizeName(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	return levenshtein.Similarity(na, nb, nil)
}

// BestNameMatch finds the candidate most similar to name, if any candidate
// clears the threshold. Returns the index into candidates or -1.
func BestNameMatch(name string, candidates []string, threshold float64) (int, float64) {
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}
	bestIdx, bestScore := -1, 0.0
	for i, c := range candidates {
		if score := NameSimilarity(name, c); score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	if bestScore < threshold {
		return -1, bestScore
	}
	return bestIdx, bestScore
}
