package utils

import "strings"

// TopicSet parses a comma-separated topic bucket into a normalized set.
func TopicSet(topics string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range strings.Split(topics, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}

// JaccardSimilarity returns intersection-over-union for two topic sets.
// Two empty sets score 0, not 1: products without topics should not all
// look like perfect matches for each other.
func JaccardSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// TopicSimilarity is a convenience wrapper over raw topic strings.
func TopicSimilarity(topicsA, topicsB string) float64 {
	return JaccardSimilarity(TopicSet(topicsA), TopicSet(topicsB))
}
