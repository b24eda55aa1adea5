package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopicSet(t *testing.T) {
	set := TopicSet("Trading, crypto , SIGNALS,,trading")
	assert.Len(t, set, 3)
	assert.Contains(t, set, "trading")
	assert.Contains(t, set, "crypto")
	assert.Contains(t, set, "signals")

	assert.Empty(t, TopicSet(""))
	assert.Empty(t, TopicSet(" , ,"))
}

func TestJaccardSimilarity(t *testing.T) {
	a := TopicSet("trading,crypto,signals")
	b := TopicSet("crypto,signals,nft")

	// intersection 2, union 4
	assert.InDelta(t, 0.5, JaccardSimilarity(a, b), 1e-9)
	assert.InDelta(t, 1.0, JaccardSimilarity(a, a), 1e-9)
	assert.Zero(t, JaccardSimilarity(a, TopicSet("sports")))

	// Empty sets never count as perfect matches
	assert.Zero(t, JaccardSimilarity(TopicSet(""), TopicSet("")))
	assert.Zero(t, JaccardSimilarity(a, TopicSet("")))
}

func TestTopicSimilarity(t *testing.T) {
	assert.InDelta(t, 0.5, TopicSimilarity("trading,crypto,signals", "crypto,signals,nft"), 1e-9)
	assert.InDelta(t, 1.0, TopicSimilarity("Crypto, Trading", "trading,crypto"), 1e-9)
	assert.Zero(t, TopicSimilarity("", ""))
}
