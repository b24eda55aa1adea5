package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Trading Hub":            "trading-hub",
		"  Trading   Hub  ":      "trading-hub",
		"The Best! Deal (2024)":  "the-best-deal-2024",
		"UPPER lower MiXeD":      "upper-lower-mixed",
		"---":                    "",
		"":                       "",
		"café crème":             "caf-cr-me",
		"100% off":               "100-off",
		"already-a-slug":         "already-a-slug",
		"dots.and_underscores!?": "dots-and-underscores",
	}
	for input, want := range cases {
		assert.Equal(t, want, Slugify(input), "input %q", input)
	}
}

func TestUniqueSlug(t *testing.T) {
	taken := map[string]bool{
		"trading-hub":   true,
		"trading-hub-2": true,
	}
	exists := func(s string) bool { return taken[s] }

	assert.Equal(t, "trading-hub-3", UniqueSlug("trading-hub", exists))
	assert.Equal(t, "fresh", UniqueSlug("fresh", exists))
	assert.Equal(t, "item", UniqueSlug("", exists))
}
