package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAffiliateURL(t *testing.T) {
	cases := map[string]string{
		"https://whop.com/trading-hub?a=wh123":                      "https://whop.com/trading-hub?a=wh123",
		"http://whop.com/trading-hub":                               "https://whop.com/trading-hub",
		"whop.com/trading-hub":                                      "https://whop.com/trading-hub",
		"https://WHOP.com/hub?utm_source=x&a=wh123&utm_medium=web":  "https://whop.com/hub?a=wh123",
		"https://whop.com/hub?fbclid=abc&gclid=def":                 "https://whop.com/hub",
		" https://whop.com/hub ":                                    "https://whop.com/hub",
		"https://whop.com/hub?utm_campaign=spring&utm_term=deal":    "https://whop.com/hub",
		"https://whop.com/hub?mc_eid=123&msclkid=456&utm_content=x": "https://whop.com/hub",
	}
	for input, want := range cases {
		got, err := normalizeAffiliateURL(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}
}

func TestNormalizeAffiliateURLRejectsBroken(t *testing.T) {
	for _, input := range []string{"", "   ", "ftp://whop.com/hub", "https://"} {
		_, err := normalizeAffiliateURL(input)
		assert.Error(t, err, "input %q", input)
	}
}
