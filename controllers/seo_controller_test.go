package controllers

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSitemapPageCount(t *testing.T) {
	assert.Equal(t, 0, sitemapPageCount(0, 500))
	assert.Equal(t, 1, sitemapPageCount(1, 500))
	assert.Equal(t, 1, sitemapPageCount(500, 500))
	assert.Equal(t, 2, sitemapPageCount(501, 500))
	assert.Equal(t, 3, sitemapPageCount(1400, 500))
	assert.Equal(t, 0, sitemapPageCount(100, 0))
}

func TestBuildSitemapIndex(t *testing.T) {
	out, err := buildSitemapIndex("https://whpcodes.com", 3)
	require.NoError(t, err)

	var parsed sitemapIndex
	require.NoError(t, xml.Unmarshal(out, &parsed))
	require.Len(t, parsed.Sitemaps, 3)
	assert.Equal(t, "https://whpcodes.com/sitemaps/1.xml", parsed.Sitemaps[0].Loc)
	assert.Equal(t, "https://whpcodes.com/sitemaps/3.xml", parsed.Sitemaps[2].Loc)
	assert.Contains(t, string(out), `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, string(out), sitemapXmlns)
}

func TestBuildSitemapIndexEmpty(t *testing.T) {
	out, err := buildSitemapIndex("https://whpcodes.com", 0)
	require.NoError(t, err)

	var parsed sitemapIndex
	require.NoError(t, xml.Unmarshal(out, &parsed))
	assert.Empty(t, parsed.Sitemaps)
}

func TestBuildURLSet(t *testing.T) {
	entries := []sitemapEntry{
		{Loc: "https://whpcodes.com/whops/trading-hub", LastMod: "2024-05-01"},
		{Loc: "https://whpcodes.com/blog/how-to-save"},
	}
	out, err := buildURLSet(entries)
	require.NoError(t, err)

	var parsed urlSet
	require.NoError(t, xml.Unmarshal(out, &parsed))
	require.Len(t, parsed.URLs, 2)
	assert.Equal(t, "https://whpcodes.com/whops/trading-hub", parsed.URLs[0].Loc)
	assert.Equal(t, "2024-05-01", parsed.URLs[0].LastMod)
	assert.Empty(t, parsed.URLs[1].LastMod)

	// lastmod is omitted, not emitted empty
	assert.NotContains(t, string(out), "<lastmod></lastmod>")
}
