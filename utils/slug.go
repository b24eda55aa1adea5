package utils

import (
	"strconv"
	"strings"
	"unicode"
)

// Slugify converts a title to a lowercase URL slug: ASCII letters and digits
// kept, runs of anything else collapsed to single hyphens.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			// Non-ASCII letters are dropped; a separator still marks the boundary.
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// UniqueSlug returns base, or base-2, base-3, ... until taken reports false.
func UniqueSlug(base string, taken func(string) bool) string {
	if base == "" {
		base = "item"
	}
	candidate := base
	for suffix := 2; taken(candidate); suffix++ {
		candidate = base + "-" + strconv.Itoa(suffix)
	}
	return candidate
}
