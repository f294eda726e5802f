package matching

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldDiacritics returns a fresh transformer; chains hold state and are not safe to share.
func foldDiacritics() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Normalize lower-cases s, strips diacritics, drops every character outside [a-z0-9] and
// whitespace, collapses whitespace runs to one space and trims the ends.
//
// Normalize is total and idempotent.
func Normalize(s string) string {
	lowered := strings.ToLower(s)
	folded, _, err := transform.String(foldDiacritics(), lowered)
	if err != nil {
		folded = lowered
	}

	var b strings.Builder
	b.Grow(len(folded))
	space := false
	for _, r := range folded {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			space = true
		}
	}
	return b.String()
}

// QueryKey is the cache key for a search: normalized artist and title joined by "|".
func QueryKey(artist, title string) string {
	return Normalize(artist) + "|" + Normalize(title)
}
