// Package match implements the similarity scorer and candidate ranker
// used to reconcile scraped product names against the catalog.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases, trims, collapses internal whitespace, and strips
// diacritics so that marketplace spellings like "Pokémon" compare equal
// to "Pokemon".
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}

	return strings.Join(strings.Fields(s), " ")
}

// tokens splits a normalized string on whitespace and discards noise
// tokens of length <= 2.
func tokens(s string) []string {
	fields := strings.Fields(s)
	out := fields[:0]
	for _, f := range fields {
		if len(f) > 2 {
			out = append(out, f)
		}
	}
	return out
}
