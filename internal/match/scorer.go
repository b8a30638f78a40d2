package match

import "strings"

// KeywordBoost is added to the token-overlap score when both names share
// a sealed-product category keyword, capped at 1.0.
const KeywordBoost = 0.2

// productKeywords is the fixed vocabulary of sealed-product category
// terms. Sharing one of these terms is a strong signal that two noisy
// names describe the same kind of product.
var productKeywords = map[string]bool{
	"booster":   true,
	"box":       true,
	"bundle":    true,
	"deck":      true,
	"commander": true,
	"draft":     true,
	"collector": true,
	"set":       true,
	"pack":      true,
	"case":      true,
	"display":   true,
	"tin":       true,
}

// Score computes a similarity score in [0,1] between two product names.
// It is pure, deterministic, case-insensitive and whitespace-normalized,
// and symmetric.
//
// Tiers: exact match after normalization scores 1.0; full containment
// scores 0.9; otherwise the score is the fuzzy token overlap ratio plus
// the category-keyword boost. An empty name on either side scores 0 —
// ambiguous input is rejected upstream rather than silently matched.
func Score(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 0.9
	}

	ta, tb := tokens(na), tokens(nb)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	common := 0
	for _, t := range ta {
		if containsFuzzy(tb, t) {
			common++
		}
	}
	if common == 0 {
		return 0
	}

	denom := len(ta)
	if len(tb) > denom {
		denom = len(tb)
	}
	score := float64(common) / float64(denom)

	if sharesKeyword(ta, tb) {
		score += KeywordBoost
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// containsFuzzy reports whether tok matches any element of ts, where a
// match is equality or either string being a substring of the other.
func containsFuzzy(ts []string, tok string) bool {
	for _, t := range ts {
		if t == tok || strings.Contains(t, tok) || strings.Contains(tok, t) {
			return true
		}
	}
	return false
}

func sharesKeyword(ta, tb []string) bool {
	for _, t := range ta {
		if productKeywords[t] && containsExact(tb, t) {
			return true
		}
	}
	return false
}

func containsExact(ts []string, tok string) bool {
	for _, t := range ts {
		if t == tok {
			return true
		}
	}
	return false
}
