package match

import (
	"strings"

	"github.com/mintvault/catalog-cli/internal/model"
)

// DefaultStagingThreshold is the minimum similarity score required to
// stage a UPC match for review. Tunable via match.staging_threshold.
const DefaultStagingThreshold = 0.30

// Confidence classifies a pair of names into a coarse human-facing tier
// based on string containment. This is deliberately independent of the
// numeric score used for pool ranking.
func Confidence(a, b string) model.ConfidenceTier {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return model.TierNone
	}
	if na == nb {
		return model.TierHigh
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return model.TierMedium
	}
	return model.TierLow
}

// Rank scores item against every pool entry and returns the single best
// candidate. Ties keep the first-encountered entry, so callers control
// determinism through pool ordering. If the best score falls below
// threshold, Rank returns the no-match sentinel (score 0, no entry
// reference, tier none).
func Rank(item model.ScrapedItem, pool []model.CatalogEntry, threshold float64) model.MatchCandidate {
	sentinel := model.MatchCandidate{
		ScrapedName: item.Name,
		ScrapedCode: item.Code,
		Tier:        model.TierNone,
	}

	bestIdx := -1
	bestScore := 0.0
	for i, entry := range pool {
		if s := Score(item.Name, entry.Name); s > bestScore {
			bestScore = s
			bestIdx = i
		}
	}

	if bestIdx < 0 || bestScore < threshold {
		return sentinel
	}

	best := pool[bestIdx]
	return model.MatchCandidate{
		ScrapedName: item.Name,
		ScrapedCode: item.Code,
		EntryID:     best.ID,
		EntryName:   best.Name,
		Score:       bestScore,
		Tier:        Confidence(item.Name, best.Name),
	}
}
