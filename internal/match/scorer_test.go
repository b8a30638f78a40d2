package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_ExactMatch(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, Score("Foundations Bundle", "foundations bundle"))
	assert.Equal(t, 1.0, Score("  Foundations   Bundle ", "Foundations Bundle"))
}

func TestScore_Containment(t *testing.T) {
	t.Parallel()

	score := Score(
		"Magic: The Gathering - Dominaria United Draft Booster Pack",
		"Dominaria United Draft Booster Pack",
	)
	assert.Equal(t, 0.9, score)
}

func TestScore_TokenOverlapWithKeywordBoost(t *testing.T) {
	t.Parallel()

	a := "MTG Duskmourn Draft Booster Box 36ct"
	b := "Duskmourn: House of Horror Draft Booster Box"

	// Neither string fully contains the other, so this must fall
	// through to token scoring. The overlap plus the category-keyword
	// boost has to clear the staging threshold.
	score := Score(a, b)
	assert.Less(t, score, 0.9)
	assert.GreaterOrEqual(t, score, DefaultStagingThreshold)

	// 4 of max(6,6) shared tokens + 0.2 boost.
	assert.InDelta(t, 4.0/6.0+KeywordBoost, score, 1e-9)
}

func TestScore_NoOverlap(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, Score("Lorcana Illumineer's Trove", "Duskmourn Commander Deck"))
}

func TestScore_EmptyInputs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, Score("", "Foundations Bundle"))
	assert.Equal(t, 0.0, Score("Foundations Bundle", ""))
	assert.Equal(t, 0.0, Score("", ""))
	assert.Equal(t, 0.0, Score("   ", "   "))
}

func TestScore_Bounds(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		{"Foundations Bundle", "Foundations Bundle"},
		{"MTG Duskmourn Draft Booster Box 36ct", "Duskmourn: House of Horror Draft Booster Box"},
		{"Pokemon 151 Elite Trainer Box", "Scarlet & Violet 151 Elite Trainer Box"},
		{"a b c", "x y z"},
	}
	for _, p := range pairs {
		s := Score(p[0], p[1])
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestScore_SelfIdentity(t *testing.T) {
	t.Parallel()

	for _, name := range []string{
		"Foundations Bundle",
		"Duskmourn: House of Horror Collector Booster Box",
		"x",
	} {
		assert.Equal(t, 1.0, Score(name, name))
	}
}

func TestScore_Symmetric(t *testing.T) {
	t.Parallel()

	a := "MTG Duskmourn Draft Booster Box 36ct"
	b := "Duskmourn: House of Horror Draft Booster Box"
	assert.Equal(t, Score(a, b), Score(b, a))
}

func TestScore_BoostCappedAtOne(t *testing.T) {
	t.Parallel()

	// Full token overlap plus boost would exceed 1.0 without the cap.
	s := Score("draft booster box", "box booster draft")
	assert.LessOrEqual(t, s, 1.0)
}

func TestScore_ShortTokensDiscarded(t *testing.T) {
	t.Parallel()

	// Only tokens longer than 2 chars count; these strings have none.
	assert.Equal(t, 0.0, Score("of to", "it is"))
}
