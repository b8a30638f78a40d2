package reconcile

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mintvault/catalog-cli/internal/model"
	"github.com/mintvault/catalog-cli/internal/review"
	"github.com/mintvault/catalog-cli/internal/store"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type stubSource struct {
	items []model.ScrapedItem
	err   error
}

func (s *stubSource) Fetch(context.Context) ([]model.ScrapedItem, error) {
	return s.items, s.err
}

func TestRun_StagesStrongMatch(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	entry, err := st.CreateEntry(context.Background(), model.CatalogEntry{
		Name: "Dominaria United Draft Booster Pack",
	})
	require.NoError(t, err)

	source := &stubSource{items: []model.ScrapedItem{{
		Name:      "Magic: The Gathering - Dominaria United Draft Booster Pack",
		Code:      "630509620123",
		SourceURL: "https://scraper.example.com/item/42",
	}}}

	p := New(st, source, review.New(st), Config{})
	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, summary.UsedFixtures)
	assert.Equal(t, 1, summary.TotalScraped)
	assert.Equal(t, 1, summary.TotalMatched)
	assert.Equal(t, 1, summary.TotalStaged)
	require.Len(t, summary.Matches, 1)
	assert.GreaterOrEqual(t, summary.Matches[0].Score, 0.9)
	assert.Equal(t, model.TierMedium, summary.Matches[0].Tier)

	staged, err := st.ListStaged(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, staged, 1)
	assert.Equal(t, entry.ID, staged[0].EntryID)
	assert.Equal(t, "630509620123", staged[0].Code)
	assert.Equal(t, model.MarketplaceUPC, staged[0].Marketplace)
	assert.Equal(t, "https://scraper.example.com/item/42", staged[0].Provenance)

	// The catalog itself is untouched until a human approves.
	got, err := st.GetEntry(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Empty(t, got.UPC)
	assert.False(t, got.UPCVerified)
}

func TestRun_ThenApprove(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	rev := review.New(st)
	entry, err := st.CreateEntry(context.Background(), model.CatalogEntry{
		Name: "Dominaria United Draft Booster Pack",
	})
	require.NoError(t, err)

	source := &stubSource{items: []model.ScrapedItem{{
		Name: "Magic: The Gathering - Dominaria United Draft Booster Pack",
		Code: "630509620123",
	}}}

	p := New(st, source, rev, Config{})
	_, err = p.Run(context.Background())
	require.NoError(t, err)

	staged, err := st.ListStaged(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, staged, 1)

	decision, err := rev.Approve(context.Background(), staged[0].ID)
	require.NoError(t, err)
	assert.True(t, decision.Success)

	got, err := st.GetEntry(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "630509620123", got.UPC)
	assert.True(t, got.UPCVerified)

	remaining, err := st.ListStaged(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestRun_WeakMatchNotStaged(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	_, err := st.CreateEntry(context.Background(), model.CatalogEntry{
		Name: "Bloomburrow Commander Deck",
	})
	require.NoError(t, err)

	source := &stubSource{items: []model.ScrapedItem{{
		Name: "Vintage Baseball Card Lot",
		Code: "111111111111",
	}}}

	p := New(st, source, review.New(st), Config{})
	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalScraped)
	assert.Equal(t, 0, summary.TotalMatched)
	assert.Equal(t, 0, summary.TotalStaged)
	// Unmatched items still appear in the report.
	require.Len(t, summary.Matches, 1)
	assert.False(t, summary.Matches[0].Matched())
}

func TestRun_MatchedItemWithoutCodeIsNotStaged(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	_, err := st.CreateEntry(context.Background(), model.CatalogEntry{
		Name: "Foundations Bundle",
	})
	require.NoError(t, err)

	source := &stubSource{items: []model.ScrapedItem{{
		Name: "MTG Foundations Bundle",
	}}}

	p := New(st, source, review.New(st), Config{})
	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalMatched)
	assert.Equal(t, 0, summary.TotalStaged)
}

func TestRun_VerifiedEntriesExcludedFromPool(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	verified, err := st.CreateEntry(context.Background(), model.CatalogEntry{
		Name:        "Foundations Bundle",
		UPC:         "195166261751",
		UPCVerified: true,
	})
	require.NoError(t, err)

	source := &stubSource{items: []model.ScrapedItem{{
		Name: "Foundations Bundle",
		Code: "000000000000",
	}}}

	p := New(st, source, review.New(st), Config{})
	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	// The only candidate entry is already verified; nothing may match
	// or overwrite it.
	assert.Equal(t, 0, summary.TotalMatched)
	assert.Equal(t, 0, summary.TotalStaged)

	got, err := st.GetEntry(context.Background(), verified.ID)
	require.NoError(t, err)
	assert.Equal(t, "195166261751", got.UPC)
}

func TestRun_RepeatedRunsStageOnce(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	_, err := st.CreateEntry(context.Background(), model.CatalogEntry{
		Name: "Foundations Bundle",
	})
	require.NoError(t, err)

	source := &stubSource{items: []model.ScrapedItem{{
		Name: "MTG Foundations Bundle",
		Code: "195166261751",
	}}}

	p := New(st, source, review.New(st), Config{})

	first, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.TotalStaged)

	second, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, second.TotalMatched)
	assert.Equal(t, 0, second.TotalStaged)

	staged, err := st.ListStaged(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, staged, 1)
}

func TestRun_FallsBackToFixturesWhenSourceFails(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	source := &stubSource{err: eris.New("connection refused")}

	p := New(st, source, review.New(st), Config{})
	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, summary.UsedFixtures)
	assert.Equal(t, 5, summary.TotalScraped)
}

func TestRun_NilSourceUsesFixtures(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	_, err := st.CreateEntry(context.Background(), model.CatalogEntry{
		Name: "Duskmourn: House of Horror Collector Booster Box",
	})
	require.NoError(t, err)

	p := New(st, nil, review.New(st), Config{})
	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, summary.UsedFixtures)
	assert.Equal(t, 5, summary.TotalScraped)
	assert.GreaterOrEqual(t, summary.TotalMatched, 1)

	staged, err := st.ListStaged(context.Background(), 0)
	require.NoError(t, err)
	require.NotEmpty(t, staged)
	assert.Contains(t, staged[0].Provenance, "fixture://")
}

func TestFixtureItems(t *testing.T) {
	t.Parallel()

	items, err := FixtureItems()
	require.NoError(t, err)
	require.Len(t, items, 5)
	for _, it := range items {
		assert.NotEmpty(t, it.Name)
		assert.NotEmpty(t, it.Code)
		assert.Contains(t, it.SourceURL, "fixture://")
	}
}
