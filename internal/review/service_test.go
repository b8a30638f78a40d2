package review

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mintvault/catalog-cli/internal/model"
	"github.com/mintvault/catalog-cli/internal/store"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// failingStore wraps a Store and fails catalog writes on demand, to
// exercise the approval two-step.
type failingStore struct {
	store.Store
	failSetExternalID bool
}

func (f *failingStore) SetExternalID(ctx context.Context, id string, m model.Marketplace, externalID string, verified bool) error {
	if f.failSetExternalID {
		return eris.New("simulated catalog write failure")
	}
	return f.Store.SetExternalID(ctx, id, m, externalID, verified)
}

func seedEntry(t *testing.T, st store.Store, name string) *model.CatalogEntry {
	t.Helper()
	entry, err := st.CreateEntry(context.Background(), model.CatalogEntry{Name: name})
	require.NoError(t, err)
	return entry
}

func TestCreate_Idempotent(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	svc := New(st)
	entry := seedEntry(t, st, "Dominaria United Draft Booster Pack")

	sc := model.StagedCandidate{
		EntryID:     entry.ID,
		Marketplace: model.MarketplaceUPC,
		Code:        "123456",
		ScrapedName: "MTG Dominaria United Draft Booster",
		Provenance:  "https://example.com/scan/1",
	}

	created, err := svc.Create(context.Background(), sc)
	require.NoError(t, err)
	assert.True(t, created)

	// Re-encountering the same (entry, code) pair is a no-op.
	created, err = svc.Create(context.Background(), sc)
	require.NoError(t, err)
	assert.False(t, created)

	staged, err := st.ListStaged(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, staged, 1)
}

func TestCreate_Validation(t *testing.T) {
	t.Parallel()

	svc := New(store.NewMemory())

	_, err := svc.Create(context.Background(), model.StagedCandidate{
		Marketplace: model.MarketplaceUPC,
		Code:        "123456",
		ScrapedName: "name",
	})
	assert.Error(t, err)

	_, err = svc.Create(context.Background(), model.StagedCandidate{
		EntryID:     "some-entry",
		Marketplace: "ebay",
		Code:        "123456",
		ScrapedName: "name",
	})
	assert.Error(t, err)
}

func TestApprove_WritesCatalogAndDeletesStaged(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	svc := New(st)
	entry := seedEntry(t, st, "Dominaria United Draft Booster Pack")

	staged, err := st.CreateStaged(context.Background(), model.StagedCandidate{
		EntryID:     entry.ID,
		Marketplace: model.MarketplaceUPC,
		Code:        "630509620123",
		ScrapedName: "Magic: The Gathering - Dominaria United Draft Booster Pack",
	})
	require.NoError(t, err)

	decision, err := svc.Approve(context.Background(), staged.ID)
	require.NoError(t, err)
	assert.True(t, decision.Success)

	got, err := st.GetEntry(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "630509620123", got.UPC)
	assert.True(t, got.UPCVerified)

	_, err = st.GetStaged(context.Background(), staged.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestApprove_CatalogWriteFailureKeepsStagedRow(t *testing.T) {
	t.Parallel()

	mem := store.NewMemory()
	st := &failingStore{Store: mem, failSetExternalID: true}
	svc := New(st)
	entry := seedEntry(t, mem, "Dominaria United Draft Booster Pack")

	staged, err := mem.CreateStaged(context.Background(), model.StagedCandidate{
		EntryID:     entry.ID,
		Marketplace: model.MarketplaceUPC,
		Code:        "630509620123",
		ScrapedName: "scan",
	})
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), staged.ID)
	assert.Error(t, err)

	// Staged row preserved so the approval can be retried.
	got, err := mem.GetStaged(context.Background(), staged.ID)
	require.NoError(t, err)
	assert.Equal(t, staged.ID, got.ID)

	// Retry succeeds once the catalog write works again.
	st.failSetExternalID = false
	decision, err := svc.Approve(context.Background(), staged.ID)
	require.NoError(t, err)
	assert.True(t, decision.Success)
}

func TestApprove_NotFound(t *testing.T) {
	t.Parallel()

	svc := New(store.NewMemory())

	decision, err := svc.Approve(context.Background(), "missing-id")
	require.NoError(t, err)
	assert.False(t, decision.Success)
	assert.Contains(t, decision.Message, "not found")
}

func TestApprove_TerminalStateNotReplayable(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	svc := New(st)
	entry := seedEntry(t, st, "Foundations Bundle")

	staged, err := st.CreateStaged(context.Background(), model.StagedCandidate{
		EntryID:     entry.ID,
		Marketplace: model.MarketplaceUPC,
		Code:        "195166261751",
		ScrapedName: "MTG Foundations Bundle",
	})
	require.NoError(t, err)

	decision, err := svc.Approve(context.Background(), staged.ID)
	require.NoError(t, err)
	require.True(t, decision.Success)

	// The row was consumed; a second approve must report not found,
	// never silently succeed.
	decision, err = svc.Approve(context.Background(), staged.ID)
	require.NoError(t, err)
	assert.False(t, decision.Success)

	decision, err = svc.Reject(context.Background(), staged.ID)
	require.NoError(t, err)
	assert.False(t, decision.Success)
}

func TestReject_DeletesWithoutCatalogMutation(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	svc := New(st)
	entry := seedEntry(t, st, "Duskmourn Collector Booster Box")

	before, err := st.GetEntry(context.Background(), entry.ID)
	require.NoError(t, err)

	staged, err := st.CreateStaged(context.Background(), model.StagedCandidate{
		EntryID:     entry.ID,
		Marketplace: model.MarketplaceUPC,
		Code:        "195166253992",
		ScrapedName: "Duskmourn Collector Box",
	})
	require.NoError(t, err)

	decision, err := svc.Reject(context.Background(), staged.ID)
	require.NoError(t, err)
	assert.True(t, decision.Success)

	_, err = st.GetStaged(context.Background(), staged.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	after, err := st.GetEntry(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, *before, *after)
}
