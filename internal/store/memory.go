package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/mintvault/catalog-cli/internal/model"
)

// MemoryStore is an in-memory Store used for demos and tests. It mirrors
// the SQL backends' semantics: name-ordered unverified listings, the
// unique (catalog entry, code) staging constraint, and ErrNotFound on
// missing rows.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]model.CatalogEntry
	staged  map[string]model.StagedCandidate
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]model.CatalogEntry),
		staged:  make(map[string]model.StagedCandidate),
	}
}

func (s *MemoryStore) Migrate(context.Context) error { return nil }
func (s *MemoryStore) Close() error                  { return nil }

func (s *MemoryStore) CreateEntry(_ context.Context, entry model.CatalogEntry) (*model.CatalogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	s.entries[entry.ID] = entry
	return &entry, nil
}

func (s *MemoryStore) GetEntry(_ context.Context, id string) (*model.CatalogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "catalog entry %s", id)
	}
	return &e, nil
}

func (s *MemoryStore) ListUnverified(_ context.Context, marketplace model.Marketplace, limit int) ([]model.CatalogEntry, error) {
	if !marketplace.Valid() {
		return nil, eris.Errorf("memory: unknown marketplace %q", marketplace)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.CatalogEntry
	for _, e := range s.entries {
		if !e.Verified(marketplace) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) SetExternalID(_ context.Context, id string, marketplace model.Marketplace, externalID string, verified bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return eris.Wrapf(ErrNotFound, "catalog entry %s", id)
	}

	switch marketplace {
	case model.MarketplaceTCGPlayer:
		e.TCGProductID = externalID
		e.TCGVerified = verified
	case model.MarketplaceCardTrader:
		e.CardTraderID = externalID
		e.CardTraderVerified = verified
	case model.MarketplaceUPC:
		e.UPC = externalID
		e.UPCVerified = verified
	default:
		return eris.Errorf("memory: unknown marketplace %q", marketplace)
	}

	e.UpdatedAt = time.Now().UTC()
	s.entries[id] = e
	return nil
}

func (s *MemoryStore) StagedExists(_ context.Context, entryID, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sc := range s.staged {
		if sc.EntryID == entryID && sc.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) CreateStaged(_ context.Context, sc model.StagedCandidate) (*model.StagedCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.staged {
		if existing.EntryID == sc.EntryID && existing.Code == sc.Code {
			return nil, eris.Errorf("memory: staged candidate exists for (%s, %s)", sc.EntryID, sc.Code)
		}
	}

	if sc.ID == "" {
		sc.ID = uuid.New().String()
	}
	sc.CreatedAt = time.Now().UTC()
	s.staged[sc.ID] = sc
	return &sc, nil
}

func (s *MemoryStore) GetStaged(_ context.Context, id string) (*model.StagedCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.staged[id]
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "staged candidate %s", id)
	}
	return &sc, nil
}

func (s *MemoryStore) DeleteStaged(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.staged[id]; !ok {
		return eris.Wrapf(ErrNotFound, "staged candidate %s", id)
	}
	delete(s.staged, id)
	return nil
}

func (s *MemoryStore) ListStaged(_ context.Context, limit int) ([]model.StagedCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.StagedCandidate, 0, len(s.staged))
	for _, sc := range s.staged {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
