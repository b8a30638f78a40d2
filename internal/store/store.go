// Package store persists catalog entries and staged match candidates.
package store

import (
	"context"
	"errors"

	"github.com/mintvault/catalog-cli/internal/model"
)

// ErrNotFound is returned when a catalog entry or staged candidate does
// not exist. Callers translate it into a structured failure result
// rather than aborting a batch.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for the matching and
// reconciliation pipelines.
type Store interface {
	// Catalog
	CreateEntry(ctx context.Context, entry model.CatalogEntry) (*model.CatalogEntry, error)
	GetEntry(ctx context.Context, id string) (*model.CatalogEntry, error)
	// ListUnverified returns up to limit entries not yet verified for the
	// given marketplace, ordered by name for deterministic batches.
	// limit <= 0 means no limit.
	ListUnverified(ctx context.Context, marketplace model.Marketplace, limit int) ([]model.CatalogEntry, error)
	// SetExternalID writes the marketplace identifier and verification
	// flag onto an entry.
	SetExternalID(ctx context.Context, id string, marketplace model.Marketplace, externalID string, verified bool) error

	// Staging
	StagedExists(ctx context.Context, entryID, code string) (bool, error)
	CreateStaged(ctx context.Context, sc model.StagedCandidate) (*model.StagedCandidate, error)
	GetStaged(ctx context.Context, id string) (*model.StagedCandidate, error)
	DeleteStaged(ctx context.Context, id string) error
	ListStaged(ctx context.Context, limit int) ([]model.StagedCandidate, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// verifiedColumns maps a marketplace to its identifier and flag columns.
// Shared by both backends so the schemas cannot drift apart.
func verifiedColumns(m model.Marketplace) (idCol, flagCol string, ok bool) {
	switch m {
	case model.MarketplaceTCGPlayer:
		return "tcg_product_id", "tcg_is_verified", true
	case model.MarketplaceCardTrader:
		return "cardtrader_id", "cardtrader_is_verified", true
	case model.MarketplaceUPC:
		return "upc", "upc_is_verified", true
	}
	return "", "", false
}
