// Package model defines the core domain types for catalog matching and
// reconciliation.
package model

import "time"

// Marketplace identifies an external source a catalog entry can be mapped to.
type Marketplace string

const (
	MarketplaceTCGPlayer  Marketplace = "tcgplayer"
	MarketplaceCardTrader Marketplace = "cardtrader"
	MarketplaceUPC        Marketplace = "upc"
)

// Valid reports whether the marketplace is one of the known sources.
func (m Marketplace) Valid() bool {
	switch m {
	case MarketplaceTCGPlayer, MarketplaceCardTrader, MarketplaceUPC:
		return true
	}
	return false
}

// CatalogEntry is a canonical sealed-product record. External identifiers
// are independently nullable (empty string = unset); a verified flag may
// only be true when the matching identifier is set.
type CatalogEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SetCode  string `json:"set_code,omitempty"`
	Category string `json:"category,omitempty"`

	TCGProductID string `json:"tcg_product_id,omitempty"`
	CardTraderID string `json:"cardtrader_id,omitempty"`
	UPC          string `json:"upc,omitempty"`

	TCGVerified        bool `json:"tcg_is_verified"`
	CardTraderVerified bool `json:"cardtrader_is_verified"`
	UPCVerified        bool `json:"upc_is_verified"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ExternalID returns the identifier stored for the given marketplace.
func (e CatalogEntry) ExternalID(m Marketplace) string {
	switch m {
	case MarketplaceTCGPlayer:
		return e.TCGProductID
	case MarketplaceCardTrader:
		return e.CardTraderID
	case MarketplaceUPC:
		return e.UPC
	}
	return ""
}

// Verified returns the verification flag for the given marketplace.
func (e CatalogEntry) Verified(m Marketplace) bool {
	switch m {
	case MarketplaceTCGPlayer:
		return e.TCGVerified
	case MarketplaceCardTrader:
		return e.CardTraderVerified
	case MarketplaceUPC:
		return e.UPCVerified
	}
	return false
}

// ScrapedItem is an ephemeral externally sourced record. It is consumed
// once per pipeline run and never persisted; only the match derived from
// it is.
type ScrapedItem struct {
	Name      string `json:"name"`
	Code      string `json:"code,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
}

// StagedCandidate is a pending proposal linking a scraped record to a
// catalog entry, awaiting human approval or rejection. At most one staged
// candidate may exist per (catalog entry, code) pair.
type StagedCandidate struct {
	ID          string      `json:"id"`
	EntryID     string      `json:"catalog_entry_id"`
	Marketplace Marketplace `json:"marketplace"`
	Code        string      `json:"code"`
	ScrapedName string      `json:"scraped_name"`
	Provenance  string      `json:"provenance,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}
