package model

// ConfidenceTier is the coarse human-facing match label. It is derived
// from string containment and is independent of the numeric similarity
// score used for ranking.
type ConfidenceTier string

const (
	TierHigh   ConfidenceTier = "high"
	TierMedium ConfidenceTier = "medium"
	TierLow    ConfidenceTier = "low"
	TierNone   ConfidenceTier = "none"
)

// MatchCandidate is the outcome of ranking one scraped item against a
// pool. A zero EntryID with TierNone is the no-match sentinel.
type MatchCandidate struct {
	ScrapedName string         `json:"scraped_name"`
	ScrapedCode string         `json:"scraped_code,omitempty"`
	EntryID     string         `json:"catalog_entry_id,omitempty"`
	EntryName   string         `json:"catalog_entry_name,omitempty"`
	Score       float64        `json:"score"`
	Tier        ConfidenceTier `json:"confidence"`
}

// Matched reports whether a catalog entry was selected.
func (c MatchCandidate) Matched() bool { return c.EntryID != "" }

// BatchSummary aggregates the outcome of one bulk mapping batch.
type BatchSummary struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Mapped    int `json:"mapped"`
	Errors    int `json:"errors"`
}

// Add accumulates another summary, for multi-batch drivers.
func (s *BatchSummary) Add(o BatchSummary) {
	s.Total += o.Total
	s.Processed += o.Processed
	s.Mapped += o.Mapped
	s.Errors += o.Errors
}

// ReconcileSummary aggregates the outcome of one UPC reconciliation run.
type ReconcileSummary struct {
	TotalScraped int              `json:"total_scraped"`
	TotalMatched int              `json:"total_matched"`
	TotalStaged  int              `json:"total_staged"`
	UsedFixtures bool             `json:"used_fixtures,omitempty"`
	Matches      []MatchCandidate `json:"matches"`
}
