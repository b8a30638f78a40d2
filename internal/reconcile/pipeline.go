// Package reconcile implements the UPC reconciliation pipeline: scraped
// (name, code) pairs are ranked against unverified catalog entries and
// strong matches are staged for human review.
package reconcile

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mintvault/catalog-cli/internal/match"
	"github.com/mintvault/catalog-cli/internal/model"
	"github.com/mintvault/catalog-cli/internal/review"
	"github.com/mintvault/catalog-cli/internal/store"
)

// Source abstracts the external UPC scraper feed.
type Source interface {
	Fetch(ctx context.Context) ([]model.ScrapedItem, error)
}

// Config controls one reconciliation run.
type Config struct {
	// Threshold is the minimum similarity score required to stage a
	// match. Default match.DefaultStagingThreshold.
	Threshold float64
}

// Pipeline reconciles scraped UPC items against the catalog.
type Pipeline struct {
	store  store.Store
	source Source
	review *review.Service
	cfg    Config
	log    *zap.Logger
}

// New creates a Pipeline. source may be nil, in which case every run
// uses the built-in fixture set.
func New(st store.Store, source Source, rev *review.Service, cfg Config) *Pipeline {
	if cfg.Threshold <= 0 {
		cfg.Threshold = match.DefaultStagingThreshold
	}
	return &Pipeline{
		store:  st,
		source: source,
		review: rev,
		cfg:    cfg,
		log:    zap.L().With(zap.String("component", "reconcile")),
	}
}

// Run executes one reconciliation pass. The matchable pool is limited
// to entries not yet UPC-verified; verified entries are immutable
// targets and never overwritten. Every scraped item produces a match
// candidate for reporting, matched or not. Ranking is in-memory — the
// only external calls are the single feed fetch and the store writes.
func (p *Pipeline) Run(ctx context.Context) (model.ReconcileSummary, error) {
	var summary model.ReconcileSummary

	items, usedFixtures, err := p.fetchItems(ctx)
	if err != nil {
		return summary, err
	}
	summary.UsedFixtures = usedFixtures
	summary.TotalScraped = len(items)

	pool, err := p.store.ListUnverified(ctx, model.MarketplaceUPC, 0)
	if err != nil {
		return summary, eris.Wrap(err, "reconcile: list unverified entries")
	}

	for _, item := range items {
		candidate := match.Rank(item, pool, p.cfg.Threshold)
		summary.Matches = append(summary.Matches, candidate)

		if !candidate.Matched() {
			continue
		}
		summary.TotalMatched++

		if item.Code == "" {
			p.log.Debug("matched item has no code, skipping staging",
				zap.String("name", item.Name),
			)
			continue
		}

		created, err := p.review.Create(ctx, model.StagedCandidate{
			EntryID:     candidate.EntryID,
			Marketplace: model.MarketplaceUPC,
			Code:        item.Code,
			ScrapedName: item.Name,
			Provenance:  item.SourceURL,
		})
		if err != nil {
			p.log.Warn("staging failed",
				zap.String("entry_id", candidate.EntryID),
				zap.String("code", item.Code),
				zap.Error(err),
			)
			continue
		}
		if created {
			summary.TotalStaged++
		}
	}

	p.log.Info("reconciliation complete",
		zap.Int("scraped", summary.TotalScraped),
		zap.Int("matched", summary.TotalMatched),
		zap.Int("staged", summary.TotalStaged),
		zap.Bool("used_fixtures", summary.UsedFixtures),
	)
	return summary, nil
}

// fetchItems pulls the scraped feed, degrading to the built-in fixture
// set when the source is missing or unreachable so the pipeline stays
// available for downstream review and testing.
func (p *Pipeline) fetchItems(ctx context.Context) ([]model.ScrapedItem, bool, error) {
	if p.source != nil {
		items, err := p.source.Fetch(ctx)
		if err == nil {
			return items, false, nil
		}
		p.log.Warn("scraper source unreachable, falling back to fixtures", zap.Error(err))
	}

	items, err := FixtureItems()
	if err != nil {
		return nil, false, err
	}
	return items, true, nil
}
