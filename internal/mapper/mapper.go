// Package mapper implements the bulk marketplace-mapping orchestrator:
// it walks catalog entries missing a verified marketplace identifier and
// resolves them through an external search adapter, one entry at a time.
package mapper

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mintvault/catalog-cli/internal/model"
	"github.com/mintvault/catalog-cli/internal/review"
	"github.com/mintvault/catalog-cli/internal/store"
)

// Hit is a single result from an external marketplace search.
type Hit struct {
	ExternalID   string
	ExternalName string
}

// Searcher abstracts a marketplace search adapter. An empty result set
// is not an error; adapters return errors only for transport failures.
type Searcher interface {
	Search(ctx context.Context, query, hint string) ([]Hit, error)
}

// Config controls one mapping flow.
type Config struct {
	Marketplace model.Marketplace

	// Delay is the politeness interval enforced between successive
	// external search calls. Default 1.5s.
	Delay time.Duration

	// SearchTimeout bounds each individual search call so a stalled
	// adapter cannot block the batch indefinitely. Default 15s.
	SearchTimeout time.Duration

	// AutoVerify selects the post-match trust policy: true writes the
	// identifier and marks the entry verified immediately; false leaves
	// the entry untouched and stages a proposal for manual review.
	AutoVerify bool

	// MaxBatches is the hard iteration ceiling for RunAll. Default 50.
	MaxBatches int
}

// Mapper runs bounded mapping batches against one marketplace.
type Mapper struct {
	store   store.Store
	search  Searcher
	review  *review.Service
	limiter *rate.Limiter
	cfg     Config
	log     *zap.Logger
}

// New creates a Mapper. The rate limiter admits the first call
// immediately and spaces every subsequent call by cfg.Delay.
func New(st store.Store, search Searcher, rev *review.Service, cfg Config) *Mapper {
	if cfg.Delay <= 0 {
		cfg.Delay = 1500 * time.Millisecond
	}
	if cfg.SearchTimeout <= 0 {
		cfg.SearchTimeout = 15 * time.Second
	}
	if cfg.MaxBatches <= 0 {
		cfg.MaxBatches = 50
	}
	return &Mapper{
		store:   st,
		search:  search,
		review:  rev,
		limiter: rate.NewLimiter(rate.Every(cfg.Delay), 1),
		cfg:     cfg,
		log: zap.L().With(
			zap.String("component", "mapper"),
			zap.String("marketplace", string(cfg.Marketplace)),
		),
	}
}

// RunBatch processes up to batchSize unverified entries sequentially.
// Per-item failures are counted and never abort the batch; only the
// initial catalog query is fatal. The first search result is accepted
// as the match — relevance filtering is the external source's job in
// this flow.
func (m *Mapper) RunBatch(ctx context.Context, batchSize int) (model.BatchSummary, error) {
	var summary model.BatchSummary

	entries, err := m.store.ListUnverified(ctx, m.cfg.Marketplace, batchSize)
	if err != nil {
		return summary, eris.Wrap(err, "mapper: list unverified entries")
	}
	summary.Total = len(entries)

	for _, entry := range entries {
		summary.Processed++

		if err := m.limiter.Wait(ctx); err != nil {
			return summary, eris.Wrap(err, "mapper: rate limiter wait")
		}

		hits, err := m.searchOne(ctx, entry)
		if err != nil {
			summary.Errors++
			m.log.Warn("search failed",
				zap.String("entry_id", entry.ID),
				zap.String("name", entry.Name),
				zap.Error(err),
			)
			continue
		}
		if len(hits) == 0 {
			m.log.Debug("no results", zap.String("name", entry.Name))
			continue
		}

		if err := m.applyMatch(ctx, entry, hits[0]); err != nil {
			summary.Errors++
			m.log.Warn("apply match failed",
				zap.String("entry_id", entry.ID),
				zap.Error(err),
			)
			continue
		}
		summary.Mapped++
	}

	m.log.Info("batch complete",
		zap.Int("total", summary.Total),
		zap.Int("processed", summary.Processed),
		zap.Int("mapped", summary.Mapped),
		zap.Int("errors", summary.Errors),
	)
	return summary, nil
}

// RunAll repeatedly invokes RunBatch until the catalog reports no more
// unverified entries, bounded by the MaxBatches ceiling so it
// terminates even if the pool never drains (as in stage-for-review
// mode, where matched entries stay unverified).
func (m *Mapper) RunAll(ctx context.Context, batchSize int) (model.BatchSummary, error) {
	var agg model.BatchSummary

	for i := 0; i < m.cfg.MaxBatches; i++ {
		batch, err := m.RunBatch(ctx, batchSize)
		agg.Add(batch)
		if err != nil {
			return agg, err
		}
		if batch.Total < batchSize || batch.Mapped == 0 {
			break
		}
	}
	return agg, nil
}

func (m *Mapper) searchOne(ctx context.Context, entry model.CatalogEntry) ([]Hit, error) {
	callCtx, cancel := context.WithTimeout(ctx, m.cfg.SearchTimeout)
	defer cancel()
	return m.search.Search(callCtx, entry.Name, entry.SetCode)
}

func (m *Mapper) applyMatch(ctx context.Context, entry model.CatalogEntry, hit Hit) error {
	if m.cfg.AutoVerify {
		return m.store.SetExternalID(ctx, entry.ID, m.cfg.Marketplace, hit.ExternalID, true)
	}

	// Stage-for-review: no catalog mutation until a human approves.
	_, err := m.review.Create(ctx, model.StagedCandidate{
		EntryID:     entry.ID,
		Marketplace: m.cfg.Marketplace,
		Code:        hit.ExternalID,
		ScrapedName: hit.ExternalName,
		Provenance:  "search:" + string(m.cfg.Marketplace),
	})
	return err
}
