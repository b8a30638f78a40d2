package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/mintvault/catalog-cli/internal/mapper"
	"github.com/mintvault/catalog-cli/internal/model"
	"github.com/mintvault/catalog-cli/internal/review"
	"github.com/mintvault/catalog-cli/internal/store"
	"github.com/mintvault/catalog-cli/pkg/cardtrader"
	"github.com/mintvault/catalog-cli/pkg/tcgplayer"
)

// openStore constructs the configured store backend and runs migrations.
func openStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite", "":
		st, err = store.NewSQLite(cfg.Store.DatabaseURL)
	case "memory":
		st = store.NewMemory()
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// newSearcher builds the search adapter for the given marketplace.
func newSearcher(marketplace model.Marketplace) (mapper.Searcher, error) {
	retries := cfg.Search.Retries + 1 // attempts = first try + retries
	switch marketplace {
	case model.MarketplaceTCGPlayer:
		client := tcgplayer.NewClient(cfg.TCGPlayer.Key,
			tcgplayer.WithBaseURL(cfg.TCGPlayer.BaseURL),
			tcgplayer.WithRetries(retries),
		)
		return tcgSearcher{client: client}, nil
	case model.MarketplaceCardTrader:
		client := cardtrader.NewClient(cfg.CardTrader.Token,
			cardtrader.WithBaseURL(cfg.CardTrader.BaseURL),
			cardtrader.WithRetries(retries),
		)
		return cardTraderSearcher{client: client}, nil
	default:
		return nil, eris.Errorf("no search adapter for marketplace %q", marketplace)
	}
}

// newMapper wires a mapper for the given marketplace and trust policy.
func newMapperFor(st store.Store, marketplace model.Marketplace, autoVerify bool) (*mapper.Mapper, error) {
	search, err := newSearcher(marketplace)
	if err != nil {
		return nil, err
	}

	rev := reviewService(st)
	return mapper.New(st, search, rev, mapper.Config{
		Marketplace:   marketplace,
		Delay:         time.Duration(cfg.Map.DelaySecs * float64(time.Second)),
		SearchTimeout: time.Duration(cfg.Search.TimeoutSecs) * time.Second,
		AutoVerify:    autoVerify,
		MaxBatches:    cfg.Map.MaxBatches,
	}), nil
}

func reviewService(st store.Store) *review.Service {
	return review.New(st)
}

type tcgSearcher struct {
	client tcgplayer.Client
}

func (s tcgSearcher) Search(ctx context.Context, query, hint string) ([]mapper.Hit, error) {
	products, err := s.client.SearchProducts(ctx, query, hint)
	if err != nil {
		return nil, err
	}
	hits := make([]mapper.Hit, 0, len(products))
	for _, p := range products {
		hits = append(hits, mapper.Hit{ExternalID: p.ExternalID(), ExternalName: p.Name})
	}
	return hits, nil
}

type cardTraderSearcher struct {
	client cardtrader.Client
}

func (s cardTraderSearcher) Search(ctx context.Context, query, _ string) ([]mapper.Hit, error) {
	blueprints, err := s.client.SearchBlueprints(ctx, query)
	if err != nil {
		return nil, err
	}
	hits := make([]mapper.Hit, 0, len(blueprints))
	for _, b := range blueprints {
		hits = append(hits, mapper.Hit{ExternalID: b.ExternalID(), ExternalName: b.Name})
	}
	return hits, nil
}
