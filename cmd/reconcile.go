package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mintvault/catalog-cli/internal/model"
	"github.com/mintvault/catalog-cli/internal/reconcile"
	"github.com/mintvault/catalog-cli/pkg/upcfeed"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "UPC reconciliation",
}

var reconcileRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Match scraped UPC codes against unverified catalog entries and stage results",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		pipeline := reconcile.New(st, feedSource(), reviewService(st), reconcile.Config{
			Threshold: cfg.Match.StagingThreshold,
		})

		summary, err := pipeline.Run(ctx)
		if err != nil {
			return err
		}
		return printJSON(summary)
	},
}

// feedSource returns the configured UPC feed, or nil when unset so the
// pipeline runs against its built-in fixture set.
func feedSource() reconcile.Source {
	if cfg.UPCFeed.URL == "" {
		return nil
	}
	client := upcfeed.NewClient(cfg.UPCFeed.URL, upcfeed.WithRetries(cfg.Search.Retries+1))
	return feedAdapter{client: client}
}

type feedAdapter struct {
	client upcfeed.Client
}

func (a feedAdapter) Fetch(ctx context.Context) ([]model.ScrapedItem, error) {
	items, err := a.client.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.ScrapedItem, 0, len(items))
	for _, it := range items {
		out = append(out, model.ScrapedItem{
			Name:      it.Name,
			Code:      it.UPC,
			SourceURL: it.SourceURL,
		})
	}
	return out, nil
}

func init() {
	reconcileCmd.AddCommand(reconcileRunCmd)
	rootCmd.AddCommand(reconcileCmd)
}
