package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mintvault/catalog-cli/internal/model"
)

var (
	mapMarketplace string
	mapBatchSize   int
	mapAll         bool
	mapAutoVerify  bool
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Bulk marketplace mapping",
}

var mapRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Map unverified catalog entries to marketplace listings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		marketplace := model.Marketplace(mapMarketplace)
		if !marketplace.Valid() || marketplace == model.MarketplaceUPC {
			return fmt.Errorf("unsupported marketplace %q (use tcgplayer or cardtrader)", mapMarketplace)
		}

		batchSize := mapBatchSize
		if batchSize <= 0 {
			batchSize = cfg.Map.BatchSize
		}
		autoVerify := cfg.Map.AutoVerify
		if cmd.Flags().Changed("auto-verify") {
			autoVerify = mapAutoVerify
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		m, err := newMapperFor(st, marketplace, autoVerify)
		if err != nil {
			return err
		}

		var summary model.BatchSummary
		if mapAll {
			summary, err = m.RunAll(ctx, batchSize)
		} else {
			summary, err = m.RunBatch(ctx, batchSize)
		}
		if err != nil {
			return err
		}

		return printJSON(summary)
	},
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func init() {
	mapRunCmd.Flags().StringVar(&mapMarketplace, "marketplace", string(model.MarketplaceTCGPlayer), "target marketplace (tcgplayer|cardtrader)")
	mapRunCmd.Flags().IntVar(&mapBatchSize, "batch-size", 0, "entries per batch (default from config)")
	mapRunCmd.Flags().BoolVar(&mapAll, "all", false, "run batches until the pool drains (bounded by map.max_batches)")
	mapRunCmd.Flags().BoolVar(&mapAutoVerify, "auto-verify", false, "verify matches immediately instead of staging for review")
	mapCmd.AddCommand(mapRunCmd)
	rootCmd.AddCommand(mapCmd)
}
