package main

import (
	"github.com/spf13/cobra"
)

var stagedLimit int

var stagedCmd = &cobra.Command{
	Use:   "staged",
	Short: "Manage the staged-match review queue",
}

var stagedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List staged candidates awaiting review",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		staged, err := st.ListStaged(ctx, stagedLimit)
		if err != nil {
			return err
		}
		return printJSON(staged)
	},
}

var stagedApproveCmd = &cobra.Command{
	Use:   "approve <staging-id>",
	Short: "Approve a staged candidate and verify its catalog entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		decision, err := reviewService(st).Approve(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(decision)
	},
}

var stagedRejectCmd = &cobra.Command{
	Use:   "reject <staging-id>",
	Short: "Reject a staged candidate without touching the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		decision, err := reviewService(st).Reject(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(decision)
	},
}

func init() {
	stagedListCmd.Flags().IntVar(&stagedLimit, "limit", 100, "maximum rows to list")
	stagedCmd.AddCommand(stagedListCmd, stagedApproveCmd, stagedRejectCmd)
	rootCmd.AddCommand(stagedCmd)
}
