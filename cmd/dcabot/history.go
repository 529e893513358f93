package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"dcabot/internal/history"
	"dcabot/internal/ledger"
	"dcabot/internal/store"
)

var flagOut string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Export the cumulative portfolio series as CSV",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&flagOut, "out", "o", "", "Output file (default stdout)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if err := initializeSystem(); err != nil {
		return err
	}
	cfg, _, err := store.LoadConfig(flagConfig)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	snap, err := readLedger(ctx, cfg)
	if err != nil {
		return err
	}
	points := history.Build(ledger.Priced(snap.Entries))

	if flagOut == "" {
		return history.WriteCSV(cmd.OutOrStdout(), points)
	}
	if err := history.WriteFile(flagOut, points); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d rows to %s\n", len(points), flagOut)
	return nil
}
