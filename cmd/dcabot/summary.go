package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"dcabot/internal/cli"
	"dcabot/internal/exchange/okx"
	"dcabot/internal/ledger"
	"dcabot/internal/portfolio"
	"dcabot/internal/store"
)

var (
	flagOffline bool
	flagRecent  int
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the portfolio summary computed from the ledger",
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().BoolVar(&flagOffline, "offline", false, "Mark at the last ledger price instead of the live ticker")
	summaryCmd.Flags().IntVar(&flagRecent, "recent", 7, "Number of recent ledger rows to list (0 hides them)")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
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
	priced := ledger.Priced(snap.Entries)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.RenderTitle("dcabot "+cfg.Symbol))
	if snap.Malformed > 0 {
		fmt.Fprintln(out, cli.RenderWarning(fmt.Sprintf("%d malformed ledger rows ignored", snap.Malformed)))
	}

	price := markPrice(ctx, cfg, priced)
	fmt.Fprint(out, cli.RenderTable(cli.SummaryTable(cfg.Symbol, portfolio.Summarize(priced, price))))
	if flagRecent > 0 && len(priced) > 0 {
		fmt.Fprint(out, cli.RenderTable(cli.LedgerTable(priced, flagRecent)))
	}
	return nil
}

func readLedger(ctx context.Context, cfg *store.Config) (ledger.Snapshot, error) {
	l, err := openLedger(cfg)
	if err != nil {
		return ledger.Snapshot{}, err
	}
	defer l.Close()
	return l.ReadAll(ctx)
}

// markPrice prefers the live ticker and falls back to the newest ledger
// price.
func markPrice(ctx context.Context, cfg *store.Config, entries []ledger.Entry) decimal.Decimal {
	if !flagOffline {
		c, err := okx.New(okx.Config{BaseURL: cfg.Exchange.BaseURL, DryRun: true, RateLimit: cfg.Exchange.RateLimit})
		if err == nil {
			if p, err := c.LastPrice(ctx, cfg.Symbol); err == nil {
				return decimal.NewFromFloat(p)
			}
		}
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Price.IsPositive() {
			return entries[i].Price
		}
	}
	return decimal.Zero
}
