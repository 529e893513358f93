package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dcabot/internal/cli"
	"dcabot/internal/notify"
	"dcabot/internal/store"
)

var checkConfigCmd = &cobra.Command{
	Use:   "check-config",
	Short: "Validate the config file and report what a run would use",
	RunE:  runCheckConfig,
}

func init() {
	rootCmd.AddCommand(checkConfigCmd)
}

func runCheckConfig(cmd *cobra.Command, _ []string) error {
	if err := store.LoadEnv(flagEnv); err != nil {
		return err
	}
	cfg, warnings, err := store.LoadConfig(flagConfig)
	out := cmd.OutOrStdout()
	for _, w := range warnings {
		fmt.Fprintln(out, cli.RenderWarning(w))
	}
	if err != nil {
		return err
	}

	_, nw := notify.FromConfig(cfg)
	for _, w := range nw {
		fmt.Fprintln(out, cli.RenderWarning(w))
	}

	creds := "present"
	if missing := store.LoadCredentials().Missing(); len(missing) > 0 {
		creds = "missing " + strings.Join(missing, ", ")
		if cfg.Mode == store.ModeLive {
			fmt.Fprintln(out, cli.RenderWarning("LIVE mode runs will fail: "+creds))
		}
	}

	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Title:   "Configuration " + flagConfig,
		Headers: []string{"Setting", "Value"},
		Rows: [][]string{
			{"Mode", cfg.Mode},
			{"Symbol", cfg.Symbol},
			{"Baseline", fmt.Sprintf("$%.2f", cfg.BaselineUSD)},
			{"Daily cap", fmt.Sprintf("%.1fx", cfg.Policy.DailyCapX)},
			{"Pause above", fmt.Sprintf("%.2f", cfg.Policy.PauseThreshold)},
			{"Ledger", cfg.Ledger.Backend + " " + cfg.Ledger.Path},
			{"Journal", cfg.Journal.Dir},
			{"Credentials", creds},
		},
	}))
	return nil
}
