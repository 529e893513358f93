package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	flagConfig string
	flagEnv    string
)

var rootCmd = &cobra.Command{
	Use:          "dcabot",
	Short:        "Valuation-weighted daily DCA agent",
	Long:         "Buys a daily amount of a crypto asset on OKX, scaled by a valuation index, and reports every run.",
	Version:      version,
	SilenceUsage: true,
	RunE:         runRun,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "config.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagEnv, "env-file", ".env", "Dotenv file with credentials (ignored when missing)")
}
