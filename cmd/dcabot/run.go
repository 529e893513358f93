package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dcabot/internal/logger"
	"dcabot/internal/report"
	"dcabot/internal/trace"
)

var flagPrintReport bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one DCA cycle and publish its report",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().BoolVar(&flagPrintReport, "print", true, "Print the final report to stdout")
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	if err := initializeSystem(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := initializeEngine(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to initialize engine", err)
		return err
	}
	defer rt.close()

	runCtx, cancel := context.WithTimeout(ctx, rt.cfg.RunTimeout)
	defer cancel()

	res := rt.runner.Run(runCtx)

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := trace.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to shutdown tracer: %v\n", err)
	}

	if flagPrintReport && res.Report != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n\n%s", res.Report.FullTitle(), res.Report.Markdown())
	}
	if res.Status == report.StatusFailed {
		return fmt.Errorf("%w: %v", errRunFailed, res.Err)
	}
	return nil
}
