package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"dcabot/internal/engine"
	"dcabot/internal/engine/engineobs"
	"dcabot/internal/exchange/exchangeobs"
	"dcabot/internal/exchange/okx"
	"dcabot/internal/ledger"
	"dcabot/internal/logger"
	"dcabot/internal/metrics"
	"dcabot/internal/notify"
	"dcabot/internal/store"
	"dcabot/internal/trace"
	"dcabot/internal/tradelog"
)

// initializeSystem loads the env file and sets up logging and tracing.
func initializeSystem() error {
	if err := store.LoadEnv(flagEnv); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", flagEnv, err)
	}

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(version); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

// loadConfig returns the config and its warnings. On error the default
// config is returned so a failure report can still be delivered.
func loadConfig(ctx context.Context) (*store.Config, []string, error) {
	cfg, warnings, err := store.LoadConfig(flagConfig)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", flagConfig)
		return store.Default(), warnings, err
	}
	for _, w := range warnings {
		logger.Warn(ctx, "Config warning", "warning", w)
	}
	return cfg, warnings, nil
}

// initializeExchange builds the OKX client wrapped with observability.
func initializeExchange(ctx context.Context, cfg *store.Config) (*okx.Client, error) {
	creds := store.LoadCredentials()
	dryRun := cfg.Mode == store.ModeDryRun
	if !dryRun && !creds.Complete() {
		return nil, fmt.Errorf("LIVE mode requires credentials, missing %s", strings.Join(creds.Missing(), ", "))
	}

	if dryRun {
		logger.Warn(ctx, "Running in DRY_RUN mode - orders will be simulated")
	}
	if cfg.Exchange.Simulated {
		logger.Info(ctx, "Using OKX demo trading environment")
	}

	return okx.New(okx.Config{
		BaseURL: cfg.Exchange.BaseURL,
		Credentials: okx.Credentials{
			APIKey:     creds.APIKey,
			SecretKey:  creds.SecretKey,
			Passphrase: creds.Passphrase,
		},
		Simulated: cfg.Exchange.Simulated,
		DryRun:    dryRun,
		RateLimit: cfg.Exchange.RateLimit,
	})
}

// openLedger opens the configured ledger backend.
func openLedger(cfg *store.Config) (ledger.Store, error) {
	return ledger.Open(cfg.Ledger.Backend, cfg.Ledger.Path, ledger.CorruptPolicy(cfg.Ledger.OnCorrupt))
}

// initializeJournal returns the run journal after compressing old files.
func initializeJournal(ctx context.Context, cfg *store.Config) *tradelog.Journal {
	j := tradelog.New(cfg.Journal.Dir)
	if cfg.Journal.RetentionDays > 0 {
		n, err := j.CompressOlder(cfg.Journal.RetentionDays)
		if err != nil {
			logger.Warn(ctx, "Failed to compress old journal files", "dir", j.Dir(), "error", err)
		} else if n > 0 {
			logger.Info(ctx, "Compressed old journal files", "count", n)
		}
	}
	return j
}

// app is everything a run needs plus its cleanup.
type app struct {
	cfg    *store.Config
	runner engine.Runner
	close  func()
}

// initializeEngine wires the collaborators. Setup faults do not abort:
// they become the run's ConfigurationError so the failure is reported
// through the configured notifier.
func initializeEngine(ctx context.Context) (*app, error) {
	cfg, warnings, cfgErr := loadConfig(ctx)

	notifier, nw := notify.FromConfig(cfg)
	warnings = append(warnings, nw...)

	deps := engine.Deps{Notifier: notifier}
	closers := []func(){}

	setupErr := cfgErr
	if setupErr == nil {
		if ex, err := initializeExchange(ctx, cfg); err != nil {
			setupErr = err
		} else {
			deps.Exchange = exchangeobs.Wrap(ex)
		}
	}
	if setupErr == nil {
		if l, err := openLedger(cfg); err != nil {
			setupErr = fmt.Errorf("open ledger: %w", err)
		} else {
			deps.Ledger = l
			closers = append(closers, func() {
				if err := l.Close(); err != nil {
					logger.Warn(ctx, "Failed to close ledger", "error", err)
				}
			})
		}
	}
	deps.SetupErr = setupErr
	deps.Journal = initializeJournal(ctx, cfg)
	deps.Metrics = metrics.New(cfg.Metrics.Textfile)

	eng, err := engine.FromConfig(cfg, warnings, deps)
	if err != nil {
		for _, c := range closers {
			c()
		}
		return nil, err
	}

	return &app{
		cfg:    cfg,
		runner: engineobs.Wrap(eng),
		close: func() {
			for _, c := range closers {
				c()
			}
		},
	}, nil
}

// errRunFailed makes the process exit non-zero after a Failed report.
var errRunFailed = errors.New("run failed")
