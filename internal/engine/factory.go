package engine

import (
	"fmt"

	"dcabot/internal/policy"
	"dcabot/internal/store"
	"dcabot/internal/valuation"
)

// New returns an engine for explicit settings and collaborators.
func New(s Settings, d Deps) (Runner, error) {
	return newEngine(s, d)
}

// FromConfig builds the valuation model and sizing policy from cfg and
// returns the engine. Model and Policy already set on d are kept.
func FromConfig(cfg *store.Config, warnings []string, d Deps) (Runner, error) {
	if d.Model == nil {
		m, err := valuation.NewModel(cfg.ValuationParams())
		if err != nil {
			return nil, fmt.Errorf("valuation model: %w", err)
		}
		d.Model = m
	}
	if d.Policy == nil {
		p, err := policy.New(cfg.PolicyParams(), d.Model)
		if err != nil {
			return nil, fmt.Errorf("sizing policy: %w", err)
		}
		d.Policy = p
	}
	return newEngine(Settings{
		Symbol:      cfg.Symbol,
		Mode:        cfg.Mode,
		HistoryDays: cfg.HistoryDays,
		MinOrderUSD: cfg.MinOrderUSD,
		Warnings:    warnings,
	}, d)
}
