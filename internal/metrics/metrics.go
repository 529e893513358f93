// Package metrics exposes per-run gauges for node_exporter's textfile
// collector. Each process owns a private registry; nothing is served.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"dcabot/internal/types"
)

var statuses = []string{"success", "skipped", "failed", "unknown"}

// Sample is the numeric outcome of one run.
type Sample struct {
	Symbol     string
	Status     string
	FinishedAt time.Time
	Duration   time.Duration
	Price      types.Optional[float64]
	Index      types.Optional[float64]
	Multiplier types.Optional[float64]
	Spend      float64
	Invested   types.Optional[float64]
	Holdings   types.Optional[float64]
	Value      types.Optional[float64]
	ROIPct     types.Optional[float64]
}

// Recorder holds the run gauges.
type Recorder struct {
	registry *prometheus.Registry
	textfile string

	lastRun    *prometheus.GaugeVec
	status     *prometheus.GaugeVec
	duration   *prometheus.GaugeVec
	price      *prometheus.GaugeVec
	index      *prometheus.GaugeVec
	multiplier *prometheus.GaugeVec
	spend      *prometheus.GaugeVec
	invested   *prometheus.GaugeVec
	holdings   *prometheus.GaugeVec
	value      *prometheus.GaugeVec
	roi        *prometheus.GaugeVec
}

func gauge(reg *prometheus.Registry, name, help string, labels ...string) *prometheus.GaugeVec {
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "dcabot",
		Name:      name,
		Help:      help,
	}, labels)
	reg.MustRegister(g)
	return g
}

// New creates a recorder. textfile may be empty, in which case Flush is a
// no-op.
func New(textfile string) *Recorder {
	reg := prometheus.NewRegistry()
	return &Recorder{
		registry:   reg,
		textfile:   textfile,
		lastRun:    gauge(reg, "last_run_timestamp_seconds", "Unix time the last run finished", "symbol"),
		status:     gauge(reg, "last_run_status", "1 for the status of the last run, 0 otherwise", "symbol", "status"),
		duration:   gauge(reg, "last_run_duration_seconds", "Wall time of the last run", "symbol"),
		price:      gauge(reg, "price_usd", "Price observed by the last run", "symbol"),
		index:      gauge(reg, "valuation_index", "Valuation index of the last run", "symbol"),
		multiplier: gauge(reg, "sizing_multiplier", "Sizing multiplier of the last run", "symbol"),
		spend:      gauge(reg, "spend_usd", "Quote amount spent by the last run", "symbol"),
		invested:   gauge(reg, "total_invested_usd", "Total quote invested across the ledger", "symbol"),
		holdings:   gauge(reg, "total_holdings", "Total base quantity held across the ledger", "symbol"),
		value:      gauge(reg, "portfolio_value_usd", "Holdings marked at the last price", "symbol"),
		roi:        gauge(reg, "roi_percent", "Return on investment in percent", "symbol"),
	}
}

// Registry returns the private registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Observe records a run. Undefined values leave the previous gauge value
// out of the export.
func (r *Recorder) Observe(s Sample) {
	sym := s.Symbol
	r.lastRun.WithLabelValues(sym).Set(float64(s.FinishedAt.Unix()))
	r.duration.WithLabelValues(sym).Set(s.Duration.Seconds())
	for _, st := range statuses {
		v := 0.0
		if st == s.Status {
			v = 1
		}
		r.status.WithLabelValues(sym, st).Set(v)
	}
	r.spend.WithLabelValues(sym).Set(s.Spend)

	setOpt(r.price, sym, s.Price)
	setOpt(r.index, sym, s.Index)
	setOpt(r.multiplier, sym, s.Multiplier)
	setOpt(r.invested, sym, s.Invested)
	setOpt(r.holdings, sym, s.Holdings)
	setOpt(r.value, sym, s.Value)
	setOpt(r.roi, sym, s.ROIPct)
}

func setOpt(g *prometheus.GaugeVec, symbol string, v types.Optional[float64]) {
	if x, ok := v.Get(); ok {
		g.WithLabelValues(symbol).Set(x)
		return
	}
	g.DeleteLabelValues(symbol)
}

// Flush writes the registry to the textfile, atomically.
func (r *Recorder) Flush() error {
	if r.textfile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(r.textfile), 0o755); err != nil {
		return fmt.Errorf("metrics dir: %w", err)
	}
	return prometheus.WriteToTextfile(r.textfile, r.registry)
}
