// Package engine runs one DCA cycle: fetch history, size the buy, trade or
// skip, record the outcome and report it exactly once.
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"dcabot/internal/interfaces"
	"dcabot/internal/ledger"
	"dcabot/internal/logger"
	"dcabot/internal/metrics"
	"dcabot/internal/policy"
	"dcabot/internal/portfolio"
	"dcabot/internal/report"
	"dcabot/internal/tradelog"
	"dcabot/internal/types"
	"dcabot/internal/valuation"
)

// finalReportTimeout bounds reporting after the run context is done.
const finalReportTimeout = 30 * time.Second

// Runner executes a single run.
type Runner interface {
	Run(ctx context.Context) *Result
}

// Settings are the per-run knobs taken from configuration.
type Settings struct {
	Symbol      string
	Mode        string
	HistoryDays int
	MinOrderUSD float64
	// Warnings raised while loading configuration, carried into the report.
	Warnings []string
}

// Deps are the collaborators of a run. Journal and Metrics are optional.
// When SetupErr is set the run fails with a ConfigurationError right after
// the start notification and nothing else is touched.
type Deps struct {
	Exchange interfaces.Exchange
	Notifier interfaces.Notifier
	Ledger   ledger.Store
	Model    *valuation.Model
	Policy   *policy.Policy
	Journal  *tradelog.Journal
	Metrics  *metrics.Recorder
	SetupErr error

	Now      func() time.Time
	NewRunID func() string
}

// Result is everything a run observed. Pointer fields are nil when the run
// never reached the step that produces them.
type Result struct {
	RunID    string                  `json:"run_id"`
	Date     time.Time               `json:"date"`
	Status   report.Status           `json:"status"`
	Trail    []State                 `json:"trail"`
	Price    types.Optional[float64] `json:"price"`
	Snapshot *valuation.Snapshot     `json:"snapshot,omitempty"`
	Decision *policy.Decision        `json:"decision,omitempty"`
	Fill     *types.Fill             `json:"fill,omitempty"`
	Entry    *ledger.Entry           `json:"entry,omitempty"`
	Summary  *portfolio.Summary      `json:"summary,omitempty"`
	Warnings []Warning               `json:"warnings,omitempty"`
	Err      *RunError               `json:"error,omitempty"`
	Report   *report.RunReport       `json:"-"`

	// Outcome is a one-line description of the trade or skip.
	Outcome string   `json:"outcome"`
	Notes   []string `json:"notes,omitempty"`
}

// Engine is the run orchestrator.
type Engine struct {
	settings Settings
	deps     Deps
	executor *orderExecutor
}

var _ Runner = (*Engine)(nil)

func newEngine(s Settings, d Deps) (*Engine, error) {
	if d.Notifier == nil {
		return nil, errors.New("engine: notifier is required")
	}
	if d.SetupErr == nil {
		switch {
		case d.Exchange == nil:
			return nil, errors.New("engine: exchange is required")
		case d.Ledger == nil:
			return nil, errors.New("engine: ledger is required")
		case d.Model == nil || d.Policy == nil:
			return nil, errors.New("engine: valuation model and policy are required")
		}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewRunID == nil {
		d.NewRunID = uuid.NewString
	}
	e := &Engine{settings: s, deps: d}
	if d.Exchange != nil {
		e.executor = newOrderExecutor(d.Exchange)
	}
	return e, nil
}

// run is the mutable state of one invocation.
type run struct {
	e         *Engine
	res       *Result
	started   time.Time
	traded    bool
	published bool
}

// Run executes the state machine. It never panics and always returns a
// finalized result whose report has been published once.
func (e *Engine) Run(ctx context.Context) (res *Result) {
	now := e.deps.Now()
	r := &run{
		e:       e,
		started: now,
		res: &Result{
			RunID: e.deps.NewRunID(),
			Date:  ledger.Day(now),
		},
	}
	for _, w := range e.settings.Warnings {
		r.warn(WarnConfiguration, w)
	}

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "Run panicked", "run_id", r.res.RunID, "panic", p, "stack", string(debug.Stack()))
			r.fail(ctx, KindInternal, fmt.Errorf("panic: %v", p))
		}
		r.finish(ctx)
		res = r.res
	}()

	r.enter(ctx, StateStarted)
	r.notifyStarted(ctx)

	if e.deps.SetupErr != nil {
		r.fail(ctx, KindConfiguration, e.deps.SetupErr)
		return r.res
	}
	r.execute(ctx)
	return r.res
}

func (r *run) enter(ctx context.Context, s State) {
	r.res.Trail = append(r.res.Trail, s)
	logger.Info(ctx, "Run state", "run_id", r.res.RunID, "state", string(s), "symbol", r.e.settings.Symbol)
}

func (r *run) warn(kind WarningKind, msg string) {
	r.res.Warnings = append(r.res.Warnings, Warning{Kind: kind, Message: msg})
}

func (r *run) fail(ctx context.Context, kind ErrorKind, err error) {
	if r.res.Err != nil {
		return
	}
	r.res.Err = &RunError{Kind: kind, Err: err}
	r.res.Status = report.StatusFailed
	logger.ErrorWithErr(ctx, "Run failed", err, "run_id", r.res.RunID, "kind", string(kind))
}

func (r *run) date() string {
	return r.res.Date.Format(ledger.DateLayout)
}

func (r *run) notifyStarted(ctx context.Context) {
	s := r.e.settings
	title := fmt.Sprintf("%s DCA run started %s", report.StatusStarted.Emoji(), r.date())
	body := fmt.Sprintf("Run `%s` for %s in %s mode.", r.res.RunID, s.Symbol, s.Mode)
	if err := r.e.deps.Notifier.Publish(ctx, title, body); err != nil {
		logger.Warn(ctx, "Start notification failed", "run_id", r.res.RunID, "error", err)
		r.warn(WarnNotification, "start notification failed: "+err.Error())
	}
}

// execute covers FetchingHistory through Logging.
func (r *run) execute(ctx context.Context) {
	s := r.e.settings
	d := r.e.deps
	window := d.Model.Params().Window

	r.enter(ctx, StateFetchingHistory)
	candles, err := d.Exchange.FetchDailyCandles(ctx, s.Symbol, s.HistoryDays)
	if err != nil {
		r.fail(ctx, KindExchangeFetch, err)
		return
	}
	if n := len(candles); n > 0 {
		r.res.Price = types.Positive(candles[n-1].Close)
	}
	if len(candles) < window {
		r.fail(ctx, KindInsufficientHistory,
			fmt.Errorf("%w: got %d daily candles, need %d", ErrInsufficientHistory, len(candles), window))
		return
	}

	r.enter(ctx, StateDeciding)
	snap := d.Model.Evaluate(candles)
	r.res.Snapshot = &snap
	decision := d.Policy.Decide(snap)
	r.res.Decision = &decision
	logger.Decision(ctx, s.Symbol, decision.Index, decision.Multiplier, decision.Spend, decision.Reason, "run_id", r.res.RunID)

	var entry ledger.Entry
	spend, defined := decision.Spend.Get()
	if defined && spend > s.MinOrderUSD {
		r.enter(ctx, StateTrading)
		ex, err := r.e.executor.placeBuy(ctx, s.Symbol, spend, snap.PriceToday)
		if err != nil {
			r.fail(ctx, KindExchangeExecution, err)
			return
		}
		r.res.Fill = &ex.Fill
		r.res.Notes = ex.Notes
		r.traded = true
		r.res.Outcome = fmt.Sprintf("Bought %s %s for $%s at $%s (order %s)",
			decimal.NewFromFloat(ex.Quantity).StringFixed(8), baseAsset(s.Symbol),
			decimal.NewFromFloat(ex.Cost).StringFixed(2), decimal.NewFromFloat(ex.Price).StringFixed(2),
			ex.Fill.OrderID)
		entry, err = ex.ledgerEntry(r.res.Date)
		if err != nil {
			r.warn(WarnPersistence, err.Error())
			entry = ledger.Entry{}
		}
	} else {
		r.enter(ctx, StateSkipping)
		r.res.Outcome = "Skipped: " + skipReason(decision, s.MinOrderUSD)
		entry = ledger.NewSkip(r.res.Date, decimal.NewFromFloat(r.res.Price.OrElse(0)))
		logger.Info(ctx, "Buy skipped", "run_id", r.res.RunID, "reason", r.res.Outcome)
	}

	r.enter(ctx, StateLogging)
	r.record(ctx, entry)
	if r.traded {
		r.res.Status = report.StatusSuccess
	} else {
		r.res.Status = report.StatusSkipped
	}
}

func skipReason(d policy.Decision, minOrder float64) string {
	spend, ok := d.Spend.Get()
	switch {
	case !ok:
		return d.Reason
	case spend == 0:
		return d.Reason
	default:
		return fmt.Sprintf("spend $%.4f is not above the minimum order of $%.2f", spend, minOrder)
	}
}

// record appends exactly one ledger row. Failures degrade to warnings.
func (r *run) record(ctx context.Context, entry ledger.Entry) {
	store := r.e.deps.Ledger
	if entry.Date.IsZero() {
		return
	}

	if snap, err := store.ReadAll(ctx); err == nil {
		if n := ledger.CountOn(snap.Entries, r.res.Date); n > 0 {
			r.warn(WarnDuplicateRun, fmt.Sprintf("ledger already has %d row(s) for %s; appending another", n, r.date()))
		}
	}

	res, err := store.Append(ctx, entry)
	if err != nil {
		logger.ErrorWithErr(ctx, "Ledger append failed", err, "run_id", r.res.RunID)
		r.warn(WarnPersistence, "ledger append failed: "+err.Error())
		return
	}
	if res.Repaired {
		r.warn(WarnPersistence, "corrupt ledger moved to "+res.BackupPath+"; started a new ledger")
	}
	r.res.Entry = &entry
}

// finish covers Reporting and Terminal. It runs exactly once per run.
func (r *run) finish(runCtx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(runCtx), finalReportTimeout)
	defer cancel()
	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "Reporting panicked", "run_id", r.res.RunID, "panic", p)
		}
	}()

	r.enter(ctx, StateReporting)
	if r.res.Status == "" {
		r.res.Status = report.StatusUnknown
	}
	r.summarize(ctx)

	rep := buildReport(r.res, r.e.settings)
	_ = rep.Finalize(r.res.Status)
	r.res.Status = rep.Status
	r.res.Report = rep
	r.publish(ctx, rep)

	r.enter(ctx, StateTerminal)
	r.journal(ctx)
	r.observe(ctx)
}

// summarize recomputes portfolio analytics from the current ledger at the
// captured price, when both are available.
func (r *run) summarize(ctx context.Context) {
	store := r.e.deps.Ledger
	price, ok := r.res.Price.Get()
	if store == nil || !ok {
		return
	}
	snap, err := store.ReadAll(ctx)
	if err != nil {
		r.warn(WarnPersistence, "ledger read failed: "+err.Error())
		return
	}
	if snap.Malformed > 0 {
		r.warn(WarnPersistence, fmt.Sprintf("%d malformed ledger row(s) ignored", snap.Malformed))
	}
	sum := portfolio.Summarize(ledger.Priced(snap.Entries), decimal.NewFromFloat(price))
	r.res.Summary = &sum
}

func (r *run) publish(ctx context.Context, rep *report.RunReport) {
	if r.published {
		return
	}
	r.published = true
	if err := r.e.deps.Notifier.Publish(ctx, rep.FullTitle(), rep.Markdown()); err != nil {
		logger.Warn(ctx, "Final report notification failed", "run_id", r.res.RunID, "error", err)
		r.warn(WarnNotification, "final report notification failed: "+err.Error())
		return
	}
	logger.Info(ctx, "Final report published", "run_id", r.res.RunID, "status", string(rep.Status))
}

func (r *run) journal(ctx context.Context) {
	j := r.e.deps.Journal
	if j == nil {
		return
	}
	res := r.res
	rec := tradelog.RunRecord{
		RunID:  res.RunID,
		Date:   r.date(),
		Symbol: r.e.settings.Symbol,
		Mode:   r.e.settings.Mode,
		Status: string(res.Status),
		Trail:  trailStrings(res.Trail),
		Price:  res.Price,
	}
	if res.Snapshot != nil {
		rec.Index = res.Snapshot.Index
	}
	if res.Decision != nil {
		rec.Multiplier = types.Some(res.Decision.Multiplier)
		rec.Spend = res.Decision.Spend
		rec.Reason = res.Decision.Reason
	}
	if res.Fill != nil {
		rec.OrderID = res.Fill.OrderID
	}
	if e := res.Entry; e != nil && !e.IsSkip() {
		rec.Cost = types.Some(e.Spend.InexactFloat64())
		rec.Quantity = types.Some(e.Quantity.InexactFloat64())
		rec.FillPrice = types.Some(e.Price.InexactFloat64())
	}
	if res.Err != nil {
		rec.ErrorKind = string(res.Err.Kind)
		rec.Error = res.Err.Err.Error()
	}
	for _, w := range res.Warnings {
		rec.Warnings = append(rec.Warnings, w.String())
	}
	if err := j.AppendRun(rec); err != nil {
		logger.Warn(ctx, "Run journal append failed", "run_id", res.RunID, "error", err)
	}
}

func (r *run) observe(ctx context.Context) {
	m := r.e.deps.Metrics
	if m == nil {
		return
	}
	res := r.res
	s := metrics.Sample{
		Symbol:     r.e.settings.Symbol,
		Status:     strings.ToLower(string(res.Status)),
		FinishedAt: r.e.deps.Now(),
		Duration:   r.e.deps.Now().Sub(r.started),
		Price:      res.Price,
	}
	if res.Snapshot != nil {
		s.Index = res.Snapshot.Index
	}
	if res.Decision != nil {
		s.Multiplier = types.Some(res.Decision.Multiplier)
	}
	if e := res.Entry; e != nil {
		s.Spend = e.Spend.InexactFloat64()
	}
	if sum := res.Summary; sum != nil && sum.HasData {
		s.Invested = types.Some(sum.TotalInvested.InexactFloat64())
		s.Holdings = types.Some(sum.TotalHoldings.InexactFloat64())
		s.Value = types.Some(sum.CurrentValue.InexactFloat64())
		s.ROIPct = types.Some(sum.ROIPct.InexactFloat64())
	}
	m.Observe(s)
	if err := m.Flush(); err != nil {
		logger.Warn(ctx, "Metrics textfile write failed", "run_id", res.RunID, "error", err)
	}
}

// baseAsset returns BASE from BASE/QUOTE.
func baseAsset(symbol string) string {
	base, _, _ := strings.Cut(symbol, "/")
	return base
}
