package engineobs

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcabot/internal/engine"
	"dcabot/internal/ledger"
	"dcabot/internal/policy"
	"dcabot/internal/report"
	"dcabot/internal/types"
	"dcabot/internal/valuation"
)

type stubRunner struct {
	res   *engine.Result
	calls int
}

func (s *stubRunner) Run(context.Context) *engine.Result {
	s.calls++
	return s.res
}

func TestWrapReturnsInnerResult(t *testing.T) {
	inner := &stubRunner{res: &engine.Result{RunID: "r1", Status: report.StatusSkipped}}
	got := Wrap(inner).Run(context.Background())
	assert.Same(t, inner.res, got)
	assert.Equal(t, 1, inner.calls)
}

func TestWrapFailedRun(t *testing.T) {
	res := &engine.Result{
		RunID:  "r2",
		Status: report.StatusFailed,
		Err:    &engine.RunError{Kind: engine.KindExchangeFetch, Err: errors.New("timeout")},
	}
	got := Wrap(&stubRunner{res: res}).Run(context.Background())
	assert.Equal(t, report.StatusFailed, got.Status)
	assert.Equal(t, engine.KindExchangeFetch, got.Err.Kind)
}

type explodingExchange struct {
	candles []types.Candle
}

func (x *explodingExchange) FetchDailyCandles(context.Context, string, int) ([]types.Candle, error) {
	return x.candles, nil
}

func (x *explodingExchange) MarketBuyByCost(context.Context, string, float64) (types.Fill, error) {
	panic("order router exploded")
}

type countingNotifier struct{ n int }

func (c *countingNotifier) Publish(context.Context, string, string) error {
	c.n++
	return nil
}

func TestWrapPanickingEngineReturnsFailedResult(t *testing.T) {
	day := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	price := valuation.GrowthEstimate(valuation.AgeDays(valuation.DefaultGenesis, ledger.Day(day)))
	candles := make([]types.Candle, 250)
	for i := range candles {
		ts := ledger.Day(day).AddDate(0, 0, i-len(candles)+1)
		candles[i] = types.Candle{Ts: ts.UnixMilli(), Open: price, High: price, Low: price, Close: price}
	}

	model, err := valuation.NewModel(valuation.DefaultParams())
	require.NoError(t, err)
	pol, err := policy.New(policy.DefaultParams(), model)
	require.NoError(t, err)
	notifier := &countingNotifier{}

	eng, err := engine.New(
		engine.Settings{Symbol: "BTC/USDT", Mode: "DRY_RUN", HistoryDays: 300, MinOrderUSD: 1},
		engine.Deps{
			Exchange: &explodingExchange{candles: candles},
			Notifier: notifier,
			Ledger:   ledger.NewCSVStore(filepath.Join(t.TempDir(), "trade_log.csv"), ledger.RepairOnCorrupt),
			Model:    model,
			Policy:   pol,
			Now:      func() time.Time { return day },
		},
	)
	require.NoError(t, err)

	var got *engine.Result
	assert.NotPanics(t, func() { got = Wrap(eng).Run(context.Background()) })
	require.NotNil(t, got)
	assert.Equal(t, report.StatusFailed, got.Status)
	require.NotNil(t, got.Err)
	assert.Equal(t, engine.KindInternal, got.Err.Kind)
	assert.Equal(t, 2, notifier.n)
}
