package exchangeobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcabot/internal/types"
)

type stubExchange struct {
	candles []types.Candle
	fill    types.Fill
	err     error
	calls   int
}

func (s *stubExchange) FetchDailyCandles(ctx context.Context, symbol string, limit int) ([]types.Candle, error) {
	s.calls++
	return s.candles, s.err
}

func (s *stubExchange) MarketBuyByCost(ctx context.Context, symbol string, quoteCost float64) (types.Fill, error) {
	s.calls++
	return s.fill, s.err
}

func TestWrapPassesThrough(t *testing.T) {
	inner := &stubExchange{
		candles: []types.Candle{{Ts: 1, Close: 10}},
		fill:    types.Fill{OrderID: "1", Cost: types.Some(5.0)},
	}
	ex := Wrap(inner)

	cs, err := ex.FetchDailyCandles(context.Background(), "BTC/USDT", 1)
	require.NoError(t, err)
	assert.Equal(t, inner.candles, cs)

	fill, err := ex.MarketBuyByCost(context.Background(), "BTC/USDT", 5)
	require.NoError(t, err)
	assert.Equal(t, "1", fill.OrderID)
	assert.Equal(t, 2, inner.calls)
}

func TestWrapPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	ex := Wrap(&stubExchange{err: boom, fill: types.Fill{OrderID: "ignored"}})

	_, err := ex.FetchDailyCandles(context.Background(), "BTC/USDT", 1)
	assert.ErrorIs(t, err, boom)

	fill, err := ex.MarketBuyByCost(context.Background(), "BTC/USDT", 5)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, fill.OrderID)
}
