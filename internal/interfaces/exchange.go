package interfaces

import (
	"context"

	"dcabot/internal/types"
)

// Exchange is the market the agent buys on. Symbols use the BASE/QUOTE form.
type Exchange interface {
	// FetchDailyCandles returns up to limit daily candles, oldest first.
	// The newest candle may be the current, still open UTC day.
	FetchDailyCandles(ctx context.Context, symbol string, limit int) ([]types.Candle, error)
	// MarketBuyByCost spends quoteCost of the quote currency at market.
	MarketBuyByCost(ctx context.Context, symbol string, quoteCost float64) (types.Fill, error)
}
