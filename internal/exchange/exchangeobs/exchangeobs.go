package exchangeobs

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"dcabot/internal/interfaces"
	"dcabot/internal/logger"
	"dcabot/internal/trace"
	"dcabot/internal/types"
)

// observableExchange wraps an Exchange with observability (logging & tracing)
type observableExchange struct {
	exchange interfaces.Exchange
}

// Compile-time interface check
var _ interfaces.Exchange = (*observableExchange)(nil)

// Wrap wraps an exchange with observability middleware
func Wrap(exchange interfaces.Exchange) interfaces.Exchange {
	return &observableExchange{exchange: exchange}
}

// FetchDailyCandles fetches candles with observability
func (oe *observableExchange) FetchDailyCandles(ctx context.Context, symbol string, limit int) ([]types.Candle, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.FetchDailyCandles")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol), attribute.Int("limit", limit))

	logger.DebugSkip(ctx, 1, "Fetching daily candles", "symbol", symbol, "limit", limit)

	candles, err := oe.exchange.FetchDailyCandles(ctx, symbol, limit)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch candles", err, "symbol", symbol, "limit", limit)
		return nil, err
	}

	span.SetAttributes(attribute.Int("received", len(candles)))
	logger.DebugSkip(ctx, 1, "Candles fetched successfully", "symbol", symbol, "count", len(candles))
	return candles, nil
}

// MarketBuyByCost places a market buy with observability
func (oe *observableExchange) MarketBuyByCost(ctx context.Context, symbol string, quoteCost float64) (types.Fill, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.MarketBuyByCost")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol), attribute.Float64("quote_cost", quoteCost))

	logger.InfoSkip(ctx, 1, "Placing market buy", "symbol", symbol, "quote_cost", quoteCost)

	fill, err := oe.exchange.MarketBuyByCost(ctx, symbol, quoteCost)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to place market buy", err, "symbol", symbol, "quote_cost", quoteCost)
		return types.Fill{}, err
	}

	span.SetAttributes(attribute.String("order_id", fill.OrderID))
	logger.InfoSkip(ctx, 1, "Market buy placed successfully",
		"symbol", symbol,
		"order_id", fill.OrderID,
		"cost", fill.Cost,
		"filled", fill.Filled,
		"average", fill.Average,
	)
	return fill, nil
}
