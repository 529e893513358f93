package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"dcabot/internal/interfaces"
	"dcabot/internal/ledger"
	"dcabot/internal/logger"
	"dcabot/internal/types"
)

// execution is a reconciled market buy.
type execution struct {
	Fill     types.Fill
	Cost     float64
	Quantity float64
	Price    float64
	// Notes lists every value that had to be derived instead of reported.
	Notes []string
}

// orderExecutor places the day's buy and reconciles what the exchange
// reported into a complete ledger row.
type orderExecutor struct {
	exchange interfaces.Exchange
}

func newOrderExecutor(exchange interfaces.Exchange) *orderExecutor {
	return &orderExecutor{exchange: exchange}
}

func (oe *orderExecutor) placeBuy(ctx context.Context, symbol string, spend, prePrice float64) (execution, error) {
	fill, err := oe.exchange.MarketBuyByCost(ctx, symbol, spend)
	if err != nil {
		return execution{}, err
	}
	ex := reconcile(fill, spend, prePrice)
	logger.Trade(ctx, symbol, fill.OrderID, ex.Cost, ex.Quantity, ex.Price, "notes", ex.Notes)
	return ex, nil
}

// reconcile fills gaps in a reported fill. Reported values win; a missing
// cost comes from filled*average, a missing quantity from cost/average, a
// missing average from cost/filled, and with nothing usable the requested
// spend at the pre-trade price is assumed.
func reconcile(fill types.Fill, requested, prePrice float64) execution {
	ex := execution{Fill: fill}

	filled, hasFilled := fill.Filled.Get()
	hasFilled = hasFilled && filled > 0
	avg, hasAvg := fill.Average.Get()
	hasAvg = hasAvg && avg > 0

	cost, hasCost := fill.Cost.Get()
	switch {
	case hasCost && cost > 0:
	case hasFilled && hasAvg:
		cost = filled * avg
		ex.Notes = append(ex.Notes, "cost derived from filled*average")
	default:
		cost = requested
		ex.Notes = append(ex.Notes, "cost not reported, using requested spend")
	}

	switch {
	case hasAvg:
		ex.Price = avg
	case hasFilled:
		ex.Price = cost / filled
		ex.Notes = append(ex.Notes, "average price derived from cost/filled")
	default:
		ex.Price = prePrice
		ex.Notes = append(ex.Notes, "average price not reported, using pre-trade price")
	}

	if hasFilled {
		ex.Quantity = filled
	} else if ex.Price > 0 {
		ex.Quantity = cost / ex.Price
		ex.Notes = append(ex.Notes, "filled quantity derived from cost/price")
	}
	ex.Cost = cost
	return ex
}

// ledgerEntry converts the execution into the ledger row for date.
func (ex execution) ledgerEntry(date time.Time) (ledger.Entry, error) {
	e := ledger.Entry{
		Date:     ledger.Day(date),
		Spend:    decimal.NewFromFloat(ex.Cost),
		Quantity: decimal.NewFromFloat(ex.Quantity).Round(8),
		Price:    decimal.NewFromFloat(ex.Price),
	}
	if err := e.Validate(); err != nil {
		return e, fmt.Errorf("reconciled fill is not recordable: %w", err)
	}
	return e, nil
}
