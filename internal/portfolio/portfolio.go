// Package portfolio derives aggregate position metrics from the full ledger.
package portfolio

import (
	"github.com/shopspring/decimal"

	"dcabot/internal/ledger"
)

var hundred = decimal.NewFromInt(100)

// Summary is recomputed from scratch on every call. When HasData is false
// the derived fields are zero and must be presented as "no data".
type Summary struct {
	HasData       bool            `json:"has_data"`
	Entries       int             `json:"entries"`
	Buys          int             `json:"buys"`
	Price         decimal.Decimal `json:"price"`
	TotalInvested decimal.Decimal `json:"total_invested"`
	TotalHoldings decimal.Decimal `json:"total_holdings"`
	CurrentValue  decimal.Decimal `json:"current_value"`
	AvgCost       decimal.Decimal `json:"avg_cost"`
	ProfitLoss    decimal.Decimal `json:"profit_loss"`
	ROIPct        decimal.Decimal `json:"roi_pct"`
}

// Summarize aggregates entries at the given mark price.
func Summarize(entries []ledger.Entry, price decimal.Decimal) Summary {
	s := Summary{Entries: len(entries), Price: price}
	for _, e := range entries {
		s.TotalInvested = s.TotalInvested.Add(e.Spend)
		s.TotalHoldings = s.TotalHoldings.Add(e.Quantity)
		if e.Spend.IsPositive() {
			s.Buys++
		}
	}
	if !s.TotalInvested.IsPositive() || !s.TotalHoldings.IsPositive() {
		return Summary{Entries: s.Entries, Price: price}
	}

	s.HasData = true
	s.CurrentValue = s.TotalHoldings.Mul(price)
	s.AvgCost = s.TotalInvested.Div(s.TotalHoldings)
	s.ProfitLoss = s.CurrentValue.Sub(s.TotalInvested)
	s.ROIPct = s.ProfitLoss.Div(s.TotalInvested).Mul(hundred)
	return s
}
