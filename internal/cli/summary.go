package cli

import (
	"fmt"
	"strings"

	"dcabot/internal/ledger"
	"dcabot/internal/portfolio"
)

// SummaryTable lays out a portfolio summary.
func SummaryTable(symbol string, s portfolio.Summary) Table {
	base, quote, _ := strings.Cut(symbol, "/")
	t := Table{Title: "Portfolio " + symbol, Headers: []string{"Metric", "Value"}}
	if !s.HasData {
		t.Rows = [][]string{{"Status", "No data"}, {"Entries", fmt.Sprint(s.Entries)}}
		return t
	}
	neg := s.ProfitLoss.IsNegative()
	t.Rows = [][]string{
		{"Mark price", s.Price.StringFixed(2) + " " + quote},
		{"Total invested", s.TotalInvested.StringFixed(2) + " " + quote},
		{"Holdings", s.TotalHoldings.StringFixed(8) + " " + base},
		{"Current value", s.CurrentValue.StringFixed(2) + " " + quote},
		{"Average cost", s.AvgCost.StringFixed(2) + " " + quote},
		{"Profit/loss", Signed(s.ProfitLoss.StringFixed(2)+" "+quote, neg)},
		{"ROI", Signed(s.ROIPct.StringFixed(2)+"%", neg)},
		{"Buys / entries", fmt.Sprintf("%d / %d", s.Buys, s.Entries)},
	}
	return t
}

// LedgerTable lists the most recent n ledger rows, newest last.
func LedgerTable(entries []ledger.Entry, n int) Table {
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	t := Table{Title: "Recent ledger rows", Headers: []string{"Date", "Spend", "Quantity", "Price"}}
	for _, e := range entries {
		t.Rows = append(t.Rows, []string{
			e.Date.Format(ledger.DateLayout),
			e.Spend.StringFixed(2),
			e.Quantity.StringFixed(8),
			e.Price.StringFixed(2),
		})
	}
	return t
}
