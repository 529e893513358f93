// Package history turns the ledger into a cumulative per-row series for
// external chart tooling.
package history

import (
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"dcabot/internal/ledger"
)

// Point is the portfolio state right after one ledger row.
type Point struct {
	Date       string `csv:"date"`
	Spend      string `csv:"spend_quote"`
	Quantity   string `csv:"quantity_base"`
	Price      string `csv:"fill_price"`
	Invested   string `csv:"cum_invested"`
	Holdings   string `csv:"cum_holdings"`
	AvgCost    string `csv:"avg_cost"`
	MarkValue  string `csv:"mark_value"`
	ProfitLoss string `csv:"profit_loss"`
	ROIPct     string `csv:"roi_pct"`
	Skipped    bool   `csv:"skipped"`
}

// Build walks entries in order. Holdings are marked at the latest positive
// price seen so far; averages stay empty until something is held.
func Build(entries []ledger.Entry) []Point {
	var (
		invested = decimal.Zero
		holdings = decimal.Zero
		mark     = decimal.Zero
		hundred  = decimal.NewFromInt(100)
	)
	out := make([]Point, 0, len(entries))
	for _, e := range entries {
		invested = invested.Add(e.Spend)
		holdings = holdings.Add(e.Quantity)
		if e.Price.IsPositive() {
			mark = e.Price
		}

		p := Point{
			Date:     e.Date.Format(ledger.DateLayout),
			Spend:    e.Spend.StringFixed(4),
			Quantity: e.Quantity.StringFixed(8),
			Price:    e.Price.StringFixed(2),
			Invested: invested.StringFixed(4),
			Holdings: holdings.StringFixed(8),
			Skipped:  e.IsSkip(),
		}
		if holdings.IsPositive() && invested.IsPositive() {
			value := holdings.Mul(mark)
			pl := value.Sub(invested)
			p.AvgCost = invested.Div(holdings).StringFixed(2)
			p.MarkValue = value.StringFixed(2)
			p.ProfitLoss = pl.StringFixed(2)
			p.ROIPct = pl.Div(invested).Mul(hundred).StringFixed(2)
		}
		out = append(out, p)
	}
	return out
}

// WriteCSV writes points with a header row.
func WriteCSV(w io.Writer, points []Point) error {
	return gocsv.Marshal(&points, w)
}

// WriteFile writes points to path, creating parent directories.
func WriteFile(path string, points []Point) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, points); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
