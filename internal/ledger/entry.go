// Package ledger is the append-only record of one DCA entry per run.
package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format stored in the date column.
const DateLayout = "2006-01-02"

// Header is the column order of the tabular store.
var Header = []string{"date", "spend_quote", "quantity_base", "fill_price"}

const (
	quantityDecimals = 8
	amountDecimals   = 8
)

// Entry is one ledger row. A skip record has zero spend and zero quantity.
type Entry struct {
	Date     time.Time
	Spend    decimal.Decimal
	Quantity decimal.Decimal
	Price    decimal.Decimal
}

// NewSkip builds the zero-spend row written on days without a trade.
func NewSkip(date time.Time, price decimal.Decimal) Entry {
	if price.IsNegative() {
		price = decimal.Zero
	}
	return Entry{Date: Day(date), Spend: decimal.Zero, Quantity: decimal.Zero, Price: price}
}

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (e Entry) IsSkip() bool {
	return e.Spend.IsZero()
}

// Validate checks the row invariants.
func (e Entry) Validate() error {
	if e.Date.IsZero() {
		return errors.New("entry date is required")
	}
	if e.Spend.IsNegative() || e.Quantity.IsNegative() || e.Price.IsNegative() {
		return fmt.Errorf("entry values must be non-negative: spend=%s qty=%s price=%s", e.Spend, e.Quantity, e.Price)
	}
	if e.Spend.IsPositive() && (!e.Quantity.IsPositive() || !e.Price.IsPositive()) {
		return fmt.Errorf("entry with spend %s must have positive quantity and price", e.Spend)
	}
	if e.Spend.IsZero() && !e.Quantity.IsZero() {
		return fmt.Errorf("skip entry must have zero quantity, got %s", e.Quantity)
	}
	return nil
}

func (e Entry) record() []string {
	return []string{
		e.Date.Format(DateLayout),
		e.Spend.Round(amountDecimals).String(),
		e.Quantity.StringFixed(quantityDecimals),
		e.Price.Round(amountDecimals).String(),
	}
}

func parseRecord(rec []string) (Entry, error) {
	if len(rec) != len(Header) {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", len(Header), len(rec))
	}
	date, err := time.Parse(DateLayout, strings.TrimSpace(rec[0]))
	if err != nil {
		return Entry{}, fmt.Errorf("bad date %q: %w", rec[0], err)
	}
	vals := make([]decimal.Decimal, 3)
	for i, raw := range rec[1:] {
		v, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return Entry{}, fmt.Errorf("bad %s %q: %w", Header[i+1], raw, err)
		}
		if v.IsNegative() {
			return Entry{}, fmt.Errorf("negative %s %q", Header[i+1], raw)
		}
		vals[i] = v
	}
	return Entry{Date: date, Spend: vals[0], Quantity: vals[1], Price: vals[2]}, nil
}

// Priced keeps the rows that are safe to aggregate: a positive fill price and
// consistent invariants. Storage is never modified.
func Priced(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !e.Price.IsPositive() || e.Validate() != nil {
			continue
		}
		out = append(out, e)
	}
	return out
}

// CountOn returns how many rows were recorded for the calendar date of t.
func CountOn(entries []Entry, t time.Time) int {
	day := Day(t)
	n := 0
	for _, e := range entries {
		if Day(e.Date).Equal(day) {
			n++
		}
	}
	return n
}
