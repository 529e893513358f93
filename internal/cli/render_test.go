package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcabot/internal/ledger"
	"dcabot/internal/portfolio"
)

func TestRenderTableAlignsColumns(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Metric", "Value"},
		Rows:    [][]string{{"a", "1"}, {"longer", "12345"}},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 6)
	width := len([]rune(lines[0]))
	for _, l := range lines {
		assert.Equal(t, width, len([]rune(l)), l)
	}
	assert.Contains(t, out, "longer")
	assert.Contains(t, out, "12345")
}

func TestRenderTableEmpty(t *testing.T) {
	assert.Empty(t, RenderTable(Table{}))
}

func TestSummaryTable(t *testing.T) {
	entries := []ledger.Entry{{
		Date:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Spend:    decimal.NewFromInt(10),
		Quantity: decimal.RequireFromString("0.0002"),
		Price:    decimal.NewFromInt(50000),
	}}
	s := portfolio.Summarize(entries, decimal.NewFromInt(40000))
	out := RenderTable(SummaryTable("BTC/USDT", s))

	assert.Contains(t, out, "Portfolio BTC/USDT")
	assert.Contains(t, out, "0.00020000 BTC")
	assert.Contains(t, out, "-2.00 USDT")
	assert.Contains(t, out, "-20.00%")
}

func TestSummaryTableNoData(t *testing.T) {
	out := RenderTable(SummaryTable("BTC/USDT", portfolio.Summarize(nil, decimal.Zero)))
	assert.Contains(t, out, "No data")
}

func TestLedgerTableKeepsNewest(t *testing.T) {
	var entries []ledger.Entry
	for d := 1; d <= 5; d++ {
		entries = append(entries, ledger.NewSkip(time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(1)))
	}
	tbl := LedgerTable(entries, 2)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "2025-01-04", tbl.Rows[0][0])
	assert.Equal(t, "2025-01-05", tbl.Rows[1][0])
}
