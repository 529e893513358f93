package engine

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"dcabot/internal/report"
	"dcabot/internal/types"
)

const unavailable = "unavailable"

func optFloat(o types.Optional[float64], format string) string {
	if v, ok := o.Get(); ok {
		return fmt.Sprintf(format, v)
	}
	return unavailable
}

func usd(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// buildReport renders the sections for a finished run. Sections for steps
// the run never reached say so instead of being dropped.
func buildReport(res *Result, s Settings) *report.RunReport {
	rep := report.New("DCA Report " + res.Date.Format("2006-01-02"))

	market := []string{"Symbol: " + s.Symbol, "Price: " + optFloat(res.Price, "$%.2f")}
	if snap := res.Snapshot; snap != nil {
		market = append(market,
			"200-day harmonic mean: "+optFloat(snap.HMA, "$%.2f"),
			"200-day simple mean: "+optFloat(snap.SMA, "$%.2f"),
			fmt.Sprintf("Growth estimate: $%.2f (day %.0f)", snap.Estimate, snap.AgeDays),
			"Valuation index: "+optFloat(snap.Index, "%.4f"),
			fmt.Sprintf("Daily candles: %d", snap.Samples),
		)
	} else {
		market = append(market, "Valuation index: "+unavailable)
	}
	rep.Add("Market", market...)

	if d := res.Decision; d != nil {
		rep.Add("Decision",
			fmt.Sprintf("Multiplier: %.4fx", d.Multiplier),
			"Target spend: "+optFloat(d.Spend, "$%.4f"),
			fmt.Sprintf("Daily cap: $%.2f", d.Cap),
			"Reason: "+d.Reason,
			"Mode: "+s.Mode,
		)
	} else {
		rep.Add("Decision", "No decision made", "Mode: "+s.Mode)
	}

	outcome := res.Outcome
	if outcome == "" {
		outcome = "No trade"
	}
	lines := []string{outcome}
	lines = append(lines, res.Notes...)
	if e := res.Entry; e != nil {
		lines = append(lines, fmt.Sprintf("Ledger: recorded %s spend=%s qty=%s price=%s",
			e.Date.Format("2006-01-02"), e.Spend.String(), e.Quantity.StringFixed(8), e.Price.String()))
	} else {
		lines = append(lines, "Ledger: nothing recorded")
	}
	rep.Add("Outcome", lines...)

	switch sum := res.Summary; {
	case sum == nil:
		rep.Add("Portfolio", "Summary "+unavailable)
	case !sum.HasData:
		rep.Add("Portfolio", "No data")
	default:
		rep.Add("Portfolio",
			"Total invested: "+usd(sum.TotalInvested),
			fmt.Sprintf("Holdings: %s %s", sum.TotalHoldings.StringFixed(8), baseAsset(s.Symbol)),
			"Current value: "+usd(sum.CurrentValue),
			"Average cost: "+usd(sum.AvgCost),
			fmt.Sprintf("Profit/loss: %s (%s%%)", usd(sum.ProfitLoss), sum.ROIPct.StringFixed(2)),
			fmt.Sprintf("Buys: %d of %d entries", sum.Buys, sum.Entries),
		)
	}

	if len(res.Warnings) > 0 {
		ws := make([]string, len(res.Warnings))
		for i, w := range res.Warnings {
			ws[i] = w.String()
		}
		rep.Add("Warnings", ws...)
	}

	if res.Err != nil {
		rep.Add("Error", res.Err.Error())
	}

	rep.Add("Run", "ID: "+res.RunID, "States: "+strings.Join(trailStrings(res.Trail), " → "))
	return rep
}
