// Package policy sizes today's spend from a valuation snapshot.
package policy

import (
	"fmt"
	"math"

	"dcabot/internal/types"
	"dcabot/internal/valuation"
)

// Decision reasons.
const (
	ReasonUnavailable = "index unavailable"
	ReasonPaused      = "paused: index above threshold"
	ReasonCapped      = "capped at daily maximum"
	ReasonScaled      = "scaled by multiplier"
)

const spendDecimals = 4

type Params struct {
	Baseline       float64
	DailyCapX      float64
	PauseThreshold float64
}

func DefaultParams() Params {
	return Params{
		Baseline:       5.0,
		DailyCapX:      4.0,
		PauseThreshold: 2.0,
	}
}

func (p Params) Validate() error {
	if !(p.Baseline > 0) || math.IsInf(p.Baseline, 0) {
		return fmt.Errorf("baseline must be a positive number, got %v", p.Baseline)
	}
	if !(p.DailyCapX > 0) || math.IsInf(p.DailyCapX, 0) {
		return fmt.Errorf("daily_cap_x must be a positive number, got %v", p.DailyCapX)
	}
	if !(p.PauseThreshold > 0) {
		return fmt.Errorf("pause_threshold must be positive, got %v", p.PauseThreshold)
	}
	return nil
}

// Decision is the sizing outcome. Spend is undefined when the policy declines
// to guess; callers must branch on it before comparing against thresholds.
type Decision struct {
	Spend      types.Optional[float64] `json:"spend_usd"`
	Index      types.Optional[float64] `json:"index"`
	Multiplier float64                 `json:"multiplier"`
	Cap        float64                 `json:"cap_usd"`
	Reason     string                  `json:"reason"`
}

type Policy struct {
	p     Params
	model *valuation.Model
}

func New(p Params, model *valuation.Model) (*Policy, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy params: %w", err)
	}
	if model == nil {
		return nil, fmt.Errorf("valuation model is required")
	}
	return &Policy{p: p, model: model}, nil
}

func (pl *Policy) Params() Params { return pl.p }

// Cap is the maximum daily spend.
func (pl *Policy) Cap() float64 {
	return pl.p.Baseline * pl.p.DailyCapX
}

// Decide sizes the spend for a snapshot.
func (pl *Policy) Decide(s valuation.Snapshot) Decision {
	d := Decision{Index: s.Index, Multiplier: 1.0, Cap: pl.Cap()}

	x, ok := s.Index.Get()
	if !ok {
		d.Reason = ReasonUnavailable
		return d
	}
	if x > pl.p.PauseThreshold {
		d.Multiplier = 0
		d.Spend = types.Some(0.0)
		d.Reason = ReasonPaused
		return d
	}

	d.Multiplier = pl.model.Multiplier(x)
	spend := pl.p.Baseline * d.Multiplier
	d.Reason = ReasonScaled
	if spend > d.Cap {
		spend = d.Cap
		d.Reason = ReasonCapped
	}
	d.Spend = types.Some(round(spend, spendDecimals))
	return d
}

func round(x float64, decimals int) float64 {
	f := math.Pow(10, float64(decimals))
	return math.Round(x*f) / f
}
