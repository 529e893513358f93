// Package valuation turns a daily price history into a relative-valuation
// index and a continuous sizing multiplier. Everything here is pure.
package valuation

import (
	"errors"
	"fmt"
	"math"
	"time"

	"dcabot/internal/ta"
	"dcabot/internal/types"
)

// Growth curve coefficients: estimate = 10^(slope·log10(age) + intercept).
const (
	growthSlope     = 5.84
	growthIntercept = -17.01
)

// DefaultGenesis is the reference date the growth curve counts days from.
var DefaultGenesis = time.Date(2009, time.January, 3, 0, 0, 0, 0, time.UTC)

// Params are the valuation constants. Values are copied into the Model and
// never mutated afterwards.
type Params struct {
	Window   int
	NeutralX float64
	Alpha    float64
	Beta     float64
	Genesis  time.Time
}

func DefaultParams() Params {
	return Params{
		Window:   200,
		NeutralX: 1.0,
		Alpha:    1.5,
		Beta:     0.8,
		Genesis:  DefaultGenesis,
	}
}

func (p Params) Validate() error {
	if p.Window <= 0 {
		return fmt.Errorf("window must be positive, got %d", p.Window)
	}
	if !(p.NeutralX > 0) || math.IsInf(p.NeutralX, 0) {
		return fmt.Errorf("neutral_x must be a positive number, got %v", p.NeutralX)
	}
	if p.Alpha < 0 || p.Beta < 0 || math.IsNaN(p.Alpha) || math.IsNaN(p.Beta) {
		return fmt.Errorf("alpha and beta must be non-negative, got %v/%v", p.Alpha, p.Beta)
	}
	if p.Genesis.IsZero() {
		return errors.New("genesis date is required")
	}
	return nil
}

// Snapshot is the valuation state for one run.
type Snapshot struct {
	AsOf       time.Time               `json:"as_of"`
	Samples    int                     `json:"samples"`
	PriceToday float64                 `json:"price_today"`
	HMA        types.Optional[float64] `json:"hma"`
	SMA        types.Optional[float64] `json:"sma"`
	AgeDays    float64                 `json:"age_days"`
	Estimate   float64                 `json:"estimate"`
	Index      types.Optional[float64] `json:"index"`
	Multiplier float64                 `json:"multiplier"`
}

// Model evaluates price series with a fixed set of Params.
type Model struct {
	p Params
}

func NewModel(p Params) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid valuation params: %w", err)
	}
	return &Model{p: p}, nil
}

func (m *Model) Params() Params { return m.p }

// Evaluate computes the snapshot for a chronological candle series. The last
// candle is "today".
func (m *Model) Evaluate(candles []types.Candle) Snapshot {
	s := Snapshot{Samples: len(candles), Multiplier: 1.0}
	if len(candles) == 0 {
		return s
	}
	last := candles[len(candles)-1]
	closes := types.Closes(candles)

	s.AsOf = last.Time()
	s.PriceToday = last.Close
	s.HMA = ta.HarmonicMean(closes, m.p.Window)
	s.SMA = ta.SMA(closes, m.p.Window)
	s.AgeDays = AgeDays(m.p.Genesis, s.AsOf)
	s.Estimate = GrowthEstimate(s.AgeDays)

	if hma, ok := s.HMA.Get(); ok {
		s.Index = Index(s.PriceToday, hma, s.Estimate)
	}
	if x, ok := s.Index.Get(); ok {
		s.Multiplier = Multiplier(x, m.p)
	}
	return s
}

// Multiplier applies the model's params to x.
func (m *Model) Multiplier(x float64) float64 {
	return Multiplier(x, m.p)
}

// AgeDays is the whole number of days between genesis and t.
func AgeDays(genesis, t time.Time) float64 {
	return math.Floor(t.Sub(genesis).Hours() / 24)
}

// GrowthEstimate is the modelled long-run price at the given age in days.
func GrowthEstimate(ageDays float64) float64 {
	ageDays = math.Max(ageDays, 1)
	return math.Pow(10, growthSlope*math.Log10(ageDays)+growthIntercept)
}

// Index compares price to its harmonic trend and to the growth estimate.
func Index(price, hma, estimate float64) types.Optional[float64] {
	if !positive(price) || !positive(hma) || !positive(estimate) {
		return types.None[float64]()
	}
	return types.Some((price / hma) * (price / estimate))
}

// Multiplier is the continuous sizing curve around p.NeutralX. Below neutral
// it grows logarithmically without bound; above it tapers towards zero.
// Both branches equal 1.0 at neutral.
func Multiplier(x float64, p Params) float64 {
	if !positive(x) {
		return 1.0
	}
	if x < p.NeutralX {
		return 1 + p.Alpha*math.Log(p.NeutralX/x)
	}
	return math.Max(0, 1-p.Beta*math.Log(1+(x-p.NeutralX)))
}

func positive(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0) && x > 0
}
