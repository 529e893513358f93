package valuation

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcabot/internal/types"
)

func flatCandles(n int, price float64, last time.Time) []types.Candle {
	cs := make([]types.Candle, n)
	for i := 0; i < n; i++ {
		ts := last.AddDate(0, 0, i-n+1)
		cs[i] = types.Candle{Ts: ts.UnixMilli(), Open: price, High: price, Low: price, Close: price}
	}
	return cs
}

func TestMultiplierNeutralPoint(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 1.0, Multiplier(1.0, p))
}

func TestMultiplierBelowNeutralIsAboveOneAndDecreasing(t *testing.T) {
	p := DefaultParams()
	prev := math.Inf(1)
	for x := 0.01; x < p.NeutralX; x += 0.01 {
		m := Multiplier(x, p)
		assert.Greater(t, m, 1.0, "x=%v", x)
		assert.Less(t, m, prev, "x=%v should be strictly decreasing", x)
		prev = m
	}
}

func TestMultiplierAboveNeutralIsBounded(t *testing.T) {
	p := DefaultParams()
	for _, x := range []float64{1.0, 1.1, 1.5, 2.0, 3.0, 10.0, 1e6} {
		m := Multiplier(x, p)
		assert.GreaterOrEqual(t, m, 0.0, "x=%v", x)
		assert.LessOrEqual(t, m, 1.0, "x=%v", x)
	}
	assert.Equal(t, 0.0, Multiplier(1e6, p), "floored at zero")
}

func TestMultiplierInvalidInput(t *testing.T) {
	p := DefaultParams()
	for _, x := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.Equal(t, 1.0, Multiplier(x, p), "x=%v", x)
	}
}

func TestMultiplierContinuity(t *testing.T) {
	p := DefaultParams()
	const eps = 1e-9
	assert.InDelta(t, Multiplier(p.NeutralX-eps, p), Multiplier(p.NeutralX+eps, p), 1e-6)
}

func TestGrowthEstimateFloorsAge(t *testing.T) {
	assert.Equal(t, GrowthEstimate(1), GrowthEstimate(0))
	assert.Equal(t, GrowthEstimate(1), GrowthEstimate(-5))
	assert.InDelta(t, math.Pow(10, -17.01), GrowthEstimate(1), 1e-30)
}

func TestGrowthEstimateKnownValue(t *testing.T) {
	age := 6000.0
	want := math.Pow(10, 5.84*math.Log10(age)-17.01)
	assert.InDelta(t, want, GrowthEstimate(age), want*1e-12)
}

func TestIndex(t *testing.T) {
	v, ok := Index(200, 100, 400).Get()
	require.True(t, ok)
	assert.InDelta(t, 1.0, v, 1e-12)

	assert.False(t, Index(200, 0, 400).IsDefined())
	assert.False(t, Index(200, math.NaN(), 400).IsDefined())
	assert.False(t, Index(0, 100, 400).IsDefined())
	assert.False(t, Index(math.Inf(1), 100, 400).IsDefined())
}

func TestAgeDays(t *testing.T) {
	g := DefaultGenesis
	assert.Equal(t, 0.0, AgeDays(g, g))
	assert.Equal(t, 10.0, AgeDays(g, g.AddDate(0, 0, 10).Add(3*time.Hour)))
}

func TestEvaluateFlatAtEstimate(t *testing.T) {
	m, err := NewModel(DefaultParams())
	require.NoError(t, err)

	last := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	est := GrowthEstimate(AgeDays(DefaultGenesis, last))
	s := m.Evaluate(flatCandles(250, est, last))

	x, ok := s.Index.Get()
	require.True(t, ok)
	assert.InDelta(t, 1.0, x, 1e-9)
	assert.InDelta(t, 1.0, s.Multiplier, 1e-9)
	assert.Equal(t, 250, s.Samples)
	assert.True(t, s.AsOf.Equal(last))
}

func TestEvaluateShortHistoryIsUndefined(t *testing.T) {
	m, err := NewModel(DefaultParams())
	require.NoError(t, err)

	s := m.Evaluate(flatCandles(150, 30000, time.Now().UTC()))
	assert.False(t, s.HMA.IsDefined())
	assert.False(t, s.Index.IsDefined())
	assert.Equal(t, 1.0, s.Multiplier)
	assert.Equal(t, 30000.0, s.PriceToday)
}

func TestEvaluateEmpty(t *testing.T) {
	m, err := NewModel(DefaultParams())
	require.NoError(t, err)
	s := m.Evaluate(nil)
	assert.False(t, s.Index.IsDefined())
	assert.Equal(t, 0, s.Samples)
}

func TestParamsValidate(t *testing.T) {
	p := DefaultParams()
	p.Window = 0
	_, err := NewModel(p)
	assert.Error(t, err)

	p = DefaultParams()
	p.NeutralX = 0
	assert.Error(t, p.Validate())

	p = DefaultParams()
	p.Genesis = time.Time{}
	assert.Error(t, p.Validate())
}
