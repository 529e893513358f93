package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcabot/internal/types"
	"dcabot/internal/valuation"
)

func newPolicy(t *testing.T, baseline float64) *Policy {
	t.Helper()
	m, err := valuation.NewModel(valuation.DefaultParams())
	require.NoError(t, err)
	p := DefaultParams()
	p.Baseline = baseline
	pl, err := New(p, m)
	require.NoError(t, err)
	return pl
}

func snap(x float64) valuation.Snapshot {
	return valuation.Snapshot{Index: types.Some(x), PriceToday: 100}
}

func TestDecideNeutral(t *testing.T) {
	pl := newPolicy(t, 5.0)
	d := pl.Decide(snap(1.0))
	spend, ok := d.Spend.Get()
	require.True(t, ok)
	assert.Equal(t, 5.0, spend)
	assert.Equal(t, ReasonScaled, d.Reason)
}

func TestDecideBoundsForValidIndex(t *testing.T) {
	pl := newPolicy(t, 5.0)
	for x := 0.0001; x <= 2.0; x += 0.0137 {
		d := pl.Decide(snap(x))
		spend, ok := d.Spend.Get()
		require.True(t, ok, "x=%v", x)
		assert.GreaterOrEqual(t, spend, 0.0, "x=%v", x)
		assert.LessOrEqual(t, spend, 5.0*4.0, "x=%v", x)
	}
}

func TestDecideCapsLowIndex(t *testing.T) {
	pl := newPolicy(t, 5.0)
	d := pl.Decide(snap(0.01))
	spend, _ := d.Spend.Get()
	assert.Equal(t, 20.0, spend)
	assert.Equal(t, ReasonCapped, d.Reason)
}

func TestDecidePausesAboveThreshold(t *testing.T) {
	pl := newPolicy(t, 5.0)
	for _, x := range []float64{2.0000001, 2.5, 10} {
		d := pl.Decide(snap(x))
		spend, ok := d.Spend.Get()
		require.True(t, ok)
		assert.Equal(t, 0.0, spend, "x=%v", x)
		assert.Equal(t, ReasonPaused, d.Reason)
	}
}

func TestDecideAtThresholdStillBuys(t *testing.T) {
	pl := newPolicy(t, 5.0)
	d := pl.Decide(snap(2.0))
	spend, ok := d.Spend.Get()
	require.True(t, ok)
	assert.Greater(t, spend, 0.0)
	assert.NotEqual(t, ReasonPaused, d.Reason)
}

func TestDecideUndefinedIndex(t *testing.T) {
	pl := newPolicy(t, 5.0)
	d := pl.Decide(valuation.Snapshot{PriceToday: 100})
	assert.False(t, d.Spend.IsDefined())
	assert.Equal(t, ReasonUnavailable, d.Reason)
}

func TestDecideRoundsToFourDecimals(t *testing.T) {
	pl := newPolicy(t, 3.3333333)
	d := pl.Decide(snap(0.9))
	spend, _ := d.Spend.Get()
	assert.Equal(t, spend, round(spend, 4))
}

func TestNewRejectsInvalidParams(t *testing.T) {
	m, err := valuation.NewModel(valuation.DefaultParams())
	require.NoError(t, err)

	p := DefaultParams()
	p.Baseline = 0
	_, err = New(p, m)
	assert.Error(t, err)

	_, err = New(DefaultParams(), nil)
	assert.Error(t, err)
}
