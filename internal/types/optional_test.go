package types

import (
	"encoding/json"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalZeroValueIsUndefined(t *testing.T) {
	var o Optional[float64]
	_, ok := o.Get()
	assert.False(t, ok)
	assert.Equal(t, 3.0, o.OrElse(3.0))
}

func TestPositive(t *testing.T) {
	assert.False(t, Positive(0).IsDefined())
	assert.False(t, Positive(-1).IsDefined())
	assert.False(t, Positive(math.NaN()).IsDefined())
	assert.False(t, Positive(math.Inf(1)).IsDefined())

	v, ok := Positive(2.5).Get()
	require.True(t, ok)
	assert.Equal(t, 2.5, v)
}

func TestFillJSON(t *testing.T) {
	f := Fill{OrderID: "abc", Cost: Some(5.0)}
	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"order_id":"abc","cost":5,"filled":null,"average":null}`, string(b))

	var back Fill
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, f, back)
}

func TestOptionalLogValue(t *testing.T) {
	var _ slog.LogValuer = Optional[float64]{}

	v := Some(1.5).LogValue()
	assert.Equal(t, slog.KindFloat64, v.Kind())
	assert.Equal(t, 1.5, v.Float64())

	assert.Equal(t, "unavailable", None[float64]().LogValue().String())
}
