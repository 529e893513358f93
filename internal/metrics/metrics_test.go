package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcabot/internal/types"
)

func sample() Sample {
	return Sample{
		Symbol:     "BTC/USDT",
		Status:     "success",
		FinishedAt: time.Unix(1_735_700_000, 0),
		Duration:   1500 * time.Millisecond,
		Price:      types.Some(50000.0),
		Index:      types.Some(0.8),
		Multiplier: types.Some(1.33),
		Spend:      6.65,
		Invested:   types.Some(100.0),
		Holdings:   types.Some(0.002),
		Value:      types.Some(100.0),
		ROIPct:     types.Some(0.0),
	}
}

func TestObserve(t *testing.T) {
	r := New("")
	r.Observe(sample())

	assert.Equal(t, 1.0, testutil.ToFloat64(r.status.WithLabelValues("BTC/USDT", "success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.status.WithLabelValues("BTC/USDT", "failed")))
	assert.Equal(t, 6.65, testutil.ToFloat64(r.spend.WithLabelValues("BTC/USDT")))
	assert.Equal(t, 0.8, testutil.ToFloat64(r.index.WithLabelValues("BTC/USDT")))
	assert.Equal(t, 1.5, testutil.ToFloat64(r.duration.WithLabelValues("BTC/USDT")))
}

func TestUndefinedValuesAreDropped(t *testing.T) {
	r := New("")
	r.Observe(sample())

	s := sample()
	s.Status = "failed"
	s.Index = types.None[float64]()
	r.Observe(s)

	assert.Equal(t, 0, testutil.CollectAndCount(r.index))
	assert.Equal(t, 1, testutil.CollectAndCount(r.price))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.status.WithLabelValues("BTC/USDT", "failed")))
}

func TestFlushWritesTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collector", "dcabot.prom")
	r := New(path)
	r.Observe(sample())
	require.NoError(t, r.Flush())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(b)
	assert.True(t, strings.Contains(text, `dcabot_spend_usd{symbol="BTC/USDT"} 6.65`), text)
	assert.Contains(t, text, "# HELP dcabot_valuation_index")
}

func TestFlushWithoutTextfile(t *testing.T) {
	assert.NoError(t, New("").Flush())
}
