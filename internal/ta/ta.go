package ta

import (
	"math"

	"dcabot/internal/types"
)

// HarmonicMean is the harmonic moving average of the trailing n prices:
// n / Σ(1/p). Undefined with fewer than n samples or when any sample in the
// window is non-finite or non-positive.
func HarmonicMean(prices []float64, n int) types.Optional[float64] {
	if n <= 0 || len(prices) < n {
		return types.None[float64]()
	}
	inv := 0.0
	for i := len(prices) - n; i < len(prices); i++ {
		p := prices[i]
		if !finite(p) || p <= 0 {
			return types.None[float64]()
		}
		inv += 1.0 / p
	}
	return types.Some(float64(n) / inv)
}

// SMA is the arithmetic mean of the trailing n prices.
func SMA(prices []float64, n int) types.Optional[float64] {
	if n <= 0 || len(prices) < n {
		return types.None[float64]()
	}
	sum := 0.0
	for i := len(prices) - n; i < len(prices); i++ {
		if !finite(prices[i]) {
			return types.None[float64]()
		}
		sum += prices[i]
	}
	return types.Some(sum / float64(n))
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
