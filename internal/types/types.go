package types

import "time"

// Candle is one OHLCV bar. Ts is the bar open time in Unix milliseconds.
type Candle struct {
	Ts                          int64
	Open, High, Low, Close, Vol float64
}

// Time returns the candle open time in UTC.
func (c Candle) Time() time.Time {
	return time.UnixMilli(c.Ts).UTC()
}

// Closes extracts the close prices of a chronological candle series.
func Closes(cs []Candle) []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = c.Close
	}
	return out
}

// Fill is what the exchange reports back for a market buy. Any of the
// numeric fields may be missing depending on the venue and order state.
type Fill struct {
	OrderID string            `json:"order_id"`
	Cost    Optional[float64] `json:"cost"`
	Filled  Optional[float64] `json:"filled"`
	Average Optional[float64] `json:"average"`
}
