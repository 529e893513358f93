package okx

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"dcabot/internal/types"
)

// FetchDailyCandles returns up to limit daily UTC candles, oldest first.
// The newest candle may be the day in progress; its close is the live price.
func (c *Client) FetchDailyCandles(ctx context.Context, symbol string, limit int) ([]types.Candle, error) {
	instID, err := InstID(symbol)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}

	first := min(limit, recentPageLimit)
	rows, err := c.candlePage(ctx, "/api/v5/market/candles", instID, first, "")
	if err != nil {
		return nil, err
	}
	out := rows

	// Walk backwards through history until enough bars or no more data.
	for len(out) < limit && len(rows) > 0 {
		after := strconv.FormatInt(oldest(out).Ts, 10)
		page := min(limit-len(out), historyPageLimit)
		rows, err = c.candlePage(ctx, "/api/v5/market/history-candles", instID, page, after)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Ts < out[j].Ts })
	out = dedupe(out)
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	c.debug(ctx, "Fetched daily candles", "inst_id", instID, "requested", limit, "received", len(out))
	return out, nil
}

func (c *Client) candlePage(ctx context.Context, path, instID string, limit int, after string) ([]types.Candle, error) {
	q := url.Values{
		"instId": {instID},
		"bar":    {dailyBar},
		"limit":  {strconv.Itoa(limit)},
	}
	if after != "" {
		q.Set("after", after)
	}
	var raw [][]string
	if err := c.getPublic(ctx, path, q, &raw); err != nil {
		return nil, err
	}
	out := make([]types.Candle, 0, len(raw))
	for _, r := range raw {
		cd, err := parseCandle(r)
		if err != nil {
			return nil, err
		}
		out = append(out, cd)
	}
	return out, nil
}

// parseCandle decodes [ts, o, h, l, c, vol, ...].
func parseCandle(r []string) (types.Candle, error) {
	if len(r) < 6 {
		return types.Candle{}, fmt.Errorf("okx: candle row has %d fields", len(r))
	}
	ts, err := strconv.ParseInt(r[0], 10, 64)
	if err != nil {
		return types.Candle{}, fmt.Errorf("okx: candle ts %q: %w", r[0], err)
	}
	var vals [5]float64
	for i := range vals {
		v, err := strconv.ParseFloat(r[i+1], 64)
		if err != nil {
			return types.Candle{}, fmt.Errorf("okx: candle field %d %q: %w", i+1, r[i+1], err)
		}
		vals[i] = v
	}
	return types.Candle{Ts: ts, Open: vals[0], High: vals[1], Low: vals[2], Close: vals[3], Vol: vals[4]}, nil
}

func oldest(cs []types.Candle) types.Candle {
	o := cs[0]
	for _, c := range cs[1:] {
		if c.Ts < o.Ts {
			o = c
		}
	}
	return o
}

// dedupe drops repeated timestamps from a sorted series.
func dedupe(cs []types.Candle) []types.Candle {
	if len(cs) < 2 {
		return cs
	}
	out := cs[:1]
	for _, c := range cs[1:] {
		if c.Ts != out[len(out)-1].Ts {
			out = append(out, c)
		}
	}
	return out
}

type ticker struct {
	InstID string `json:"instId"`
	Last   string `json:"last"`
}

// LastPrice returns the ticker's last traded price.
func (c *Client) LastPrice(ctx context.Context, symbol string) (float64, error) {
	instID, err := InstID(symbol)
	if err != nil {
		return 0, err
	}
	var ts []ticker
	if err := c.getPublic(ctx, "/api/v5/market/ticker", url.Values{"instId": {instID}}, &ts); err != nil {
		return 0, err
	}
	if len(ts) == 0 {
		return 0, fmt.Errorf("okx: no ticker for %s", instID)
	}
	p, err := strconv.ParseFloat(ts[0].Last, 64)
	if err != nil || p <= 0 {
		return 0, fmt.Errorf("okx: bad last price %q for %s", ts[0].Last, instID)
	}
	return p, nil
}
