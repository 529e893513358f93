package okx

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"dcabot/internal/logger"
	"dcabot/internal/types"
)

type orderRequest struct {
	InstID  string `json:"instId"`
	TdMode  string `json:"tdMode"`
	Side    string `json:"side"`
	OrdType string `json:"ordType"`
	Sz      string `json:"sz"`
	TgtCcy  string `json:"tgtCcy"`
	ClOrdID string `json:"clOrdId"`
}

type orderAck struct {
	OrdID   string `json:"ordId"`
	ClOrdID string `json:"clOrdId"`
	SCode   string `json:"sCode"`
	SMsg    string `json:"sMsg"`
}

type orderDetail struct {
	OrdID     string `json:"ordId"`
	State     string `json:"state"`
	AccFillSz string `json:"accFillSz"`
	AvgPx     string `json:"avgPx"`
	Fee       string `json:"fee"`
	FeeCcy    string `json:"feeCcy"`
}

// newClientOrderID is a uuid without dashes, which fits OKX's 32
// alphanumeric character limit.
func newClientOrderID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// MarketBuyByCost places a spot market buy spending quoteCost of the quote
// currency. Once the order is accepted a failing detail query degrades to a
// Fill carrying only the order id.
func (c *Client) MarketBuyByCost(ctx context.Context, symbol string, quoteCost float64) (types.Fill, error) {
	if !(quoteCost > 0) {
		return types.Fill{}, fmt.Errorf("okx: quote cost must be positive, got %v", quoteCost)
	}
	instID, err := InstID(symbol)
	if err != nil {
		return types.Fill{}, err
	}
	if c.dryRun {
		return c.simulateBuy(ctx, symbol, quoteCost)
	}

	req := orderRequest{
		InstID:  instID,
		TdMode:  "cash",
		Side:    "buy",
		OrdType: "market",
		Sz:      strconv.FormatFloat(quoteCost, 'f', -1, 64),
		TgtCcy:  "quote_ccy",
		ClOrdID: c.newID(),
	}
	var acks []orderAck
	if err := c.postPrivate(ctx, "/api/v5/trade/order", req, &acks); err != nil {
		return types.Fill{}, err
	}
	if len(acks) == 0 {
		return types.Fill{}, errors.New("okx: empty order acknowledgement")
	}
	ack := acks[0]
	if ack.SCode != "0" {
		return types.Fill{}, &APIError{Code: ack.SCode, Msg: ack.SMsg}
	}

	fill := types.Fill{OrderID: ack.OrdID}
	detail, err := c.order(ctx, instID, ack.OrdID)
	if err != nil {
		logger.Warn(ctx, "Order accepted but details unavailable", "order_id", ack.OrdID, "error", err)
		return fill, nil
	}
	return detail.fill(), nil
}

func (c *Client) order(ctx context.Context, instID, ordID string) (orderDetail, error) {
	var ds []orderDetail
	q := url.Values{"instId": {instID}, "ordId": {ordID}}
	if err := c.getPrivate(ctx, "/api/v5/trade/order", q, &ds); err != nil {
		return orderDetail{}, err
	}
	if len(ds) == 0 {
		return orderDetail{}, fmt.Errorf("okx: order %s not found", ordID)
	}
	return ds[0], nil
}

func (d orderDetail) fill() types.Fill {
	f := types.Fill{
		OrderID: d.OrdID,
		Filled:  parsePositive(d.AccFillSz),
		Average: parsePositive(d.AvgPx),
	}
	if q, ok := f.Filled.Get(); ok {
		if p, ok := f.Average.Get(); ok {
			f.Cost = types.Some(q * p)
		}
	}
	return f
}

func parsePositive(s string) types.Optional[float64] {
	if s == "" {
		return types.None[float64]()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return types.None[float64]()
	}
	return types.Positive(v)
}

// simulateBuy fills the whole cost at the current ticker price.
func (c *Client) simulateBuy(ctx context.Context, symbol string, quoteCost float64) (types.Fill, error) {
	price, err := c.LastPrice(ctx, symbol)
	if err != nil {
		return types.Fill{}, err
	}
	logger.Info(ctx, "DRY_RUN: simulated market buy", "symbol", symbol, "cost", quoteCost, "price", price)
	return types.Fill{
		OrderID: "dry-run-" + c.newID(),
		Cost:    types.Some(quoteCost),
		Filled:  types.Some(quoteCost / price),
		Average: types.Some(price),
	}, nil
}
