// Package okx is a minimal OKX v5 REST client covering spot daily candles
// and market buys sized in the quote currency.
package okx

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dcabot/internal/api"
	"dcabot/internal/logger"
)

const (
	MainnetRestURL = "https://www.okx.com"

	// candles serves at most 300 recent bars; older bars come from
	// history-candles in pages of 100.
	recentPageLimit  = 300
	historyPageLimit = 100

	dailyBar = "1Dutc"
)

// ErrCredentials is returned when a private endpoint is used without keys.
var ErrCredentials = errors.New("okx: api credentials are required")

// APIError is a non-zero OKX response code.
type APIError struct {
	Code string
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("okx api error %s: %s", e.Code, e.Msg)
}

// Credentials are the OKX API key triple.
type Credentials struct {
	APIKey     string
	SecretKey  string
	Passphrase string
}

func (c Credentials) complete() bool {
	return c.APIKey != "" && c.SecretKey != "" && c.Passphrase != ""
}

// Config configures a Client.
type Config struct {
	BaseURL     string
	Credentials Credentials
	// Simulated routes private calls to the OKX demo trading environment.
	Simulated bool
	// DryRun fills buys locally at the ticker price instead of trading.
	DryRun bool
	// RateLimit is requests per second; zero disables pacing.
	RateLimit float64
	Timeout   time.Duration
}

// Client talks to OKX.
type Client struct {
	public  *api.Client
	private *api.Client
	creds   Credentials
	dryRun  bool
	now     func() time.Time
	newID   func() string
}

// New builds a client. Live trading requires complete credentials.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = MainnetRestURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	if !cfg.DryRun && !cfg.Credentials.complete() {
		return nil, ErrCredentials
	}

	c := &Client{
		creds:  cfg.Credentials,
		dryRun: cfg.DryRun,
		now:    time.Now,
		newID:  newClientOrderID,
	}
	common := []api.ClientOption{
		api.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")),
		api.WithTimeout(cfg.Timeout),
		api.WithHeader("Accept", "application/json"),
		api.WithRateLimit(cfg.RateLimit, 1),
		api.WithLogging(true),
	}
	c.public = api.NewClient(common...)

	priv := append([]api.ClientOption{}, common...)
	priv = append(priv, api.WithSigner(c.signRequest))
	if cfg.Simulated {
		priv = append(priv, api.WithHeader("x-simulated-trading", "1"))
	}
	c.private = api.NewClient(priv...)
	return c, nil
}

// DryRun reports whether buys are simulated.
func (c *Client) DryRun() bool { return c.dryRun }

// sign returns base64(HMAC-SHA256(secret, timestamp+method+requestPath+body)).
func (c *Client) sign(timestamp, method, requestPath, body string) string {
	h := hmac.New(sha256.New, []byte(c.creds.SecretKey))
	h.Write([]byte(timestamp + method + requestPath + body))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func (c *Client) signRequest(req *http.Request, body []byte) error {
	if !c.creds.complete() {
		return ErrCredentials
	}
	ts := c.now().UTC().Format("2006-01-02T15:04:05.000Z")
	req.Header.Set("OK-ACCESS-KEY", c.creds.APIKey)
	req.Header.Set("OK-ACCESS-SIGN", c.sign(ts, req.Method, req.URL.RequestURI(), string(body)))
	req.Header.Set("OK-ACCESS-TIMESTAMP", ts)
	req.Header.Set("OK-ACCESS-PASSPHRASE", c.creds.Passphrase)
	return nil
}

type envelope struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// call performs a request and unwraps the {code,msg,data} envelope into out.
func (c *Client) call(ctx context.Context, hc *api.Client, req *api.Request, out any) error {
	resp, err := hc.Do(req.WithContext(ctx))
	if err != nil {
		return err
	}
	var env envelope
	if err := resp.ParseJSON(&env); err != nil {
		return err
	}
	if env.Code != "0" {
		return &APIError{Code: env.Code, Msg: env.Msg}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("okx: decode data: %w", err)
	}
	return nil
}

func (c *Client) getPublic(ctx context.Context, path string, q url.Values, out any) error {
	return c.call(ctx, c.public, api.NewRequest(http.MethodGet, path).WithQuery(q), out)
}

func (c *Client) getPrivate(ctx context.Context, path string, q url.Values, out any) error {
	return c.call(ctx, c.private, api.NewRequest(http.MethodGet, path).WithQuery(q), out)
}

func (c *Client) postPrivate(ctx context.Context, path string, body, out any) error {
	return c.call(ctx, c.private, api.NewRequest(http.MethodPost, path).WithBody(body), out)
}

// InstID converts BASE/QUOTE to the OKX instrument id BASE-QUOTE.
func InstID(symbol string) (string, error) {
	base, quote, ok := strings.Cut(strings.ToUpper(strings.TrimSpace(symbol)), "/")
	if !ok || base == "" || quote == "" || strings.Contains(quote, "/") {
		return "", fmt.Errorf("okx: symbol %q is not BASE/QUOTE", symbol)
	}
	return base + "-" + quote, nil
}

func (c *Client) debug(ctx context.Context, msg string, args ...any) {
	logger.Debug(ctx, msg, args...)
}
