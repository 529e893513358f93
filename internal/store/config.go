package store

import (
	"errors"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"dcabot/internal/ledger"
	"dcabot/internal/policy"
	"dcabot/internal/valuation"
)

const (
	ModeDryRun = "DRY_RUN"
	ModeLive   = "LIVE"

	DefaultBaselineUSD = 5.0
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9]+/[A-Z0-9]+$`)

type Config struct {
	Mode        string        `yaml:"mode"`
	Symbol      string        `yaml:"symbol"`
	BaselineUSD float64       `yaml:"baseline_usd"`
	HistoryDays int           `yaml:"history_days"`
	MinOrderUSD float64       `yaml:"min_order_usd"`
	RunTimeout  time.Duration `yaml:"run_timeout"`
	GenesisDate string        `yaml:"genesis_date"`
	Valuation   struct {
		Window   int     `yaml:"window"`
		NeutralX float64 `yaml:"neutral_x"`
		Alpha    float64 `yaml:"alpha"`
		Beta     float64 `yaml:"beta"`
	} `yaml:"valuation"`
	Policy struct {
		DailyCapX      float64 `yaml:"daily_cap_x"`
		PauseThreshold float64 `yaml:"pause_threshold"`
	} `yaml:"policy"`
	Ledger struct {
		Backend   string `yaml:"backend"`
		Path      string `yaml:"path"`
		OnCorrupt string `yaml:"on_corrupt"`
	} `yaml:"ledger"`
	Journal struct {
		Dir           string `yaml:"dir"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"journal"`
	Notify struct {
		GitHub struct {
			Repo     string   `yaml:"repo"`
			TokenEnv string   `yaml:"token_env"`
			Labels   []string `yaml:"labels"`
		} `yaml:"github"`
		Telegram struct {
			ChatID   string `yaml:"chat_id"`
			TokenEnv string `yaml:"token_env"`
		} `yaml:"telegram"`
		Webhook struct {
			URL string `yaml:"url"`
		} `yaml:"webhook"`
	} `yaml:"notify"`
	Metrics struct {
		Textfile string `yaml:"textfile"`
	} `yaml:"metrics"`
	Exchange struct {
		BaseURL   string  `yaml:"base_url"`
		Simulated bool    `yaml:"simulated"`
		RateLimit float64 `yaml:"rate_limit"`
	} `yaml:"exchange"`
}

// Default returns a config with every default applied.
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeDryRun
	}
	if c.Symbol == "" {
		c.Symbol = "BTC/USDT"
	}
	if c.HistoryDays == 0 {
		c.HistoryDays = 300
	}
	if c.MinOrderUSD == 0 {
		c.MinOrderUSD = 1
	}
	if c.RunTimeout == 0 {
		c.RunTimeout = 2 * time.Minute
	}
	if c.GenesisDate == "" {
		c.GenesisDate = valuation.DefaultGenesis.Format("2006-01-02")
	}

	vp := valuation.DefaultParams()
	if c.Valuation.Window == 0 {
		c.Valuation.Window = vp.Window
	}
	if c.Valuation.NeutralX == 0 {
		c.Valuation.NeutralX = vp.NeutralX
	}
	if c.Valuation.Alpha == 0 {
		c.Valuation.Alpha = vp.Alpha
	}
	if c.Valuation.Beta == 0 {
		c.Valuation.Beta = vp.Beta
	}

	pp := policy.DefaultParams()
	if c.Policy.DailyCapX == 0 {
		c.Policy.DailyCapX = pp.DailyCapX
	}
	if c.Policy.PauseThreshold == 0 {
		c.Policy.PauseThreshold = pp.PauseThreshold
	}

	if c.Ledger.Backend == "" {
		c.Ledger.Backend = ledger.BackendCSV
	}
	if c.Ledger.Path == "" {
		if c.Ledger.Backend == ledger.BackendSQLite {
			c.Ledger.Path = "trade_log.db"
		} else {
			c.Ledger.Path = "trade_log.csv"
		}
	}
	if c.Ledger.OnCorrupt == "" {
		c.Ledger.OnCorrupt = string(ledger.RepairOnCorrupt)
	}
	if c.Journal.Dir == "" {
		c.Journal.Dir = "logs/runs"
	}
	if c.Journal.RetentionDays == 0 {
		c.Journal.RetentionDays = 30
	}
	if c.Notify.GitHub.TokenEnv == "" {
		c.Notify.GitHub.TokenEnv = "GITHUB_TOKEN"
	}
	if len(c.Notify.GitHub.Labels) == 0 {
		c.Notify.GitHub.Labels = []string{"dca-report"}
	}
	if c.Notify.Telegram.TokenEnv == "" {
		c.Notify.Telegram.TokenEnv = "TELEGRAM_BOT_TOKEN"
	}
	if c.Exchange.BaseURL == "" {
		c.Exchange.BaseURL = "https://www.okx.com"
	}
	if c.Exchange.RateLimit == 0 {
		c.Exchange.RateLimit = 5
	}
}

// applyEnv overrides selected fields from DCA_* environment variables.
// Unparsable values are reported as warnings and ignored.
func (c *Config) applyEnv() []string {
	var warnings []string
	if v := strings.TrimSpace(os.Getenv("DCA_MODE")); v != "" {
		c.Mode = strings.ToUpper(v)
	}
	if v := strings.TrimSpace(os.Getenv("DCA_SYMBOL")); v != "" {
		c.Symbol = strings.ToUpper(v)
	}
	if v := strings.TrimSpace(os.Getenv("DCA_BASELINE_USD")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("DCA_BASELINE_USD=%q is not a number, ignored", v))
		} else {
			c.BaselineUSD = f
		}
	}
	return warnings
}

// normalizeBaseline replaces a missing or unusable baseline with the default.
func (c *Config) normalizeBaseline() []string {
	b := c.BaselineUSD
	if b > 0 && !math.IsInf(b, 0) && !math.IsNaN(b) {
		return nil
	}
	c.BaselineUSD = DefaultBaselineUSD
	if b == 0 {
		return []string{fmt.Sprintf("baseline_usd not set, using default %.2f", DefaultBaselineUSD)}
	}
	return []string{fmt.Sprintf("baseline_usd %v is invalid, using default %.2f", b, DefaultBaselineUSD)}
}

func (c *Config) Validate() error {
	if c.Mode != ModeDryRun && c.Mode != ModeLive {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if !symbolPattern.MatchString(c.Symbol) {
		return fmt.Errorf("invalid symbol '%s': expected BASE/QUOTE", c.Symbol)
	}
	if c.HistoryDays < c.Valuation.Window {
		return fmt.Errorf("history_days must be at least valuation.window (%d), got %d", c.Valuation.Window, c.HistoryDays)
	}
	if c.MinOrderUSD < 0 {
		return fmt.Errorf("min_order_usd must be >= 0, got %.2f", c.MinOrderUSD)
	}
	if c.RunTimeout < 0 {
		return fmt.Errorf("run_timeout must be positive, got %s", c.RunTimeout)
	}
	if _, err := c.Genesis(); err != nil {
		return fmt.Errorf("invalid genesis_date '%s': %w", c.GenesisDate, err)
	}
	if err := c.ValuationParams().Validate(); err != nil {
		return err
	}
	if err := c.PolicyParams().Validate(); err != nil {
		return err
	}
	if c.Ledger.Backend != ledger.BackendCSV && c.Ledger.Backend != ledger.BackendSQLite {
		return fmt.Errorf("ledger.backend must be '%s' or '%s', got '%s'", ledger.BackendCSV, ledger.BackendSQLite, c.Ledger.Backend)
	}
	switch ledger.CorruptPolicy(c.Ledger.OnCorrupt) {
	case ledger.RepairOnCorrupt, ledger.FailOnCorrupt:
	default:
		return fmt.Errorf("ledger.on_corrupt must be 'repair' or 'fail', got '%s'", c.Ledger.OnCorrupt)
	}
	if c.Journal.RetentionDays < 0 {
		return errors.New("journal.retention_days cannot be negative")
	}
	if repo := c.Notify.GitHub.Repo; repo != "" && strings.Count(repo, "/") != 1 {
		return fmt.Errorf("notify.github.repo must be 'owner/name', got '%s'", repo)
	}
	return nil
}

// Genesis parses GenesisDate.
func (c *Config) Genesis() (time.Time, error) {
	return time.Parse("2006-01-02", c.GenesisDate)
}

func (c *Config) ValuationParams() valuation.Params {
	p := valuation.DefaultParams()
	p.Window = c.Valuation.Window
	p.NeutralX = c.Valuation.NeutralX
	p.Alpha = c.Valuation.Alpha
	p.Beta = c.Valuation.Beta
	if g, err := c.Genesis(); err == nil {
		p.Genesis = g
	}
	return p
}

func (c *Config) PolicyParams() policy.Params {
	return policy.Params{
		Baseline:       c.BaselineUSD,
		DailyCapX:      c.Policy.DailyCapX,
		PauseThreshold: c.Policy.PauseThreshold,
	}
}

// LoadConfig reads the YAML file at path, applies defaults and DCA_*
// environment overrides, and validates the result. A missing file yields the
// default configuration. Soft problems are returned as warnings.
func LoadConfig(path string) (*Config, []string, error) {
	var c Config
	var warnings []string

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		warnings = append(warnings, fmt.Sprintf("config file %s not found, using defaults", path))
	default:
		return nil, nil, err
	}

	c.applyDefaults()
	warnings = append(warnings, c.applyEnv()...)
	warnings = append(warnings, c.normalizeBaseline()...)

	if err := c.Validate(); err != nil {
		return nil, warnings, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, warnings, nil
}

// Credentials holds exchange API credentials.
type Credentials struct {
	APIKey     string
	SecretKey  string
	Passphrase string
}

// Complete reports whether every credential is present.
func (c Credentials) Complete() bool {
	return c.APIKey != "" && c.SecretKey != "" && c.Passphrase != ""
}

// Missing lists the env variables that were empty.
func (c Credentials) Missing() []string {
	var out []string
	if c.APIKey == "" {
		out = append(out, "OKX_API_KEY")
	}
	if c.SecretKey == "" {
		out = append(out, "OKX_SECRET_KEY")
	}
	if c.Passphrase == "" {
		out = append(out, "OKX_PASSWORD")
	}
	return out
}

// LoadEnv loads a .env file into the process environment if one exists.
// Variables already set are not overridden.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

// LoadCredentials reads exchange credentials from the environment.
func LoadCredentials() Credentials {
	return Credentials{
		APIKey:     strings.TrimSpace(os.Getenv("OKX_API_KEY")),
		SecretKey:  strings.TrimSpace(os.Getenv("OKX_SECRET_KEY")),
		Passphrase: strings.TrimSpace(os.Getenv("OKX_PASSWORD")),
	}
}
