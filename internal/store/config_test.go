package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, warnings, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ModeDryRun, cfg.Mode)
	assert.Equal(t, "BTC/USDT", cfg.Symbol)
	assert.Equal(t, DefaultBaselineUSD, cfg.BaselineUSD)
	assert.Equal(t, 300, cfg.HistoryDays)
	assert.Equal(t, 1.0, cfg.MinOrderUSD)
	assert.Equal(t, 2*time.Minute, cfg.RunTimeout)
	assert.Equal(t, "trade_log.csv", cfg.Ledger.Path)
	assert.Equal(t, "repair", cfg.Ledger.OnCorrupt)
	assert.Len(t, warnings, 2)
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := writeConfig(t, `
mode: LIVE
symbol: ETH/USDT
baseline_usd: 12.5
run_timeout: 45s
policy:
  daily_cap_x: 3
ledger:
  backend: sqlite
notify:
  github:
    repo: acme/dca
`)
	cfg, warnings, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, ModeLive, cfg.Mode)
	assert.Equal(t, "ETH/USDT", cfg.Symbol)
	assert.Equal(t, 12.5, cfg.BaselineUSD)
	assert.Equal(t, 45*time.Second, cfg.RunTimeout)
	assert.Equal(t, "trade_log.db", cfg.Ledger.Path)

	pp := cfg.PolicyParams()
	assert.Equal(t, 12.5, pp.Baseline)
	assert.Equal(t, 3.0, pp.DailyCapX)
	assert.Equal(t, 2.0, pp.PauseThreshold)
}

func TestInvalidBaselineFallsBack(t *testing.T) {
	path := writeConfig(t, "baseline_usd: -3\n")
	cfg, warnings, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaselineUSD, cfg.BaselineUSD)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "invalid")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DCA_BASELINE_USD", "20")
	t.Setenv("DCA_SYMBOL", "sol/usdt")
	t.Setenv("DCA_MODE", "live")

	cfg, _, err := LoadConfig(writeConfig(t, "baseline_usd: 5\n"))
	require.NoError(t, err)
	assert.Equal(t, 20.0, cfg.BaselineUSD)
	assert.Equal(t, "SOL/USDT", cfg.Symbol)
	assert.Equal(t, ModeLive, cfg.Mode)
}

func TestEnvBaselineNotANumber(t *testing.T) {
	t.Setenv("DCA_BASELINE_USD", "lots")
	cfg, warnings, err := LoadConfig(writeConfig(t, "baseline_usd: 7\n"))
	require.NoError(t, err)
	assert.Equal(t, 7.0, cfg.BaselineUSD)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "DCA_BASELINE_USD")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"mode", func(c *Config) { c.Mode = "PAPER" }},
		{"symbol", func(c *Config) { c.Symbol = "BTCUSDT" }},
		{"history shorter than window", func(c *Config) { c.HistoryDays = 100 }},
		{"genesis", func(c *Config) { c.GenesisDate = "yesterday" }},
		{"alpha", func(c *Config) { c.Valuation.Alpha = -1 }},
		{"cap", func(c *Config) { c.Policy.DailyCapX = -1 }},
		{"backend", func(c *Config) { c.Ledger.Backend = "postgres" }},
		{"on_corrupt", func(c *Config) { c.Ledger.OnCorrupt = "ignore" }},
		{"github repo", func(c *Config) { c.Notify.GitHub.Repo = "nodash" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.BaselineUSD = 5
			require.NoError(t, cfg.Validate())
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	_, _, err := LoadConfig(writeConfig(t, "mode: [unterminated\n"))
	assert.Error(t, err)
}

func TestCredentials(t *testing.T) {
	t.Setenv("OKX_API_KEY", "key")
	t.Setenv("OKX_SECRET_KEY", "")
	t.Setenv("OKX_PASSWORD", " pass ")

	creds := LoadCredentials()
	assert.False(t, creds.Complete())
	assert.Equal(t, []string{"OKX_SECRET_KEY"}, creds.Missing())
	assert.Equal(t, "pass", creds.Passphrase)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DCA_TEST_ONLY_VAR=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("DCA_TEST_ONLY_VAR") })

	require.NoError(t, LoadEnv(path))
	assert.Equal(t, "from-file", os.Getenv("DCA_TEST_ONLY_VAR"))

	require.NoError(t, LoadEnv(filepath.Join(t.TempDir(), "absent.env")))
}
