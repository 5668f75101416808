package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 300*time.Second, cfg.ScanInterval())
	assert.Equal(t, 60*time.Second, cfg.ErrorInterval())
	assert.Equal(t, 2, cfg.Trading.FeePerContract)
	assert.Equal(t, 1, cfg.Trading.MinProfitCents)
	assert.Equal(t, int64(5000), cfg.Risk.DailyLossLimit)
	assert.Equal(t, 0.10, cfg.Risk.MaxDrawdownPct)
	assert.Equal(t, int64(10_000), cfg.Risk.MaxPositionValue)
	assert.Equal(t, int64(5000), cfg.Risk.MaxExposure)
	assert.Equal(t, 10, cfg.Risk.OrdersPerMinute)
	assert.Equal(t, 0.05, cfg.Risk.MaxRiskFraction)
	assert.Equal(t, "https://api.elections.kalshi.com/v1", cfg.API.BaseURL)
	assert.False(t, cfg.Trading.PaperTrading)
	assert.Zero(t, cfg.StaleOrderMaxAge(), "stale-order rotation is off unless configured")
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
trading:
  interval_seconds: 120
  paper_trading: true
  stale_order_max_age_mins: 15
risk:
  daily_loss_limit: 2500
api:
  base_url: https://demo.kalshi.test/v1
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 120*time.Second, cfg.ScanInterval())
	assert.True(t, cfg.Trading.PaperTrading)
	assert.Equal(t, 15*time.Minute, cfg.StaleOrderMaxAge())
	assert.Equal(t, int64(2500), cfg.Risk.DailyLossLimit)
	assert.Equal(t, "https://demo.kalshi.test/v1", cfg.API.BaseURL)

	// Unset keys still get defaults.
	assert.Equal(t, 2, cfg.Trading.FeePerContract)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trading: ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PAPER_TRADING", "true")
	t.Setenv("MAX_DAILY_LOSS", "2000")
	t.Setenv("MAX_POSITION_VALUE", "7500")
	t.Setenv("MAX_EXPOSURE", "3000")
	t.Setenv("FEE_PER_CONTRACT", "3")
	t.Setenv("MIN_PROFIT_CENTS", "2")
	t.Setenv("RISK_PER_TRADE_PCT", "0.02")
	t.Setenv("KALSHI_API_URL", "https://demo.kalshi.test/v1")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.True(t, cfg.Trading.PaperTrading)
	assert.Equal(t, int64(2000), cfg.Risk.DailyLossLimit)
	assert.Equal(t, int64(7500), cfg.Risk.MaxPositionValue)
	assert.Equal(t, int64(3000), cfg.Risk.MaxExposure)
	assert.Equal(t, 3, cfg.Trading.FeePerContract)
	assert.Equal(t, 2, cfg.Trading.MinProfitCents)
	assert.Equal(t, 0.02, cfg.Risk.RiskPerTradePct)
	assert.Equal(t, "https://demo.kalshi.test/v1", cfg.API.BaseURL)
}

func TestLoad_EnvBeatsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("risk:\n  daily_loss_limit: 9999\n"), 0o644))
	t.Setenv("MAX_DAILY_LOSS", "1234")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1234), cfg.Risk.DailyLossLimit)
}

func TestLoad_MalformedEnvIgnored(t *testing.T) {
	t.Setenv("MAX_DAILY_LOSS", "not-a-number")
	t.Setenv("PAPER_TRADING", "kinda")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, int64(5000), cfg.Risk.DailyLossLimit)
	assert.False(t, cfg.Trading.PaperTrading)
}
