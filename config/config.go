package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full engine configuration.
type Config struct {
	Trading TradingConfig `yaml:"trading"`
	Risk    RiskConfig    `yaml:"risk"`
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	State   StateConfig   `yaml:"state"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// TradingConfig controls the scan/trade loop.
type TradingConfig struct {
	IntervalSeconds      int  `yaml:"interval_seconds"`
	ErrorIntervalSeconds int  `yaml:"error_interval_seconds"`
	PaperTrading         bool `yaml:"paper_trading"`
	PaperBalanceCents    int64 `yaml:"paper_balance_cents"`
	MarketLimit          int  `yaml:"market_limit"`         // markets fetched per scan
	MaxMarketsPerCycle   int  `yaml:"max_markets_per_cycle"` // markets traded per cycle
	MinVolume            int  `yaml:"min_volume"`
	FeePerContract       int  `yaml:"fee_per_contract"` // cents per side; unverified estimate, keep configurable
	MinProfitCents       int  `yaml:"min_profit_cents"`
	StaleOrderMaxAgeMins int  `yaml:"stale_order_max_age_mins"` // 0 disables the cancel-after-age hardening
}

// RiskConfig controls sizing and the risk gates.
type RiskConfig struct {
	DisableKelly     bool    `yaml:"disable_kelly"` // fall back to fixed-pct sizing
	RiskPerTradePct  float64 `yaml:"risk_per_trade_pct"` // fixed-pct sizing mode
	MaxRiskFraction  float64 `yaml:"max_risk_fraction"`  // hard cap on any Kelly output
	MinContracts     int     `yaml:"min_contracts"`
	MaxContracts     int     `yaml:"max_contracts"`
	DailyLossLimit   int64   `yaml:"daily_loss_limit"`   // cents
	MaxDrawdownPct   float64 `yaml:"max_drawdown_pct"`
	MaxPositionValue int64   `yaml:"max_position_value"` // cents
	MaxExposure      int64   `yaml:"max_exposure"`       // cents
	OrdersPerMinute  int     `yaml:"orders_per_minute"`
}

// APIConfig points the signed client at the exchange.
type APIConfig struct {
	BaseURL         string `yaml:"base_url"`
	CredentialsPath string `yaml:"credentials_path"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
}

// StorageConfig controls the trade ledger.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // SQLite file path, or ":memory:"
}

// StateConfig controls the flat risk-state snapshot.
type StateConfig struct {
	Path string `yaml:"path"`
}

// MetricsConfig controls the Prometheus endpoint. Empty addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig controls log format and level.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load reads the YAML config and the .env file if present. Environment
// variables override YAML values for the keys they cover.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Env-only deployments run without a YAML file.
	case err != nil:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// ScanInterval returns the normal cycle interval.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.Trading.IntervalSeconds) * time.Second
}

// ErrorInterval returns the shortened interval used after a failed cycle.
func (c *Config) ErrorInterval() time.Duration {
	return time.Duration(c.Trading.ErrorIntervalSeconds) * time.Second
}

// StaleOrderMaxAge returns the resting-order age limit, zero when disabled.
func (c *Config) StaleOrderMaxAge() time.Duration {
	return time.Duration(c.Trading.StaleOrderMaxAgeMins) * time.Minute
}

// applyEnvOverrides maps the documented environment surface onto the config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PAPER_TRADING"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Trading.PaperTrading = b
		}
	}
	if v, ok := envInt64("MAX_DAILY_LOSS"); ok {
		cfg.Risk.DailyLossLimit = v
	}
	if v, ok := envInt64("MAX_POSITION_VALUE"); ok {
		cfg.Risk.MaxPositionValue = v
	}
	if v, ok := envInt64("MAX_EXPOSURE"); ok {
		cfg.Risk.MaxExposure = v
	}
	if v, ok := envInt64("FEE_PER_CONTRACT"); ok {
		cfg.Trading.FeePerContract = int(v)
	}
	if v, ok := envInt64("MIN_PROFIT_CENTS"); ok {
		cfg.Trading.MinProfitCents = int(v)
	}
	if v := os.Getenv("RISK_PER_TRADE_PCT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Risk.RiskPerTradePct = f
		}
	}
	if v := os.Getenv("KALSHI_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("KALSHI_CONFIG_PATH"); v != "" {
		cfg.API.CredentialsPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func envInt64(key string) (int64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// setDefaults fills every required value with a sensible default.
func setDefaults(cfg *Config) {
	if cfg.Trading.IntervalSeconds <= 0 {
		cfg.Trading.IntervalSeconds = 300
	}
	if cfg.Trading.ErrorIntervalSeconds <= 0 {
		cfg.Trading.ErrorIntervalSeconds = 60
	}
	if cfg.Trading.PaperBalanceCents <= 0 {
		cfg.Trading.PaperBalanceCents = 100_000 // $1000
	}
	if cfg.Trading.MarketLimit <= 0 {
		cfg.Trading.MarketLimit = 100
	}
	if cfg.Trading.MaxMarketsPerCycle <= 0 {
		cfg.Trading.MaxMarketsPerCycle = 5
	}
	if cfg.Trading.MinVolume <= 0 {
		cfg.Trading.MinVolume = 1000
	}
	if cfg.Trading.FeePerContract <= 0 {
		cfg.Trading.FeePerContract = 2
	}
	if cfg.Trading.MinProfitCents <= 0 {
		cfg.Trading.MinProfitCents = 1
	}
	if cfg.Risk.RiskPerTradePct <= 0 {
		cfg.Risk.RiskPerTradePct = 0.01
	}
	if cfg.Risk.MaxRiskFraction <= 0 {
		cfg.Risk.MaxRiskFraction = 0.05
	}
	if cfg.Risk.MinContracts <= 0 {
		cfg.Risk.MinContracts = 1
	}
	if cfg.Risk.MaxContracts <= 0 {
		cfg.Risk.MaxContracts = 100
	}
	if cfg.Risk.DailyLossLimit <= 0 {
		cfg.Risk.DailyLossLimit = 5000 // $50
	}
	if cfg.Risk.MaxDrawdownPct <= 0 {
		cfg.Risk.MaxDrawdownPct = 0.10
	}
	if cfg.Risk.MaxPositionValue <= 0 {
		cfg.Risk.MaxPositionValue = 10_000 // $100
	}
	if cfg.Risk.MaxExposure <= 0 {
		cfg.Risk.MaxExposure = 5000 // $50
	}
	if cfg.Risk.OrdersPerMinute <= 0 {
		cfg.Risk.OrdersPerMinute = 10
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "https://api.elections.kalshi.com/v1"
	}
	if cfg.API.CredentialsPath == "" {
		cfg.API.CredentialsPath = "kalshi-config.secret.json"
	}
	if cfg.API.TimeoutSeconds <= 0 {
		cfg.API.TimeoutSeconds = 30
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "kalshibot.db"
	}
	if cfg.State.Path == "" {
		cfg.State.Path = "bot_state.json"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
