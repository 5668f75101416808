package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/kalshibot/config"
	"github.com/alejandrodnm/kalshibot/internal/adapters/kalshi"
	"github.com/alejandrodnm/kalshibot/internal/adapters/notify"
	"github.com/alejandrodnm/kalshibot/internal/adapters/state"
	"github.com/alejandrodnm/kalshibot/internal/adapters/storage"
	"github.com/alejandrodnm/kalshibot/internal/engine"
	"github.com/alejandrodnm/kalshibot/internal/metrics"
	"github.com/alejandrodnm/kalshibot/internal/ports"
	"github.com/alejandrodnm/kalshibot/internal/risk"
	"github.com/alejandrodnm/kalshibot/internal/scanner"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one trading cycle and exit")
	paper := flag.Bool("paper", false, "force paper trading regardless of config")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full opportunity table (default: compact 1-line)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *paper {
		cfg.Trading.PaperTrading = true
	}
	setupLogger(cfg.Log)

	slog.Info("kalshibot starting",
		"config", *configPath,
		"interval", cfg.ScanInterval(),
		"paper_trading", cfg.Trading.PaperTrading,
		"once", *once,
	)

	client, err := kalshi.NewClient(
		cfg.API.BaseURL,
		cfg.API.CredentialsPath,
		time.Duration(cfg.API.TimeoutSeconds)*time.Second,
	)
	if err != nil {
		slog.Error("failed to build exchange client", "err", err)
		os.Exit(1)
	}

	ledger, err := storage.NewSQLiteLedger(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open trade ledger", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer ledger.Close()

	store := state.NewFileStore(cfg.State.Path)
	snap := store.Load()

	breaker := risk.NewCircuitBreaker(risk.BreakerConfig{
		DailyLossLimit:   cfg.Risk.DailyLossLimit,
		MaxDrawdownPct:   cfg.Risk.MaxDrawdownPct,
		MaxPositionValue: cfg.Risk.MaxPositionValue,
		OrdersPerMinute:  cfg.Risk.OrdersPerMinute,
	})
	breaker.Restore(snap.Account)

	inventory := risk.NewInventory(cfg.Risk.MaxExposure)
	inventory.Restore(snap.Inventory)

	sizer := risk.NewSizer(risk.SizerConfig{
		UseKelly:        !cfg.Risk.DisableKelly,
		RiskPerTradePct: cfg.Risk.RiskPerTradePct,
		MaxRiskFraction: cfg.Risk.MaxRiskFraction,
		MinContracts:    cfg.Risk.MinContracts,
		MaxContracts:    cfg.Risk.MaxContracts,
	})

	scanCfg := scanner.DefaultConfig()
	scanCfg.MarketLimit = cfg.Trading.MarketLimit
	scanCfg.MinVolume = cfg.Trading.MinVolume

	// Paper mode keeps scanning real markets but swaps order execution and
	// the account for the in-process simulator.
	var (
		executor ports.OrderExecutor   = client
		account  ports.AccountProvider = client
	)
	if cfg.Trading.PaperTrading {
		sim := engine.NewPaperExecutor(cfg.Trading.PaperBalanceCents)
		executor = sim
		account = sim
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	metrics.Serve(ctx, cfg.Metrics.Addr)

	eng := engine.New(engine.Config{
		Interval:           cfg.ScanInterval(),
		ErrorInterval:      cfg.ErrorInterval(),
		MaxMarketsPerCycle: cfg.Trading.MaxMarketsPerCycle,
		PaperTrading:       cfg.Trading.PaperTrading,
		StaleOrderMaxAge:   cfg.StaleOrderMaxAge(),
		Once:               *once,
	}, engine.Deps{
		Scanner:   scanner.New(scanCfg, client),
		Analyzer:  scanner.NewAnalyzer(cfg.Trading.FeePerContract, cfg.Trading.MinProfitCents),
		Sizer:     sizer,
		Breaker:   breaker,
		Inventory: inventory,
		Account:   account,
		Executor:  executor,
		State:     store,
		Ledger:    ledger,
		Notifier:  notify.NewConsole(*table),
	})

	if err := eng.Run(ctx); err != nil {
		slog.Error("engine exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("kalshibot stopped cleanly")
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
