// Package scanner pulls tradable markets and turns them into fee-aware
// trading opportunities.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/alejandrodnm/kalshibot/internal/domain"
	"github.com/alejandrodnm/kalshibot/internal/ports"
)

// Config controls market selection.
type Config struct {
	MarketLimit int    // markets requested from the exchange
	MinVolume   int    // liquidity floor
	TopMarkets  int    // best markets kept per cycle
	Status      string // market status filter
}

// DefaultConfig returns production selection parameters.
func DefaultConfig() Config {
	return Config{
		MarketLimit: 100,
		MinVolume:   1000,
		TopMarkets:  10,
		Status:      "open",
	}
}

// Scanner finds liquid markets worth analyzing.
type Scanner struct {
	cfg     Config
	markets ports.MarketProvider
}

// New creates a Scanner.
func New(cfg Config, markets ports.MarketProvider) *Scanner {
	if cfg.MarketLimit <= 0 {
		cfg.MarketLimit = 100
	}
	if cfg.TopMarkets <= 0 {
		cfg.TopMarkets = 10
	}
	if cfg.Status == "" {
		cfg.Status = "open"
	}
	return &Scanner{cfg: cfg, markets: markets}
}

// Scan returns the most liquid open markets, best volume first.
func (s *Scanner) Scan(ctx context.Context) ([]domain.Market, error) {
	markets, err := s.markets.GetMarkets(ctx, s.cfg.MarketLimit, s.cfg.Status)
	if err != nil {
		return nil, fmt.Errorf("scanner: list markets: %w", err)
	}

	liquid := make([]domain.Market, 0, len(markets))
	for _, m := range markets {
		if m.Volume <= s.cfg.MinVolume {
			continue
		}
		liquid = append(liquid, m)
	}

	sort.Slice(liquid, func(i, j int) bool {
		return liquid[i].Volume > liquid[j].Volume
	})

	if len(liquid) > s.cfg.TopMarkets {
		liquid = liquid[:s.cfg.TopMarkets]
	}

	slog.Debug("scanner: scan complete",
		"fetched", len(markets),
		"liquid", len(liquid),
		"min_volume", s.cfg.MinVolume,
	)
	return liquid, nil
}
