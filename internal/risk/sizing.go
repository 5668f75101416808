package risk

import (
	"math"

	"github.com/alejandrodnm/kalshibot/internal/domain"
)

// SizerConfig holds the bankroll-growth sizing parameters.
type SizerConfig struct {
	UseKelly        bool
	RiskPerTradePct float64 // fixed-pct mode
	MaxRiskFraction float64 // hard cap regardless of Kelly's raw output
	MinContracts    int
	MaxContracts    int
}

// Sizer converts an accepted opportunity into a bounded contract count.
// A return of zero means "do not trade"; it is never an error.
type Sizer struct {
	cfg SizerConfig
}

// NewSizer builds a sizer.
func NewSizer(cfg SizerConfig) *Sizer {
	if cfg.MaxRiskFraction <= 0 {
		cfg.MaxRiskFraction = 0.05
	}
	if cfg.MinContracts <= 0 {
		cfg.MinContracts = 1
	}
	if cfg.MaxContracts <= 0 {
		cfg.MaxContracts = 100
	}
	return &Sizer{cfg: cfg}
}

// Contracts sizes a position for the given balance (cents) and opportunity.
//
// Kelly mode: odds = avgWin/avgLoss, f = (odds*p - (1-p)) / odds, halved for
// safety and hard-capped at MaxRiskFraction. The win probability is derived
// conservatively from the edge: p = 0.5 + edge/2. A non-positive raw Kelly
// fraction sizes to zero.
func (s *Sizer) Contracts(balanceCents int64, opp domain.Opportunity) int {
	if balanceCents <= 0 || opp.BuyPrice <= 0 {
		return 0
	}

	avgWin := float64(opp.NetProfit)
	avgLoss := float64(opp.BuyPrice) // max loss: the contract price
	if avgWin <= 0 || avgLoss <= 0 {
		return 0
	}

	fraction := s.cfg.RiskPerTradePct
	if s.cfg.UseKelly {
		p := 0.5 + opp.Edge()/2
		kelly := KellyFraction(p, avgWin, avgLoss)
		if kelly <= 0 {
			return 0
		}
		fraction = kelly * 0.5 // half-Kelly
	}
	if fraction > s.cfg.MaxRiskFraction {
		fraction = s.cfg.MaxRiskFraction
	}

	refPrice := float64(opp.BuyPrice)
	contracts := int(math.Floor(float64(balanceCents) * fraction / refPrice))

	// Below the minimum means the edge doesn't support a trade at all;
	// rounding up would break the risk-fraction invariant.
	if contracts < s.cfg.MinContracts {
		return 0
	}
	if contracts > s.cfg.MaxContracts {
		contracts = s.cfg.MaxContracts
	}
	return contracts
}

// KellyFraction is the raw Kelly criterion f* = (odds*p - (1-p)) / odds with
// odds = avgWin/avgLoss. Callers apply their own safety multiplier and caps.
func KellyFraction(winProb, avgWin, avgLoss float64) float64 {
	if avgWin <= 0 || avgLoss <= 0 {
		return 0
	}
	odds := avgWin / avgLoss
	return (odds*winProb - (1 - winProb)) / odds
}
