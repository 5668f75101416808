// Package risk holds the sizing rule and the two gates every trade must pass:
// the circuit breaker (account-level limits) and the inventory manager
// (directional exposure). Each gate exclusively owns its state; the trading
// loop is the single writer, so no locking is needed here.
package risk

import (
	"fmt"
	"time"

	"github.com/alejandrodnm/kalshibot/internal/domain"
)

const rateWindow = 60 * time.Second

// BreakerConfig holds the account-level limits.
type BreakerConfig struct {
	DailyLossLimit   int64   // cents
	MaxDrawdownPct   float64 // fraction of peak balance
	MaxPositionValue int64   // cents
	OrdersPerMinute  int
}

// CircuitBreaker owns AccountState and rejects trades that would breach a
// daily-loss, drawdown, position-value, or order-rate limit.
type CircuitBreaker struct {
	cfg   BreakerConfig
	state domain.AccountState
	now   func() time.Time
}

// NewCircuitBreaker builds a breaker with empty state.
func NewCircuitBreaker(cfg BreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{cfg: cfg, now: time.Now}
}

// Restore replaces the breaker's state with a persisted snapshot.
func (b *CircuitBreaker) Restore(state domain.AccountState) {
	b.state = state
	b.pruneWindow()
}

// Export returns the state for persistence.
func (b *CircuitBreaker) Export() domain.AccountState {
	return b.state
}

// CheckTrade evaluates the four limits in order and returns a RiskLimitError
// naming the first one breached. It also advances the peak balance, which is
// monotonically non-decreasing except on restore.
func (b *CircuitBreaker) CheckTrade(balance, positionValue int64) error {
	if b.state.StartBalance == 0 {
		b.state.StartBalance = balance
	}
	if balance > b.state.PeakBalance {
		b.state.PeakBalance = balance
	}

	if b.state.DailyPnL < -b.cfg.DailyLossLimit {
		return &domain.RiskLimitError{
			Gate:   "circuit_breaker",
			Reason: fmt.Sprintf("daily loss limit exceeded: $%.2f", float64(-b.state.DailyPnL)/100),
		}
	}

	if b.state.PeakBalance > 0 {
		drawdown := float64(b.state.PeakBalance-balance) / float64(b.state.PeakBalance)
		if drawdown > b.cfg.MaxDrawdownPct {
			return &domain.RiskLimitError{
				Gate:   "circuit_breaker",
				Reason: fmt.Sprintf("max drawdown exceeded: %.1f%%", drawdown*100),
			}
		}
	}

	if positionValue > b.cfg.MaxPositionValue {
		return &domain.RiskLimitError{
			Gate:   "circuit_breaker",
			Reason: fmt.Sprintf("position too large: $%.2f", float64(positionValue)/100),
		}
	}

	b.pruneWindow()
	if len(b.state.OrderTimes) >= b.cfg.OrdersPerMinute {
		return &domain.RiskLimitError{
			Gate:   "circuit_breaker",
			Reason: fmt.Sprintf("rate limit: %d orders in last minute", len(b.state.OrderTimes)),
		}
	}

	return nil
}

// RecordOrder records a placed order for rate limiting. Invoked only after
// the coordinator confirms placement.
func (b *CircuitBreaker) RecordOrder() {
	b.state.OrderTimes = append(b.state.OrderTimes, b.now())
	b.pruneWindow()
}

// RecordPnL adds a confirmed trade outcome to the daily P&L.
func (b *CircuitBreaker) RecordPnL(cents int64) {
	b.state.DailyPnL += cents
}

// ResetDaily clears the daily P&L and the order-timestamp window. The owning
// schedule calls this at the day boundary; it is never implicit.
func (b *CircuitBreaker) ResetDaily() {
	b.state.DailyPnL = 0
	b.state.OrderTimes = nil
	b.state.LastReset = b.now()
}

// DailyPnL returns the accumulated P&L since the last reset, in cents.
func (b *CircuitBreaker) DailyPnL() int64 { return b.state.DailyPnL }

// LastReset returns when the daily counters were last cleared.
func (b *CircuitBreaker) LastReset() time.Time { return b.state.LastReset }

func (b *CircuitBreaker) pruneWindow() {
	cutoff := b.now().Add(-rateWindow)
	kept := b.state.OrderTimes[:0]
	for _, t := range b.state.OrderTimes {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	b.state.OrderTimes = kept
}
