package risk

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/kalshibot/internal/domain"
)

func testBreakerConfig() BreakerConfig {
	return BreakerConfig{
		DailyLossLimit:   5000,
		MaxDrawdownPct:   0.10,
		MaxPositionValue: 10000,
		OrdersPerMinute:  10,
	}
}

func requireGate(t *testing.T, err error, substr string) {
	t.Helper()
	var riskErr *domain.RiskLimitError
	require.True(t, errors.As(err, &riskErr), "want RiskLimitError, got %v", err)
	assert.Contains(t, riskErr.Reason, substr)
}

func TestCircuitBreaker_AllowsNormalTrade(t *testing.T) {
	b := NewCircuitBreaker(testBreakerConfig())
	assert.NoError(t, b.CheckTrade(100_000, 5000))
}

func TestCircuitBreaker_DailyLossLimit(t *testing.T) {
	b := NewCircuitBreaker(testBreakerConfig())

	b.RecordPnL(-5000)
	assert.NoError(t, b.CheckTrade(100_000, 100), "loss at the limit still trades")

	b.RecordPnL(-1)
	requireGate(t, b.CheckTrade(100_000, 100), "daily loss")
}

func TestCircuitBreaker_BlockStaysUntilReset(t *testing.T) {
	b := NewCircuitBreaker(testBreakerConfig())
	b.RecordPnL(-6000)

	// Once tripped, every trade that day is rejected, winners included.
	for i := 0; i < 3; i++ {
		requireGate(t, b.CheckTrade(100_000, 100), "daily loss")
	}

	b.ResetDaily()
	assert.NoError(t, b.CheckTrade(100_000, 100))
	assert.Equal(t, int64(0), b.DailyPnL())
	assert.False(t, b.LastReset().IsZero())
}

func TestCircuitBreaker_Drawdown(t *testing.T) {
	b := NewCircuitBreaker(testBreakerConfig())

	require.NoError(t, b.CheckTrade(100_000, 100)) // peak = 100_000
	assert.NoError(t, b.CheckTrade(90_000, 100), "10% drawdown is at the limit")
	requireGate(t, b.CheckTrade(89_999, 100), "drawdown")
}

func TestCircuitBreaker_PositionValue(t *testing.T) {
	b := NewCircuitBreaker(testBreakerConfig())

	assert.NoError(t, b.CheckTrade(100_000, 10_000))
	requireGate(t, b.CheckTrade(100_000, 10_001), "position too large")
}

func TestCircuitBreaker_OrderRateWindow(t *testing.T) {
	b := NewCircuitBreaker(testBreakerConfig())

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	for i := 0; i < 10; i++ {
		b.RecordOrder()
	}
	requireGate(t, b.CheckTrade(100_000, 100), "rate limit")

	// Orders age out of the 60s window.
	now = now.Add(61 * time.Second)
	assert.NoError(t, b.CheckTrade(100_000, 100))
}

func TestCircuitBreaker_RestoreExportRoundtrip(t *testing.T) {
	b := NewCircuitBreaker(testBreakerConfig())
	b.RecordPnL(-1234)
	b.RecordOrder()

	state := b.Export()

	b2 := NewCircuitBreaker(testBreakerConfig())
	b2.Restore(state)
	assert.Equal(t, int64(-1234), b2.DailyPnL())
}
