package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/kalshibot/internal/domain"
)

func newTestLedger(t *testing.T) *SQLiteLedger {
	t.Helper()
	ledger, err := NewSQLiteLedger(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })
	return ledger
}

func testOrder(id, pairID string, side domain.Side) domain.Order {
	return domain.Order{
		ID:         id,
		ExchangeID: "ex-" + id,
		MarketID:   "FED-25DEC",
		Side:       side,
		Price:      45,
		Quantity:   10,
		Status:     domain.StatusPending,
		PairID:     pairID,
		PlacedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSQLiteLedger_SaveAndFetchPair(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	buy := testOrder("o1", "pair-1", domain.SideYes)
	hedge := testOrder("o2", "pair-1", domain.SideNo)
	hedge.Price = 48
	hedge.PlacedAt = buy.PlacedAt.Add(time.Second)

	require.NoError(t, ledger.SaveOrder(ctx, buy))
	require.NoError(t, ledger.SaveOrder(ctx, hedge))

	got, err := ledger.GetOrdersByPair(ctx, "pair-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "o1", got[0].ID)
	assert.Equal(t, domain.SideYes, got[0].Side)
	assert.Equal(t, 48, got[1].Price)
}

func TestSQLiteLedger_UpdateOrderStatus(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.SaveOrder(ctx, testOrder("o1", "pair-1", domain.SideYes)))
	require.NoError(t, ledger.UpdateOrderStatus(ctx, "o1", domain.StatusFilled))

	got, err := ledger.GetOrdersByPair(ctx, "pair-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.StatusFilled, got[0].Status)
}

func TestSQLiteLedger_SaveFill(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	err := ledger.SaveFill(ctx, domain.Fill{
		OrderID:  "o1",
		Price:    45,
		Quantity: 10,
		FilledAt: time.Now().UTC(),
	})
	assert.NoError(t, err)
}

func TestSQLiteLedger_DailySummaryAccumulates(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	day := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, ledger.UpsertDailySummary(ctx, domain.DailySummary{
		Date: day, Cycles: 1, OrdersPlaced: 2, Fills: 1, NetPnL: 30, EndingBalance: 99_970,
	}))
	// Later cycle the same day: counters add up, point-in-time values replace.
	require.NoError(t, ledger.UpsertDailySummary(ctx, domain.DailySummary{
		Date: day.Add(2 * time.Hour), Cycles: 1, OrdersPlaced: 4, Fills: 3, NetPnL: 90, EndingBalance: 100_030,
	}))

	var cycles, placed, fills int
	var pnl, balance int64
	err := ledger.db.QueryRowContext(ctx, `
		SELECT cycles, orders_placed, fills, net_pnl, ending_balance
		FROM daily_summary WHERE date=?`, "2026-03-01").
		Scan(&cycles, &placed, &fills, &pnl, &balance)
	require.NoError(t, err)

	assert.Equal(t, 2, cycles)
	assert.Equal(t, 6, placed)
	assert.Equal(t, 4, fills)
	assert.Equal(t, int64(90), pnl)
	assert.Equal(t, int64(100_030), balance)
}
