package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/kalshibot/internal/domain"
)

func paperRequest() domain.PlaceOrderRequest {
	return domain.PlaceOrderRequest{
		MarketID: "FED-25DEC", Side: domain.SideYes, Price: 45, Quantity: 10, OrderType: "limit",
	}
}

func TestPaperExecutor_OrderLifecycle(t *testing.T) {
	p := NewPaperExecutor(100_000)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }
	ctx := context.Background()

	placed, err := p.PlaceOrder(ctx, paperRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, placed.Status)

	// Still resting before the fill delay.
	o, err := p.GetOrder(ctx, placed.ExchangeID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, o.Status)

	// Fills once it has rested long enough.
	now = now.Add(31 * time.Second)
	o, err = p.GetOrder(ctx, placed.ExchangeID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFilled, o.Status)

	open, err := p.GetOpenOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestPaperExecutor_CancelResting(t *testing.T) {
	p := NewPaperExecutor(100_000)
	ctx := context.Background()

	placed, err := p.PlaceOrder(ctx, paperRequest())
	require.NoError(t, err)

	require.NoError(t, p.CancelOrder(ctx, placed.ExchangeID))
	o, err := p.GetOrder(ctx, placed.ExchangeID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, o.Status)

	// Cancelling again is a no-op, unknown IDs are not.
	assert.NoError(t, p.CancelOrder(ctx, placed.ExchangeID))
	assert.Error(t, p.CancelOrder(ctx, "nope"))
}

func TestPaperExecutor_RejectsInvalidOrders(t *testing.T) {
	p := NewPaperExecutor(100_000)

	req := paperRequest()
	req.Price = 0
	_, err := p.PlaceOrder(context.Background(), req)
	assert.Error(t, err)
}

func TestPaperExecutor_PositionsAggregateFills(t *testing.T) {
	p := NewPaperExecutor(100_000)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }
	ctx := context.Background()

	a, err := p.PlaceOrder(ctx, paperRequest())
	require.NoError(t, err)
	b, err := p.PlaceOrder(ctx, paperRequest())
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = p.GetOrder(ctx, a.ExchangeID)
	require.NoError(t, err)
	_, err = p.GetOrder(ctx, b.ExchangeID)
	require.NoError(t, err)

	positions, err := p.GetPositions(ctx)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, 20, positions[0].Quantity)
	assert.Equal(t, domain.SideYes, positions[0].Side)

	bal, err := p.GetBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(100_000), bal.CashCents)
}
