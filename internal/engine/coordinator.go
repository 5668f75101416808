package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/kalshibot/internal/domain"
	"github.com/alejandrodnm/kalshibot/internal/ports"
)

// Coordinator places the two legs of a paired trade and owns compensation
// when the second leg fails after the first succeeded.
type Coordinator struct {
	executor ports.OrderExecutor
}

// NewCoordinator creates a Coordinator over the given executor.
func NewCoordinator(executor ports.OrderExecutor) *Coordinator {
	return &Coordinator{executor: executor}
}

// Pair is a successfully placed buy+hedge order pair.
type Pair struct {
	ID    string
	Buy   domain.Order
	Hedge domain.Order
}

// PlacePair places the buy leg at the opportunity's buy price, then the hedge
// leg on the opposite side at exactly 100 minus the sell price.
//
// If the hedge leg fails, the buy leg is cancelled and the cancellation is
// verified by re-querying its status. An unverifiable cancel returns a
// CoordinationError: an unconfirmed naked leg must never be assumed closed.
func (c *Coordinator) PlacePair(ctx context.Context, opp domain.Opportunity, contracts int) (Pair, error) {
	pairID := uuid.New().String()
	now := time.Now().UTC()

	buyReq := domain.PlaceOrderRequest{
		MarketID:  opp.Market.ID,
		Side:      opp.Side,
		Price:     opp.BuyPrice,
		Quantity:  contracts,
		OrderType: "limit",
	}
	buyPlaced, err := c.executor.PlaceOrder(ctx, buyReq)
	if err != nil {
		return Pair{}, fmt.Errorf("coordinator: place buy leg: %w", err)
	}

	hedgeReq := domain.PlaceOrderRequest{
		MarketID:  opp.Market.ID,
		Side:      opp.Side.Opposite(),
		Price:     opp.HedgePrice(),
		Quantity:  contracts,
		OrderType: "limit",
	}
	hedgePlaced, err := c.executor.PlaceOrder(ctx, hedgeReq)
	if err != nil {
		slog.Warn("coordinator: hedge leg failed, cancelling buy leg",
			"market", opp.Market.ID,
			"buy_order", buyPlaced.ExchangeID,
			"err", err,
		)
		if compErr := c.cancelVerified(ctx, buyPlaced.ExchangeID); compErr != nil {
			return Pair{}, &domain.CoordinationError{
				MarketID:     opp.Market.ID,
				NakedOrderID: buyPlaced.ExchangeID,
				Reason:       "hedge leg failed and buy-leg cancellation unconfirmed",
				Err:          errors.Join(err, compErr),
			}
		}
		return Pair{}, fmt.Errorf("coordinator: place hedge leg (buy leg cancelled): %w", err)
	}

	buy := domain.Order{
		ID:         uuid.New().String(),
		ExchangeID: buyPlaced.ExchangeID,
		MarketID:   opp.Market.ID,
		Side:       buyReq.Side,
		Price:      buyReq.Price,
		Quantity:   contracts,
		Status:     domain.StatusPending,
		PairID:     pairID,
		PlacedAt:   now,
	}
	hedge := domain.Order{
		ID:         uuid.New().String(),
		ExchangeID: hedgePlaced.ExchangeID,
		MarketID:   opp.Market.ID,
		Side:       hedgeReq.Side,
		Price:      hedgeReq.Price,
		Quantity:   contracts,
		Status:     domain.StatusPending,
		PairID:     pairID,
		PlacedAt:   now,
	}

	slog.Info("coordinator: placed order pair",
		"market", opp.Market.ID,
		"side", opp.Side,
		"buy_price", buy.Price,
		"hedge_price", hedge.Price,
		"contracts", contracts,
		"expected_profit_cents", int64(opp.NetProfit)*int64(contracts),
	)

	return Pair{ID: pairID, Buy: buy, Hedge: hedge}, nil
}

// CancelVerified cancels an order and confirms the terminal state.
func (c *Coordinator) CancelVerified(ctx context.Context, exchangeID string) error {
	return c.cancelVerified(ctx, exchangeID)
}

// cancelVerified requests cancellation and re-queries the order until it
// reports a terminal state. A filled order during compensation is not an
// error here; the caller reconciles the fill normally.
func (c *Coordinator) cancelVerified(ctx context.Context, exchangeID string) error {
	if err := c.executor.CancelOrder(ctx, exchangeID); err != nil {
		return fmt.Errorf("cancel request failed: %w", err)
	}

	order, err := c.executor.GetOrder(ctx, exchangeID)
	if err != nil {
		return fmt.Errorf("cancel verification failed: %w", err)
	}
	if !order.Status.Terminal() {
		return fmt.Errorf("order %s still %s after cancel", exchangeID, order.Status)
	}
	return nil
}
