package engine

// paper.go — simulated executor for PAPER_TRADING mode.
//
// The paper executor sits behind the same ports as the real client, so the
// whole pipeline — gates, coordinator, reconciliation, state — runs unchanged.
// Orders rest for one cycle and then fill at their limit price.

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/kalshibot/internal/domain"
)

// PaperExecutor implements ports.OrderExecutor and ports.AccountProvider
// in-process. It is only touched by the trading loop, so no locking.
type PaperExecutor struct {
	balance   int64
	fillDelay time.Duration
	orders    map[string]*domain.Order
	now       func() time.Time
}

// NewPaperExecutor creates a simulated exchange with the given starting
// balance in cents.
func NewPaperExecutor(balanceCents int64) *PaperExecutor {
	return &PaperExecutor{
		balance:   balanceCents,
		fillDelay: 30 * time.Second,
		orders:    make(map[string]*domain.Order),
		now:       time.Now,
	}
}

// PlaceOrder accepts any valid order as resting.
func (p *PaperExecutor) PlaceOrder(_ context.Context, req domain.PlaceOrderRequest) (domain.PlacedOrder, error) {
	if err := req.Validate(); err != nil {
		return domain.PlacedOrder{}, err
	}

	id := "paper-" + uuid.New().String()
	p.orders[id] = &domain.Order{
		ExchangeID: id,
		MarketID:   req.MarketID,
		Side:       req.Side,
		Price:      req.Price,
		Quantity:   req.Quantity,
		Status:     domain.StatusPending,
		PlacedAt:   p.now(),
	}
	return domain.PlacedOrder{ExchangeID: id, Status: domain.StatusPending}, nil
}

// CancelOrder cancels a resting order. Cancelling a terminal order is a
// no-op, matching the exchange's idempotent cancel semantics.
func (p *PaperExecutor) CancelOrder(_ context.Context, exchangeID string) error {
	o, ok := p.orders[exchangeID]
	if !ok {
		return fmt.Errorf("paper: unknown order %s", exchangeID)
	}
	if o.Status == domain.StatusPending {
		o.Status = domain.StatusCancelled
	}
	return nil
}

// GetOrder returns the order, filling it once it has rested past the delay.
func (p *PaperExecutor) GetOrder(_ context.Context, exchangeID string) (domain.Order, error) {
	o, ok := p.orders[exchangeID]
	if !ok {
		return domain.Order{}, fmt.Errorf("paper: unknown order %s", exchangeID)
	}
	if o.Status == domain.StatusPending && p.now().Sub(o.PlacedAt) >= p.fillDelay {
		o.Status = domain.StatusFilled
	}
	return *o, nil
}

// GetOpenOrders returns all resting orders.
func (p *PaperExecutor) GetOpenOrders(_ context.Context) ([]domain.Order, error) {
	open := []domain.Order{}
	for _, o := range p.orders {
		if o.Status == domain.StatusPending {
			open = append(open, *o)
		}
	}
	return open, nil
}

// GetBalance returns the simulated cash balance.
func (p *PaperExecutor) GetBalance(_ context.Context) (domain.Balance, error) {
	return domain.Balance{CashCents: p.balance}, nil
}

// GetPositions aggregates filled orders per market and side.
func (p *PaperExecutor) GetPositions(_ context.Context) ([]domain.PositionRecord, error) {
	type key struct {
		market string
		side   domain.Side
	}
	agg := make(map[key]*domain.PositionRecord)
	for _, o := range p.orders {
		if o.Status != domain.StatusFilled {
			continue
		}
		k := key{o.MarketID, o.Side}
		rec, ok := agg[k]
		if !ok {
			rec = &domain.PositionRecord{MarketID: o.MarketID, Side: o.Side, AvgPrice: o.Price}
			agg[k] = rec
		}
		rec.Quantity += o.Quantity
	}

	positions := make([]domain.PositionRecord, 0, len(agg))
	for _, rec := range agg {
		positions = append(positions, *rec)
	}
	return positions, nil
}
