package ports

import (
	"context"

	"github.com/alejandrodnm/kalshibot/internal/domain"
)

// MarketProvider fetches tradable markets. Responses are untrusted: providers
// validate field-by-field and drop records that don't parse.
type MarketProvider interface {
	// GetMarkets lists up to limit markets with the given status. A
	// malformed response degrades to an empty slice, not an error.
	GetMarkets(ctx context.Context, limit int, status string) ([]domain.Market, error)

	// GetMarket fetches one market by ID.
	GetMarket(ctx context.Context, marketID string) (domain.Market, error)
}

// AccountProvider reads account balance and holdings.
type AccountProvider interface {
	// GetBalance returns available cash in cents. A missing or empty
	// response degrades to a zeroed balance, not an error.
	GetBalance(ctx context.Context) (domain.Balance, error)

	// GetPositions returns current holdings.
	GetPositions(ctx context.Context) ([]domain.PositionRecord, error)
}

// OrderExecutor places, cancels, and monitors orders.
type OrderExecutor interface {
	// PlaceOrder submits a single order leg.
	PlaceOrder(ctx context.Context, req domain.PlaceOrderRequest) (domain.PlacedOrder, error)

	// CancelOrder cancels an order by its exchange ID. A nil return means
	// the cancel request was accepted, not that the order is cancelled;
	// callers must verify via GetOrder.
	CancelOrder(ctx context.Context, exchangeID string) error

	// GetOrder returns the current status of an order.
	GetOrder(ctx context.Context, exchangeID string) (domain.Order, error)

	// GetOpenOrders returns all resting orders for this account.
	GetOpenOrders(ctx context.Context) ([]domain.Order, error)
}
