package ports

import (
	"context"

	"github.com/alejandrodnm/kalshibot/internal/domain"
)

// TradeLedger persists the order/fill history for reporting. Writes are
// best-effort: a ledger failure is logged and never stops the trading loop.
type TradeLedger interface {
	SaveOrder(ctx context.Context, order domain.Order) error
	UpdateOrderStatus(ctx context.Context, localID string, status domain.OrderStatus) error
	SaveFill(ctx context.Context, fill domain.Fill) error
	GetOrdersByPair(ctx context.Context, pairID string) ([]domain.Order, error)
	UpsertDailySummary(ctx context.Context, summary domain.DailySummary) error
	Close() error
}

// StateStore persists the flat snapshot of the mutable risk counters.
type StateStore interface {
	// Load returns the persisted snapshot, or the documented default state
	// (plus a logged warning) when the file is missing or corrupt. It
	// never fails startup.
	Load() domain.Snapshot

	// Save writes the snapshot atomically (write-then-replace).
	Save(snapshot domain.Snapshot) error
}

// Notifier reports the result of each trading cycle.
type Notifier interface {
	Notify(ctx context.Context, report domain.CycleReport) error
}
