package storage

// sqlite.go — SQLite trade ledger.
//
// Tables:
//   orders         — every leg placed, local UUID + exchange ID
//   fills          — confirmed executions
//   daily_summary  — one row per UTC day, upserted after each cycle
//
// The ledger is reporting history only; the mutable risk counters live in the
// flat state snapshot. Writes are best-effort from the engine's point of view.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alejandrodnm/kalshibot/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
    id           TEXT PRIMARY KEY,   -- local UUID
    exchange_id  TEXT NOT NULL DEFAULT '',
    market_id    TEXT NOT NULL,
    side         TEXT NOT NULL,      -- yes / no
    price        INTEGER NOT NULL,   -- cents
    quantity     INTEGER NOT NULL,
    pair_id      TEXT NOT NULL,
    status       TEXT NOT NULL DEFAULT 'pending',
    placed_at    DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS orders_status ON orders(status);
CREATE INDEX IF NOT EXISTS orders_pair   ON orders(pair_id);

CREATE TABLE IF NOT EXISTS fills (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id  TEXT NOT NULL,
    price     INTEGER NOT NULL,
    quantity  INTEGER NOT NULL,
    filled_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS daily_summary (
    date             DATE PRIMARY KEY,
    cycles           INTEGER NOT NULL DEFAULT 0,
    orders_placed    INTEGER NOT NULL DEFAULT 0,
    orders_cancelled INTEGER NOT NULL DEFAULT 0,
    orders_failed    INTEGER NOT NULL DEFAULT 0,
    fills            INTEGER NOT NULL DEFAULT 0,
    pairs_completed  INTEGER NOT NULL DEFAULT 0,
    net_pnl          INTEGER NOT NULL DEFAULT 0,
    ending_balance   INTEGER NOT NULL DEFAULT 0,
    net_exposure     INTEGER NOT NULL DEFAULT 0
);
`

// SQLiteLedger implements ports.TradeLedger (pure Go driver, no CGo).
type SQLiteLedger struct {
	db *sql.DB
}

// NewSQLiteLedger opens (or creates) the database and applies the schema.
func NewSQLiteLedger(dsn string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteLedger: open %q: %w", dsn, err)
	}
	// SQLite is single-writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteLedger: apply schema: %w", err)
	}

	return &SQLiteLedger{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteLedger) Close() error {
	return s.db.Close()
}

// SaveOrder inserts or replaces an order row.
func (s *SQLiteLedger) SaveOrder(ctx context.Context, o domain.Order) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO orders
		  (id, exchange_id, market_id, side, price, quantity, pair_id, status, placed_at)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		o.ID, o.ExchangeID, o.MarketID, string(o.Side), o.Price, o.Quantity,
		o.PairID, string(o.Status), o.PlacedAt.UTC(),
	)
	return err
}

// UpdateOrderStatus updates only the status field.
func (s *SQLiteLedger) UpdateOrderStatus(ctx context.Context, localID string, status domain.OrderStatus) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status=? WHERE id=?`, string(status), localID)
	return err
}

// SaveFill appends a confirmed execution.
func (s *SQLiteLedger) SaveFill(ctx context.Context, f domain.Fill) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fills (order_id, price, quantity, filled_at)
		VALUES (?,?,?,?)`,
		f.OrderID, f.Price, f.Quantity, f.FilledAt.UTC(),
	)
	return err
}

// GetOrdersByPair returns both legs of a paired trade.
func (s *SQLiteLedger) GetOrdersByPair(ctx context.Context, pairID string) ([]domain.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, exchange_id, market_id, side, price, quantity, pair_id, status, placed_at
		FROM orders WHERE pair_id=? ORDER BY placed_at`, pairID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		var side, status string
		var placedAt time.Time
		if err := rows.Scan(&o.ID, &o.ExchangeID, &o.MarketID, &side, &o.Price,
			&o.Quantity, &o.PairID, &status, &placedAt); err != nil {
			return nil, err
		}
		o.Side = domain.Side(side)
		o.Status = domain.OrderStatus(status)
		o.PlacedAt = placedAt
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// UpsertDailySummary accumulates the cycle's counters into the day's row.
func (s *SQLiteLedger) UpsertDailySummary(ctx context.Context, d domain.DailySummary) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_summary
		  (date, cycles, orders_placed, orders_cancelled, orders_failed, fills,
		   pairs_completed, net_pnl, ending_balance, net_exposure)
		VALUES (?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(date) DO UPDATE SET
		  cycles           = cycles + excluded.cycles,
		  orders_placed    = orders_placed + excluded.orders_placed,
		  orders_cancelled = orders_cancelled + excluded.orders_cancelled,
		  orders_failed    = orders_failed + excluded.orders_failed,
		  fills            = fills + excluded.fills,
		  pairs_completed  = pairs_completed + excluded.pairs_completed,
		  net_pnl          = excluded.net_pnl,
		  ending_balance   = excluded.ending_balance,
		  net_exposure     = excluded.net_exposure`,
		d.Date.UTC().Format("2006-01-02"), d.Cycles, d.OrdersPlaced, d.OrdersCancelled,
		d.OrdersFailed, d.Fills, d.PairsCompleted, d.NetPnL, d.EndingBalance, d.NetExposure,
	)
	return err
}
