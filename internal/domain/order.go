package domain

import (
	"fmt"
	"time"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusFilled    OrderStatus = "filled"
	StatusCancelled OrderStatus = "cancelled"
	StatusFailed    OrderStatus = "failed"
)

// Terminal reports whether the status is final.
func (s OrderStatus) Terminal() bool {
	return s == StatusFilled || s == StatusCancelled || s == StatusFailed
}

// Order is one leg placed on the exchange. ID is a local UUID used for ledger
// reconciliation; ExchangeID is assigned by the exchange.
type Order struct {
	ID         string
	ExchangeID string
	MarketID   string
	Side       Side
	Price      int // cents [1,99]
	Quantity   int
	Status     OrderStatus
	PairID     string // links the two legs of a paired trade
	PlacedAt   time.Time
}

// Value is the capital at risk on this order, in cents.
func (o Order) Value() int64 {
	return int64(o.Price) * int64(o.Quantity)
}

// Fill is a confirmed execution of an order.
type Fill struct {
	OrderID  string
	Price    int
	Quantity int
	FilledAt time.Time
}

// PlaceOrderRequest is sent to the exchange order endpoint.
type PlaceOrderRequest struct {
	MarketID  string
	Side      Side
	Price     int // cents [1,99]
	Quantity  int
	OrderType string // "limit" or "market"
}

// Validate checks the request against exchange constraints before any
// network call is made.
func (r PlaceOrderRequest) Validate() error {
	if r.MarketID == "" {
		return fmt.Errorf("order: market id is empty")
	}
	if !r.Side.Valid() {
		return fmt.Errorf("order: invalid side %q", r.Side)
	}
	if !validPrice(r.Price) {
		return fmt.Errorf("order: price %d outside [%d,%d] cents", r.Price, MinPriceCents, MaxPriceCents)
	}
	if r.Quantity <= 0 {
		return fmt.Errorf("order: quantity %d must be positive", r.Quantity)
	}
	if r.OrderType != "limit" && r.OrderType != "market" {
		return fmt.Errorf("order: invalid order type %q", r.OrderType)
	}
	return nil
}

// PlacedOrder is the exchange's answer to a placement request.
type PlacedOrder struct {
	ExchangeID string
	Status     OrderStatus
}

// Balance is the account cash snapshot, in cents.
type Balance struct {
	CashCents int64
}

// PositionRecord is one holding reported by the portfolio endpoint.
type PositionRecord struct {
	MarketID  string
	Side      Side
	Quantity  int
	AvgPrice  int
}

// DailySummary is the per-day ledger row written after each cycle.
type DailySummary struct {
	Date            time.Time
	Cycles          int
	OrdersPlaced    int
	OrdersCancelled int
	OrdersFailed    int
	Fills           int
	PairsCompleted  int
	NetPnL          int64
	EndingBalance   int64
	NetExposure     int64
}

// CycleReport is everything one trading cycle produced, for the notifier.
type CycleReport struct {
	ScannedMarkets  int
	Opportunities   []Opportunity
	OrdersPlaced    int
	OrdersCancelled int
	PairsPlaced     int
	NewFills        int
	PairsCompleted  int
	Blocked         []string
	Alerts          []string
	BalanceCents    int64
	DailyPnL        int64
	NetExposure     int64
	PaperTrading    bool
	Duration        time.Duration
}
