package kalshi

// types.go — wire records, one per endpoint, decoded in a single validating
// step. Every field is optional on the wire; records that fail validation are
// dropped with a warning instead of crashing a caller.

import (
	"log/slog"
	"time"

	"github.com/alejandrodnm/kalshibot/internal/domain"
)

type marketsResponse struct {
	Markets []marketRecord `json:"markets"`
}

type marketRecord struct {
	MarketID  string `json:"market_id"`
	Title     string `json:"title"`
	YesBid    *int   `json:"yes_bid"`
	YesAsk    *int   `json:"yes_ask"`
	NoBid     *int   `json:"no_bid"`
	NoAsk     *int   `json:"no_ask"`
	Volume    *int   `json:"volume"`
	Status    string `json:"status"`
	CloseTime string `json:"close_time"`
}

// toDomain validates the record field-by-field. Missing numeric fields
// default to zero, which downstream treats as "no quote"; a record without an
// ID is unusable and dropped.
func (r marketRecord) toDomain() (domain.Market, bool) {
	if r.MarketID == "" {
		return domain.Market{}, false
	}

	m := domain.Market{
		ID:     r.MarketID,
		Title:  r.Title,
		YesBid: intOr(r.YesBid, 0),
		YesAsk: intOr(r.YesAsk, 0),
		NoBid:  intOr(r.NoBid, 0),
		NoAsk:  intOr(r.NoAsk, 0),
		Volume: intOr(r.Volume, 0),
		Status: r.Status,
	}
	if r.CloseTime != "" {
		if t, err := time.Parse(time.RFC3339, r.CloseTime); err == nil {
			m.CloseTime = t
		}
	}
	return m, true
}

type portfolioResponse struct {
	Balance *balanceRecord `json:"balance"`
}

type balanceRecord struct {
	Cash *int64 `json:"cash"`
}

type positionsResponse struct {
	Positions []positionRecord `json:"positions"`
}

type positionRecord struct {
	MarketID string `json:"market_id"`
	Side     string `json:"side"`
	Count    *int   `json:"count"`
	AvgPrice *int   `json:"avg_price"`
}

func (r positionRecord) toDomain() (domain.PositionRecord, bool) {
	side := domain.Side(r.Side)
	if r.MarketID == "" || !side.Valid() {
		return domain.PositionRecord{}, false
	}
	return domain.PositionRecord{
		MarketID: r.MarketID,
		Side:     side,
		Quantity: intOr(r.Count, 0),
		AvgPrice: intOr(r.AvgPrice, 0),
	}, true
}

type ordersResponse struct {
	Orders []orderRecord `json:"orders"`
}

type orderResponse struct {
	Order orderRecord `json:"order"`
}

type orderRecord struct {
	OrderID   string `json:"order_id"`
	MarketID  string `json:"market_id"`
	Side      string `json:"side"`
	Price     *int   `json:"price"`
	Count     *int   `json:"count"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_time"`
}

func (r orderRecord) toDomain() (domain.Order, bool) {
	if r.OrderID == "" {
		return domain.Order{}, false
	}
	o := domain.Order{
		ExchangeID: r.OrderID,
		MarketID:   r.MarketID,
		Side:       domain.Side(r.Side),
		Price:      intOr(r.Price, 0),
		Quantity:   intOr(r.Count, 0),
		Status:     mapOrderStatus(r.Status),
	}
	if r.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
			o.PlacedAt = t
		}
	}
	return o, true
}

// mapOrderStatus folds the exchange's status vocabulary into ours.
func mapOrderStatus(s string) domain.OrderStatus {
	switch s {
	case "resting", "open", "pending":
		return domain.StatusPending
	case "executed", "filled":
		return domain.StatusFilled
	case "canceled", "cancelled":
		return domain.StatusCancelled
	case "error", "failed", "rejected":
		return domain.StatusFailed
	default:
		slog.Warn("kalshi: unknown order status", "status", s)
		return domain.StatusPending
	}
}

type placeOrderRequest struct {
	MarketID string `json:"market_id"`
	Side     string `json:"side"`
	Price    int    `json:"price"`
	Count    int    `json:"count"`
	Type     string `json:"type"`
}

type exchangeStatusResponse struct {
	Status string `json:"status"`
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
