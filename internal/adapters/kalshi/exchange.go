package kalshi

// exchange.go — typed endpoint wrappers implementing the exchange ports.
//
// Contract: APIError and NetworkError propagate to the caller of that one
// call; a malformed or empty body never does. Collection endpoints degrade to
// empty slices and the balance endpoint to a zeroed record, each with a
// logged warning.

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/alejandrodnm/kalshibot/internal/domain"
)

// GetExchangeStatus reports whether the exchange is operational.
func (c *Client) GetExchangeStatus(ctx context.Context) (string, error) {
	body, err := c.get(ctx, "/exchange/status", nil)
	if err != nil {
		return "", err
	}

	var resp exchangeStatusResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Status == "" {
		slog.Warn("kalshi: malformed exchange status response, assuming unknown")
		return "unknown", nil
	}
	return resp.Status, nil
}

// GetMarkets lists up to limit markets with the given status.
func (c *Client) GetMarkets(ctx context.Context, limit int, status string) ([]domain.Market, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("status", status)

	body, err := c.get(ctx, "/markets", q)
	if err != nil {
		return nil, err
	}

	var resp marketsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		slog.Warn("kalshi: malformed markets response, returning empty list", "err", err)
		return []domain.Market{}, nil
	}

	markets := make([]domain.Market, 0, len(resp.Markets))
	for _, rec := range resp.Markets {
		m, ok := rec.toDomain()
		if !ok {
			slog.Warn("kalshi: dropping market record without id")
			continue
		}
		markets = append(markets, m)
	}
	return markets, nil
}

// GetMarket fetches one market by ID.
func (c *Client) GetMarket(ctx context.Context, marketID string) (domain.Market, error) {
	body, err := c.get(ctx, "/markets/"+marketID, nil)
	if err != nil {
		return domain.Market{}, err
	}

	var rec marketRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		slog.Warn("kalshi: malformed market response", "market", marketID, "err", err)
		return domain.Market{ID: marketID}, nil
	}
	m, ok := rec.toDomain()
	if !ok {
		m = domain.Market{ID: marketID}
	}
	return m, nil
}

// GetBalance returns available cash in cents. Missing or empty responses
// degrade to a zeroed balance.
func (c *Client) GetBalance(ctx context.Context) (domain.Balance, error) {
	body, err := c.get(ctx, "/portfolio", nil)
	if err != nil {
		return domain.Balance{}, err
	}

	var resp portfolioResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Balance == nil || resp.Balance.Cash == nil {
		slog.Warn("kalshi: malformed portfolio response, returning zero balance")
		return domain.Balance{}, nil
	}
	return domain.Balance{CashCents: *resp.Balance.Cash}, nil
}

// GetPositions returns current holdings.
func (c *Client) GetPositions(ctx context.Context) ([]domain.PositionRecord, error) {
	body, err := c.get(ctx, "/portfolio/positions", nil)
	if err != nil {
		return nil, err
	}

	var resp positionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		slog.Warn("kalshi: malformed positions response, returning empty list", "err", err)
		return []domain.PositionRecord{}, nil
	}

	positions := make([]domain.PositionRecord, 0, len(resp.Positions))
	for _, rec := range resp.Positions {
		p, ok := rec.toDomain()
		if !ok {
			continue
		}
		positions = append(positions, p)
	}
	return positions, nil
}

// PlaceOrder validates the request locally and submits it. Placement is a
// POST and is never retried by the client; an ambiguous failure surfaces to
// the coordinator, which owns compensation.
func (c *Client) PlaceOrder(ctx context.Context, req domain.PlaceOrderRequest) (domain.PlacedOrder, error) {
	if err := req.Validate(); err != nil {
		return domain.PlacedOrder{}, err
	}

	body, err := c.post(ctx, "/orders", placeOrderRequest{
		MarketID: req.MarketID,
		Side:     string(req.Side),
		Price:    req.Price,
		Count:    req.Quantity,
		Type:     req.OrderType,
	})
	if err != nil {
		return domain.PlacedOrder{}, err
	}

	var resp orderResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Order.OrderID == "" {
		// The order may exist server-side even though we can't read the
		// answer. Surface it so the coordinator treats the leg as failed
		// and reconciles via open orders.
		return domain.PlacedOrder{}, fmt.Errorf("kalshi: unparseable place-order response: %s", string(body))
	}

	return domain.PlacedOrder{
		ExchangeID: resp.Order.OrderID,
		Status:     mapOrderStatus(resp.Order.Status),
	}, nil
}

// CancelOrder requests cancellation of an order. Callers must verify the
// terminal state via GetOrder.
func (c *Client) CancelOrder(ctx context.Context, exchangeID string) error {
	_, err := c.post(ctx, "/orders/"+exchangeID+"/cancel", nil)
	return err
}

// GetOrder returns the current state of one order.
func (c *Client) GetOrder(ctx context.Context, exchangeID string) (domain.Order, error) {
	body, err := c.get(ctx, "/orders/"+exchangeID, nil)
	if err != nil {
		return domain.Order{}, err
	}

	var resp orderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		slog.Warn("kalshi: malformed order response", "order", exchangeID, "err", err)
		return domain.Order{ExchangeID: exchangeID, Status: domain.StatusPending}, nil
	}
	o, ok := resp.Order.toDomain()
	if !ok {
		o = domain.Order{ExchangeID: exchangeID, Status: domain.StatusPending}
	}
	return o, nil
}

// GetOpenOrders returns all resting orders.
func (c *Client) GetOpenOrders(ctx context.Context) ([]domain.Order, error) {
	q := url.Values{}
	q.Set("status", "open")

	body, err := c.get(ctx, "/orders", q)
	if err != nil {
		return nil, err
	}

	var resp ordersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		slog.Warn("kalshi: malformed orders response, returning empty list", "err", err)
		return []domain.Order{}, nil
	}

	orders := make([]domain.Order, 0, len(resp.Orders))
	for _, rec := range resp.Orders {
		o, ok := rec.toDomain()
		if !ok {
			continue
		}
		orders = append(orders, o)
	}
	return orders, nil
}
