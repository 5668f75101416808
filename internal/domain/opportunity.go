package domain

import "time"

// Opportunity is a fee-aware spread edge on one side of a market, derived per
// market per scan cycle.
type Opportunity struct {
	Market    Market
	Side      Side
	BuyPrice  int // cents, where our bid rests
	SellPrice int // cents, where the book's ask sits
	Spread    int // SellPrice - BuyPrice
	FeeTotal  int // both legs: 2 * fee per contract
	NetProfit int // Spread - FeeTotal, per contract
	ScannedAt time.Time
}

// HedgePrice is the price at which the complementary leg must be quoted.
func (o Opportunity) HedgePrice() int {
	return HedgePrice(o.SellPrice)
}

// ProfitPct is the net profit relative to capital at risk on the buy leg.
func (o Opportunity) ProfitPct() float64 {
	if o.BuyPrice <= 0 {
		return 0
	}
	return float64(o.NetProfit) / float64(o.BuyPrice) * 100
}

// Edge is the net profit per cent of capital at risk, used as the win
// probability input for sizing.
func (o Opportunity) Edge() float64 {
	if o.BuyPrice <= 0 {
		return 0
	}
	return float64(o.NetProfit) / float64(o.BuyPrice)
}
