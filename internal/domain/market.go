package domain

import "time"

// All prices in this package are integer cents. A binary market quotes two
// complementary outcomes whose prices always sum to 100 cents.

// Side is one of the two outcomes of a binary market.
type Side string

const (
	SideYes Side = "yes"
	SideNo  Side = "no"
)

// Opposite returns the complementary side.
func (s Side) Opposite() Side {
	if s == SideYes {
		return SideNo
	}
	return SideYes
}

// Valid reports whether s is one of the two known sides.
func (s Side) Valid() bool {
	return s == SideYes || s == SideNo
}

// Market is a snapshot of one binary market, fetched per scan cycle and
// discarded after use.
type Market struct {
	ID        string
	Title     string
	YesBid    int
	YesAsk    int
	NoBid     int
	NoAsk     int
	Volume    int
	Status    string
	CloseTime time.Time
}

// HasYesQuote reports whether the market has a usable two-sided YES quote.
func (m Market) HasYesQuote() bool {
	return validPrice(m.YesBid) && validPrice(m.YesAsk) && m.YesBid < m.YesAsk
}

// HasNoQuote reports whether the market has a usable two-sided NO quote.
func (m Market) HasNoQuote() bool {
	return validPrice(m.NoBid) && validPrice(m.NoAsk) && m.NoBid < m.NoAsk
}

// Quotes returns the bid/ask for the given side.
func (m Market) Quotes(side Side) (bid, ask int) {
	if side == SideYes {
		return m.YesBid, m.YesAsk
	}
	return m.NoBid, m.NoAsk
}

func validPrice(p int) bool {
	return p >= MinPriceCents && p <= MaxPriceCents
}

const (
	// MinPriceCents and MaxPriceCents bound every tradable contract price.
	MinPriceCents = 1
	MaxPriceCents = 99

	// PairCents is the settlement value of one YES+NO pair.
	PairCents = 100
)

// HedgePrice returns the price of the complementary leg for a leg at p cents.
// The identity yes + no == 100 must hold exactly: a YES leg at 52 is hedged by
// a NO leg at 48. Any off-by-one here silently erodes margin on every trade.
func HedgePrice(p int) int {
	return PairCents - p
}
