package scanner

import (
	"log/slog"
	"time"

	"github.com/alejandrodnm/kalshibot/internal/domain"
)

// Analyzer computes the fee-aware edge for one market snapshot.
//
// A side is actionable only when its spread covers both legs' fees plus the
// configured minimum profit: spread >= 2*fee + minProfit. Markets below the
// threshold or with unusable quotes are skipped silently; they are the normal
// case, not errors.
type Analyzer struct {
	feePerContract int // cents per side
	minProfitCents int
}

// NewAnalyzer creates an Analyzer. Fees default to the unverified 2c/contract
// estimate and should come from config.
func NewAnalyzer(feePerContract, minProfitCents int) *Analyzer {
	if feePerContract <= 0 {
		feePerContract = 2
	}
	if minProfitCents <= 0 {
		minProfitCents = 1
	}
	return &Analyzer{feePerContract: feePerContract, minProfitCents: minProfitCents}
}

// MinSpread is the smallest actionable spread in cents.
func (a *Analyzer) MinSpread() int {
	return 2*a.feePerContract + a.minProfitCents
}

// maxComplementSkew bounds how far yes_ask + no_bid may drift from the 100c
// settlement identity before the book is considered inconsistent.
const maxComplementSkew = 5

// Analyze checks both sides of the market independently and returns the first
// actionable opportunity, YES side first. ok is false when neither side
// clears the threshold.
func (a *Analyzer) Analyze(m domain.Market) (domain.Opportunity, bool) {
	if !a.quotesConsistent(m) {
		return domain.Opportunity{}, false
	}
	if opp, ok := a.analyzeSide(m, domain.SideYes); ok {
		return opp, true
	}
	return a.analyzeSide(m, domain.SideNo)
}

// quotesConsistent rejects books whose two sides disagree about the price of
// the same outcome. A skewed book usually means a stale or erroring feed, and
// a pair placed against it hedges nothing.
func (a *Analyzer) quotesConsistent(m domain.Market) bool {
	if !m.HasYesQuote() || !m.HasNoQuote() {
		return true // one-sided data is handled per side
	}
	skew := m.YesAsk + m.NoBid - domain.PairCents
	if skew < 0 {
		skew = -skew
	}
	if skew > maxComplementSkew {
		slog.Debug("analyzer: inconsistent complementary quotes, skipping",
			"market", m.ID, "yes_ask", m.YesAsk, "no_bid", m.NoBid)
		return false
	}
	return true
}

func (a *Analyzer) analyzeSide(m domain.Market, side domain.Side) (domain.Opportunity, bool) {
	bid, ask := m.Quotes(side)
	if side == domain.SideYes && !m.HasYesQuote() {
		return domain.Opportunity{}, false
	}
	if side == domain.SideNo && !m.HasNoQuote() {
		return domain.Opportunity{}, false
	}

	spread := ask - bid
	if spread < a.MinSpread() {
		return domain.Opportunity{}, false
	}

	feeTotal := 2 * a.feePerContract
	opp := domain.Opportunity{
		Market:    m,
		Side:      side,
		BuyPrice:  bid,
		SellPrice: ask,
		Spread:    spread,
		FeeTotal:  feeTotal,
		NetProfit: spread - feeTotal,
		ScannedAt: time.Now().UTC(),
	}

	// The hedge leg must land inside the tradable band or the pair can't
	// be placed.
	hedge := opp.HedgePrice()
	if hedge < domain.MinPriceCents || hedge > domain.MaxPriceCents {
		slog.Debug("analyzer: hedge price out of band, skipping",
			"market", m.ID, "side", side, "hedge", hedge)
		return domain.Opportunity{}, false
	}

	return opp, true
}
