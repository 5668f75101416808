// Package engine runs the trading loop: scan, compute edges, size, pass the
// risk gates, place paired orders, reconcile fills, persist state.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/kalshibot/internal/domain"
	"github.com/alejandrodnm/kalshibot/internal/metrics"
	"github.com/alejandrodnm/kalshibot/internal/ports"
	"github.com/alejandrodnm/kalshibot/internal/risk"
	"github.com/alejandrodnm/kalshibot/internal/scanner"
)

// Config controls the loop cadence and trade caps.
type Config struct {
	Interval           time.Duration // normal cycle interval
	ErrorInterval      time.Duration // shortened interval after a failed cycle
	MaxMarketsPerCycle int
	PaperTrading       bool
	StaleOrderMaxAge   time.Duration // 0 disables stale-order rotation
	Once               bool          // run a single cycle and exit
}

// Deps are the engine's collaborators. The engine is the single writer of all
// risk state; everything else is called, never shared.
type Deps struct {
	Scanner   *scanner.Scanner
	Analyzer  *scanner.Analyzer
	Sizer     *risk.Sizer
	Breaker   *risk.CircuitBreaker
	Inventory *risk.Inventory
	Account   ports.AccountProvider
	Executor  ports.OrderExecutor
	State     ports.StateStore
	Ledger    ports.TradeLedger
	Notifier  ports.Notifier
}

// pendingPair is a placed pair awaiting fill confirmation.
type pendingPair struct {
	opp       domain.Opportunity
	contracts int
	buy       domain.Order
	hedge     domain.Order
}

// Engine orchestrates one market-making strategy over one exchange account.
type Engine struct {
	cfg   Config
	deps  Deps
	coord *Coordinator
	pairs map[string]*pendingPair
	now   func() time.Time
}

// New creates an Engine.
func New(cfg Config, deps Deps) *Engine {
	if cfg.Interval <= 0 {
		cfg.Interval = 300 * time.Second
	}
	if cfg.ErrorInterval <= 0 {
		cfg.ErrorInterval = 60 * time.Second
	}
	if cfg.MaxMarketsPerCycle <= 0 {
		cfg.MaxMarketsPerCycle = 5
	}
	return &Engine{
		cfg:   cfg,
		deps:  deps,
		coord: NewCoordinator(deps.Executor),
		pairs: make(map[string]*pendingPair),
		now:   time.Now,
	}
}

// Run executes trading cycles until the context is cancelled. A failed cycle
// shortens the next wait; it never stops the loop.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("engine starting",
		"interval", e.cfg.Interval,
		"paper_trading", e.cfg.PaperTrading,
		"max_markets_per_cycle", e.cfg.MaxMarketsPerCycle,
	)

	wait := e.cycle(ctx)
	if e.cfg.Once {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("engine stopped")
			return nil
		case <-timer.C:
			timer.Reset(e.cycle(ctx))
		}
	}
}

// cycle runs one iteration and returns the wait until the next one.
func (e *Engine) cycle(ctx context.Context) time.Duration {
	report, err := e.runCycle(ctx)
	if err != nil {
		metrics.CycleErrors.Inc()
		slog.Error("engine: cycle failed", "err", err)
		return e.cfg.ErrorInterval
	}

	metrics.Cycles.Inc()
	if err := e.deps.Notifier.Notify(ctx, report); err != nil {
		slog.Warn("engine: notifier error", "err", err)
	}
	e.writeDailySummary(ctx, report)
	return e.cfg.Interval
}

// runCycle is the pipeline: reset check, reconcile, scan, evaluate, gate,
// place, persist.
func (e *Engine) runCycle(ctx context.Context) (domain.CycleReport, error) {
	start := e.now()
	report := domain.CycleReport{PaperTrading: e.cfg.PaperTrading}

	e.maybeResetDaily()

	balance, err := e.deps.Account.GetBalance(ctx)
	if err != nil {
		return report, fmt.Errorf("engine: get balance: %w", err)
	}

	e.reconcile(ctx, &report)
	e.rotateStale(ctx, &report)

	markets, err := e.deps.Scanner.Scan(ctx)
	if err != nil {
		return report, err
	}
	report.ScannedMarkets = len(markets)

	traded := 0
	for _, m := range markets {
		if traded >= e.cfg.MaxMarketsPerCycle {
			break
		}

		opp, ok := e.deps.Analyzer.Analyze(m)
		if !ok {
			continue
		}
		report.Opportunities = append(report.Opportunities, opp)

		contracts := e.deps.Sizer.Contracts(balance.CashCents, opp)
		if contracts == 0 {
			// Negative or insufficient edge: not a trade, not an error.
			slog.Debug("engine: sizing returned zero", "market", m.ID)
			continue
		}
		positionValue := int64(opp.BuyPrice) * int64(contracts)

		if err := e.deps.Breaker.CheckTrade(balance.CashCents, positionValue); err != nil {
			e.recordBlocked(&report, "circuit_breaker", err)
			continue
		}
		if err := e.deps.Inventory.CanAddPosition(opp.Side, contracts, opp.BuyPrice); err != nil {
			e.recordBlocked(&report, "inventory", err)
			continue
		}

		pair, err := e.coord.PlacePair(ctx, opp, contracts)
		if err != nil {
			var coordErr *domain.CoordinationError
			if errors.As(err, &coordErr) {
				metrics.CoordinationAlerts.Inc()
				report.Alerts = append(report.Alerts, coordErr.Error())
				slog.Error("engine: manual intervention required", "err", coordErr)
			} else {
				slog.Warn("engine: pair placement failed", "market", m.ID, "err", err)
			}
			metrics.OrdersFailed.Inc()
			continue
		}

		e.trackPair(ctx, opp, contracts, pair, &report)
		traded++
	}

	e.saveState()

	_, _, net := e.deps.Inventory.Exposure()
	report.BalanceCents = balance.CashCents
	report.DailyPnL = e.deps.Breaker.DailyPnL()
	report.NetExposure = net
	report.Duration = e.now().Sub(start)

	metrics.Balance.Set(float64(balance.CashCents))
	metrics.DailyPnL.Set(float64(report.DailyPnL))
	metrics.NetExposure.Set(float64(net))

	return report, nil
}

// maybeResetDaily clears the daily counters when the UTC date has changed
// since the last reset. The reset itself stays an explicit breaker operation;
// the loop is its owning schedule.
func (e *Engine) maybeResetDaily() {
	last := e.deps.Breaker.LastReset()
	today := e.now().UTC().Format("2006-01-02")
	if last.IsZero() {
		e.deps.Breaker.ResetDaily()
		return
	}
	if last.UTC().Format("2006-01-02") != today {
		slog.Info("engine: new trading day, resetting daily counters", "date", today)
		e.deps.Breaker.ResetDaily()
	}
}

// trackPair records a placed pair with the ledger, the rate window, and the
// pending set.
func (e *Engine) trackPair(ctx context.Context, opp domain.Opportunity, contracts int, pair Pair, report *domain.CycleReport) {
	for _, leg := range []domain.Order{pair.Buy, pair.Hedge} {
		if err := e.deps.Ledger.SaveOrder(ctx, leg); err != nil {
			slog.Warn("engine: ledger save order failed", "order", leg.ID, "err", err)
		}
		e.deps.Breaker.RecordOrder()
	}

	e.pairs[pair.ID] = &pendingPair{opp: opp, contracts: contracts, buy: pair.Buy, hedge: pair.Hedge}

	report.OrdersPlaced += 2
	report.PairsPlaced++
	metrics.OrdersPlaced.Add(2)
}

// reconcile re-queries every pending leg and applies confirmed outcomes.
// Only here do fills reach the inventory and the daily P&L: a placed but
// unconfirmed order never mutates risk state.
func (e *Engine) reconcile(ctx context.Context, report *domain.CycleReport) {
	for pairID, p := range e.pairs {
		e.reconcileLeg(ctx, &p.buy, report)
		e.reconcileLeg(ctx, &p.hedge, report)

		if p.buy.Status == domain.StatusFilled && p.hedge.Status == domain.StatusFilled {
			pnl := int64(p.opp.NetProfit) * int64(p.contracts)
			e.deps.Breaker.RecordPnL(pnl)
			report.PairsCompleted++
			slog.Info("engine: pair completed",
				"market", p.opp.Market.ID,
				"contracts", p.contracts,
				"pnl_cents", pnl,
			)
			delete(e.pairs, pairID)
			continue
		}

		if p.buy.Status.Terminal() && p.hedge.Status.Terminal() {
			if p.buy.Status == domain.StatusFilled || p.hedge.Status == domain.StatusFilled {
				// One leg filled, the other died: the book is one-sided.
				alert := fmt.Sprintf("pair %s ended one-sided (buy=%s hedge=%s), check inventory",
					pairID, p.buy.Status, p.hedge.Status)
				report.Alerts = append(report.Alerts, alert)
				slog.Warn("engine: " + alert)
			}
			delete(e.pairs, pairID)
		}
	}
}

// reconcileLeg pulls the current status of one leg and applies the change.
func (e *Engine) reconcileLeg(ctx context.Context, leg *domain.Order, report *domain.CycleReport) {
	if leg.Status.Terminal() || leg.ExchangeID == "" {
		return
	}

	current, err := e.deps.Executor.GetOrder(ctx, leg.ExchangeID)
	if err != nil {
		slog.Warn("engine: order status query failed", "order", leg.ExchangeID, "err", err)
		return
	}
	if current.Status == leg.Status {
		return
	}

	leg.Status = current.Status
	if err := e.deps.Ledger.UpdateOrderStatus(ctx, leg.ID, leg.Status); err != nil {
		slog.Warn("engine: ledger status update failed", "order", leg.ID, "err", err)
	}

	switch leg.Status {
	case domain.StatusFilled:
		e.deps.Inventory.AddPosition(leg.Side, leg.Quantity, leg.Price)
		fill := domain.Fill{OrderID: leg.ID, Price: leg.Price, Quantity: leg.Quantity, FilledAt: e.now().UTC()}
		if err := e.deps.Ledger.SaveFill(ctx, fill); err != nil {
			slog.Warn("engine: ledger save fill failed", "order", leg.ID, "err", err)
		}
		report.NewFills++
		metrics.Fills.Inc()
	case domain.StatusCancelled:
		metrics.OrdersCancelled.Inc()
		report.OrdersCancelled++
	case domain.StatusFailed:
		metrics.OrdersFailed.Inc()
	}
}

// rotateStale cancels resting legs older than the configured age. This is the
// cancel-after-N-minutes hardening; disabled when the age is zero.
func (e *Engine) rotateStale(ctx context.Context, report *domain.CycleReport) {
	if e.cfg.StaleOrderMaxAge <= 0 {
		return
	}

	cutoff := e.now().Add(-e.cfg.StaleOrderMaxAge)
	for _, p := range e.pairs {
		for _, leg := range []*domain.Order{&p.buy, &p.hedge} {
			if leg.Status.Terminal() || !leg.PlacedAt.Before(cutoff) {
				continue
			}
			if err := e.coord.CancelVerified(ctx, leg.ExchangeID); err != nil {
				alert := fmt.Sprintf("stale order %s cancel unconfirmed: %v", leg.ExchangeID, err)
				report.Alerts = append(report.Alerts, alert)
				slog.Warn("engine: " + alert)
				continue
			}
			slog.Info("engine: rotated stale order", "order", leg.ExchangeID, "age", e.now().Sub(leg.PlacedAt))
		}
	}
}

// recordBlocked logs a soft risk rejection and keeps the loop going.
func (e *Engine) recordBlocked(report *domain.CycleReport, gate string, err error) {
	report.Blocked = append(report.Blocked, err.Error())
	metrics.RiskRejections.WithLabelValues(gate).Inc()
	slog.Info("engine: trade blocked", "gate", gate, "reason", err)
}

// saveState exports the owned risk state and persists the snapshot.
func (e *Engine) saveState() {
	snap := domain.Snapshot{
		Account:   e.deps.Breaker.Export(),
		Inventory: e.deps.Inventory.Export(),
	}
	if err := e.deps.State.Save(snap); err != nil {
		slog.Warn("engine: state save failed", "err", err)
	}
}

// writeDailySummary folds the cycle's counters into the ledger's daily row.
func (e *Engine) writeDailySummary(ctx context.Context, r domain.CycleReport) {
	summary := domain.DailySummary{
		Date:            e.now().UTC(),
		Cycles:          1,
		OrdersPlaced:    r.OrdersPlaced,
		OrdersCancelled: r.OrdersCancelled,
		Fills:           r.NewFills,
		PairsCompleted:  r.PairsCompleted,
		NetPnL:          r.DailyPnL,
		EndingBalance:   r.BalanceCents,
		NetExposure:     r.NetExposure,
	}
	if err := e.deps.Ledger.UpsertDailySummary(ctx, summary); err != nil {
		slog.Warn("engine: daily summary write failed", "err", err)
	}
}
