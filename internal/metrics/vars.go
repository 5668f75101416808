package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Cycles = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kalshibot_cycles_total",
		Help: "Completed trading cycles",
	})

	CycleErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kalshibot_cycle_errors_total",
		Help: "Trading cycles that ended with an error",
	})

	OrdersPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kalshibot_orders_placed_total",
		Help: "Order legs accepted by the exchange",
	})

	OrdersCancelled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kalshibot_orders_cancelled_total",
		Help: "Orders cancelled (compensation or stale rotation)",
	})

	OrdersFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kalshibot_orders_failed_total",
		Help: "Order placements rejected or failed",
	})

	Fills = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kalshibot_fills_total",
		Help: "Confirmed fills",
	})

	RiskRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kalshibot_risk_rejections_total",
		Help: "Trades blocked by a risk gate",
	}, []string{"gate"})

	CoordinationAlerts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kalshibot_coordination_alerts_total",
		Help: "Unconfirmed naked legs requiring manual intervention",
	})

	Balance = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kalshibot_balance_cents",
		Help: "Account cash balance in cents",
	})

	DailyPnL = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kalshibot_daily_pnl_cents",
		Help: "Daily P&L in cents",
	})

	NetExposure = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kalshibot_net_exposure_cents",
		Help: "Absolute yes/no exposure imbalance in cents",
	})
)

func init() {
	prometheus.MustRegister(
		Cycles,
		CycleErrors,
		OrdersPlaced,
		OrdersCancelled,
		OrdersFailed,
		Fills,
		RiskRejections,
		CoordinationAlerts,
		Balance,
		DailyPnL,
		NetExposure,
	)
}
