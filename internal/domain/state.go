package domain

import "time"

// state.go — serializable snapshots of the mutable risk counters.
//
// The circuit breaker exclusively owns AccountState and the inventory manager
// exclusively owns InventoryState; these types exist so owners can export
// their state to the flat-file snapshot and restore it at startup.

// AccountState holds the breaker-owned risk counters.
type AccountState struct {
	StartBalance int64       `json:"start_balance"`
	PeakBalance  int64       `json:"peak_balance"`
	DailyPnL     int64       `json:"daily_pnl"`
	LastReset    time.Time   `json:"last_reset"`
	OrderTimes   []time.Time `json:"order_times"`
}

// InventoryState holds the inventory-manager-owned exposure counters.
// Average prices are weighted by fill quantity.
type InventoryState struct {
	YesContracts int     `json:"yes_contracts"`
	NoContracts  int     `json:"no_contracts"`
	AvgYesPrice  float64 `json:"avg_yes_price"`
	AvgNoPrice   float64 `json:"avg_no_price"`
}

// Snapshot is the unit the state store persists atomically.
type Snapshot struct {
	Account   AccountState   `json:"account"`
	Inventory InventoryState `json:"inventory"`
	SavedAt   time.Time      `json:"saved_at"`
}

// DefaultSnapshot is the state used when no snapshot exists or the file on
// disk is unreadable.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Inventory: InventoryState{AvgYesPrice: 50, AvgNoPrice: 50},
	}
}
