package risk

import (
	"fmt"

	"github.com/alejandrodnm/kalshibot/internal/domain"
)

// Inventory owns InventoryState and rejects trades that would push the net
// directional exposure past the cap. Only confirmed fills mutate it: a
// placed-but-unconfirmed order must never count, or a failed hedge leg would
// silently build a one-sided book.
type Inventory struct {
	maxExposure int64 // cents
	state       domain.InventoryState
}

// NewInventory builds an inventory manager with empty state.
func NewInventory(maxExposure int64) *Inventory {
	return &Inventory{
		maxExposure: maxExposure,
		state:       domain.DefaultSnapshot().Inventory,
	}
}

// Restore replaces the inventory state with a persisted snapshot.
func (inv *Inventory) Restore(state domain.InventoryState) {
	inv.state = state
}

// Export returns the state for persistence.
func (inv *Inventory) Export() domain.InventoryState {
	return inv.state
}

// Exposure returns the yes/no position values and their absolute imbalance,
// in cents.
func (inv *Inventory) Exposure() (yesValue, noValue, net int64) {
	yesValue = int64(float64(inv.state.YesContracts) * inv.state.AvgYesPrice)
	noValue = int64(float64(inv.state.NoContracts) * inv.state.AvgNoPrice)
	net = yesValue - noValue
	if net < 0 {
		net = -net
	}
	return yesValue, noValue, net
}

// CanAddPosition simulates the exposure after adding quantity contracts at
// price and returns a RiskLimitError when the cap would be breached.
func (inv *Inventory) CanAddPosition(side domain.Side, quantity, price int) error {
	yesValue, noValue, _ := inv.Exposure()

	if side == domain.SideYes {
		yesValue = int64(float64(inv.state.YesContracts+quantity) * inv.projectedAvg(domain.SideYes, quantity, price))
	} else {
		noValue = int64(float64(inv.state.NoContracts+quantity) * inv.projectedAvg(domain.SideNo, quantity, price))
	}

	net := yesValue - noValue
	if net < 0 {
		net = -net
	}
	if net > inv.maxExposure {
		return &domain.RiskLimitError{
			Gate:   "inventory",
			Reason: fmt.Sprintf("would exceed max exposure: $%.2f", float64(net)/100),
		}
	}
	return nil
}

// AddPosition records a confirmed fill, updating the weighted-average price.
func (inv *Inventory) AddPosition(side domain.Side, quantity, price int) {
	if quantity <= 0 {
		return
	}
	if side == domain.SideYes {
		inv.state.AvgYesPrice = inv.projectedAvg(side, quantity, price)
		inv.state.YesContracts += quantity
	} else {
		inv.state.AvgNoPrice = inv.projectedAvg(side, quantity, price)
		inv.state.NoContracts += quantity
	}
}

// projectedAvg is the weighted-average price after adding quantity contracts
// at price.
func (inv *Inventory) projectedAvg(side domain.Side, quantity, price int) float64 {
	held, avg := inv.state.NoContracts, inv.state.AvgNoPrice
	if side == domain.SideYes {
		held, avg = inv.state.YesContracts, inv.state.AvgYesPrice
	}
	total := held + quantity
	if total == 0 {
		return avg
	}
	return (float64(held)*avg + float64(quantity*price)) / float64(total)
}
