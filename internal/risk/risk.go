// Package risk converts a fixed notional budget into bounded order sizes.
package risk

import (
	"errors"
	"math"
)

// ErrNoTradableSize reports that the budget rounds to zero base units at
// the product's minimum increment. The caller skips the trade.
var ErrNoTradableSize = errors.New("budget below minimum tradable size")

// Sizer computes order quantities from a fixed per-trade budget. The
// resulting notional never exceeds the budget.
type Sizer struct {
	BudgetUSD    float64
	StopFraction float64
}

// NewSizer applies the $2 / 2% defaults for unset fields.
func NewSizer(budgetUSD, stopFraction float64) Sizer {
	if budgetUSD <= 0 {
		budgetUSD = 2.0
	}
	if stopFraction <= 0 {
		stopFraction = 0.02
	}
	return Sizer{BudgetUSD: budgetUSD, StopFraction: stopFraction}
}

// Size returns the base-asset quantity the budget buys at price, floored
// to the product's minimum increment. An increment of zero means the
// exchange imposes no step and the raw quotient is used.
func (s Sizer) Size(price, increment float64) (float64, error) {
	if price <= 0 {
		return 0, errors.New("price must be positive")
	}
	qty := s.BudgetUSD / price
	if increment > 0 {
		// Tolerance absorbs float noise so an exact multiple of the
		// increment is not floored one step short.
		steps := math.Floor(qty/increment + 1e-9)
		qty = steps * increment
	}
	if qty <= 0 {
		return 0, ErrNoTradableSize
	}
	return qty, nil
}

// StopPrice places the protective stop below the entry fill.
func (s Sizer) StopPrice(entryPrice float64) float64 {
	return entryPrice * (1 - s.StopFraction)
}
