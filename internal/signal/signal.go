// Package signal turns indicator snapshots into discrete trade actions.
package signal

import (
	"sync"

	"swingbot/internal/indicator"
)

// Action is the decision for one product in one cycle.
type Action string

const (
	Buy  Action = "BUY"
	Sell Action = "SELL"
	Hold Action = "HOLD"
)

// Thresholds groups the tunable decision levels.
type Thresholds struct {
	RSIOversold   float64
	RSIOverbought float64
}

// Generator maps snapshots to actions. It keeps one cycle of memory per
// product: the previous MACD-versus-signal-line relationship, needed to
// detect crossovers. A product's first observation treats both crossover
// directions as false, so crossing conditions never fire spuriously.
//
// Entries are deliberately asymmetric: a buy needs oversold RSI, an upward
// MACD crossover, and short-term trend confirmation all at once, while any
// single warning sign is enough to sell.
type Generator struct {
	thresholds Thresholds
	mu         sync.Mutex
	macdAbove  map[string]bool
}

// NewGenerator builds a generator, defaulting to the 30/70 RSI bands.
func NewGenerator(thresholds Thresholds) *Generator {
	if thresholds.RSIOversold <= 0 {
		thresholds.RSIOversold = 30
	}
	if thresholds.RSIOverbought <= 0 {
		thresholds.RSIOverbought = 70
	}
	return &Generator{
		thresholds: thresholds,
		macdAbove:  make(map[string]bool),
	}
}

// Evaluate returns exactly one action for the product's current snapshot
// and records the MACD relationship for the next cycle's crossover check.
func (g *Generator) Evaluate(productID string, snap indicator.Snapshot) Action {
	above := snap.MACD > snap.MACDSignal

	g.mu.Lock()
	prevAbove, seen := g.macdAbove[productID]
	g.macdAbove[productID] = above
	g.mu.Unlock()

	crossedUp := seen && !prevAbove && above
	crossedDown := seen && prevAbove && !above

	if snap.RSI < g.thresholds.RSIOversold && crossedUp && snap.EMAFast > snap.EMASlow {
		return Buy
	}
	if snap.RSI > g.thresholds.RSIOverbought || crossedDown {
		return Sell
	}
	return Hold
}

// Reset drops the remembered MACD relationship for a product, e.g. when it
// leaves the tradable set.
func (g *Generator) Reset(productID string) {
	g.mu.Lock()
	delete(g.macdAbove, productID)
	g.mu.Unlock()
}
