// Package ledger tracks open positions in memory. It is the single
// authority on whether a product is currently held; process restart loses
// all entries, which is accepted behaviour.
package ledger

import (
	"errors"
	"sync"
	"time"
)

// ErrAlreadyOpen reports an open attempt for a product that is already held.
var ErrAlreadyOpen = errors.New("position already open")

// ErrNoOpenPosition reports a close attempt for a product that is not held.
var ErrNoOpenPosition = errors.New("no open position")

// Position is one open, unmatched buy awaiting a future sell.
type Position struct {
	ProductID  string
	Size       float64
	EntryPrice float64
	StopPrice  float64
	OpenedAt   time.Time
}

// TradeResult describes a closed position. It is reported and discarded,
// never retained as state.
type TradeResult struct {
	ProductID  string
	Size       float64
	EntryPrice float64
	ExitPrice  float64
	PL         float64
	PLPercent  float64
	Held       time.Duration
}

// Ledger holds at most one position per product.
type Ledger struct {
	mu        sync.Mutex
	positions map[string]Position
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{positions: make(map[string]Position)}
}

// Open records a new position. It fails with ErrAlreadyOpen when the
// product is already held, leaving the existing entry untouched.
func (l *Ledger) Open(productID string, size, entryPrice, stopPrice float64, at time.Time) (Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.positions[productID]; exists {
		return Position{}, ErrAlreadyOpen
	}
	pos := Position{
		ProductID:  productID,
		Size:       size,
		EntryPrice: entryPrice,
		StopPrice:  stopPrice,
		OpenedAt:   at,
	}
	l.positions[productID] = pos
	return pos, nil
}

// Close removes the product's position and returns the realized result.
func (l *Ledger) Close(productID string, exitPrice float64, at time.Time) (TradeResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, exists := l.positions[productID]
	if !exists {
		return TradeResult{}, ErrNoOpenPosition
	}
	delete(l.positions, productID)

	return TradeResult{
		ProductID:  productID,
		Size:       pos.Size,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  exitPrice,
		PL:         (exitPrice - pos.EntryPrice) * pos.Size,
		PLPercent:  (exitPrice/pos.EntryPrice - 1) * 100,
		Held:       at.Sub(pos.OpenedAt),
	}, nil
}

// Get looks up the open position for a product without side effects.
func (l *Ledger) Get(productID string) (Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	pos, exists := l.positions[productID]
	return pos, exists
}

// Count reports how many positions are currently open.
func (l *Ledger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.positions)
}
