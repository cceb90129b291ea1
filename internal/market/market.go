// Package market standardizes the data contracts shared between the exchange
// connectivity layer and the trading core.
package market

import (
	"context"
	"errors"
	"time"
)

// Side enumerates order directions accepted by order placement.
type Side string

const (
	// Buy acquires the base asset.
	Buy Side = "BUY"
	// Sell disposes of the base asset.
	Sell Side = "SELL"
)

// Candle is one historical OHLCV period. Sequences are oldest-first.
type Candle struct {
	Ts     time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Product describes one tradable instrument as reported by the exchange.
type Product struct {
	ID            string
	Price         float64
	BaseIncrement float64 // minimum tradable step of the base asset
	Tradable      bool
}

// ErrDataUnavailable reports that the exchange could not supply requested
// market data this cycle. The next cycle is the retry mechanism.
var ErrDataUnavailable = errors.New("market data unavailable")

// ErrOrderRejected reports that the exchange refused an order. State owned
// by the caller must be left unchanged.
var ErrOrderRejected = errors.New("order rejected")

// Data supplies products and candle history.
type Data interface {
	ListProducts(ctx context.Context) ([]Product, error)
	Candles(ctx context.Context, productID string, granularity time.Duration, limit int) ([]Candle, error)
}

// OrderPlacer submits limit orders and returns the exchange order id.
type OrderPlacer interface {
	PlaceLimitOrder(ctx context.Context, productID string, side Side, size, limitPrice float64) (string, error)
}
