// Package indicator computes the technical indicators the trading core
// consumes. Computation is a pure function of the candle window: identical
// input always yields an identical snapshot.
package indicator

import (
	"errors"

	"github.com/markcheno/go-talib"

	"swingbot/internal/market"
)

// ErrInsufficientData reports a candle window too short for the configured
// lookbacks. Callers skip the product for the cycle.
var ErrInsufficientData = errors.New("insufficient candle history")

// Snapshot carries the indicator values for one product in one cycle.
type Snapshot struct {
	RSI        float64
	MACD       float64
	MACDSignal float64
	MACDHist   float64
	EMAFast    float64
	EMASlow    float64
	Close      float64
}

// Params groups the indicator periods.
type Params struct {
	RSIPeriod  int
	MACDFast   int
	MACDSlow   int
	MACDSignal int
	EMAFast    int
	EMASlow    int
	MinHistory int
}

// Engine evaluates a candle window into a Snapshot.
type Engine struct {
	params Params
}

// NewEngine builds an engine, filling unset periods with the standard
// RSI(14)/MACD(12,26,9)/EMA20/EMA50 configuration.
func NewEngine(params Params) *Engine {
	if params.RSIPeriod <= 0 {
		params.RSIPeriod = 14
	}
	if params.MACDFast <= 0 {
		params.MACDFast = 12
	}
	if params.MACDSlow <= 0 {
		params.MACDSlow = 26
	}
	if params.MACDSignal <= 0 {
		params.MACDSignal = 9
	}
	if params.EMAFast <= 0 {
		params.EMAFast = 20
	}
	if params.EMASlow <= 0 {
		params.EMASlow = 50
	}
	if params.MinHistory <= 0 {
		params.MinHistory = 50
	}
	return &Engine{params: params}
}

// Compute derives a Snapshot from an oldest-first candle window using
// closing prices only.
func (e *Engine) Compute(candles []market.Candle) (Snapshot, error) {
	min := e.params.MinHistory
	if min < e.params.EMASlow {
		min = e.params.EMASlow
	}
	if len(candles) < min {
		return Snapshot{}, ErrInsufficientData
	}

	closes := extractCloses(candles)

	rsi := talib.Rsi(closes, e.params.RSIPeriod)
	macd, macdSignal, macdHist := talib.Macd(closes, e.params.MACDFast, e.params.MACDSlow, e.params.MACDSignal)
	emaFast := talib.Ema(closes, e.params.EMAFast)
	emaSlow := talib.Ema(closes, e.params.EMASlow)

	last := len(closes) - 1
	return Snapshot{
		RSI:        clamp(rsi[last], 0, 100),
		MACD:       macd[last],
		MACDSignal: macdSignal[last],
		MACDHist:   macdHist[last],
		EMAFast:    emaFast[last],
		EMASlow:    emaSlow[last],
		Close:      closes[last],
	}, nil
}

func extractCloses(candles []market.Candle) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return closes
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
