package indicator

import (
	"math"
	"testing"
	"time"

	"swingbot/internal/market"
)

func candlesFromCloses(closes []float64) []market.Candle {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	out := make([]market.Candle, len(closes))
	for i, c := range closes {
		out[i] = market.Candle{
			Ts:     start.Add(time.Duration(i) * time.Hour),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 100,
		}
	}
	return out
}

func sineCloses(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + 10*math.Sin(float64(i)/7)
	}
	return closes
}

func TestComputeDeterministic(t *testing.T) {
	candles := candlesFromCloses(sineCloses(100))
	engine := NewEngine(Params{})

	first, err := engine.Compute(candles)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	second, err := engine.Compute(candles)
	if err != nil {
		t.Fatalf("second Compute returned error: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical snapshots, got %+v vs %+v", first, second)
	}
}

func TestComputeInsufficientData(t *testing.T) {
	candles := candlesFromCloses(sineCloses(49))
	engine := NewEngine(Params{})

	if _, err := engine.Compute(candles); err != ErrInsufficientData {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestRSIBounds(t *testing.T) {
	engine := NewEngine(Params{})

	up := make([]float64, 100)
	down := make([]float64, 100)
	for i := range up {
		up[i] = 100 + float64(i)
		down[i] = 300 - float64(i)
	}

	snap, err := engine.Compute(candlesFromCloses(up))
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if snap.RSI < 0 || snap.RSI > 100 {
		t.Fatalf("RSI out of bounds on rising series: %.4f", snap.RSI)
	}
	if snap.RSI < 50 {
		t.Fatalf("expected high RSI on monotone rise, got %.4f", snap.RSI)
	}

	snap, err = engine.Compute(candlesFromCloses(down))
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if snap.RSI < 0 || snap.RSI > 100 {
		t.Fatalf("RSI out of bounds on falling series: %.4f", snap.RSI)
	}
	if snap.RSI > 50 {
		t.Fatalf("expected low RSI on monotone fall, got %.4f", snap.RSI)
	}
}

func TestEMAOrderingFollowsTrend(t *testing.T) {
	engine := NewEngine(Params{})

	up := make([]float64, 100)
	for i := range up {
		up[i] = 100 * math.Pow(1.01, float64(i))
	}
	snap, err := engine.Compute(candlesFromCloses(up))
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if snap.EMAFast <= snap.EMASlow {
		t.Fatalf("expected fast EMA above slow in an uptrend, got %.4f <= %.4f", snap.EMAFast, snap.EMASlow)
	}
	if snap.Close != up[len(up)-1] {
		t.Fatalf("snapshot close mismatch: %.4f", snap.Close)
	}
}

func TestMACDHistMatchesLines(t *testing.T) {
	engine := NewEngine(Params{})
	snap, err := engine.Compute(candlesFromCloses(sineCloses(100)))
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if diff := snap.MACD - snap.MACDSignal - snap.MACDHist; math.Abs(diff) > 1e-9 {
		t.Fatalf("histogram does not equal macd minus signal, diff %.12f", diff)
	}
}
