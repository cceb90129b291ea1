package ledger

import (
	"math"
	"testing"
	"time"
)

func TestOpenCloseRealizesPL(t *testing.T) {
	led := New()
	openedAt := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	pos, err := led.Open("BTC-USD", 0.001, 100, 98, openedAt)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if pos.StopPrice != 98 {
		t.Fatalf("stop price not recorded: %.2f", pos.StopPrice)
	}

	res, err := led.Close("BTC-USD", 110, openedAt.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if math.Abs(res.PL-0.01) > 1e-12 {
		t.Fatalf("expected P/L 0.01, got %.12f", res.PL)
	}
	if math.Abs(res.PLPercent-10) > 1e-9 {
		t.Fatalf("expected 10%%, got %.6f", res.PLPercent)
	}
	if res.Held != 3*time.Hour {
		t.Fatalf("expected 3h hold, got %s", res.Held)
	}
	if led.Count() != 0 {
		t.Fatalf("position not removed on close")
	}
}

func TestDoubleOpenFails(t *testing.T) {
	led := New()
	now := time.Now()

	first, err := led.Open("ETH-USD", 0.5, 2000, 1960, now)
	if err != nil {
		t.Fatalf("first Open returned error: %v", err)
	}
	if _, err := led.Open("ETH-USD", 1.0, 2100, 2058, now.Add(time.Hour)); err != ErrAlreadyOpen {
		t.Fatalf("expected ErrAlreadyOpen, got %v", err)
	}

	// State must be identical to after the first open alone.
	got, exists := led.Get("ETH-USD")
	if !exists {
		t.Fatalf("position disappeared")
	}
	if got != first {
		t.Fatalf("position mutated by failed open: %+v vs %+v", got, first)
	}
	if led.Count() != 1 {
		t.Fatalf("expected exactly one position, got %d", led.Count())
	}
}

func TestCloseWithoutOpenFails(t *testing.T) {
	led := New()
	if _, err := led.Close("BTC-USD", 100, time.Now()); err != ErrNoOpenPosition {
		t.Fatalf("expected ErrNoOpenPosition, got %v", err)
	}
}

func TestLossIsNegative(t *testing.T) {
	led := New()
	now := time.Now()
	if _, err := led.Open("SOL-USD", 2, 50, 49, now); err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	res, err := led.Close("SOL-USD", 45, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if math.Abs(res.PL-(-10)) > 1e-12 {
		t.Fatalf("expected P/L -10, got %.6f", res.PL)
	}
	if math.Abs(res.PLPercent-(-10)) > 1e-9 {
		t.Fatalf("expected -10%%, got %.6f", res.PLPercent)
	}
}

func TestGetHasNoSideEffects(t *testing.T) {
	led := New()
	if _, exists := led.Get("BTC-USD"); exists {
		t.Fatalf("unexpected position in empty ledger")
	}
	now := time.Now()
	if _, err := led.Open("BTC-USD", 1, 100, 98, now); err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	led.Get("BTC-USD")
	led.Get("BTC-USD")
	if led.Count() != 1 {
		t.Fatalf("Get mutated the ledger")
	}
}
