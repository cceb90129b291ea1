package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"swingbot/internal/ledger"
)

func TestNopLogsMessage(t *testing.T) {
	var buf bytes.Buffer
	sink := NewNop(zerolog.New(&buf))

	sink.Notify(context.Background(), "hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Fatalf("log does not contain the message: %s", buf.String())
	}
}

func TestNewTelegramRejectsBadChatID(t *testing.T) {
	if _, err := NewTelegram("token", "not-a-number", zerolog.Nop()); err == nil {
		t.Fatalf("expected error for non-numeric chat id")
	}
}

func TestFormatOpen(t *testing.T) {
	pos := ledger.Position{ProductID: "BTC-USD", Size: 0.00004, EntryPrice: 49950, StopPrice: 48951}
	msg := FormatOpen(pos, true)
	if !strings.HasPrefix(msg, "[DRY RUN] ") {
		t.Fatalf("missing dry run prefix: %q", msg)
	}
	if !strings.Contains(msg, "BTC-USD") || !strings.Contains(msg, "0.000040") {
		t.Fatalf("unexpected open message: %q", msg)
	}

	if strings.HasPrefix(FormatOpen(pos, false), "[DRY RUN]") {
		t.Fatalf("live message should not carry the dry run prefix")
	}
}

func TestFormatClose(t *testing.T) {
	res := ledger.TradeResult{
		ProductID:  "ETH-USD",
		Size:       0.001,
		EntryPrice: 100,
		ExitPrice:  110,
		PL:         0.01,
		PLPercent:  10,
		Held:       3 * time.Hour,
	}
	msg := FormatClose(res, false)
	for _, want := range []string{"ETH-USD", "P/L=0.01", "10.00%", "3h0m"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("close message missing %q: %q", want, msg)
		}
	}
}
