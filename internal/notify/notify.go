// Package notify delivers trade events to a Telegram chat. Delivery is
// fire-and-forget: a failed send is logged and never affects trading state.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"swingbot/internal/ledger"
)

// Telegram sends messages through the Bot API.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    zerolog.Logger
}

// NewTelegram connects to the Bot API. chatID is the numeric chat id as a
// string, matching how it arrives from the environment.
func NewTelegram(token, chatID string, log zerolog.Logger) (*Telegram, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse telegram chat id: %w", err)
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{Timeout: 10 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("telegram connect: %w", err)
	}
	log.Info().Str("bot", bot.Self.UserName).Msg("telegram connected")
	return &Telegram{bot: bot, chatID: id, log: log}, nil
}

// Notify sends text to the configured chat. Errors are logged, not returned.
func (t *Telegram) Notify(_ context.Context, text string) {
	if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
		t.log.Error().Err(err).Msg("telegram send failed")
	}
}

// Nop is the sink used when Telegram credentials are absent; events land in
// the log instead.
type Nop struct {
	log zerolog.Logger
}

// NewNop builds a logging-only sink.
func NewNop(log zerolog.Logger) *Nop { return &Nop{log: log} }

// Notify logs the message that would have been sent.
func (n *Nop) Notify(_ context.Context, text string) {
	n.log.Info().Str("msg", text).Msg("notification (telegram disabled)")
}

// FormatOpen renders a position-opened message.
func FormatOpen(pos ledger.Position, dryRun bool) string {
	return fmt.Sprintf("%sBUY %s: size=%.6f entry=%.2f stop=%.2f",
		modePrefix(dryRun), pos.ProductID, pos.Size, pos.EntryPrice, pos.StopPrice)
}

// FormatClose renders a realized-trade report.
func FormatClose(res ledger.TradeResult, dryRun bool) string {
	return fmt.Sprintf("%sSELL %s: entry=%.2f exit=%.2f size=%.6f P/L=%.2f USD (%.2f%%) held=%s",
		modePrefix(dryRun), res.ProductID, res.EntryPrice, res.ExitPrice, res.Size, res.PL, res.PLPercent, res.Held.Round(time.Minute))
}

// FormatError renders a per-product failure report.
func FormatError(productID string, err error) string {
	return fmt.Sprintf("trade error for %s: %v", productID, err)
}

func modePrefix(dryRun bool) string {
	if dryRun {
		return "[DRY RUN] "
	}
	return ""
}
