// Package executor turns signals into orders and position changes. It owns
// the decision between opening, closing, and doing nothing; notification
// dispatch stays with the caller so the state machine is free of I/O.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"swingbot/internal/ledger"
	"swingbot/internal/market"
	"swingbot/internal/metrics"
	"swingbot/internal/risk"
	"swingbot/internal/signal"
)

// Outcome reports what one evaluation did for one product. At most one of
// Opened/Closed is set; both nil means no action was taken.
type Outcome struct {
	ProductID string
	Action    signal.Action
	Opened    *ledger.Position
	Closed    *ledger.TradeResult
	Note      string
}

// Executor applies trade decisions against the ledger, placing exchange
// orders first when running live so a rejected order never creates a
// phantom position. In dry-run mode order placement is skipped but the
// ledger still updates, exercising the full position lifecycle on paper.
type Executor struct {
	log    zerolog.Logger
	book   *ledger.Ledger
	sizer  risk.Sizer
	placer market.OrderPlacer
	dryRun bool
	offset float64
}

// New wires an executor. placer may be nil only when dryRun is true.
func New(log zerolog.Logger, book *ledger.Ledger, sizer risk.Sizer, placer market.OrderPlacer, dryRun bool, limitOffset float64) *Executor {
	if limitOffset <= 0 {
		limitOffset = 0.001
	}
	return &Executor{
		log:    log,
		book:   book,
		sizer:  sizer,
		placer: placer,
		dryRun: dryRun,
		offset: limitOffset,
	}
}

// Execute performs exactly one of open / close / nothing for the product.
// AlreadyOpen and NoOpenPosition states are no-ops by policy, not errors.
func (e *Executor) Execute(ctx context.Context, product market.Product, act signal.Action, now time.Time) (Outcome, error) {
	out := Outcome{ProductID: product.ID, Action: act}

	pos, held := e.book.Get(product.ID)

	if held && product.Price <= pos.StopPrice {
		res, err := e.closePosition(ctx, product, now)
		if err != nil {
			return out, err
		}
		out.Closed = &res
		out.Note = "stop loss"
		e.log.Warn().Str("sym", product.ID).Float64("stop", pos.StopPrice).Float64("px", product.Price).Float64("pl", res.PL).Msg("stop loss close")
		return out, nil
	}

	switch act {
	case signal.Buy:
		if held {
			out.Note = "position already open"
			return out, nil
		}
		size, err := e.sizer.Size(product.Price, product.BaseIncrement)
		if err != nil {
			return out, fmt.Errorf("size %s: %w", product.ID, err)
		}
		limit := product.Price * (1 - e.offset)
		if err := e.place(ctx, product.ID, market.Buy, size, limit); err != nil {
			return out, err
		}
		opened, err := e.book.Open(product.ID, size, limit, e.sizer.StopPrice(limit), now)
		if err != nil {
			return out, err
		}
		out.Opened = &opened
		e.log.Info().Str("sym", product.ID).Float64("qty", size).Float64("px", limit).Float64("stop", opened.StopPrice).Bool("dry_run", e.dryRun).Msg("opened position")
		return out, nil

	case signal.Sell:
		if !held {
			out.Note = "no open position"
			return out, nil
		}
		res, err := e.closePosition(ctx, product, now)
		if err != nil {
			return out, err
		}
		out.Closed = &res
		e.log.Info().Str("sym", product.ID).Float64("qty", res.Size).Float64("px", res.ExitPrice).Float64("pl", res.PL).Bool("dry_run", e.dryRun).Msg("closed position")
		return out, nil
	}

	return out, nil
}

func (e *Executor) closePosition(ctx context.Context, product market.Product, now time.Time) (ledger.TradeResult, error) {
	pos, held := e.book.Get(product.ID)
	if !held {
		return ledger.TradeResult{}, ledger.ErrNoOpenPosition
	}
	limit := product.Price * (1 + e.offset)
	if err := e.place(ctx, product.ID, market.Sell, pos.Size, limit); err != nil {
		return ledger.TradeResult{}, err
	}
	return e.book.Close(product.ID, limit, now)
}

func (e *Executor) place(ctx context.Context, productID string, side market.Side, size, limit float64) error {
	mode := "live"
	if e.dryRun {
		mode = "dry-run"
	}
	metrics.OrdersTotal.WithLabelValues(productID, string(side), mode).Inc()

	if e.dryRun {
		e.log.Info().Str("sym", productID).Str("side", string(side)).Float64("qty", size).Float64("px", limit).Msg("dry-run order")
		return nil
	}
	orderID, err := e.placer.PlaceLimitOrder(ctx, productID, side, size, limit)
	if err != nil {
		return fmt.Errorf("place %s %s: %w", side, productID, err)
	}
	e.log.Info().Str("sym", productID).Str("side", string(side)).Str("order_id", orderID).Float64("qty", size).Float64("px", limit).Msg("order placed")
	return nil
}
