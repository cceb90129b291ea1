// Package scheduler drives the evaluation pipeline: every interval it
// sweeps the tradable products once, synchronously, isolating each
// product's failures from the rest of the sweep.
package scheduler

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"swingbot/internal/executor"
	"swingbot/internal/indicator"
	"swingbot/internal/market"
	"swingbot/internal/metrics"
	"swingbot/internal/notify"
	"swingbot/internal/risk"
	"swingbot/internal/signal"
)

// Clock abstracts wall-clock access so tests can drive cycles without
// real delays.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time                         { return time.Now() }
func (SystemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Notifier receives trade and error reports. Failures inside the sink must
// stay inside the sink.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

// Config tunes the sweep.
type Config struct {
	Interval    time.Duration
	Quote       string
	MaxProducts int
	Granularity time.Duration
	CandleLimit int
	DryRun      bool
}

// Scheduler owns the per-cycle pipeline.
type Scheduler struct {
	cfg      Config
	data     market.Data
	engine   *indicator.Engine
	gen      *signal.Generator
	exec     *executor.Executor
	notifier Notifier
	clock    Clock
	log      zerolog.Logger
}

// New wires a scheduler. A nil clock gets the system clock.
func New(cfg Config, data market.Data, engine *indicator.Engine, gen *signal.Generator, exec *executor.Executor, notifier Notifier, clock Clock, log zerolog.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Quote == "" {
		cfg.Quote = "USD"
	}
	if cfg.MaxProducts <= 0 {
		cfg.MaxProducts = 10
	}
	if cfg.Granularity <= 0 {
		cfg.Granularity = time.Hour
	}
	if cfg.CandleLimit <= 0 {
		cfg.CandleLimit = 100
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Scheduler{
		cfg:      cfg,
		data:     data,
		engine:   engine,
		gen:      gen,
		exec:     exec,
		notifier: notifier,
		clock:    clock,
		log:      log,
	}
}

// Run sweeps once immediately, then on every interval until the context is
// canceled. Sweeps never overlap: a slow sweep delays the next tick.
func (s *Scheduler) Run(ctx context.Context) error {
	s.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.clock.After(s.cfg.Interval):
			s.Sweep(ctx)
		}
	}
}

// Sweep evaluates every tradable product once.
func (s *Scheduler) Sweep(ctx context.Context) {
	products, err := s.data.ListProducts(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("product listing failed")
		metrics.SkipsTotal.WithLabelValues("products").Inc()
		s.notifier.Notify(ctx, notify.FormatError("product listing", err))
		return
	}

	selected := s.selectProducts(products)
	s.log.Info().Int("products", len(selected)).Msg("starting sweep")

	for _, product := range selected {
		if ctx.Err() != nil {
			return
		}
		s.evaluate(ctx, product)
	}
	metrics.CyclesTotal.Inc()
	s.log.Info().Msg("sweep complete")
}

func (s *Scheduler) selectProducts(products []market.Product) []market.Product {
	suffix := "-" + s.cfg.Quote
	selected := make([]market.Product, 0, s.cfg.MaxProducts)
	for _, p := range products {
		if !p.Tradable || !strings.HasSuffix(p.ID, suffix) {
			continue
		}
		selected = append(selected, p)
		if len(selected) == s.cfg.MaxProducts {
			break
		}
	}
	return selected
}

func (s *Scheduler) evaluate(ctx context.Context, product market.Product) {
	candles, err := s.data.Candles(ctx, product.ID, s.cfg.Granularity, s.cfg.CandleLimit)
	if err != nil {
		s.log.Warn().Err(err).Str("sym", product.ID).Msg("candle fetch failed")
		metrics.SkipsTotal.WithLabelValues("data_unavailable").Inc()
		s.notifier.Notify(ctx, notify.FormatError(product.ID, err))
		return
	}

	snap, err := s.engine.Compute(candles)
	if err != nil {
		s.log.Debug().Err(err).Str("sym", product.ID).Msg("skipping product")
		metrics.SkipsTotal.WithLabelValues("insufficient_data").Inc()
		return
	}

	act := s.gen.Evaluate(product.ID, snap)
	metrics.SignalsTotal.WithLabelValues(product.ID, string(act)).Inc()
	s.log.Debug().Str("sym", product.ID).Str("action", string(act)).Float64("rsi", snap.RSI).Float64("macd", snap.MACD).Msg("signal")

	// The freshest close drives execution, matching what the indicators saw.
	product.Price = snap.Close

	out, err := s.exec.Execute(ctx, product, act, s.clock.Now())
	if err != nil {
		s.log.Error().Err(err).Str("sym", product.ID).Msg("execution failed")
		metrics.SkipsTotal.WithLabelValues("execution").Inc()
		if !errors.Is(err, risk.ErrNoTradableSize) {
			s.notifier.Notify(ctx, notify.FormatError(product.ID, err))
		}
		return
	}
	if out.Opened != nil {
		s.notifier.Notify(ctx, notify.FormatOpen(*out.Opened, s.cfg.DryRun))
	}
	if out.Closed != nil {
		s.notifier.Notify(ctx, notify.FormatClose(*out.Closed, s.cfg.DryRun))
	}
}
