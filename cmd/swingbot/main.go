package main

import (
	"context"
	"errors"
	"flag"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"swingbot/internal/coinbase"
	"swingbot/internal/config"
	"swingbot/internal/executor"
	"swingbot/internal/indicator"
	"swingbot/internal/ledger"
	"swingbot/internal/metrics"
	"swingbot/internal/notify"
	"swingbot/internal/risk"
	"swingbot/internal/scheduler"
	"swingbot/internal/signal"
	"swingbot/internal/util"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML configuration")
	flag.Parse()

	_ = godotenv.Load() // best-effort

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog := util.NewLogger("swingbot", "info")
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger(cfg.App.Name, cfg.App.LogLevel)

	creds := config.CredentialsFromEnv()
	if !cfg.Order.DryRun && (creds.APIKey == "" || creds.APISecret == "") {
		log.Fatal().Msg("live mode requires COINBASE_API_KEY and COINBASE_API_SECRET")
	}

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	var sink scheduler.Notifier
	if creds.TelegramToken != "" && creds.TelegramChatID != "" {
		tg, err := notify.NewTelegram(creds.TelegramToken, creds.TelegramChatID, log)
		if err != nil {
			log.Fatal().Err(err).Msg("telegram setup")
		}
		sink = tg
	} else {
		log.Warn().Msg("telegram credentials not found; notifications disabled")
		sink = notify.NewNop(log)
	}

	client := coinbase.NewClient(creds.APIKey, creds.APISecret, log)
	engine := indicator.NewEngine(indicator.Params{
		RSIPeriod:  cfg.Signal.RSIPeriod,
		MACDFast:   cfg.Signal.MACDFast,
		MACDSlow:   cfg.Signal.MACDSlow,
		MACDSignal: cfg.Signal.MACDSignal,
		EMAFast:    cfg.Signal.EMAFast,
		EMASlow:    cfg.Signal.EMASlow,
		MinHistory: cfg.Market.MinHistory,
	})
	gen := signal.NewGenerator(signal.Thresholds{
		RSIOversold:   cfg.Signal.RSIOversold,
		RSIOverbought: cfg.Signal.RSIOverbought,
	})
	book := ledger.New()
	sizer := risk.NewSizer(cfg.Risk.BudgetUSD, cfg.Risk.StopLossFraction)
	exec := executor.New(log, book, sizer, client, cfg.Order.DryRun, cfg.Order.LimitOffset)

	sched := scheduler.New(scheduler.Config{
		Interval:    time.Duration(cfg.Schedule.IntervalSecs) * time.Second,
		Quote:       cfg.Market.Quote,
		MaxProducts: cfg.Market.MaxProducts,
		Granularity: time.Duration(cfg.Market.GranularitySecs) * time.Second,
		CandleLimit: cfg.Market.CandleLimit,
		DryRun:      cfg.Order.DryRun,
	}, client, engine, gen, exec, sink, scheduler.SystemClock{}, log)

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info().Bool("dry_run", cfg.Order.DryRun).Int("interval_secs", cfg.Schedule.IntervalSecs).Msg("swingbot started")
	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("scheduler stopped")
	}
	log.Info().Msg("shutting down")
}
