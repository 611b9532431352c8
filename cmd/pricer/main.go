package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"CertSentinel/internal/config"
	"CertSentinel/internal/engine"
	"CertSentinel/internal/loader"
	"CertSentinel/internal/model"
	"CertSentinel/internal/notifier"
	"CertSentinel/internal/payoff"
	"CertSentinel/internal/recorder"
	"CertSentinel/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] CertSentinel starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Load market data
	series, err := loader.LoadPriceSeries(cfg.Data.PricesCSV)
	if err != nil {
		log.Fatalf("[FATAL] load price series: %v", err)
	}
	curve, err := loader.LoadRateCurve(cfg.Data.RatesCSV)
	if err != nil {
		log.Fatalf("[FATAL] load rate curve: %v", err)
	}
	log.Printf("[INFO] loaded %d price observations, %d curve entries", series.Len(), curve.Len())

	// Certificate terms and payoff
	maturity, err := cfg.MaturityDate()
	if err != nil {
		log.Fatalf("[FATAL] parse maturity: %v", err)
	}
	terms := model.CertificateTerms{
		InitialFixing: cfg.Certificate.InitialFixing,
		Barrier:       cfg.Certificate.Barrier,
		Participation: cfg.Certificate.Participation,
		Denomination:  cfg.Certificate.Denomination,
		Maturity:      maturity,
	}
	var ev payoff.Evaluator
	if cfg.Certificate.Payoff == "outperformance" {
		ev = payoff.Outperformance{Terms: terms}
	} else {
		ev = payoff.BonusCertificate{Terms: terms}
	}
	log.Printf("[INFO] payoff: %s", ev.Name())

	// Optional simulation kernel self-test against the closed form
	if os.Getenv("SELFTEST") == "true" {
		mc, analytic, stdErrs := engine.SelfCheck(50000)
		log.Printf("[INFO] self-test: MC %.4f vs Black-Scholes %.4f (%.2f s.e.)", mc, analytic, stdErrs)
		if stdErrs > 3 {
			log.Fatalf("[FATAL] simulation kernel failed self-test")
		}
	}

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	settings := scheduler.Settings{
		Window:       cfg.Simulation.Window,
		Dt:           cfg.Simulation.Dt,
		Paths:        cfg.Simulation.Paths,
		Antithetic:   cfg.Simulation.Antithetic,
		Workers:      cfg.Simulation.Workers,
		Seed:         cfg.Simulation.Seed,
		SweepWindows: cfg.Simulation.SweepWindows,
	}
	sched := scheduler.NewScheduler(ctx, series, curve, terms, ev, settings, tn, rec)
	if err := sched.RegisterAll(cfg.Schedule.DailyCron, cfg.Schedule.WeeklyCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing daily valuation now")
		go sched.RunDailyNow()
	}

	log.Println("[INFO] CertSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] CertSentinel stopped")
}
