package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/LAIrfc/ai-trading-system/internal/broker"
	"github.com/LAIrfc/ai-trading-system/internal/collector"
	"github.com/LAIrfc/ai-trading-system/internal/config"
	"github.com/LAIrfc/ai-trading-system/internal/journal"
	"github.com/LAIrfc/ai-trading-system/internal/scheduler"
	"github.com/LAIrfc/ai-trading-system/internal/strategy"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] daily signal service starting...")

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

	// Init fetcher
	fetcher := collector.NewCSVFetcher(cfg.Data.CSVDir)
	log.Printf("[INFO] data source: %s", fetcher.Name())

	// Build the voting ensemble
	members, err := strategy.DefaultMembers()
	if err != nil {
		log.Fatalf("[FATAL] build strategies: %v", err)
	}
	ens, err := strategy.NewEnsemble(strategy.EnsembleConfig{
		Mode:          strategy.VoteMode(cfg.Ensemble.Mode),
		BuyThreshold:  cfg.Ensemble.BuyThreshold,
		SellThreshold: cfg.Ensemble.SellThreshold,
	}, members)
	if err != nil {
		log.Fatalf("[FATAL] build ensemble: %v", err)
	}

	// Init journal
	var jnl journal.Journal
	if cfg.Database.SQLitePath != "" {
		sj, err := journal.NewSQLiteJournal(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite journal failed, using noop: %v", err)
			jnl = journal.NewNoopJournal()
		} else {
			jnl = sj
			defer sj.Close()
		}
	} else {
		jnl = journal.NewNoopJournal()
	}

	// Paper account mirrors the daily signals
	acct := broker.NewPaperAccount(cfg.Backtest.InitialCash, cfg.Backtest.CommissionRate)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, fetcher, ens, jnl, acct, cfg.Data.Code, cfg.Data.Days)
	if err := sched.Register(cfg.Schedule.DailyCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing daily task now")
		go sched.RunNow()
	}

	log.Println("[INFO] daily signal service is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] daily signal service stopped")
}
