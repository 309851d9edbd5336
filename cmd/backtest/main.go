package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/LAIrfc/ai-trading-system/internal/backtest"
	"github.com/LAIrfc/ai-trading-system/internal/collector"
	"github.com/LAIrfc/ai-trading-system/internal/config"
	"github.com/LAIrfc/ai-trading-system/internal/journal"
	"github.com/LAIrfc/ai-trading-system/internal/report"
	"github.com/LAIrfc/ai-trading-system/internal/strategy"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] backtest starting...")

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

	// Load bars
	fetcher := collector.NewCSVFetcher(cfg.Data.CSVDir)
	bars, err := fetcher.FetchDailyBars(cfg.Data.Code, cfg.Data.Days)
	if err != nil {
		log.Fatalf("[FATAL] load bars: %v", err)
	}
	log.Printf("[INFO] loaded %d bars for %s", len(bars), cfg.Data.Code)

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

	// Run the simulation
	engine, err := backtest.NewEngine(backtest.Config{
		InitialCash:     cfg.Backtest.InitialCash,
		CommissionRate:  cfg.Backtest.CommissionRate,
		StampTaxRate:    cfg.Backtest.StampTaxRate,
		StopLossPct:     cfg.Backtest.StopLossPct,
		TrailingStopPct: cfg.Backtest.TrailingStopPct,
		TakeProfitPct:   cfg.Backtest.TakeProfitPct,
	})
	if err != nil {
		log.Fatalf("[FATAL] build engine: %v", err)
	}
	start := time.Now()
	result := engine.Run(ens, bars)
	log.Printf("[INFO] backtest finished in %s, %d trades", time.Since(start), len(result.Trades))

	fmt.Println(report.FormatBacktestReport(cfg.Data.Code, ens.Name(), cfg.Backtest.InitialCash, result))

	// Persist the summary
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

	if err := jnl.RecordBacktest(&journal.BacktestEntry{
		Code:     cfg.Data.Code,
		Strategy: ens.Name(),
		StartDay: bars[0].Date,
		EndDay:   bars[len(bars)-1].Date,
		Result:   result,
	}); err != nil {
		log.Printf("[ERROR] record backtest: %v", err)
	}
}
