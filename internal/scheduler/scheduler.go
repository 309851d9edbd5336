package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/LAIrfc/ai-trading-system/internal/broker"
	"github.com/LAIrfc/ai-trading-system/internal/collector"
	"github.com/LAIrfc/ai-trading-system/internal/journal"
	"github.com/LAIrfc/ai-trading-system/internal/model"
	"github.com/LAIrfc/ai-trading-system/internal/report"
	"github.com/LAIrfc/ai-trading-system/internal/strategy"
)

// Scheduler runs the daily signal evaluation after the market close and
// mirrors actionable signals into a paper account.
type Scheduler struct {
	Cron     *cron.Cron
	Fetcher  collector.Fetcher
	Strategy strategy.Strategy
	Journal  journal.Journal
	Account  *broker.PaperAccount
	Code     string
	Days     int
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler. A nil account disables paper trading.
func NewScheduler(ctx context.Context, fetcher collector.Fetcher, s strategy.Strategy, j journal.Journal, acct *broker.PaperAccount, code string, days int) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Fetcher:  fetcher,
		Strategy: s,
		Journal:  j,
		Account:  acct,
		Code:     code,
		Days:     days,
		Ctx:      ctx,
	}
}

// Register adds the daily evaluation task.
func (s *Scheduler) Register(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the daily task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.dailyTask()
}

func (s *Scheduler) dailyTask() {
	log.Printf("[INFO] running daily evaluation for %s", s.Code)

	bars, err := s.Fetcher.FetchDailyBars(s.Code, s.Days)
	if err != nil {
		log.Printf("[ERROR] fetch daily bars: %v", err)
		return
	}
	if len(bars) == 0 {
		log.Printf("[WARN] no bars for %s", s.Code)
		return
	}

	sig := strategy.SafeAnalyze(s.Strategy, bars)
	last := bars[len(bars)-1]

	fmt.Println(report.FormatSignal(s.Code, last.Close, sig))

	if err := s.Journal.RecordSignal(&journal.SignalEntry{
		Code:       s.Code,
		Strategy:   s.Strategy.Name(),
		Action:     sig.Action,
		Confidence: sig.Confidence,
		Position:   sig.Position,
		Price:      last.Close,
		Reason:     sig.Reason,
		Date:       last.Date,
	}); err != nil {
		log.Printf("[ERROR] record signal: %v", err)
	}

	if s.Account != nil {
		s.executePaper(sig, last.Close, last.Date)
	}
}

// executePaper mirrors the signal into the paper account: buys size toward
// the suggested position in whole lots, sells liquidate the holding.
func (s *Scheduler) executePaper(sig model.Signal, price float64, date time.Time) {
	s.Account.UpdatePrices(map[string]float64{s.Code: price})
	snap := s.Account.Snapshot()

	var orderID string
	var quantity int
	var err error

	switch sig.Action {
	case model.ActionBuy:
		target := snap.TotalAssets * sig.Position
		held := 0.0
		for _, p := range snap.Positions {
			if p.Code == s.Code {
				held = p.MarketValue()
			}
		}
		quantity = int((target-held)/price/100) * 100
		if quantity <= 0 {
			return
		}
		orderID, err = s.Account.Buy(s.Code, price, quantity)
	case model.ActionSell:
		for _, p := range snap.Positions {
			if p.Code == s.Code {
				quantity = p.Quantity
			}
		}
		if quantity == 0 {
			return
		}
		orderID, err = s.Account.Sell(s.Code, price, quantity)
	default:
		return
	}
	if err != nil {
		log.Printf("[WARN] paper order rejected: %v", err)
		return
	}

	if err := s.Journal.RecordTrade(&journal.TradeEntry{
		Code:     s.Code,
		OrderID:  orderID,
		Action:   sig.Action,
		Price:    price,
		Quantity: quantity,
		Reason:   sig.Reason,
		Date:     date,
	}); err != nil {
		log.Printf("[ERROR] record trade: %v", err)
	}
}
