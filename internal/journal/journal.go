package journal

import (
	"time"

	"github.com/LAIrfc/ai-trading-system/internal/backtest"
	"github.com/LAIrfc/ai-trading-system/internal/model"
)

// SignalEntry is one daily signal evaluation to persist.
type SignalEntry struct {
	Code       string
	Strategy   string
	Action     model.Action
	Confidence float64
	Position   float64
	Price      float64
	Reason     string
	Date       time.Time
}

// TradeEntry is one executed (simulated or live) order to persist.
type TradeEntry struct {
	Code     string
	OrderID  string
	Action   model.Action
	Price    float64
	Quantity int
	PnlPct   float64
	Reason   string
	Date     time.Time
}

// BacktestEntry is the summary of one backtest run to persist.
type BacktestEntry struct {
	Code     string
	Strategy string
	StartDay time.Time
	EndDay   time.Time
	Result   *backtest.Result
}

// Journal persists signals, trades, and backtest summaries for later review.
type Journal interface {
	RecordSignal(e *SignalEntry) error
	RecordTrade(e *TradeEntry) error
	RecordBacktest(e *BacktestEntry) error
	Close() error
}
