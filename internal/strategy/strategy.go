// Package strategy defines the uniform signal contract every trading
// strategy must satisfy, the safe evaluation wrapper used by all callers,
// and the built-in strategy implementations.
package strategy

import (
	"fmt"
	"math"

	"github.com/LAIrfc/ai-trading-system/internal/model"
)

// Strategy is the interface all trading strategies implement.
//
// Analyze reads a date-ascending bar series (the last bar is the most
// recent) and produces one Signal. Implementations must be stateless with
// respect to market data across calls: the only persistent state allowed is
// configuration fixed at construction. Callers must not invoke Analyze with
// fewer than MinBars bars; use SafeAnalyze instead of calling Analyze
// directly.
type Strategy interface {
	// Name returns the human-readable strategy name.
	Name() string

	// MinBars returns the minimum history length Analyze requires.
	MinBars() int

	// Analyze inspects the history and returns a trading signal.
	Analyze(bars []model.Bar) (model.Signal, error)
}

// SafeAnalyze is the total-function wrapper around Strategy.Analyze.
//
// It never fails: insufficient history, an Analyze error, or a panic inside
// a strategy all degrade to a HOLD signal with confidence 0 and position
// 0.5, with the failure folded into the reason. A single bad indicator
// computation must not abort a multi-year simulation; this wrapper is the
// contract that guarantees it. The backtest engine and the ensemble call
// only this, never Analyze directly.
func SafeAnalyze(s Strategy, bars []model.Bar) (sig model.Signal) {
	if len(bars) < s.MinBars() {
		return model.NewSignal(model.ActionHold, 0, 0.5,
			fmt.Sprintf("数据不足(需%d条，实际%d条)", s.MinBars(), len(bars)))
	}
	defer func() {
		if r := recover(); r != nil {
			sig = model.NewSignal(model.ActionHold, 0, 0.5, fmt.Sprintf("分析异常: %v", r))
		}
	}()
	out, err := s.Analyze(bars)
	if err != nil {
		return model.NewSignal(model.ActionHold, 0, 0.5, fmt.Sprintf("分析异常: %v", err))
	}
	return out
}

// round2 rounds to two decimals; signals carry presentation-ready values.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
