package strategy

import (
	"fmt"

	"github.com/LAIrfc/ai-trading-system/internal/calculator"
	"github.com/LAIrfc/ai-trading-system/internal/model"
)

var _ Strategy = (*RSISignal)(nil)

// RSIConfig configures the RSI overbought/oversold strategy.
type RSIConfig struct {
	Period     int     // RSI period, default 14, range [6, 30]
	Oversold   float64 // default 30, range [15, 35]
	Overbought float64 // default 70, range [65, 85]
}

// RSISignal trades RSI excursions with turn confirmation: a breakout back
// from the oversold/overbought zone is a strong signal; while still inside
// the zone, only two consecutive days of reversal count, which keeps the
// strategy from re-entering on every bar of a long drawdown.
type RSISignal struct {
	cfg RSIConfig
}

// NewRSISignal validates the configuration and creates the strategy.
func NewRSISignal(cfg RSIConfig) (*RSISignal, error) {
	if cfg.Period == 0 {
		cfg.Period = 14
	}
	if cfg.Oversold == 0 {
		cfg.Oversold = 30
	}
	if cfg.Overbought == 0 {
		cfg.Overbought = 70
	}
	if cfg.Period < 2 {
		return nil, fmt.Errorf("rsi: period %d must be >= 2", cfg.Period)
	}
	if cfg.Oversold >= cfg.Overbought {
		return nil, fmt.Errorf("rsi: oversold %.0f must be below overbought %.0f",
			cfg.Oversold, cfg.Overbought)
	}
	return &RSISignal{cfg: cfg}, nil
}

func (s *RSISignal) Name() string { return "RSI" }

// MinBars: the RSI window plus a three-day lookback for turn confirmation.
func (s *RSISignal) MinBars() int { return s.cfg.Period + 5 }

func (s *RSISignal) Analyze(bars []model.Bar) (model.Signal, error) {
	closes := model.Closes(bars)

	cur, err := calculator.RSI(closes, s.cfg.Period)
	if err != nil {
		return model.Signal{}, err
	}
	prev, err := calculator.RSI(closes[:len(closes)-1], s.cfg.Period)
	if err != nil {
		return model.Signal{}, err
	}
	prev2, err := calculator.RSI(closes[:len(closes)-2], s.cfg.Period)
	if err != nil {
		return model.Signal{}, err
	}

	indicators := map[string]float64{"RSI": round2(cur), "RSI_prev": round2(prev)}
	finish := func(sig model.Signal) (model.Signal, error) {
		sig.Indicators = indicators
		return sig, nil
	}

	// Breakout back up from the oversold zone.
	if prev < s.cfg.Oversold && cur >= s.cfg.Oversold {
		return finish(model.NewSignal(model.ActionBuy, 0.78, 0.8,
			fmt.Sprintf("RSI从超卖区回升突破 (%.1f→%.1f)", prev, cur)))
	}

	// Still oversold: require two consecutive rising days.
	if cur < s.cfg.Oversold {
		if cur > prev && prev > prev2 {
			return finish(model.NewSignal(model.ActionBuy, 0.58, 0.4,
				fmt.Sprintf("RSI超卖区拐头确认 (%.1f→%.1f→%.1f)", prev2, prev, cur)))
		}
		return finish(model.NewSignal(model.ActionHold, 0.4, 0.3,
			fmt.Sprintf("RSI超卖(%.1f)但未拐头，等待底部确认", cur)))
	}

	// Breakout back down from the overbought zone.
	if prev > s.cfg.Overbought && cur <= s.cfg.Overbought {
		return finish(model.NewSignal(model.ActionSell, 0.78, 0.0,
			fmt.Sprintf("RSI从超买区回落突破 (%.1f→%.1f)", prev, cur)))
	}

	// Still overbought: require two consecutive falling days.
	if cur > s.cfg.Overbought {
		if cur < prev && prev < prev2 {
			return finish(model.NewSignal(model.ActionSell, 0.58, 0.2,
				fmt.Sprintf("RSI超买区拐头确认 (%.1f→%.1f→%.1f)", prev2, prev, cur)))
		}
		return finish(model.NewSignal(model.ActionHold, 0.4, 0.6,
			fmt.Sprintf("RSI超买(%.1f)但未拐头，继续观察", cur)))
	}

	return finish(model.NewSignal(model.ActionHold, 0.5, 0.5,
		fmt.Sprintf("RSI中性区间 (%.1f)", cur)))
}
