package strategy

import (
	"fmt"

	"github.com/LAIrfc/ai-trading-system/internal/calculator"
	"github.com/LAIrfc/ai-trading-system/internal/model"
)

// Compile-time interface check.
var _ Strategy = (*MACross)(nil)

// MACrossConfig configures the moving-average crossover strategy.
type MACrossConfig struct {
	ShortWindow int // short SMA period, default 5, range [3, 20]
	LongWindow  int // long SMA period, default 20, range [10, 120]
}

// MACross generates a buy signal when the short SMA crosses above the long
// SMA (golden cross) and a sell signal on the opposite cross.
type MACross struct {
	cfg MACrossConfig
}

// NewMACross validates the configuration and creates the strategy.
func NewMACross(cfg MACrossConfig) (*MACross, error) {
	if cfg.ShortWindow == 0 {
		cfg.ShortWindow = 5
	}
	if cfg.LongWindow == 0 {
		cfg.LongWindow = 20
	}
	if cfg.ShortWindow < 2 {
		return nil, fmt.Errorf("ma cross: short_window %d must be >= 2", cfg.ShortWindow)
	}
	if cfg.LongWindow <= cfg.ShortWindow {
		return nil, fmt.Errorf("ma cross: long_window %d must exceed short_window %d",
			cfg.LongWindow, cfg.ShortWindow)
	}
	return &MACross{cfg: cfg}, nil
}

func (s *MACross) Name() string { return "MA均线交叉" }

func (s *MACross) MinBars() int { return s.cfg.LongWindow + 3 }

func (s *MACross) Analyze(bars []model.Bar) (model.Signal, error) {
	closes := model.Closes(bars)
	prev := closes[:len(closes)-1]

	curShort, err := calculator.SMA(closes, s.cfg.ShortWindow)
	if err != nil {
		return model.Signal{}, err
	}
	curLong, err := calculator.SMA(closes, s.cfg.LongWindow)
	if err != nil {
		return model.Signal{}, err
	}
	prevShort, err := calculator.SMA(prev, s.cfg.ShortWindow)
	if err != nil {
		return model.Signal{}, err
	}
	prevLong, err := calculator.SMA(prev, s.cfg.LongWindow)
	if err != nil {
		return model.Signal{}, err
	}

	indicators := map[string]float64{
		fmt.Sprintf("MA%d", s.cfg.ShortWindow): round2(curShort),
		fmt.Sprintf("MA%d", s.cfg.LongWindow):  round2(curLong),
	}

	// Golden cross: short SMA crosses above the long SMA.
	if prevShort <= prevLong && curShort > curLong {
		sig := model.NewSignal(model.ActionBuy, 0.72, 0.8,
			fmt.Sprintf("金叉: MA%d(%.2f) 上穿 MA%d(%.2f)",
				s.cfg.ShortWindow, curShort, s.cfg.LongWindow, curLong))
		sig.Indicators = indicators
		return sig, nil
	}

	// Death cross: short SMA crosses below the long SMA.
	if prevShort >= prevLong && curShort < curLong {
		sig := model.NewSignal(model.ActionSell, 0.72, 0.0,
			fmt.Sprintf("死叉: MA%d(%.2f) 下穿 MA%d(%.2f)",
				s.cfg.ShortWindow, curShort, s.cfg.LongWindow, curLong))
		sig.Indicators = indicators
		return sig, nil
	}

	if curShort > curLong {
		sig := model.NewSignal(model.ActionHold, 0.5, 0.6,
			fmt.Sprintf("均线多头排列, MA%d=%.2f > MA%d=%.2f",
				s.cfg.ShortWindow, curShort, s.cfg.LongWindow, curLong))
		sig.Indicators = indicators
		return sig, nil
	}

	sig := model.NewSignal(model.ActionHold, 0.5, 0.3,
		fmt.Sprintf("均线空头排列, MA%d=%.2f < MA%d=%.2f",
			s.cfg.ShortWindow, curShort, s.cfg.LongWindow, curLong))
	sig.Indicators = indicators
	return sig, nil
}
