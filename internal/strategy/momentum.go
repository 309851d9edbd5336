package strategy

import (
	"fmt"
	"math"

	"github.com/LAIrfc/ai-trading-system/internal/calculator"
	"github.com/LAIrfc/ai-trading-system/internal/model"
)

var _ Strategy = (*DualMomentum)(nil)

// DualMomentumConfig configures the single-asset dual momentum strategy.
type DualMomentumConfig struct {
	AbsPeriod int // absolute momentum SMA period, default 60, range [20, 200]
	RelPeriod int // relative momentum lookback, default 20, range [5, 120]
}

// DualMomentum combines absolute momentum (price above its N-day SMA means
// the trend is up) with relative momentum (the M-day return measures how
// strong it is). Both agreeing is a signal; disagreement is a HOLD with a
// cautious position.
type DualMomentum struct {
	cfg DualMomentumConfig
}

// NewDualMomentum validates the configuration and creates the strategy.
func NewDualMomentum(cfg DualMomentumConfig) (*DualMomentum, error) {
	if cfg.AbsPeriod == 0 {
		cfg.AbsPeriod = 60
	}
	if cfg.RelPeriod == 0 {
		cfg.RelPeriod = 20
	}
	if cfg.AbsPeriod < 2 || cfg.RelPeriod < 2 {
		return nil, fmt.Errorf("dual momentum: periods must be >= 2, got abs=%d rel=%d",
			cfg.AbsPeriod, cfg.RelPeriod)
	}
	return &DualMomentum{cfg: cfg}, nil
}

func (s *DualMomentum) Name() string { return "双核动量" }

func (s *DualMomentum) MinBars() int { return s.cfg.AbsPeriod + 5 }

func (s *DualMomentum) Analyze(bars []model.Bar) (model.Signal, error) {
	closes := model.Closes(bars)

	maN, err := calculator.SMA(closes, s.cfg.AbsPeriod)
	if err != nil {
		return model.Signal{}, err
	}
	cur := closes[len(closes)-1]
	aboveMA := cur > maN

	momentum := 0.0
	if m, err := calculator.Momentum(closes, s.cfg.RelPeriod); err == nil {
		momentum = m
	}

	indicators := map[string]float64{
		fmt.Sprintf("MA%d", s.cfg.AbsPeriod): round2(maN),
		"动量%":                                round2(momentum),
	}
	finish := func(sig model.Signal) (model.Signal, error) {
		sig.Indicators = indicators
		return sig, nil
	}

	if aboveMA && momentum > 0 {
		return finish(model.NewSignal(model.ActionBuy,
			momentumConfidence(momentum), buyPosition(momentum),
			fmt.Sprintf("双重确认: 价格(%.2f)在MA%d(%.2f)上方, %d日动量=%+.2f%%",
				cur, s.cfg.AbsPeriod, maN, s.cfg.RelPeriod, momentum)))
	}

	if !aboveMA && momentum < 0 {
		return finish(model.NewSignal(model.ActionSell,
			momentumConfidence(momentum), sellPosition(momentum),
			fmt.Sprintf("双重预警: 价格(%.2f)在MA%d(%.2f)下方, %d日动量=%+.2f%%",
				cur, s.cfg.AbsPeriod, maN, s.cfg.RelPeriod, momentum)))
	}

	if !aboveMA && momentum > 0 {
		return finish(model.NewSignal(model.ActionHold, 0.45, 0.3,
			fmt.Sprintf("信号矛盾: 均线下方但动量转正(%+.2f%%)，等待确认", momentum)))
	}

	if aboveMA && momentum < 0 {
		return finish(model.NewSignal(model.ActionHold, 0.45, 0.4,
			fmt.Sprintf("趋势减弱: 均线上方但动量转负(%+.2f%%)，关注回调", momentum)))
	}

	return finish(model.NewSignal(model.ActionHold, 0.5, 0.5,
		fmt.Sprintf("动量中性, 价格=%.2f, MA%d=%.2f", cur, s.cfg.AbsPeriod, maN)))
}

// momentumConfidence maps a momentum percentage into [0.55, 0.85] with a
// sigmoid so extreme momentum saturates instead of overflowing:
//
//	conf = base + (peak-base) * (1-e^(-|m|/k)) / (1+e^(-|m|/k)), k = 10
func momentumConfidence(momentumPct float64) float64 {
	const base, peak, k = 0.55, 0.85, 10.0
	x := math.Abs(momentumPct)
	sigmoid := (1 - math.Exp(-x/k)) / (1 + math.Exp(-x/k))
	return round2(base + (peak-base)*sigmoid)
}

func buyPosition(momentumPct float64) float64 {
	return round2(math.Min(0.9, 0.4+math.Abs(momentumPct)/50))
}

func sellPosition(momentumPct float64) float64 {
	return round2(math.Max(0.0, 0.3-math.Abs(momentumPct)/50))
}
