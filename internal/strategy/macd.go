package strategy

import (
	"fmt"
	"math"

	"github.com/LAIrfc/ai-trading-system/internal/calculator"
	"github.com/LAIrfc/ai-trading-system/internal/model"
)

var _ Strategy = (*MACDCross)(nil)

// Internal constants, fixed by experience and deliberately kept out of any
// parameter grid search to avoid overfitting.
const (
	macdBaseConf       = 0.65 // bare cross base confidence
	macdMaxConf        = 0.90
	macdAboveZeroBonus = 0.05 // golden cross above the zero axis
	macdSlopeWeight    = 0.6
	macdVolWeight      = 0.4
	macdVolMA          = 20 // volume baseline window
	macdSlopeLookback  = 60 // DIF slope / gap std lookback
	macdSellPosMax     = 0.12

	// Position ladders. Buy minimum stays above the bull-hold maximum so a
	// golden cross always outranks plain bullish momentum.
	macdBuyPosMin  = 0.70
	macdBuyPosMax  = 0.95
	macdBullPosMin = 0.40
	macdBullPosMax = 0.65
	macdBearPosMin = 0.05
	macdBearPosMax = 0.25
)

// MACDConfig configures the MACD crossover strategy.
type MACDConfig struct {
	FastPeriod   int // fast EMA, default 12, range [5, 20]
	SlowPeriod   int // slow EMA, default 26, range [20, 60]
	SignalPeriod int // DEA period, default 9, range [5, 15]
}

// MACDCross trades DIF/DEA crossovers. Confidence and position scale with a
// combined factor of DIF slope steepness (normalized by its own rolling σ,
// so high- and low-volatility names are treated alike) and volume ratio
// against the 20-day average. Between crosses it emits momentum HOLDs whose
// position tracks the DIF-DEA gap.
type MACDCross struct {
	cfg MACDConfig
}

// NewMACDCross validates the configuration and creates the strategy.
func NewMACDCross(cfg MACDConfig) (*MACDCross, error) {
	if cfg.FastPeriod == 0 {
		cfg.FastPeriod = 12
	}
	if cfg.SlowPeriod == 0 {
		cfg.SlowPeriod = 26
	}
	if cfg.SignalPeriod == 0 {
		cfg.SignalPeriod = 9
	}
	if cfg.FastPeriod < 2 || cfg.SignalPeriod < 2 {
		return nil, fmt.Errorf("macd: periods must be >= 2, got fast=%d signal=%d",
			cfg.FastPeriod, cfg.SignalPeriod)
	}
	if cfg.SlowPeriod <= cfg.FastPeriod {
		return nil, fmt.Errorf("macd: slow_period %d must exceed fast_period %d",
			cfg.SlowPeriod, cfg.FastPeriod)
	}
	return &MACDCross{cfg: cfg}, nil
}

func (s *MACDCross) Name() string { return "MACD" }

// MinBars: EMA convergence plus the 60-bar lookback for slope/gap σ.
func (s *MACDCross) MinBars() int {
	slow := s.cfg.SlowPeriod
	if s.cfg.FastPeriod > slow {
		slow = s.cfg.FastPeriod
	}
	return slow + macdSlopeLookback + 5
}

func (s *MACDCross) Analyze(bars []model.Bar) (model.Signal, error) {
	closes := model.Closes(bars)
	dif, dea := calculator.MACD(closes, s.cfg.FastPeriod, s.cfg.SlowPeriod, s.cfg.SignalPeriod)

	n := len(dif)
	curDif, curDea := dif[n-1], dea[n-1]
	prevDif, prevDea := dif[n-2], dea[n-2]
	curHist := (curDif - curDea) * 2

	difSlope := curDif - prevDif
	slopeStd := rollingStd(calculator.Diffs(dif), macdSlopeLookback, 0.01)
	gaps := make([]float64, n)
	for i := range dif {
		gaps[i] = dif[i] - dea[i]
	}
	gapStd := rollingStd(gaps, macdSlopeLookback, 0.1)
	volRatio := volumeRatio(bars, macdVolMA)

	indicators := map[string]float64{
		"DIF":       round4(curDif),
		"DEA":       round4(curDea),
		"MACD柱":     round4(curHist),
		"vol_ratio": round2(volRatio),
	}
	finish := func(sig model.Signal) (model.Signal, error) {
		sig.Indicators = indicators
		return sig, nil
	}

	// Golden cross: DIF crosses above DEA. A steeper slope and heavier
	// volume push confidence and position toward their caps; crossing
	// above the zero axis confirms trend continuation.
	if prevDif <= prevDea && curDif > curDea {
		factor := s.combinedFactor(difSlope, slopeStd, volRatio)
		base := macdBaseConf
		zeroDesc := ""
		if curDif > 0 {
			base += macdAboveZeroBonus
			zeroDesc = "(零轴上方,强势)"
		}
		conf := base + factor*(macdMaxConf-base)
		pos := macdBuyPosMin + factor*(macdBuyPosMax-macdBuyPosMin)
		return finish(model.NewSignal(model.ActionBuy, round2(conf), round2(pos),
			fmt.Sprintf("MACD金叉%s: DIF=%.4f 上穿 DEA=%.4f%s",
				zeroDesc, curDif, curDea, volDesc(volRatio))))
	}

	// Death cross: a heavy, steep cross sells decisively; a shrinking-volume
	// shallow cross keeps a small residual position.
	if prevDif >= prevDea && curDif < curDea {
		factor := s.combinedFactor(difSlope, slopeStd, volRatio)
		conf := macdBaseConf + factor*(macdMaxConf-macdBaseConf)
		pos := math.Max(0, macdSellPosMax*(1-factor))
		return finish(model.NewSignal(model.ActionSell, round2(conf), round2(pos),
			fmt.Sprintf("MACD死叉: DIF=%.4f 下穿 DEA=%.4f%s",
				curDif, curDea, volDesc(volRatio))))
	}

	// No cross. Position tracks the DIF-DEA gap, normalized by its own 2σ.
	gap := math.Abs(curDif - curDea)
	normGap := math.Min(gap/math.Max(gapStd*2, 1e-6), 1.0)
	if curDif > curDea {
		pos := macdBullPosMin + normGap*(macdBullPosMax-macdBullPosMin)
		return finish(model.NewSignal(model.ActionHold, 0.5, round2(pos),
			fmt.Sprintf("DIF>DEA 多头动能, DIF=%.4f, DEA=%.4f, 柱=%.4f", curDif, curDea, curHist)))
	}
	pos := macdBearPosMax - normGap*(macdBearPosMax-macdBearPosMin)
	return finish(model.NewSignal(model.ActionHold, 0.5, round2(pos),
		fmt.Sprintf("DIF<DEA 空头动能, DIF=%.4f, DEA=%.4f, 柱=%.4f", curDif, curDea, curHist)))
}

// combinedFactor folds DIF slope and volume ratio into a [0,1] factor.
// The slope is normalized against 2σ of its own recent history: DIF crosses
// zero, so absolute differences are used, never percentage changes.
func (s *MACDCross) combinedFactor(difSlope, slopeStd, volRatio float64) float64 {
	threshold := math.Max(slopeStd*2, 1e-6)
	normSlope := math.Min(math.Abs(difSlope)/threshold, 1.0)
	normVol := clamp01((volRatio - 0.5) / 2.5)
	return macdSlopeWeight*normSlope + macdVolWeight*normVol
}

// rollingStd computes the sample std dev of the last `lookback` values,
// falling back to `fallback` when the window is too short or degenerate.
func rollingStd(values []float64, lookback int, fallback float64) float64 {
	if len(values) <= lookback {
		return fallback
	}
	sd, err := calculator.StdDev(values[len(values)-lookback:])
	if err != nil || sd <= 1e-8 {
		return fallback
	}
	return sd
}

// volumeRatio returns today's volume over the prior `window`-day average
// (excluding today, which is more robust to the current bar's own spike).
func volumeRatio(bars []model.Bar, window int) float64 {
	if len(bars) <= window {
		return 1.0
	}
	vols := model.Volumes(bars)
	avg, err := calculator.Mean(vols[len(vols)-window-1 : len(vols)-1])
	if err != nil || avg <= 0 {
		return 1.0
	}
	return vols[len(vols)-1] / avg
}

func volDesc(volRatio float64) string {
	if volRatio > 1.2 {
		return fmt.Sprintf(", 量比%.1f", volRatio)
	}
	return ""
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
