package strategy

import (
	"fmt"
	"math"

	"github.com/LAIrfc/ai-trading-system/internal/calculator"
	"github.com/LAIrfc/ai-trading-system/internal/model"
)

var _ Strategy = (*BollingerBand)(nil)

const (
	bollBaseConfBreak = 0.65 // band re-entry base confidence
	bollBaseConfRev   = 0.50 // turn confirmation base confidence
	bollMaxConf       = 0.85
	bollStrengthW     = 0.6
	bollVolW          = 0.4
	bollVolMA         = 20
	bollSellPosMax    = 0.10 // max residual position on upper-band re-entry

	bollBuyBreakPosMin = 0.65
	bollBuyBreakPosMax = 0.85
	bollBuyRevPosMin   = 0.25
	bollBuyRevPosMax   = 0.50
	bollSellRevPosMin  = 0.10
	bollSellRevPosMax  = 0.25
)

// BollingerConfig configures the Bollinger band strategy.
type BollingerConfig struct {
	Period int     // middle band SMA period, default 20, range [10, 40]
	StdDev float64 // band width in standard deviations, default 2.0, range [1.5, 3.0]
}

// BollingerBand is a mean-reversion strategy: a close returning inside the
// band after an excursion is a confirmed signal; while still outside the
// band, two consecutive days of reversal count as a weaker turn signal.
// Signal strength scales with reversal size (normalized by the stock's own
// daily-return σ) and volume ratio. Trend information is deliberately left
// to the MA/MACD strategies so that ensemble voting stays diversified.
type BollingerBand struct {
	cfg BollingerConfig
}

// NewBollingerBand validates the configuration and creates the strategy.
func NewBollingerBand(cfg BollingerConfig) (*BollingerBand, error) {
	if cfg.Period == 0 {
		cfg.Period = 20
	}
	if cfg.StdDev == 0 {
		cfg.StdDev = 2.0
	}
	if cfg.Period < 2 {
		return nil, fmt.Errorf("bollinger: period %d must be >= 2", cfg.Period)
	}
	if cfg.StdDev <= 0 {
		return nil, fmt.Errorf("bollinger: std_dev %.2f must be positive", cfg.StdDev)
	}
	return &BollingerBand{cfg: cfg}, nil
}

func (s *BollingerBand) Name() string { return "布林带" }

func (s *BollingerBand) MinBars() int {
	n := s.cfg.Period
	if bollVolMA > n {
		n = bollVolMA
	}
	return n + 5
}

func (s *BollingerBand) Analyze(bars []model.Bar) (model.Signal, error) {
	closes := model.Closes(bars)
	n := len(closes)

	mid, upper, lower, err := calculator.Bollinger(closes, s.cfg.Period, s.cfg.StdDev)
	if err != nil {
		return model.Signal{}, err
	}
	_, prevUpper, prevLower, err := calculator.Bollinger(closes[:n-1], s.cfg.Period, s.cfg.StdDev)
	if err != nil {
		return model.Signal{}, err
	}

	cur, prev := closes[n-1], closes[n-2]
	prev2 := prev
	if n >= 3 {
		prev2 = closes[n-3]
	}

	bandWidth := upper - lower
	pctB := 0.5
	if bandWidth > 0 {
		pctB = (cur - lower) / bandWidth
	}

	priceStd := returnStd(closes, maxInt(s.cfg.Period, 20))
	volRatio := volumeRatio(bars, bollVolMA)

	indicators := map[string]float64{
		"上轨":        round2(upper),
		"中轨":        round2(mid),
		"下轨":        round2(lower),
		"%B":        math.Round(pctB*1000) / 1000,
		"vol_ratio": round2(volRatio),
	}
	finish := func(sig model.Signal) (model.Signal, error) {
		sig.Indicators = indicators
		return sig, nil
	}

	// Re-entry from below the lower band: mean reversion confirmed.
	if prev <= prevLower && cur > lower {
		change := (cur - prev) / prev
		factor := bollFactor(change, priceStd, volRatio)
		conf := bollBaseConfBreak + factor*(bollMaxConf-bollBaseConfBreak)
		pos := bollBuyBreakPosMin + factor*(bollBuyBreakPosMax-bollBuyBreakPosMin)
		return finish(model.NewSignal(model.ActionBuy, round2(conf), round2(pos),
			fmt.Sprintf("价格从下轨下方回升, %%B=%.2f%s", pctB, volDesc(volRatio))))
	}

	// Below the lower band: turn confirmation vs. defensive wait.
	if cur < lower {
		if cur > prev && prev > prev2 {
			reversal := (cur - prev2) / prev2
			factor := bollFactor(reversal, priceStd, volRatio)
			conf := bollBaseConfRev + factor*(bollMaxConf-bollBaseConfRev)
			pos := bollBuyRevPosMin + factor*(bollBuyRevPosMax-bollBuyRevPosMin)
			return finish(model.NewSignal(model.ActionBuy, round2(conf), round2(pos),
				fmt.Sprintf("下轨下方拐头回升(%.2f→%.2f→%.2f)", prev2, prev, cur)))
		}
		return finish(model.NewSignal(model.ActionHold, 0.35, 0.15,
			fmt.Sprintf("价格在下轨下方(%.2f<%.2f)但未拐头，等待确认", cur, lower)))
	}

	// Re-entry from above the upper band: mean reversion confirmed.
	if prev >= prevUpper && cur < upper {
		change := (prev - cur) / prev // positive means falling
		factor := bollFactor(change, priceStd, volRatio)
		conf := bollBaseConfBreak + factor*(bollMaxConf-bollBaseConfBreak)
		pos := math.Max(0, bollSellPosMax*(1-factor))
		return finish(model.NewSignal(model.ActionSell, round2(conf), round2(pos),
			fmt.Sprintf("价格从上轨回落, %%B=%.2f%s", pctB, volDesc(volRatio))))
	}

	// Above the upper band: turn confirmation vs. trend-following hold.
	if cur > upper {
		if cur < prev && prev < prev2 {
			reversal := (prev2 - cur) / prev2
			factor := bollFactor(reversal, priceStd, volRatio)
			conf := bollBaseConfRev + factor*(bollMaxConf-bollBaseConfRev)
			pos := bollSellRevPosMax - factor*(bollSellRevPosMax-bollSellRevPosMin)
			return finish(model.NewSignal(model.ActionSell, round2(conf), round2(pos),
				fmt.Sprintf("上轨上方拐头回落(%.2f→%.2f→%.2f)", prev2, prev, cur)))
		}
		// Statistically extreme, so direction is uncertain (low confidence),
		// but a running breakout is not a reason to panic-sell: keep the
		// position high and let the profit run.
		return finish(model.NewSignal(model.ActionHold, 0.4, 0.7,
			fmt.Sprintf("价格突破上轨(%.2f>%.2f)且未拐头，强势持有", cur, upper)))
	}

	return finish(model.NewSignal(model.ActionHold, 0.5, 0.5,
		fmt.Sprintf("价格在布林带内, %%B=%.2f", pctB)))
}

// bollFactor folds reversal strength and volume ratio into a [0,1] factor.
// Strength is normalized against 2σ of the stock's daily returns: a 1%
// bounce is strong for a quiet name and noise for a volatile one.
func bollFactor(priceChange, priceStd, volRatio float64) float64 {
	normStrength := math.Min(math.Abs(priceChange)/(priceStd*2), 1.0)
	normVol := clamp01((volRatio - 0.5) / 2.5)
	return bollStrengthW*normStrength + bollVolW*normVol
}

// returnStd is the sample std dev of daily returns over the last `window`
// bars, falling back to 1% when the window is too short or degenerate.
func returnStd(closes []float64, window int) float64 {
	if len(closes) <= window+1 {
		return 0.01
	}
	rets := make([]float64, 0, window)
	for i := len(closes) - window; i < len(closes); i++ {
		if closes[i-1] > 0 {
			rets = append(rets, closes[i]/closes[i-1]-1)
		}
	}
	sd, err := calculator.StdDev(rets)
	if err != nil || sd <= 1e-8 {
		return 0.01
	}
	return sd
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
