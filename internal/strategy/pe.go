package strategy

import (
	"fmt"
	"sort"

	"github.com/LAIrfc/ai-trading-system/internal/model"
)

var _ Strategy = (*PEValuation)(nil)

// Signal shaping for the PE strategy. Confidence and position scale linearly
// with how deep the current percentile sits inside the buy or sell zone.
const (
	peBaseConf = 0.60
	peMaxConf  = 0.85

	peBuyPosMin = 0.65
	peBuyPosMax = 0.85

	peSellPosMin = 0.00
	peSellPosMax = 0.15
)

// PEValuationConfig configures the PE percentile strategy.
type PEValuationConfig struct {
	LowQuantile  float64 // buy below this historical percentile, default 0.2
	HighQuantile float64 // sell above this historical percentile, default 0.8
	Window       int     // rolling window in trading days, default 756 (about 3 years)
}

// PEValuation trades mean reversion of the PE-TTM valuation: cheap relative
// to the instrument's own history is a buy, expensive is a sell. It needs
// bars carrying the PETTM field; series without it degrade to HOLD.
type PEValuation struct {
	cfg PEValuationConfig
}

// NewPEValuation validates the configuration and creates the strategy.
func NewPEValuation(cfg PEValuationConfig) (*PEValuation, error) {
	if cfg.LowQuantile == 0 {
		cfg.LowQuantile = 0.2
	}
	if cfg.HighQuantile == 0 {
		cfg.HighQuantile = 0.8
	}
	if cfg.Window == 0 {
		cfg.Window = 756
	}
	if cfg.LowQuantile <= 0 || cfg.HighQuantile >= 1 || cfg.LowQuantile >= cfg.HighQuantile {
		return nil, fmt.Errorf("pe valuation: need 0 < low(%.2f) < high(%.2f) < 1",
			cfg.LowQuantile, cfg.HighQuantile)
	}
	if cfg.Window < 60 {
		return nil, fmt.Errorf("pe valuation: window must be >= 60, got %d", cfg.Window)
	}
	return &PEValuation{cfg: cfg}, nil
}

func (s *PEValuation) Name() string { return "PE估值" }

func (s *PEValuation) MinBars() int { return maxInt(60, s.cfg.Window) }

func (s *PEValuation) Analyze(bars []model.Bar) (model.Signal, error) {
	// Only plausible values participate. Zero or negative PE means losses
	// or missing data, and PE above 100 is usually a data glitch.
	var history []float64
	for _, b := range bars {
		if b.PETTM > 0 && b.PETTM <= 100 {
			history = append(history, b.PETTM)
		}
	}
	if len(history) > s.cfg.Window {
		history = history[len(history)-s.cfg.Window:]
	}

	if len(history) < 60 {
		return model.Signal{
			Action:     model.ActionHold,
			Confidence: 0,
			Position:   0.5,
			Reason:     fmt.Sprintf("PE数据不足(需60条，实际%d条)", len(history)),
		}, nil
	}

	curPE := history[len(history)-1]
	quantile := percentileRank(history, curPE)
	indicators := map[string]float64{
		"PE":     round2(curPE),
		"PE分位数":  round2(quantile),
		"有效样本数": float64(len(history)),
	}
	finish := func(sig model.Signal) (model.Signal, error) {
		sig.Indicators = indicators
		return sig, nil
	}

	if quantile < s.cfg.LowQuantile {
		// Closer to percentile zero means a stronger buy.
		strength := clamp01((s.cfg.LowQuantile - quantile) / s.cfg.LowQuantile)
		return finish(model.NewSignal(model.ActionBuy,
			round2(peBaseConf+strength*(peMaxConf-peBaseConf)),
			round2(peBuyPosMin+strength*(peBuyPosMax-peBuyPosMin)),
			fmt.Sprintf("PE低估(分位%.1f%%，当前PE=%.1f)", quantile*100, curPE)))
	}

	if quantile > s.cfg.HighQuantile {
		strength := clamp01((quantile - s.cfg.HighQuantile) / (1 - s.cfg.HighQuantile))
		return finish(model.NewSignal(model.ActionSell,
			round2(peBaseConf+strength*(peMaxConf-peBaseConf)),
			round2(peSellPosMax-strength*(peSellPosMax-peSellPosMin)),
			fmt.Sprintf("PE高估(分位%.1f%%，当前PE=%.1f)", quantile*100, curPE)))
	}

	// Neutral zone: tilt the suggested position toward the cheaper side.
	position := 0.5 + (0.5-quantile)*0.2
	return finish(model.NewSignal(model.ActionHold, 0.5, round2(position),
		fmt.Sprintf("PE中性(分位%.1f%%，当前PE=%.1f)", quantile*100, curPE)))
}

// percentileRank returns the fraction of values strictly below v, in [0, 1].
func percentileRank(values []float64, v float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	below := sort.SearchFloat64s(sorted, v)
	return float64(below) / float64(len(sorted))
}
