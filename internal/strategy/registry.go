package strategy

import "fmt"

// Default trust weights, tuned on walk-forward results: higher Sharpe and
// lower drawdown earn more weight. The PE strategy starts at a neutral 1.0
// until it accumulates its own track record.
var defaultWeights = map[string]float64{
	"双核动量":  1.5,
	"布林带":   1.3,
	"MA均线交叉": 1.2,
	"MACD":  1.1,
	"RSI":   1.0,
	"PE估值":  1.0,
}

// DefaultMembers builds the standard six-strategy committee with default
// parameters and weights.
func DefaultMembers() ([]Member, error) {
	ma, err := NewMACross(MACrossConfig{})
	if err != nil {
		return nil, fmt.Errorf("build default members: %w", err)
	}
	rsi, err := NewRSISignal(RSIConfig{})
	if err != nil {
		return nil, fmt.Errorf("build default members: %w", err)
	}
	macd, err := NewMACDCross(MACDConfig{})
	if err != nil {
		return nil, fmt.Errorf("build default members: %w", err)
	}
	boll, err := NewBollingerBand(BollingerConfig{})
	if err != nil {
		return nil, fmt.Errorf("build default members: %w", err)
	}
	dual, err := NewDualMomentum(DualMomentumConfig{})
	if err != nil {
		return nil, fmt.Errorf("build default members: %w", err)
	}
	pe, err := NewPEValuation(PEValuationConfig{})
	if err != nil {
		return nil, fmt.Errorf("build default members: %w", err)
	}

	strategies := []Strategy{ma, rsi, macd, boll, dual, pe}
	members := make([]Member, 0, len(strategies))
	for _, s := range strategies {
		w, ok := defaultWeights[s.Name()]
		if !ok {
			w = 1.0
		}
		members = append(members, Member{Strategy: s, Weight: w})
	}
	return members, nil
}
