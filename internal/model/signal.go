package model

// Action is a strategy's directional recommendation.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Signal is the uniform output contract every strategy produces, one per
// analyzed bar.
//
// Confidence describes certainty of direction; Position is an independent
// target portfolio weight (0 = flat, 1 = fully invested). The two may
// disagree: a strategy can report low directional confidence while still
// suggesting a high position to let a winning trend run.
type Signal struct {
	Action     Action
	Confidence float64 // 0.0 ~ 1.0
	Position   float64 // 0.0 ~ 1.0
	Reason     string
	Indicators map[string]float64
}

// NewSignal builds a Signal with confidence and position clamped into [0,1].
// The clamp is a hard contract: whatever a strategy computes, consumers can
// rely on both fields being in range.
func NewSignal(action Action, confidence, position float64, reason string) Signal {
	return Signal{
		Action:     action,
		Confidence: clamp01(confidence),
		Position:   clamp01(position),
		Reason:     reason,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
