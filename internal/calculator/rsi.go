package calculator

import "errors"

// RSI computes the Wilder-smoothed relative strength index over the given
// period. Needs period+1 prices for the seed window; shorter input reads as
// the neutral 50.
func RSI(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period+1 {
		return 50.0, nil
	}

	var avgGain, avgLoss float64
	for i := 1; i < len(prices); i++ {
		gain, loss := 0.0, 0.0
		if d := prices[i] - prices[i-1]; d > 0 {
			gain = d
		} else {
			loss = -d
		}

		switch {
		case i < period:
			// Accumulating the seed window.
			avgGain += gain
			avgLoss += loss
		case i == period:
			avgGain = (avgGain + gain) / float64(period)
			avgLoss = (avgLoss + loss) / float64(period)
		default:
			// Wilder smoothing: the prior average carries period-1 weight.
			avgGain = (avgGain*float64(period-1) + gain) / float64(period)
			avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		}
	}

	if avgLoss == 0 {
		return 100.0, nil
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs), nil
}
