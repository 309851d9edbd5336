package calculator

import (
	"errors"
	"math"
)

// Bollinger computes the middle/upper/lower band values at the last bar
// using a `period` SMA and `stdDev` standard deviations.
func Bollinger(prices []float64, period int, stdDev float64) (mid, upper, lower float64, err error) {
	mid, err = SMA(prices, period)
	if err != nil {
		return 0, 0, 0, err
	}
	sd, err := StdDev(prices[len(prices)-period:])
	if err != nil {
		return 0, 0, 0, err
	}
	return mid, mid + stdDev*sd, mid - stdDev*sd, nil
}

// Mean returns the arithmetic mean of values.
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.New("no values provided")
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), nil
}

// StdDev returns the sample standard deviation (n-1 denominator) of values.
func StdDev(values []float64) (float64, error) {
	if len(values) < 2 {
		return 0, errors.New("need at least two values for std dev")
	}
	mean, _ := Mean(values)
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1)), nil
}

// Diffs returns consecutive differences: out[i] = values[i+1] - values[i].
func Diffs(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		out[i-1] = values[i] - values[i-1]
	}
	return out
}
