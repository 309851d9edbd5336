package model

import "time"

// Bar is a single daily OHLCV record for one trading date.
//
// Date is the trading date; a series of bars is always sorted ascending by
// date with no duplicates (the data fetcher guarantees this, the engine and
// strategies do not re-validate).
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	Amount float64

	// Optional columns. TurnoverRate is the daily turnover percentage;
	// PETTM and PB are sparse fundamentals forward-filled by the fetcher
	// from disclosure dates. Zero means the column is absent.
	TurnoverRate float64
	PETTM        float64
	PB           float64
}

// Closes extracts the close column from a bar series.
func Closes(bars []Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// Volumes extracts the volume column from a bar series.
func Volumes(bars []Bar) []float64 {
	vols := make([]float64, len(bars))
	for i, b := range bars {
		vols[i] = b.Volume
	}
	return vols
}
