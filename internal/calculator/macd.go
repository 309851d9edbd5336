package calculator

// MACD computes the DIF (fast EMA - slow EMA) and DEA (EMA of DIF) series.
// The histogram, when needed, is (DIF-DEA)*2 by A-share convention.
func MACD(prices []float64, fastPeriod, slowPeriod, signalPeriod int) (dif, dea []float64) {
	emaFast := EMASeries(prices, fastPeriod)
	emaSlow := EMASeries(prices, slowPeriod)
	dif = make([]float64, len(prices))
	for i := range prices {
		dif[i] = emaFast[i] - emaSlow[i]
	}
	dea = EMASeries(dif, signalPeriod)
	return dif, dea
}
