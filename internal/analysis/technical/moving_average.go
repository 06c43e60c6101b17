package technical

import "math"

// CalculateEMA returns the exponential moving average of prices.
// The series is seeded with the simple average of the first period prices at
// index period-1; earlier values are NaN.
func CalculateEMA(prices []float64, period int) []float64 {
	out := nanSeries(len(prices))
	if period <= 0 || len(prices) < period {
		return out
	}

	// Calculate simple moving average for the initial value
	var sum float64
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	ema := sum / float64(period)
	out[period-1] = ema

	// Multiplier for weighting the EMA
	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(prices); i++ {
		ema = (prices[i]-ema)*multiplier + ema
		out[i] = ema
	}

	return out
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
