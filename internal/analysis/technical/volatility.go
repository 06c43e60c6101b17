package technical

import (
	"math"

	"github.com/Alias1177/AutoTrade/internal/model"
)

// TrueRange returns the per-bar true range. Bar 0 has no previous close and is NaN.
func TrueRange(candles []model.Candle) []float64 {
	out := nanSeries(len(candles))
	for i := 1; i < len(candles); i++ {
		// True Range is the greatest of:
		// 1. Current High - Current Low
		// 2. Abs(Current High - Previous Close)
		// 3. Abs(Current Low - Previous Close)
		highLow := candles[i].High - candles[i].Low
		highPrevClose := math.Abs(candles[i].High - candles[i-1].Close)
		lowPrevClose := math.Abs(candles[i].Low - candles[i-1].Close)

		out[i] = math.Max(highLow, math.Max(highPrevClose, lowPrevClose))
	}
	return out
}

// CalculateATR calculates the Average True Range series with Wilder smoothing.
//
// The first value sits at index period and is the mean of the true ranges of
// bars 1..period; every later value is (prev*(period-1) + tr) / period.
func CalculateATR(candles []model.Candle, period int) []float64 {
	out := nanSeries(len(candles))
	if period <= 0 || len(candles) <= period {
		return out
	}

	tr := TrueRange(candles)

	var sum float64
	for i := 1; i <= period; i++ {
		sum += tr[i]
	}
	atr := sum / float64(period)
	out[period] = atr

	for i := period + 1; i < len(candles); i++ {
		atr = (atr*float64(period-1) + tr[i]) / float64(period)
		out[i] = atr
	}

	return out
}
