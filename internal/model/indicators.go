package model

import "math"

// IndicatorParams holds the indicator window sizes
type IndicatorParams struct {
	FastPeriod int `json:"fast_period" yaml:"fast_period"`
	SlowPeriod int `json:"slow_period" yaml:"slow_period"`
	ATRPeriod  int `json:"atr_period" yaml:"atr_period"`
}

// DefaultIndicatorParams returns EMA 20/50 and ATR 14.
func DefaultIndicatorParams() IndicatorParams {
	return IndicatorParams{FastPeriod: 20, SlowPeriod: 50, ATRPeriod: 14}
}

// IndicatorFrame is a cleaned price series with per-bar indicator columns.
// Values that are not yet defined for a bar are NaN.
type IndicatorFrame struct {
	Params  IndicatorParams `json:"params"`
	Candles []Candle        `json:"candles"`
	FastEMA []float64       `json:"fast_ema"`
	SlowEMA []float64       `json:"slow_ema"`
	ATR     []float64       `json:"atr"`
}

// Len returns the number of bars in the frame
func (f *IndicatorFrame) Len() int {
	return len(f.Candles)
}

// Defined reports whether all three indicators are present at bar i.
func (f *IndicatorFrame) Defined(i int) bool {
	if i < 0 || i >= len(f.Candles) {
		return false
	}
	return !math.IsNaN(f.FastEMA[i]) && !math.IsNaN(f.SlowEMA[i]) && !math.IsNaN(f.ATR[i])
}

// Tail returns the index of the first of the last n bars.
func (f *IndicatorFrame) Tail(n int) int {
	if n >= len(f.Candles) {
		return 0
	}
	return len(f.Candles) - n
}
