package model

import (
	"math"
	"time"
)

// Candle represents a single price candle
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume,omitempty"`
}

// Valid reports whether every OHLC field holds a finite number.
func (c Candle) Valid() bool {
	for _, v := range [...]float64{c.Open, c.High, c.Low, c.Close} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
