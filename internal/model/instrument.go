package model

import "time"

// Instrument is a tradable market with its symbol at each data provider
type Instrument struct {
	Name    string            `json:"name" yaml:"name"`
	Symbols map[string]string `json:"symbols" yaml:"symbols"` // provider name -> provider symbol
}

// Symbol returns the provider-specific symbol, falling back to the display name.
func (i Instrument) Symbol(provider string) string {
	if s, ok := i.Symbols[provider]; ok && s != "" {
		return s
	}
	return i.Name
}

// Mode is a trading style: it fixes the sampling interval and the ATR multiplier
type Mode struct {
	Name          string        `json:"name" yaml:"name"`
	Interval      time.Duration `json:"interval" yaml:"interval"`
	ATRMultiplier float64       `json:"atr_multiplier" yaml:"atr_multiplier"`
}
