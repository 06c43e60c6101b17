// Package session names the trading session for a moment in time.
package session

import "time"

const (
	Asia    = "Asia"
	London  = "London"
	NewYork = "New York"
)

// Classify maps the UTC time of day to a session label:
// [00:00, 08:00) Asia, [08:00, 16:00) London, otherwise New York.
func Classify(t time.Time) string {
	switch h := t.UTC().Hour(); {
	case h < 8:
		return Asia
	case h < 16:
		return London
	default:
		return NewYork
	}
}

// Current returns the session for the current wall clock
func Current() string {
	return Classify(time.Now())
}
