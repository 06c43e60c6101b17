// Package id names trade signals. Every generated signal gets one ULID,
// stamped with the signal's generation time, so ids sort by creation order
// in logs and Telegram history.
package id

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// New returns the id for a signal generated at the given time.
// Signals generated within the same millisecond still sort in call order.
func New(generatedAt time.Time) string {
	return ulid.MustNew(ulid.Timestamp(generatedAt.UTC()), ulid.DefaultEntropy()).String()
}
