package model

import (
	"context"
	"time"
)

// CandleSource fetches historical candles for an instrument.
// An empty, error-free result is not expected: implementations return ErrNoData instead.
type CandleSource interface {
	Name() string
	GetCandles(ctx context.Context, instrument Instrument, lookback, interval time.Duration) ([]Candle, error)
}
