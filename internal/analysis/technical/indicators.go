// Package technical computes the indicator frame used by the signal rule and the backtester.
package technical

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Alias1177/AutoTrade/internal/model"
)

// ErrInvalidParams is returned for non-positive indicator windows
var ErrInvalidParams = errors.New("indicator windows must be positive")

// InsufficientDataError reports that too few valid bars remain after cleaning
type InsufficientDataError struct {
	Have int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: need %d valid candles, got %d", e.Need, e.Have)
}

// RequiredCandles returns the minimum number of valid bars Compute accepts.
func RequiredCandles(params model.IndicatorParams) int {
	need := params.SlowPeriod + 1
	if params.ATRPeriod+1 > need {
		need = params.ATRPeriod + 1
	}
	if params.FastPeriod > need {
		need = params.FastPeriod
	}
	return need
}

// CleanCandles drops bars with missing or non-finite OHLC values, orders the
// rest by time and keeps the last bar for a repeated timestamp.
// The input slice is not modified.
func CleanCandles(candles []model.Candle) []model.Candle {
	valid := make([]model.Candle, 0, len(candles))
	for _, c := range candles {
		if c.Valid() {
			valid = append(valid, c)
		}
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Timestamp.Before(valid[j].Timestamp)
	})

	out := valid[:0]
	for i, c := range valid {
		if i > 0 && c.Timestamp.Equal(out[len(out)-1].Timestamp) {
			out[len(out)-1] = c
			continue
		}
		out = append(out, c)
	}
	return out
}

// Compute cleans the series and calculates the fast EMA, slow EMA and ATR columns.
func Compute(candles []model.Candle, params model.IndicatorParams) (*model.IndicatorFrame, error) {
	if params.FastPeriod <= 0 || params.SlowPeriod <= 0 || params.ATRPeriod <= 0 {
		return nil, fmt.Errorf("%w: fast=%d slow=%d atr=%d",
			ErrInvalidParams, params.FastPeriod, params.SlowPeriod, params.ATRPeriod)
	}

	clean := CleanCandles(candles)
	if need := RequiredCandles(params); len(clean) < need {
		return nil, &InsufficientDataError{Have: len(clean), Need: need}
	}

	closes := make([]float64, len(clean))
	for i, c := range clean {
		closes[i] = c.Close
	}

	return &model.IndicatorFrame{
		Params:  params,
		Candles: clean,
		FastEMA: CalculateEMA(closes, params.FastPeriod),
		SlowEMA: CalculateEMA(closes, params.SlowPeriod),
		ATR:     CalculateATR(clean, params.ATRPeriod),
	}, nil
}
