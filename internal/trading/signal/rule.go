// Package signal turns the latest indicator values into a direction and price levels.
package signal

import (
	"errors"
	"math"

	"github.com/Alias1177/AutoTrade/internal/model"
)

// ErrIndicatorUnavailable is returned when an input indicator is absent (NaN).
var ErrIndicatorUnavailable = errors.New("indicator value unavailable for the latest candle")

// Levels holds the direction and the three prices of a trade suggestion
type Levels struct {
	Direction  model.Direction
	Entry      float64
	StopLoss   float64
	TakeProfit float64
}

// Decide applies the EMA crossover rule.
//
// A fast average strictly above the slow one is a BUY; anything else,
// including equality, is a SELL. The stop sits one scaled ATR away from the
// entry and the target riskReward ATRs away on the other side.
func Decide(price, fastEMA, slowEMA, scaledATR, riskReward float64) (Levels, error) {
	for _, v := range [...]float64{price, fastEMA, slowEMA, scaledATR} {
		if math.IsNaN(v) {
			return Levels{}, ErrIndicatorUnavailable
		}
	}

	entry := price
	if fastEMA > slowEMA {
		return Levels{
			Direction:  model.DirectionBuy,
			Entry:      entry,
			StopLoss:   entry - scaledATR,
			TakeProfit: entry + scaledATR*riskReward,
		}, nil
	}

	return Levels{
		Direction:  model.DirectionSell,
		Entry:      entry,
		StopLoss:   entry + scaledATR,
		TakeProfit: entry - scaledATR*riskReward,
	}, nil
}

// FromFrame applies Decide to the last bar of the frame with the mode's ATR multiplier.
func FromFrame(frame *model.IndicatorFrame, atrMultiplier, riskReward float64) (Levels, error) {
	last := frame.Len() - 1
	if last < 0 || !frame.Defined(last) {
		return Levels{}, ErrIndicatorUnavailable
	}
	return Decide(
		frame.Candles[last].Close,
		frame.FastEMA[last],
		frame.SlowEMA[last],
		frame.ATR[last]*atrMultiplier,
		riskReward,
	)
}
