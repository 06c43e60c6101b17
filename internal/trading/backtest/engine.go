// Package backtest estimates how often the EMA direction rule called the next bar correctly.
//
// The estimate applies today's indicator configuration retroactively to every
// past bar and checks only the direction of the following close. It opens no
// positions, ignores stops, targets and sizing, and says little about how the
// strategy would have performed. Treat the win rate as a rough hit rate.
package backtest

import (
	"math"

	"github.com/Alias1177/AutoTrade/internal/model"
	"github.com/Alias1177/AutoTrade/internal/trading/risk"
)

// Run walks bars start..N-2 of the frame. A bar is up-favored when the fast
// EMA is above the slow EMA and down-favored otherwise; the trial wins when
// the next close moves strictly in the favored direction. Equal closes lose.
// Bars where either EMA is undefined are skipped.
func Run(frame *model.IndicatorFrame, start int) model.BacktestResult {
	var result model.BacktestResult
	if start < 0 {
		start = 0
	}

	consecutiveWins := 0
	consecutiveLosses := 0

	for i := start; i < frame.Len()-1; i++ {
		fast, slow := frame.FastEMA[i], frame.SlowEMA[i]
		if math.IsNaN(fast) || math.IsNaN(slow) {
			continue
		}

		closeNow := frame.Candles[i].Close
		closeNext := frame.Candles[i+1].Close

		var win bool
		if fast > slow {
			win = closeNext > closeNow
		} else {
			win = closeNext < closeNow
		}

		if win {
			result.Wins++
			consecutiveWins++
			consecutiveLosses = 0
		} else {
			result.Losses++
			consecutiveLosses++
			consecutiveWins = 0
		}

		// Update consecutive counters
		if consecutiveWins > result.MaxConsecutiveWins {
			result.MaxConsecutiveWins = consecutiveWins
		}
		if consecutiveLosses > result.MaxConsecutiveLosses {
			result.MaxConsecutiveLosses = consecutiveLosses
		}
	}

	if total := result.Trials(); total > 0 {
		result.WinRate = risk.Round(float64(result.Wins)/float64(total)*100, 2)
	}

	return result
}
