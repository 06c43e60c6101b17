// Package report renders trade signals and recent bars as plain text.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Alias1177/AutoTrade/internal/model"
	"github.com/Alias1177/AutoTrade/internal/trading/risk"
)

// PricePlaces is the number of decimals shown for prices
const PricePlaces = 5

// FormatPrice rounds to PricePlaces and drops trailing zeros
func FormatPrice(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(risk.Round(v, PricePlaces), 'f', -1, 64)
}

// FormatLotSize renders the position size or the reason it is missing
func FormatLotSize(sig model.TradeSignal) string {
	if sig.SizeUndefined {
		return "n/a (zero stop distance)"
	}
	return strconv.FormatFloat(sig.LotSize, 'f', 2, 64)
}

// Message builds the text pushed to Telegram
func Message(sig model.TradeSignal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", sig.Instrument, sig.Mode)
	fmt.Fprintf(&b, "Signal: %s\n", sig.Direction)
	fmt.Fprintf(&b, "Entry: %s\n", FormatPrice(sig.Entry))
	fmt.Fprintf(&b, "SL: %s\n", FormatPrice(sig.StopLoss))
	fmt.Fprintf(&b, "TP: %s\n", FormatPrice(sig.TakeProfit))
	fmt.Fprintf(&b, "Lot Size: %s\n", FormatLotSize(sig))
	fmt.Fprintf(&b, "Win Rate: %.2f%%\n", sig.WinRate)
	fmt.Fprintf(&b, "Session: %s", sig.Session)
	return b.String()
}

// Cards renders the signal summary shown after generation
func Cards(sig model.TradeSignal) string {
	var b strings.Builder
	b.WriteString("\n===== SIGNAL =====\n")
	fmt.Fprintf(&b, "%s (%s) | Session: %s | %s\n", sig.Instrument, sig.Mode, sig.Session,
		sig.GeneratedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Signal: %s | Entry: %s | Stop Loss: %s | Take Profit: %s | Lot Size: %s\n",
		sig.Direction, FormatPrice(sig.Entry), FormatPrice(sig.StopLoss), FormatPrice(sig.TakeProfit), FormatLotSize(sig))
	fmt.Fprintf(&b, "Estimated Win Rate: %.2f%%\n", sig.WinRate)
	fmt.Fprintf(&b, "Fast EMA: %s | Slow EMA: %s | ATR: %s (scaled %s)\n",
		FormatPrice(sig.FastEMA), FormatPrice(sig.SlowEMA), FormatPrice(sig.ATR), FormatPrice(sig.ScaledATR))
	fmt.Fprintf(&b, "ID: %s\n", sig.ID)
	return b.String()
}

// WriteTail writes the last n bars of the frame with their indicator values.
func WriteTail(w io.Writer, frame *model.IndicatorFrame, n int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Time\tOpen\tHigh\tLow\tClose\tEMA%d\tEMA%d\tATR%d\t\n",
		frame.Params.FastPeriod, frame.Params.SlowPeriod, frame.Params.ATRPeriod)

	for i := frame.Tail(n); i < frame.Len(); i++ {
		c := frame.Candles[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			c.Timestamp.UTC().Format("2006-01-02 15:04"),
			FormatPrice(c.Open), FormatPrice(c.High), FormatPrice(c.Low), FormatPrice(c.Close),
			FormatPrice(frame.FastEMA[i]), FormatPrice(frame.SlowEMA[i]), FormatPrice(frame.ATR[i]))
	}
	return tw.Flush()
}
