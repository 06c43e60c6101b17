package report

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/Alias1177/AutoTrade/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSignal() model.TradeSignal {
	return model.TradeSignal{
		ID:          "01HZX",
		Instrument:  "EURUSD",
		Mode:        "Intraday",
		Direction:   model.DirectionBuy,
		Entry:       1.0865012,
		StopLoss:    1.0849987,
		TakeProfit:  1.0895,
		LotSize:     6666.67,
		WinRate:     53.33,
		Session:     "London",
		GeneratedAt: time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC),
	}
}

func TestMessage(t *testing.T) {
	expected := "EURUSD (Intraday)\n" +
		"Signal: BUY\n" +
		"Entry: 1.0865\n" +
		"SL: 1.085\n" +
		"TP: 1.0895\n" +
		"Lot Size: 6666.67\n" +
		"Win Rate: 53.33%\n" +
		"Session: London"
	assert.Equal(t, expected, Message(testSignal()))
}

func TestMessageUndefinedSize(t *testing.T) {
	sig := testSignal()
	sig.LotSize = 0
	sig.SizeUndefined = true
	assert.Contains(t, Message(sig), "Lot Size: n/a (zero stop distance)")
}

func TestCards(t *testing.T) {
	out := Cards(testSignal())
	assert.Contains(t, out, "Signal: BUY | Entry: 1.0865 | Stop Loss: 1.085 | Take Profit: 1.0895 | Lot Size: 6666.67")
	assert.Contains(t, out, "Estimated Win Rate: 53.33%")
	assert.Contains(t, out, "2024-06-03T10:00:00Z")
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "100", FormatPrice(100))
	assert.Equal(t, "151.23457", FormatPrice(151.234567))
	assert.Equal(t, "-", FormatPrice(math.NaN()))
}

func TestWriteTail(t *testing.T) {
	start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	frame := &model.IndicatorFrame{Params: model.DefaultIndicatorParams()}
	for i := 0; i < 30; i++ {
		p := 100 + float64(i)
		frame.Candles = append(frame.Candles, model.Candle{
			Timestamp: start.Add(time.Duration(i) * time.Hour), Open: p, High: p, Low: p, Close: p,
		})
		frame.FastEMA = append(frame.FastEMA, math.NaN())
		frame.SlowEMA = append(frame.SlowEMA, math.NaN())
		frame.ATR = append(frame.ATR, math.NaN())
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTail(&buf, frame, 20))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 21)
	assert.Contains(t, lines[0], "EMA20")
	assert.Contains(t, lines[1], "2024-06-03 10:00")
	assert.Contains(t, lines[20], "129")
}
