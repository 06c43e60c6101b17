package report

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/AutoTrade/internal/analysis/technical"
	"github.com/Alias1177/AutoTrade/internal/model"
)

func risingFrame(t *testing.T, n int) *model.IndicatorFrame {
	t.Helper()
	start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	candles := make([]model.Candle, n)
	for i := range candles {
		p := 100 + float64(i)
		candles[i] = model.Candle{
			Timestamp: start.Add(time.Duration(i) * 15 * time.Minute),
			Open:      p, High: p + 0.5, Low: p - 0.5, Close: p,
		}
	}
	frame, err := technical.Compute(candles, model.DefaultIndicatorParams())
	require.NoError(t, err)
	return frame
}

func TestChart(t *testing.T) {
	frame := risingFrame(t, 60)

	out := Chart(frame, DefaultChartOptions())
	require.NotEmpty(t, out)

	// slow EMA starts at bar 49, so 11 of the 60 bars are plotted
	assert.Contains(t, out, "Close vs EMA20 / EMA50, last 11 bars")
	assert.Contains(t, out, "Close")
	assert.Contains(t, out, "EMA20")
	assert.Contains(t, out, "EMA50")
	assert.GreaterOrEqual(t, strings.Count(out, "\n"), DefaultChartOptions().Height)
}

func TestChartBarsAndHeight(t *testing.T) {
	frame := risingFrame(t, 60)

	out := Chart(frame, ChartOptions{Bars: 5, Height: 6, Color: true})
	assert.Contains(t, out, "last 5 bars")
	assert.Less(t, strings.Count(out, "\n"), strings.Count(Chart(frame, ChartOptions{Bars: 5, Height: 20}), "\n"))
}

func TestChartTooFewBars(t *testing.T) {
	nan := math.NaN()
	frame := &model.IndicatorFrame{
		Params:  model.DefaultIndicatorParams(),
		Candles: []model.Candle{{Close: 1}, {Close: 2}, {Close: 3}},
		FastEMA: []float64{nan, nan, 2},
		SlowEMA: []float64{nan, nan, 2},
		ATR:     []float64{nan, nan, nan},
	}
	assert.Empty(t, Chart(frame, DefaultChartOptions()))

	assert.NotEmpty(t, Chart(risingFrame(t, 51), DefaultChartOptions()), "two defined bars are enough")
}

func TestChartPrecision(t *testing.T) {
	assert.Equal(t, uint(4), chartPrecision(1.0842))
	assert.Equal(t, uint(2), chartPrecision(151.2))
	assert.Equal(t, uint(0), chartPrecision(64000))
}
