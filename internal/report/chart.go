package report

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/Alias1177/AutoTrade/internal/model"
)

// ChartOptions controls Chart
type ChartOptions struct {
	Bars   int  // most recent bars to plot
	Height int  // rows of the plot area
	Color  bool // ANSI colors; leave off for Telegram
}

// DefaultChartOptions plots the last 60 bars in 12 rows without colors
func DefaultChartOptions() ChartOptions {
	return ChartOptions{Bars: 60, Height: 12}
}

// Chart plots close, fast EMA and slow EMA for the most recent bars.
// Bars before the slow EMA is defined are left out. It returns "" when fewer
// than two bars can be plotted.
func Chart(frame *model.IndicatorFrame, opts ChartOptions) string {
	def := DefaultChartOptions()
	if opts.Bars <= 0 {
		opts.Bars = def.Bars
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}

	start := frame.Tail(opts.Bars)
	for start < frame.Len() && (math.IsNaN(frame.FastEMA[start]) || math.IsNaN(frame.SlowEMA[start])) {
		start++
	}
	if frame.Len()-start < 2 {
		return ""
	}

	n := frame.Len() - start
	closes := make([]float64, n)
	high := 0.0
	for i := range closes {
		closes[i] = frame.Candles[start+i].Close
		high = math.Max(high, math.Abs(closes[i]))
	}

	graphOpts := []asciigraph.Option{
		asciigraph.Height(opts.Height),
		asciigraph.Precision(chartPrecision(high)),
		asciigraph.Caption(fmt.Sprintf("Close vs EMA%d / EMA%d, last %d bars",
			frame.Params.FastPeriod, frame.Params.SlowPeriod, n)),
		asciigraph.SeriesLegends("Close",
			fmt.Sprintf("EMA%d", frame.Params.FastPeriod),
			fmt.Sprintf("EMA%d", frame.Params.SlowPeriod)),
	}
	if opts.Color {
		graphOpts = append(graphOpts, asciigraph.SeriesColors(asciigraph.Default, asciigraph.Green, asciigraph.Red))
	}

	return asciigraph.PlotMany([][]float64{
		closes,
		frame.FastEMA[start:],
		frame.SlowEMA[start:],
	}, graphOpts...)
}

// chartPrecision picks axis label decimals: FX quotes need more than indices
func chartPrecision(high float64) uint {
	switch {
	case high < 10:
		return 4
	case high < 1000:
		return 2
	default:
		return 0
	}
}
