package generator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/AutoTrade/internal/analysis/technical"
	"github.com/Alias1177/AutoTrade/internal/config"
	"github.com/Alias1177/AutoTrade/internal/metrics"
	"github.com/Alias1177/AutoTrade/internal/model"
)

var fixedNow = time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)

type fakeSource struct {
	candles []model.Candle
	err     error
	delay   time.Duration

	gotInstrument model.Instrument
	gotLookback   time.Duration
	gotInterval   time.Duration
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) GetCandles(ctx context.Context, instrument model.Instrument, lookback, interval time.Duration) ([]model.Candle, error) {
	f.gotInstrument = instrument
	f.gotLookback = lookback
	f.gotInterval = interval
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.candles, f.err
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
	result   model.Delivery
}

func (f *fakeNotifier) Notify(_ context.Context, target model.TelegramTarget, text string) model.Delivery {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !target.Configured() {
		return model.Delivery{Status: model.DeliverySkipped}
	}
	f.messages = append(f.messages, text)
	return f.result
}

func series(n int, closeAt func(int) float64) []model.Candle {
	start := fixedNow.Add(-time.Duration(n) * 5 * time.Minute)
	candles := make([]model.Candle, n)
	for i := range candles {
		c := closeAt(i)
		candles[i] = model.Candle{
			Timestamp: start.Add(time.Duration(i) * 5 * time.Minute),
			Open:      c, High: c + 0.5, Low: c - 0.5, Close: c,
		}
	}
	return candles
}

func request() model.SignalRequest {
	return model.SignalRequest{
		Instrument:  "BTCUSDT",
		Mode:        "Scalping",
		RiskReward:  2,
		RiskPercent: 1,
		Balance:     1000,
	}
}

func newService(source model.CandleSource, n Notifier, m *metrics.Metrics) *Service {
	return NewService(source, config.DefaultCatalog(), Options{
		FetchTimeout: time.Second,
		Notifier:     n,
		Metrics:      m,
		Now:          func() time.Time { return fixedNow },
	})
}

func TestGenerateSignalRisingSeries(t *testing.T) {
	src := &fakeSource{candles: series(60, func(i int) float64 { return 100 + float64(i) })}
	notifier := &fakeNotifier{result: model.Delivery{Status: model.DeliveryDelivered}}
	req := request()
	req.Telegram = model.TelegramTarget{BotToken: "123:abc", ChatID: "42"}

	rep, err := newService(src, notifier, nil).GenerateSignal(context.Background(), req)
	require.NoError(t, err)

	sig := rep.Signal
	assert.Equal(t, model.DirectionBuy, sig.Direction)
	assert.Equal(t, 159.0, sig.Entry)
	assert.Equal(t, 100.0, sig.WinRate)
	assert.Equal(t, "London", sig.Session)
	assert.Equal(t, "BTCUSDT", sig.Instrument)
	assert.Equal(t, "Scalping", sig.Mode)
	assert.Less(t, sig.StopLoss, sig.Entry)
	assert.InDelta(t, sig.Entry+2*(sig.Entry-sig.StopLoss), sig.TakeProfit, 1e-9)
	assert.InDelta(t, sig.ATR*1.0, sig.ScaledATR, 1e-12)
	assert.Greater(t, sig.LotSize, 0.0)
	assert.False(t, sig.SizeUndefined)
	assert.Len(t, sig.ID, 26)

	assert.Equal(t, "BTC-USD", src.gotInstrument.Symbol("yahoo"))
	assert.Equal(t, 5*time.Minute, src.gotInterval)
	assert.Equal(t, 14*24*time.Hour, src.gotLookback)

	assert.True(t, rep.Delivery.OK())
	require.Len(t, notifier.messages, 1)
	assert.Equal(t, rep.Message, notifier.messages[0])
	assert.Contains(t, rep.Message, "Signal: BUY")
	assert.Equal(t, 60, rep.Frame.Len())
}

func TestGenerateSignalFallingSeries(t *testing.T) {
	src := &fakeSource{candles: series(60, func(i int) float64 { return 200 - float64(i) })}
	req := request()
	req.Mode = "swing"

	rep, err := newService(src, nil, nil).GenerateSignal(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, model.DirectionSell, rep.Signal.Direction)
	assert.Equal(t, 100.0, rep.Signal.WinRate)
	assert.Greater(t, rep.Signal.StopLoss, rep.Signal.Entry)
	assert.Equal(t, "Swing", rep.Signal.Mode)
	assert.Equal(t, time.Hour, src.gotInterval)
	assert.InDelta(t, rep.Signal.ATR*2, rep.Signal.ScaledATR, 1e-12)
	assert.Equal(t, model.DeliverySkipped, rep.Delivery.Status)
}

func TestGenerateSignalFlatSeriesIsDegenerate(t *testing.T) {
	src := &fakeSource{candles: series(60, func(int) float64 { return 50 })}
	for i := range src.candles {
		src.candles[i].High = 50
		src.candles[i].Low = 50
	}

	rep, err := newService(src, nil, nil).GenerateSignal(context.Background(), request())
	require.NoError(t, err)

	assert.Equal(t, model.DirectionSell, rep.Signal.Direction)
	assert.Equal(t, 0.0, rep.Signal.ATR)
	assert.Equal(t, 0.0, rep.Signal.WinRate)
	assert.Equal(t, 0.0, rep.Signal.LotSize)
	assert.True(t, rep.Signal.SizeUndefined)
}

func TestGenerateSignalDirectionMatchesEMAs(t *testing.T) {
	src := &fakeSource{candles: series(90, func(i int) float64 {
		return 100 + float64((i*37)%11) - float64(i%5)
	})}

	rep, err := newService(src, nil, nil).GenerateSignal(context.Background(), request())
	require.NoError(t, err)

	if rep.Signal.FastEMA > rep.Signal.SlowEMA {
		assert.Equal(t, model.DirectionBuy, rep.Signal.Direction)
	} else {
		assert.Equal(t, model.DirectionSell, rep.Signal.Direction)
	}
	assert.GreaterOrEqual(t, rep.Signal.WinRate, 0.0)
	assert.LessOrEqual(t, rep.Signal.WinRate, 100.0)
}

func TestGenerateSignalErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  *fakeSource
		mutate  func(r *model.SignalRequest)
		check   func(t *testing.T, err error)
		message string
	}{
		{
			name:   "empty data",
			source: &fakeSource{},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrDataUnavailable)
				assert.ErrorIs(t, err, model.ErrNoData)
			},
			message: "Failed to download data. Try a different symbol or timeframe.",
		},
		{
			name:   "provider failure",
			source: &fakeSource{err: errors.New("connection reset")},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrDataUnavailable)
			},
			message: "Failed to download data. Try a different symbol or timeframe.",
		},
		{
			name:   "fetch timeout",
			source: &fakeSource{candles: series(60, func(int) float64 { return 1 }), delay: 5 * time.Second},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrDataUnavailable)
				assert.ErrorIs(t, err, context.DeadlineExceeded)
			},
			message: "Failed to download data. Try a different symbol or timeframe.",
		},
		{
			name:   "too few candles",
			source: &fakeSource{candles: series(40, func(i int) float64 { return float64(i) })},
			check: func(t *testing.T, err error) {
				var insufficient *technical.InsufficientDataError
				require.ErrorAs(t, err, &insufficient)
				assert.Equal(t, 40, insufficient.Have)
			},
			message: "Not enough market data: need 51 candles, got 40. Try a different symbol or timeframe.",
		},
		{
			name:   "unknown instrument",
			source: &fakeSource{},
			mutate: func(r *model.SignalRequest) { r.Instrument = "DOGE" },
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, model.ErrInvalidRequest)
				assert.ErrorIs(t, err, config.ErrUnknownInstrument)
			},
		},
		{
			name:   "bad risk-reward",
			source: &fakeSource{},
			mutate: func(r *model.SignalRequest) { r.RiskReward = 0 },
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, model.ErrInvalidRequest)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := request()
			if tt.mutate != nil {
				tt.mutate(&req)
			}
			rep, err := newService(tt.source, nil, nil).GenerateSignal(context.Background(), req)
			assert.Nil(t, rep)
			tt.check(t, err)
			if tt.message != "" {
				assert.Equal(t, tt.message, UserMessage(err))
			}
		})
	}
}

func TestGenerateSignalNotifierFailureDoesNotFail(t *testing.T) {
	src := &fakeSource{candles: series(60, func(i int) float64 { return 100 + float64(i) })}
	notifier := &fakeNotifier{result: model.Delivery{Status: model.DeliveryFailed, Err: errors.New("unauthorized")}}
	req := request()
	req.Telegram = model.TelegramTarget{BotToken: "bad", ChatID: "42"}

	rep, err := newService(src, notifier, nil).GenerateSignal(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, model.DeliveryFailed, rep.Delivery.Status)
	assert.Equal(t, model.DirectionBuy, rep.Signal.Direction)
}

func TestGenerateSignalMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	ok := newService(&fakeSource{candles: series(60, func(i int) float64 { return 100 + float64(i) })}, nil, m)
	_, err := ok.GenerateSignal(context.Background(), request())
	require.NoError(t, err)

	bad := newService(&fakeSource{}, nil, m)
	_, err = bad.GenerateSignal(context.Background(), request())
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SignalsTotal.WithLabelValues("BTCUSDT", "BUY")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FailuresTotal.WithLabelValues("data_unavailable")))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.LastWinRate.WithLabelValues("BTCUSDT", "Scalping")))
}

func TestSendTestMessage(t *testing.T) {
	notifier := &fakeNotifier{result: model.Delivery{Status: model.DeliveryDelivered}}
	svc := newService(&fakeSource{}, notifier, nil)

	d := svc.SendTestMessage(context.Background(), model.TelegramTarget{BotToken: "1:a", ChatID: "42"})
	assert.True(t, d.OK())
	assert.Equal(t, []string{TestMessage}, notifier.messages)

	d = svc.SendTestMessage(context.Background(), model.TelegramTarget{})
	assert.Equal(t, model.DeliverySkipped, d.Status)
}
