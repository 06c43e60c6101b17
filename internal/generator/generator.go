// Package generator runs the signal pipeline: fetch candles, compute
// indicators, apply the EMA rule, size the position, estimate the win rate
// and push the result to Telegram.
package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/AutoTrade/internal/analysis/technical"
	"github.com/Alias1177/AutoTrade/internal/config"
	"github.com/Alias1177/AutoTrade/internal/id"
	"github.com/Alias1177/AutoTrade/internal/metrics"
	"github.com/Alias1177/AutoTrade/internal/model"
	"github.com/Alias1177/AutoTrade/internal/report"
	"github.com/Alias1177/AutoTrade/internal/session"
	"github.com/Alias1177/AutoTrade/internal/trading/backtest"
	"github.com/Alias1177/AutoTrade/internal/trading/risk"
	"github.com/Alias1177/AutoTrade/internal/trading/signal"
)

// ErrDataUnavailable wraps every failed, empty or timed-out market data fetch
var ErrDataUnavailable = errors.New("market data unavailable")

// TestMessage is sent by SendTestMessage
const TestMessage = "✅ Test message from Auto Trade Tool Pro"

// Notifier delivers a text message and reports the outcome without failing
type Notifier interface {
	Notify(ctx context.Context, target model.TelegramTarget, text string) model.Delivery
}

// Options configures a Service
type Options struct {
	Params       model.IndicatorParams
	Lookback     time.Duration
	FetchTimeout time.Duration
	Notifier     Notifier
	Metrics      *metrics.Metrics
	Now          func() time.Time
}

// Service generates trade signals. It holds no per-request state and may be
// shared by several sessions.
type Service struct {
	source       model.CandleSource
	catalog      *config.Catalog
	params       model.IndicatorParams
	lookback     time.Duration
	fetchTimeout time.Duration
	notifier     Notifier
	metrics      *metrics.Metrics
	now          func() time.Time
	logger       zerolog.Logger
}

// Report is everything one request produces
type Report struct {
	Signal   model.TradeSignal
	Frame    *model.IndicatorFrame
	Backtest model.BacktestResult
	Message  string
	Delivery model.Delivery
}

// NewService creates a new signal Service
func NewService(source model.CandleSource, catalog *config.Catalog, opts Options) *Service {
	if opts.Params == (model.IndicatorParams{}) {
		opts.Params = model.DefaultIndicatorParams()
	}
	if opts.Lookback <= 0 {
		opts.Lookback = 14 * 24 * time.Hour
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		source:       source,
		catalog:      catalog,
		params:       opts.Params,
		lookback:     opts.Lookback,
		fetchTimeout: opts.FetchTimeout,
		notifier:     opts.Notifier,
		metrics:      opts.Metrics,
		now:          opts.Now,
		logger:       log.With().Str("component", "generator").Logger(),
	}
}

// Catalog returns the instruments and modes the service accepts
func (s *Service) Catalog() *config.Catalog {
	return s.catalog
}

// GenerateSignal runs the whole pipeline for one request.
// Notification problems never fail the request; they are reported in Report.Delivery.
func (s *Service) GenerateSignal(ctx context.Context, req model.SignalRequest) (*Report, error) {
	rep, err := s.generate(ctx, req)
	if err != nil {
		s.metrics.Failure(failureReason(err))
		s.logger.Warn().Err(err).Str("instrument", req.Instrument).Str("mode", req.Mode).Msg("Signal generation failed")
		return nil, err
	}

	if s.notifier != nil {
		rep.Delivery = s.notifier.Notify(ctx, req.Telegram, rep.Message)
	} else {
		rep.Delivery = model.Delivery{Status: model.DeliverySkipped}
	}
	s.metrics.Notification(string(rep.Delivery.Status))

	return rep, nil
}

func (s *Service) generate(ctx context.Context, req model.SignalRequest) (*Report, error) {
	// 1. Validate the request against the catalog
	if err := req.Validate(); err != nil {
		return nil, err
	}
	instrument, err := s.catalog.Instrument(req.Instrument)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrInvalidRequest, err)
	}
	mode, err := s.catalog.Mode(req.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrInvalidRequest, err)
	}

	// 2. Fetch market data
	candles, err := s.fetch(ctx, instrument, mode)
	if err != nil {
		return nil, err
	}

	// 3. Calculate technical indicators
	frame, err := technical.Compute(candles, s.params)
	if err != nil {
		return nil, err
	}

	// 4. Apply the direction rule to the last candle
	levels, err := signal.FromFrame(frame, mode.ATRMultiplier, req.RiskReward)
	if err != nil {
		return nil, err
	}

	// 5. Position size and win rate
	sizing := risk.CalculatePositionSize(req.Balance, req.RiskPercent, levels.Entry, levels.StopLoss)
	bt := backtest.Run(frame, s.params.SlowPeriod)

	now := s.now().UTC()
	last := frame.Len() - 1
	sig := model.TradeSignal{
		ID:            id.New(now),
		Instrument:    instrument.Name,
		Mode:          mode.Name,
		Direction:     levels.Direction,
		Entry:         levels.Entry,
		StopLoss:      levels.StopLoss,
		TakeProfit:    levels.TakeProfit,
		LotSize:       sizing.PositionSize,
		SizeUndefined: sizing.Degenerate,
		WinRate:       bt.WinRate,
		Session:       session.Classify(now),
		FastEMA:       frame.FastEMA[last],
		SlowEMA:       frame.SlowEMA[last],
		ATR:           frame.ATR[last],
		ScaledATR:     frame.ATR[last] * mode.ATRMultiplier,
		GeneratedAt:   now,
	}

	s.metrics.Signal(sig.Instrument, sig.Mode, string(sig.Direction), sig.WinRate)
	s.logger.Info().
		Str("id", sig.ID).
		Str("instrument", sig.Instrument).
		Str("mode", sig.Mode).
		Str("direction", string(sig.Direction)).
		Float64("entry", sig.Entry).
		Float64("win_rate", sig.WinRate).
		Int("trials", bt.Trials()).
		Bool("size_undefined", sig.SizeUndefined).
		Msg("Signal generated")

	return &Report{
		Signal:   sig,
		Frame:    frame,
		Backtest: bt,
		Message:  report.Message(sig),
	}, nil
}

// fetch retrieves candles under the fetch timeout. Every failure, including
// an empty result or the timeout, is reported as ErrDataUnavailable.
func (s *Service) fetch(ctx context.Context, instrument model.Instrument, mode model.Mode) ([]model.Candle, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	start := time.Now()
	candles, err := s.source.GetCandles(fetchCtx, instrument, s.lookback, mode.Interval)
	s.metrics.ObserveFetch(time.Since(start), len(candles))

	if err != nil {
		return nil, fmt.Errorf("%w: %s %s from %s: %w", ErrDataUnavailable, instrument.Name, mode.Interval, s.source.Name(), err)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, model.ErrNoData)
	}

	s.logger.Debug().Int("count", len(candles)).Str("instrument", instrument.Name).Msg("Fetched candles")
	return candles, nil
}

// SendTestMessage checks a Telegram target by sending a fixed message.
func (s *Service) SendTestMessage(ctx context.Context, target model.TelegramTarget) model.Delivery {
	if s.notifier == nil {
		return model.Delivery{Status: model.DeliverySkipped}
	}
	d := s.notifier.Notify(ctx, target, TestMessage)
	s.metrics.Notification(string(d.Status))
	return d
}
