// Package metrics exposes Prometheus counters for signal generation.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Metrics holds all Prometheus metrics for the signal pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	SignalsTotal       *prometheus.CounterVec // labels: instrument, direction
	FailuresTotal      *prometheus.CounterVec // labels: reason
	NotificationsTotal *prometheus.CounterVec // labels: status
	FetchDuration      prometheus.Histogram
	CandlesFetched     prometheus.Histogram
	LastWinRate        *prometheus.GaugeVec // labels: instrument, mode
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autotrade_signals_total",
			Help: "Trade signals generated",
		}, []string{"instrument", "direction"}),
		FailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autotrade_signal_failures_total",
			Help: "Signal requests that ended in an error",
		}, []string{"reason"}),
		NotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autotrade_notifications_total",
			Help: "Telegram deliveries by outcome",
		}, []string{"status"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "autotrade_fetch_duration_seconds",
			Help:    "Market data fetch latency",
			Buckets: prometheus.DefBuckets,
		}),
		CandlesFetched: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "autotrade_candles_fetched",
			Help:    "Candles returned per fetch",
			Buckets: prometheus.ExponentialBuckets(16, 2, 10),
		}),
		LastWinRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "autotrade_last_win_rate_percent",
			Help: "Win rate of the most recent signal",
		}, []string{"instrument", "mode"}),
	}

	reg.MustRegister(
		m.SignalsTotal,
		m.FailuresTotal,
		m.NotificationsTotal,
		m.FetchDuration,
		m.CandlesFetched,
		m.LastWinRate,
	)
	return m
}

// ObserveFetch records one market data fetch
func (m *Metrics) ObserveFetch(d time.Duration, candles int) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
	m.CandlesFetched.Observe(float64(candles))
}

// Signal records a generated signal
func (m *Metrics) Signal(instrument, mode, direction string, winRate float64) {
	if m == nil {
		return
	}
	m.SignalsTotal.WithLabelValues(instrument, direction).Inc()
	m.LastWinRate.WithLabelValues(instrument, mode).Set(winRate)
}

// Failure records a failed request
func (m *Metrics) Failure(reason string) {
	if m == nil {
		return
	}
	m.FailuresTotal.WithLabelValues(reason).Inc()
}

// Notification records a delivery outcome
func (m *Metrics) Notification(status string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(status).Inc()
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer creates a metrics server for the given gatherer.
func NewServer(addr string, gatherer prometheus.Gatherer) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &Server{
		addr: addr,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler returns the server's HTTP handler
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Info().Str("addr", s.addr).Msg("Metrics server listening")
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Metrics server error")
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
