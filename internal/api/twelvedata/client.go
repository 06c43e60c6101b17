package twelvedata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/AutoTrade/internal/model"
	httpClient "github.com/Alias1177/AutoTrade/internal/platform/http"
)

// ProviderName is the key used for Twelve Data symbols in the instrument catalog
const ProviderName = "twelvedata"

// maxOutputSize is the largest outputsize the time_series endpoint accepts
const maxOutputSize = 5000

// ErrUnsupportedInterval is returned for sampling intervals Twelve Data does not serve
var ErrUnsupportedInterval = errors.New("unsupported interval")

// Client is the TwelveData API client
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new TwelveData client
type ClientOptions struct {
	APIKey          string
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new TwelveData API client
func NewClient(options ClientOptions) *Client {
	httpOpts := httpClient.ClientOptions{
		Timeout:         options.RequestTimeout,
		RequestsPerSec:  options.RequestsPerSec,
		MaxRetries:      options.MaxRetries,
		MaxRetryTimeout: options.MaxRetryTimeout,
	}

	// Apply defaults if not set
	if httpOpts.Timeout == 0 {
		httpOpts.Timeout = 30 * time.Second
	}
	if httpOpts.RequestsPerSec == 0 {
		httpOpts.RequestsPerSec = 5
	}
	if options.BaseURL == "" {
		options.BaseURL = "https://api.twelvedata.com"
	}

	return &Client{
		apiKey:     options.APIKey,
		baseURL:    options.BaseURL,
		httpClient: httpClient.NewClient(httpOpts),
		logger:     log.With().Str("component", "twelvedata_client").Logger(),
	}
}

// Name returns the provider name
func (c *Client) Name() string {
	return ProviderName
}

// timeSeriesResponse represents the API response from Twelve Data.
// Prices arrive as strings; anything that does not parse becomes NaN.
type timeSeriesResponse struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Interval string `json:"interval"`
	} `json:"meta"`
	Values []struct {
		Datetime string `json:"datetime"`
		Open     string `json:"open"`
		High     string `json:"high"`
		Low      string `json:"low"`
		Close    string `json:"close"`
		Volume   string `json:"volume,omitempty"`
	} `json:"values"`
	Status  string `json:"status"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// GetCandles fetches enough candles to cover lookback at the given interval,
// oldest first.
func (c *Client) GetCandles(ctx context.Context, instrument model.Instrument, lookback, interval time.Duration) ([]model.Candle, error) {
	tdInterval, err := formatInterval(interval)
	if err != nil {
		return nil, err
	}

	symbol := instrument.Symbol(ProviderName)
	days := int(math.Ceil(lookback.Hours() / 24))
	count := calculateCandlesForLookback(tdInterval, days)

	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("interval", tdInterval)
	query.Set("outputsize", strconv.Itoa(count))
	query.Set("timezone", "UTC")
	query.Set("apikey", c.apiKey)
	endpoint := fmt.Sprintf("%s/time_series?%s", c.baseURL, query.Encode())

	c.logger.Debug().Str("symbol", symbol).Str("interval", tdInterval).Int("outputsize", count).Msg("Fetching candles")

	// Create a new request with context
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var data timeSeriesResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Msg("Error parsing JSON")
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	if data.Status == "error" {
		c.logger.Error().Int("code", data.Code).Str("message", data.Message).Msg("Twelve Data API error")
		if data.Code == http.StatusBadRequest && strings.Contains(strings.ToLower(data.Message), "no data") {
			return nil, model.ErrNoData
		}
		return nil, fmt.Errorf("Twelve Data API error %d: %s", data.Code, data.Message)
	}

	if len(data.Values) == 0 {
		c.logger.Warn().Str("symbol", symbol).Msg("No candles in response")
		return nil, model.ErrNoData
	}

	// Sort candles by datetime (oldest first for proper calculations)
	sort.Slice(data.Values, func(i, j int) bool {
		return data.Values[i].Datetime < data.Values[j].Datetime
	})

	candles := make([]model.Candle, 0, len(data.Values))
	for _, v := range data.Values {
		ts, err := parseDatetime(v.Datetime)
		if err != nil {
			c.logger.Warn().Str("datetime", v.Datetime).Msg("Skipping candle with bad datetime")
			continue
		}
		volume, _ := strconv.ParseInt(v.Volume, 10, 64)
		candles = append(candles, model.Candle{
			Timestamp: ts,
			Open:      parsePrice(v.Open),
			High:      parsePrice(v.High),
			Low:       parsePrice(v.Low),
			Close:     parsePrice(v.Close),
			Volume:    volume,
		})
	}

	c.logger.Debug().Int("count", len(candles)).Msg("Fetched candles")
	return candles, nil
}

func parsePrice(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func parseDatetime(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.UTC); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}

// formatInterval converts a sampling interval to Twelve Data notation
func formatInterval(interval time.Duration) (string, error) {
	switch interval {
	case time.Minute:
		return "1min", nil
	case 5 * time.Minute:
		return "5min", nil
	case 15 * time.Minute:
		return "15min", nil
	case 30 * time.Minute:
		return "30min", nil
	case 45 * time.Minute:
		return "45min", nil
	case time.Hour:
		return "1h", nil
	case 2 * time.Hour:
		return "2h", nil
	case 4 * time.Hour:
		return "4h", nil
	case 24 * time.Hour:
		return "1day", nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedInterval, interval)
}

// calculateCandlesForLookback estimates how many candles cover the given number of days
func calculateCandlesForLookback(interval string, days int) int {
	if days < 1 {
		days = 1
	}

	candlesPerDay := 0
	switch interval {
	case "1min":
		candlesPerDay = 24 * 60
	case "5min":
		candlesPerDay = 24 * 12
	case "15min":
		candlesPerDay = 24 * 4
	case "30min":
		candlesPerDay = 24 * 2
	case "45min":
		candlesPerDay = 24 * 60 / 45 // Using integer division to get proper count
	case "1h":
		candlesPerDay = 24
	case "2h":
		candlesPerDay = 12
	case "4h":
		candlesPerDay = 6
	case "1day":
		candlesPerDay = 1
	}

	// Calculate the number of candles for the specified days and add a buffer
	count := int(float64(candlesPerDay) * float64(days) * 1.1)
	if count > maxOutputSize {
		count = maxOutputSize
	}
	return count
}
