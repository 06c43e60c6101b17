// Package yahoo fetches candles from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/AutoTrade/internal/model"
	httpClient "github.com/Alias1177/AutoTrade/internal/platform/http"
)

// ProviderName is the key used for Yahoo symbols in the instrument catalog
const ProviderName = "yahoo"

const defaultBaseURL = "https://query1.finance.yahoo.com"

// ErrUnsupportedInterval is returned for sampling intervals the chart API does not serve
var ErrUnsupportedInterval = errors.New("unsupported interval")

// Client is the Yahoo Finance chart API client
type Client struct {
	baseURL    string
	httpClient *httpClient.Client
	now        func() time.Time
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Yahoo client
type ClientOptions struct {
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
	Now             func() time.Time
}

// NewClient creates a new Yahoo Finance client
func NewClient(options ClientOptions) *Client {
	httpOpts := httpClient.ClientOptions{
		Timeout:         options.RequestTimeout,
		RequestsPerSec:  options.RequestsPerSec,
		MaxRetries:      options.MaxRetries,
		MaxRetryTimeout: options.MaxRetryTimeout,
	}

	if options.BaseURL == "" {
		options.BaseURL = defaultBaseURL
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	return &Client{
		baseURL:    options.BaseURL,
		httpClient: httpClient.NewClient(httpOpts),
		now:        options.Now,
		logger:     log.With().Str("component", "yahoo_client").Logger(),
	}
}

// Name returns the provider name
func (c *Client) Name() string {
	return ProviderName
}

// chartResponse is the subset of the v8 chart payload we read. Prices are
// pointers because the API reports missing bars as null.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol   string `json:"symbol"`
				Currency string `json:"currency"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetCandles fetches candles for the last lookback period at the given interval.
// Null prices are returned as NaN so the indicator engine can drop those bars.
func (c *Client) GetCandles(ctx context.Context, instrument model.Instrument, lookback, interval time.Duration) ([]model.Candle, error) {
	yInterval, err := formatInterval(interval)
	if err != nil {
		return nil, err
	}

	symbol := instrument.Symbol(ProviderName)
	end := c.now().UTC()
	start := end.Add(-lookback)

	query := url.Values{}
	query.Set("period1", strconv.FormatInt(start.Unix(), 10))
	query.Set("period2", strconv.FormatInt(end.Unix(), 10))
	query.Set("interval", yInterval)
	query.Set("includePrePost", "false")
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), query.Encode())

	c.logger.Debug().Str("url", endpoint).Msg("Fetching candles")

	// Create a new request with context
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; AutoTrade/1.0)")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var data chartResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("response", truncate(body)).Msg("Error parsing JSON")
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	if e := data.Chart.Error; e != nil {
		c.logger.Error().Str("code", e.Code).Str("description", e.Description).Msg("Yahoo chart API error")
		return nil, fmt.Errorf("Yahoo chart API error: %s: %s", e.Code, e.Description)
	}

	if len(data.Chart.Result) == 0 || len(data.Chart.Result[0].Timestamp) == 0 ||
		len(data.Chart.Result[0].Indicators.Quote) == 0 {
		c.logger.Warn().Str("symbol", symbol).Msg("No candles in response")
		return nil, model.ErrNoData
	}

	result := data.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	candles := make([]model.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		candles = append(candles, model.Candle{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      floatAt(quote.Open, i),
			High:      floatAt(quote.High, i),
			Low:       floatAt(quote.Low, i),
			Close:     floatAt(quote.Close, i),
			Volume:    intAt(quote.Volume, i),
		})
	}

	c.logger.Debug().Int("count", len(candles)).Str("symbol", symbol).Msg("Fetched candles")
	return candles, nil
}

// formatInterval converts a sampling interval to the chart API notation
func formatInterval(interval time.Duration) (string, error) {
	switch interval {
	case time.Minute:
		return "1m", nil
	case 2 * time.Minute:
		return "2m", nil
	case 5 * time.Minute:
		return "5m", nil
	case 15 * time.Minute:
		return "15m", nil
	case 30 * time.Minute:
		return "30m", nil
	case time.Hour:
		return "1h", nil
	case 90 * time.Minute:
		return "90m", nil
	case 24 * time.Hour:
		return "1d", nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedInterval, interval)
}

func floatAt(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return math.NaN()
	}
	return *values[i]
}

func intAt(values []*int64, i int) int64 {
	if i >= len(values) || values[i] == nil {
		return 0
	}
	return *values[i]
}

func truncate(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
