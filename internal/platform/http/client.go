package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Client is a wrapper for HTTP client with rate limiting
type Client struct {
	HTTPClient *http.Client
	Limiter    *rate.Limiter

	maxRetries      int
	maxRetryTimeout time.Duration
	initialInterval time.Duration
	logger          zerolog.Logger
}

// ClientOptions holds options for creating a new Client
type ClientOptions struct {
	Timeout         time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
	// InitialInterval is the first backoff delay; zero uses the backoff library default.
	InitialInterval time.Duration
	Transport       http.RoundTripper
}

// NewClient creates a new HTTP client with rate limiting
func NewClient(opts ClientOptions) *Client {
	// Set default values if not provided
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 5
	}
	if opts.MaxRetryTimeout == 0 {
		opts.MaxRetryTimeout = 30 * time.Second
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: opts.Transport,
		},
		Limiter:         rate.NewLimiter(rate.Every(time.Second/time.Duration(opts.RequestsPerSec)), opts.RequestsPerSec),
		maxRetries:      opts.MaxRetries,
		maxRetryTimeout: opts.MaxRetryTimeout,
		initialInterval: opts.InitialInterval,
		logger:          log.With().Str("component", "http_client").Logger(),
	}
}

// DoRequest performs an HTTP request with rate limiting and retries.
// The caller owns the response body. Client errors other than 429 are not retried.
func (c *Client) DoRequest(ctx context.Context, req *http.Request) (*http.Response, error) {
	// Wait for rate limiter
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var resp *http.Response
	attempt := 0
	operation := func() error {
		attempt++
		var err error
		resp, err = c.HTTPClient.Do(req.WithContext(ctx))
		if err != nil {
			c.logger.Debug().Err(err).Int("attempt", attempt).Str("host", req.URL.Host).Msg("request failed")
			return err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			statusErr := &HTTPStatusError{StatusCode: resp.StatusCode}
			c.logger.Debug().Int("status", resp.StatusCode).Int("attempt", attempt).Str("host", req.URL.Host).Msg("unexpected status")
			if !statusErr.Retryable() {
				return backoff.Permanent(statusErr)
			}
			return statusErr
		}
		return nil
	}

	// Use exponential backoff for retries
	backoffStrategy := backoff.NewExponentialBackOff()
	backoffStrategy.MaxElapsedTime = c.maxRetryTimeout
	if c.initialInterval > 0 {
		backoffStrategy.InitialInterval = c.initialInterval
	}

	var policy backoff.BackOff = backoffStrategy
	if c.maxRetries > 0 {
		policy = backoff.WithMaxRetries(policy, uint64(c.maxRetries))
	}

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, err
	}

	return resp, nil
}

// HTTPStatusError represents an error due to a non-200 HTTP status code
type HTTPStatusError struct {
	StatusCode int
}

// Error implements the error interface
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("non-200 status code: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Retryable reports whether the status is worth another attempt
func (e *HTTPStatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}
