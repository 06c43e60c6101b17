// Package api selects the market data provider configured for the process.
package api

import (
	"errors"
	"fmt"

	"github.com/Alias1177/AutoTrade/internal/api/twelvedata"
	"github.com/Alias1177/AutoTrade/internal/api/yahoo"
	"github.com/Alias1177/AutoTrade/internal/config"
	"github.com/Alias1177/AutoTrade/internal/model"
)

// ErrUnknownProvider is returned for a DATA_PROVIDER value with no client
var ErrUnknownProvider = errors.New("unknown data provider")

// NewSource builds the candle source named by cfg.DataProvider
func NewSource(cfg *config.Config) (model.CandleSource, error) {
	switch cfg.DataProvider {
	case "", yahoo.ProviderName:
		return yahoo.NewClient(yahoo.ClientOptions{
			RequestTimeout: cfg.RequestTimeout,
			RequestsPerSec: cfg.RequestsPerSec,
			MaxRetries:     cfg.MaxRetries,
		}), nil
	case twelvedata.ProviderName:
		if cfg.TwelveAPIKey == "" {
			return nil, errors.New("TWELVE_API_KEY is required for the twelvedata provider")
		}
		return twelvedata.NewClient(twelvedata.ClientOptions{
			APIKey:         cfg.TwelveAPIKey,
			RequestTimeout: cfg.RequestTimeout,
			RequestsPerSec: cfg.RequestsPerSec,
			MaxRetries:     cfg.MaxRetries,
		}), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.DataProvider)
	}
}
