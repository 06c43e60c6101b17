package generator

import (
	"errors"
	"fmt"

	"github.com/Alias1177/AutoTrade/internal/analysis/technical"
	"github.com/Alias1177/AutoTrade/internal/model"
	"github.com/Alias1177/AutoTrade/internal/trading/signal"
)

// UserMessage turns a pipeline error into the single sentence shown to the user
func UserMessage(err error) string {
	var insufficient *technical.InsufficientDataError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, model.ErrInvalidRequest):
		return fmt.Sprintf("Invalid settings: %v", err)
	case errors.Is(err, ErrDataUnavailable):
		return "Failed to download data. Try a different symbol or timeframe."
	case errors.As(err, &insufficient):
		return fmt.Sprintf("Not enough market data: need %d candles, got %d. Try a different symbol or timeframe.",
			insufficient.Need, insufficient.Have)
	case errors.Is(err, signal.ErrIndicatorUnavailable):
		return "Indicators are not available for the latest candle. Try again later."
	default:
		return fmt.Sprintf("Signal generation failed: %v", err)
	}
}

// failureReason is the metrics label for an error
func failureReason(err error) string {
	var insufficient *technical.InsufficientDataError
	switch {
	case errors.Is(err, model.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrDataUnavailable):
		return "data_unavailable"
	case errors.As(err, &insufficient):
		return "insufficient_data"
	case errors.Is(err, signal.ErrIndicatorUnavailable):
		return "indicator_unavailable"
	default:
		return "other"
	}
}
