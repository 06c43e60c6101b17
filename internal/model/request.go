package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrInvalidRequest is returned for out-of-range signal request fields
	ErrInvalidRequest = errors.New("invalid signal request")
	// ErrNoData is returned by candle sources when the provider has nothing for the query
	ErrNoData = errors.New("empty data returned")
)

// TelegramTarget is where a generated signal is pushed. Both fields empty means no push.
type TelegramTarget struct {
	BotToken string `json:"-" yaml:"bot_token"`
	ChatID   string `json:"chat_id" yaml:"chat_id"`
}

// Configured reports whether both the token and the chat are present
func (t TelegramTarget) Configured() bool {
	return strings.TrimSpace(t.BotToken) != "" && strings.TrimSpace(t.ChatID) != ""
}

// SignalRequest is the per-invocation configuration owned by the calling session
type SignalRequest struct {
	Instrument  string         `json:"instrument"`
	Mode        string         `json:"mode"`
	RiskReward  float64        `json:"risk_reward"`
	RiskPercent float64        `json:"risk_percent"`
	Balance     float64        `json:"balance"`
	Telegram    TelegramTarget `json:"telegram"`
}

// Validate checks the numeric ranges of the request
func (r SignalRequest) Validate() error {
	if r.Instrument == "" {
		return fmt.Errorf("%w: instrument is required", ErrInvalidRequest)
	}
	if r.Mode == "" {
		return fmt.Errorf("%w: mode is required", ErrInvalidRequest)
	}
	if !finite(r.RiskReward) || r.RiskReward < 1 {
		return fmt.Errorf("%w: risk-reward must be >= 1, got %v", ErrInvalidRequest, r.RiskReward)
	}
	if !finite(r.RiskPercent) || r.RiskPercent <= 0 {
		return fmt.Errorf("%w: risk percent must be > 0, got %v", ErrInvalidRequest, r.RiskPercent)
	}
	if !finite(r.Balance) || r.Balance < 0 {
		return fmt.Errorf("%w: balance must be >= 0, got %v", ErrInvalidRequest, r.Balance)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
