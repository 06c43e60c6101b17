package model

import "time"

// Direction is the suggested side of a trade
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// TradeSignal is the immutable result of one signal-generation request
type TradeSignal struct {
	ID         string    `json:"id"`
	Instrument string    `json:"instrument"`
	Mode       string    `json:"mode"`
	Direction  Direction `json:"direction"`
	Entry      float64   `json:"entry"`
	StopLoss   float64   `json:"stop_loss"`
	TakeProfit float64   `json:"take_profit"`
	LotSize    float64   `json:"lot_size"`

	// SizeUndefined is set when the stop distance is zero and LotSize is not a recommendation.
	SizeUndefined bool `json:"size_undefined"`

	WinRate     float64   `json:"win_rate"`
	Session     string    `json:"session"`
	FastEMA     float64   `json:"fast_ema"`
	SlowEMA     float64   `json:"slow_ema"`
	ATR         float64   `json:"atr"`
	ScaledATR   float64   `json:"scaled_atr"`
	GeneratedAt time.Time `json:"generated_at"`
}

// DeliveryStatus describes what happened to a notification
type DeliveryStatus string

const (
	DeliverySkipped   DeliveryStatus = "SKIPPED"
	DeliveryDelivered DeliveryStatus = "DELIVERED"
	DeliveryFailed    DeliveryStatus = "FAILED"
)

// Delivery captures the outcome of a best-effort notification
type Delivery struct {
	Status DeliveryStatus `json:"status"`
	Err    error          `json:"-"`
}

// OK reports whether the message reached the endpoint
func (d Delivery) OK() bool {
	return d.Status == DeliveryDelivered
}
