package risk

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// PositionSizingResult holds position sizing calculation results
type PositionSizingResult struct {
	PositionSize float64 `json:"position_size"`
	RiskAmount   float64 `json:"risk_amount"`
	StopDistance float64 `json:"stop_distance"`
	// Degenerate is true when the stop distance is zero and the size cannot be computed.
	Degenerate bool `json:"degenerate"`
}

// CalculatePositionSize converts the account risk into a position size.
//
// riskPercent is in percent (1 means 1%). The size is rounded to two decimals
// with banker's rounding. A zero stop distance yields a zero, degenerate result.
func CalculatePositionSize(balance, riskPercent, entry, stopLoss float64) PositionSizingResult {
	// Calculate risk amount in money
	riskAmount := balance * (riskPercent / 100)

	// Calculate stop size in points
	stopDistance := math.Abs(entry - stopLoss)

	if stopDistance == 0 || math.IsNaN(stopDistance) {
		return PositionSizingResult{
			RiskAmount:   riskAmount,
			StopDistance: stopDistance,
			Degenerate:   true,
		}
	}

	return PositionSizingResult{
		PositionSize: Round(riskAmount/stopDistance, 2),
		RiskAmount:   riskAmount,
		StopDistance: stopDistance,
	}
}

// LotSize returns only the rounded position size; zero means it could not be sized.
func LotSize(balance, riskPercent, entry, stopLoss float64) float64 {
	return CalculatePositionSize(balance, riskPercent, entry, stopLoss).PositionSize
}

// Round rounds v to places decimals, half to even.
// The exact binary value of v is rounded, so 2.675 (stored as 2.67499...)
// becomes 2.67.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	exact, err := decimal.NewFromString(new(big.Float).SetFloat64(v).Text('f', exactDigits))
	if err != nil {
		exact = decimal.NewFromFloat(v)
	}
	f, _ := exact.RoundBank(places).Float64()
	return f
}

// exactDigits is enough fractional digits to print any float64 exactly
const exactDigits = 1100
