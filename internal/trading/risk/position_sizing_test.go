package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLotSize(t *testing.T) {
	tests := []struct {
		name     string
		balance  float64
		risk     float64
		entry    float64
		stop     float64
		expected float64
	}{
		{"one percent of 1000 over one point", 1000, 1, 100, 99, 10},
		{"short side uses absolute distance", 1000, 1, 100, 101, 10},
		{"fractional size is rounded", 1000, 1, 1.1000, 1.0970, 3333.33},
		{"zero balance", 0, 2, 100, 99, 0},
		{"half to even", 1, 12.5, 100, 99, 0.12},                 // 0.125 -> 0.12
		{"binary value below half", 2.675, 100, 100, 99, 2.67},   // 2.675 is stored as 2.67499...
		{"binary value above half", 1000, 0.2675, 100, 99, 2.68}, // 1000*0.002675 is 2.6750000000000003
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, LotSize(tt.balance, tt.risk, tt.entry, tt.stop), 1e-9)
		})
	}
}

func TestLotSizeZeroStopDistance(t *testing.T) {
	for _, balance := range []float64{0, 1, 1000, 1e9} {
		for _, risk := range []float64{0.5, 1, 5} {
			assert.Equal(t, 0.0, LotSize(balance, risk, 1.2345, 1.2345))
		}
	}

	res := CalculatePositionSize(1000, 1, 50, 50)
	assert.True(t, res.Degenerate)
	assert.Equal(t, 10.0, res.RiskAmount)
}

func TestLotSizeMonotonic(t *testing.T) {
	prev := 0.0
	for risk := 0.5; risk <= 5; risk += 0.5 {
		size := LotSize(10000, risk, 100, 98)
		assert.GreaterOrEqual(t, size, prev, "risk %v", risk)
		prev = size
	}

	prev = LotSize(10000, 1, 100, 99.9)
	for dist := 0.2; dist <= 5; dist += 0.1 {
		size := LotSize(10000, 1, 100, 100-dist)
		assert.LessOrEqual(t, size, prev, "distance %v", dist)
		prev = size
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 66.67, Round(66.666666, 2))
	assert.Equal(t, 1.23457, Round(1.234567, 5))
	assert.Equal(t, 100.0, Round(100, 2))
}

func TestRoundUsesExactBinaryValue(t *testing.T) {
	tests := []struct {
		value    float64
		places   int32
		expected float64
	}{
		{2.675, 2, 2.67}, // 2.67499999999999982236431605997495353221893310546875
		{1.005, 2, 1.0},  // 1.00499999999999989341858963598497211933135986328125
		{0.125, 2, 0.12}, // exact half, to even
		{0.375, 2, 0.38}, // exact half, to even
		{-2.675, 2, -2.67},
		{1.000015, 5, 1.00002}, // 1.00001500000000009826...
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Round(tt.value, tt.places), "Round(%v, %d)", tt.value, tt.places)
	}
	assert.True(t, math.IsNaN(Round(math.NaN(), 2)))
}
