package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// geometric returns n closes starting at start and compounding by rate per bar
func geometric(start, rate float64, n int) []float64 {
	out := make([]float64, n)
	price := start
	for i := range out {
		out[i] = price
		price *= 1 + rate
	}
	return out
}

func TestCalculateRSI(t *testing.T) {
	tests := []struct {
		name     string
		closes   []float64
		length   int
		wantNil  bool
		expected float64
	}{
		{name: "empty", closes: nil, length: 14, wantNil: true},
		{name: "exactly period bars", closes: geometric(100, 0.01, 14), length: 14, wantNil: true},
		{name: "invalid period", closes: geometric(100, 0.01, 40), length: 1, wantNil: true},
		{name: "only gains", closes: geometric(100, 0.01, 15), length: 14, expected: 100},
		{name: "only losses", closes: geometric(100, -0.01, 40), length: 14, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateRSI(tt.closes, tt.length)
			if tt.wantNil {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.InDelta(t, tt.expected, *result, 1e-9)
		})
	}
}

func TestCalculateRSI_Bounded(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + 5*math.Sin(float64(i)/3)
	}

	result := CalculateRSI(closes, 14)

	require.NotNil(t, result)
	assert.GreaterOrEqual(t, *result, 0.0)
	assert.LessOrEqual(t, *result, 100.0)
}

func TestMACDMinBars(t *testing.T) {
	assert.Equal(t, 34, MACDMinBars(12, 26, 9))
	assert.Equal(t, 34, MACDMinBars(26, 12, 9), "fast/slow order should not matter")
}

func TestCalculateMACD_InsufficientHistory(t *testing.T) {
	assert.Nil(t, CalculateMACD(geometric(100, 0.01, 33), 12, 26, 9))
	assert.NotNil(t, CalculateMACD(geometric(100, 0.01, 34), 12, 26, 9))
}

func TestCalculateMACD_InvalidPeriods(t *testing.T) {
	closes := geometric(100, 0.01, 80)

	assert.Nil(t, CalculateMACD(closes, 0, 26, 9))
	assert.Nil(t, CalculateMACD(closes, 12, 12, 9))
	assert.Nil(t, CalculateMACD(closes, 12, 26, 0))
}

func TestCalculateMACD_Uptrend(t *testing.T) {
	result := CalculateMACD(geometric(100, 0.01, 80), 12, 26, 9)

	require.NotNil(t, result)
	assert.Greater(t, result.MACD, 0.0, "fast EMA should lead slow EMA in an uptrend")
	assert.Greater(t, result.MACD, result.Signal, "accelerating trend keeps MACD above its signal")
	assert.InDelta(t, result.MACD-result.Signal, result.Histogram, 1e-9)
}

// decelerating rises 2% per bar for 30 bars, then 0.1% per bar
func decelerating(n int) []float64 {
	out := make([]float64, n)
	out[0] = 100
	for i := 1; i < n; i++ {
		rate := 1.02
		if i >= 30 {
			rate = 1.001
		}
		out[i] = out[i-1] * rate
	}
	return out
}

func TestCalculateMACD_SignalSeededFromValidValues(t *testing.T) {
	tests := []struct {
		bars   int
		macd   float64
		signal float64
	}{
		{bars: 34, macd: 18.155566983639318, signal: 18.852255367193763},
		{bars: 40, macd: 14.1055034318222, signal: 16.32473141155375},
		{bars: 50, macd: 8.052904638970233, signal: 10.29495322105628},
	}

	for _, tt := range tests {
		result := CalculateMACD(decelerating(tt.bars), 12, 26, 9)

		require.NotNil(t, result, "bars=%d", tt.bars)
		assert.InDelta(t, tt.macd, result.MACD, 1e-6, "bars=%d", tt.bars)
		assert.InDelta(t, tt.signal, result.Signal, 1e-6, "bars=%d", tt.bars)
		assert.Less(t, result.MACD, result.Signal, "decelerating trend crosses below its signal, bars=%d", tt.bars)
	}
}

func TestCalculateMACD_MatchesEMAOfMACD(t *testing.T) {
	closes := decelerating(45)
	result := CalculateMACD(closes, 12, 26, 9)
	require.NotNil(t, result)

	fast := CalculateEMA(closes, 12)
	slow := CalculateEMA(closes, 26)
	require.NotNil(t, fast)
	require.NotNil(t, slow)
	assert.InDelta(t, *fast-*slow, result.MACD, 1e-9)

	// Signal over the 20 defined MACD values only
	var macd []float64
	for n := 26; n <= len(closes); n++ {
		macd = append(macd, *CalculateEMA(closes[:n], 12)-*CalculateEMA(closes[:n], 26))
	}
	signal := CalculateEMA(macd, 9)
	require.NotNil(t, signal)
	assert.InDelta(t, *signal, result.Signal, 1e-9)
}

func TestCalculateMACD_Downtrend(t *testing.T) {
	result := CalculateMACD(geometric(100, -0.01, 80), 12, 26, 9)

	require.NotNil(t, result)
	assert.Less(t, result.MACD, 0.0)
}
