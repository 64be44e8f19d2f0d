package allocation

import (
	"testing"

	"github.com/aristath/momentum/internal/domain"
	testingpkg "github.com/aristath/momentum/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTalibCalculator_Uptrend(t *testing.T) {
	calc := NewTalibCalculator(DefaultIndicatorParams())

	ind, ok := calc.Calculate(testingpkg.GeometricSeries(50, 0.02, 90))

	require.True(t, ok)
	assert.InDelta(t, 100.0, ind.RSI, 1e-9)
	assert.Greater(t, ind.MACD, ind.Signal)
	assert.True(t, IsBullish(ind, DefaultRSIThreshold))
}

func TestTalibCalculator_Downtrend(t *testing.T) {
	calc := NewTalibCalculator(DefaultIndicatorParams())

	ind, ok := calc.Calculate(testingpkg.GeometricSeries(50, -0.02, 90))

	require.True(t, ok)
	assert.InDelta(t, 0.0, ind.RSI, 1e-9)
	assert.False(t, IsBullish(ind, DefaultRSIThreshold))
}

func TestTalibCalculator_MinimumHistory(t *testing.T) {
	calc := NewTalibCalculator(DefaultIndicatorParams())

	_, ok := calc.Calculate(testingpkg.GeometricSeries(50, 0.01, 33))
	assert.False(t, ok, "33 bars cannot produce a MACD signal value")

	_, ok = calc.Calculate(testingpkg.GeometricSeries(50, 0.01, 34))
	assert.True(t, ok)

	_, ok = calc.Calculate(domain.Series{})
	assert.False(t, ok)
}

func TestIsBullish(t *testing.T) {
	assert.True(t, IsBullish(Indicators{RSI: 50.0001, MACD: 1, Signal: 0.999}, 50))
	assert.False(t, IsBullish(Indicators{RSI: 50, MACD: 2, Signal: 1}, 50))
	assert.False(t, IsBullish(Indicators{RSI: 80, MACD: 1, Signal: 1}, 50))
	assert.False(t, IsBullish(Indicators{RSI: 80, MACD: -1, Signal: 0}, 50))
}

func TestDecide_SlowingTrendAtMinimumHistoryIsNotBullish(t *testing.T) {
	cfg := mustConfig([]string{"NVDA"}, map[string]float64{"NVDA": 0.9})

	for _, bars := range []int{34, 40, 50} {
		data := domain.MarketData{"NVDA": testingpkg.TwoPhaseSeries(100, 0.02, 29, 0.001, bars)}

		result := Decide(cfg, nil, data)

		d, ok := result.Decision("NVDA")
		require.True(t, ok)
		require.NotNil(t, d.Indicators, "bars=%d", bars)
		assert.Greater(t, d.Indicators.RSI, 50.0, "bars=%d", bars)
		assert.Less(t, d.Indicators.MACD, d.Indicators.Signal, "bars=%d", bars)
		assert.Equal(t, OutcomeNotBullish, d.Outcome, "bars=%d", bars)
		assert.Equal(t, 0.0, result.Weights()["NVDA"])
	}
}
