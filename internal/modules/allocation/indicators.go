package allocation

import (
	"github.com/aristath/momentum/internal/domain"
	"github.com/aristath/momentum/pkg/formulas"
)

// Indicators holds the latest oscillator and trend-line values for one ticker
type Indicators struct {
	RSI    float64 `json:"rsi" msgpack:"rsi"`
	MACD   float64 `json:"macd" msgpack:"macd"`
	Signal float64 `json:"signal" msgpack:"signal"`
}

// IndicatorCalculator computes the latest indicator values from a series.
// It returns false when either indicator has no usable latest value.
type IndicatorCalculator interface {
	Calculate(series domain.Series) (Indicators, bool)
}

// TalibCalculator computes RSI and MACD from closing prices using go-talib
type TalibCalculator struct {
	params IndicatorParams
}

// NewTalibCalculator creates a calculator for the given parameters
func NewTalibCalculator(params IndicatorParams) *TalibCalculator {
	return &TalibCalculator{params: params}
}

// Calculate implements IndicatorCalculator
func (c *TalibCalculator) Calculate(series domain.Series) (Indicators, bool) {
	if series.Len() < c.params.MinBars() {
		return Indicators{}, false
	}

	closes := series.Closes()

	rsi := formulas.CalculateRSI(closes, c.params.RSIPeriod)
	if rsi == nil {
		return Indicators{}, false
	}

	macd := formulas.CalculateMACD(closes, c.params.MACDFast, c.params.MACDSlow, c.params.MACDSignal)
	if macd == nil {
		return Indicators{}, false
	}

	return Indicators{
		RSI:    *rsi,
		MACD:   macd.MACD,
		Signal: macd.Signal,
	}, true
}

// IsBullish reports RSI strictly above the threshold and MACD strictly above its signal line
func IsBullish(ind Indicators, rsiThreshold float64) bool {
	return ind.RSI > rsiThreshold && ind.MACD > ind.Signal
}
