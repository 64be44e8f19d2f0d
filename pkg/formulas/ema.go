package formulas

import (
	"github.com/markcheno/go-talib"
)

// CalculateEMA returns the latest exponential moving average of closes.
// Returns nil when fewer than length closes are available.
func CalculateEMA(closes []float64, length int) *float64 {
	if length < 2 || len(closes) < length {
		return nil
	}

	ema := talib.Ema(closes, length)
	return lastValue(ema)
}

// CalculateSMA returns the latest simple moving average of closes
func CalculateSMA(closes []float64, length int) *float64 {
	if length < 1 || len(closes) < length {
		return nil
	}

	sma := talib.Sma(closes, length)
	return lastValue(sma)
}

// DistanceFrom returns (price - reference) / reference, or nil when the reference is missing or zero
func DistanceFrom(price float64, reference *float64) *float64 {
	if reference == nil || *reference == 0 {
		return nil
	}
	distance := (price - *reference) / *reference
	return &distance
}

func lastValue(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	v := values[len(values)-1]
	if isNaN(v) {
		return nil
	}
	return &v
}
