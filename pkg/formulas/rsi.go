// Package formulas wraps go-talib indicator calculations behind nil-on-unavailable helpers.
package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// CalculateRSI calculates the Relative Strength Index
//
// RSI Formula:
//
//	RSI = 100 - (100 / (1 + RS))
//	where RS = Average Gain / Average Loss over N periods (Wilder smoothing)
//
// Args:
//
//	closes: Array of closing prices, oldest first
//	length: RSI period (typically 14)
//
// Returns:
//
//	Latest RSI value (0-100) or nil if insufficient data
func CalculateRSI(closes []float64, length int) *float64 {
	if length < 2 || len(closes) < length+1 {
		return nil
	}

	rsi := talib.Rsi(closes, length)

	if len(rsi) > 0 && !isNaN(rsi[len(rsi)-1]) {
		result := rsi[len(rsi)-1]
		return &result
	}

	return nil
}

// isNaN checks if a float64 is NaN or infinite
func isNaN(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}
