package formulas

import (
	"github.com/markcheno/go-talib"
)

// MACDResult holds the latest values of the MACD line pair
type MACDResult struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// MACDMinBars returns how many closes are needed before the
// signal line has a value at the last index.
func MACDMinBars(fast, slow, signal int) int {
	if fast > slow {
		fast, slow = slow, fast
	}
	return slow + signal - 1
}

// CalculateMACD calculates the Moving Average Convergence Divergence
//
//	MACD   = EMA(fast) - EMA(slow)
//	Signal = EMA(MACD, signal)
//
// The signal EMA is seeded only from MACD values that exist, starting at
// index slow-1. Returns nil when periods are invalid or history is too
// short for the signal line to exist at the latest bar.
func CalculateMACD(closes []float64, fast, slow, signal int) *MACDResult {
	if fast < 2 || slow < 2 || signal < 1 || fast == slow {
		return nil
	}
	if fast > slow {
		fast, slow = slow, fast
	}
	if len(closes) < MACDMinBars(fast, slow, signal) {
		return nil
	}

	fastEMA := talib.Ema(closes, fast)
	slowEMA := talib.Ema(closes, slow)

	macd := make([]float64, len(closes)-(slow-1))
	for i := range macd {
		idx := i + slow - 1
		macd[i] = fastEMA[idx] - slowEMA[idx]
	}

	sig := talib.Ema(macd, signal)

	last := len(macd) - 1
	result := &MACDResult{
		MACD:   macd[last],
		Signal: sig[last],
	}
	if isNaN(result.MACD) || isNaN(result.Signal) {
		return nil
	}
	result.Histogram = result.MACD - result.Signal

	return result
}
