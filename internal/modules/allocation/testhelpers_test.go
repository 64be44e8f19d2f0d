package allocation

import (
	"github.com/aristath/momentum/internal/domain"
	"github.com/aristath/momentum/internal/modules/scoring"
)

// stubCalculator returns pinned indicator values per ticker, keyed by the
// close of the series' first bar so tests can tag series explicitly.
type stubCalculator struct {
	byTag map[float64]Indicators
}

func (s stubCalculator) Calculate(series domain.Series) (Indicators, bool) {
	if series.Len() == 0 {
		return Indicators{}, false
	}
	ind, ok := s.byTag[series[0].Close]
	return ind, ok
}

var (
	bullish    = Indicators{RSI: 65, MACD: 1.2, Signal: 0.8}
	bearishRSI = Indicators{RSI: 40, MACD: 1.2, Signal: 0.8}
	bearishMA  = Indicators{RSI: 65, MACD: 0.5, Signal: 0.8}
	rsiAtLine  = Indicators{RSI: 50, MACD: 1.2, Signal: 0.8}
	macdOnSig  = Indicators{RSI: 65, MACD: 0.8, Signal: 0.8}
)

// tagged builds a one-bar series whose first close identifies the stub indicators
func tagged(tag float64) domain.Series {
	return domain.Series{{Date: "2024-01-02", Close: tag}}
}

func mustConfig(tickers []string, scores map[string]float64) *Config {
	opts := DefaultOptions()
	opts.ScoreRange = nil
	cfg, err := NewConfig(tickers, scoring.NewStaticProvider(scores), opts)
	if err != nil {
		panic(err)
	}
	return cfg
}
