// Package allocation computes the daily target allocation across the strategy universe.
package allocation

import (
	"github.com/aristath/momentum/internal/domain"
)

// Outcome classifies how a ticker was treated in one evaluation
type Outcome string

const (
	// OutcomeNoData - ticker absent from the market data bundle, no entry produced
	OutcomeNoData Outcome = "no_data"
	// OutcomeInsufficientHistory - indicators unavailable, no entry produced
	OutcomeInsufficientHistory Outcome = "insufficient_history"
	// OutcomeNotBullish - indicators computed but condition failed, explicit zero entry
	OutcomeNotBullish Outcome = "not_bullish"
	// OutcomeUnscored - bullish but the held score is zero, explicit zero entry
	OutcomeUnscored Outcome = "unscored"
	// OutcomeAllocated - bullish with a positive weight
	OutcomeAllocated Outcome = "allocated"
)

// HasEntry reports whether the outcome produces an entry in the target allocation
func (o Outcome) HasEntry() bool {
	switch o {
	case OutcomeNotBullish, OutcomeUnscored, OutcomeAllocated:
		return true
	default:
		return false
	}
}

// TickerDecision is the per-ticker record of one evaluation
type TickerDecision struct {
	Ticker     string      `json:"ticker" msgpack:"ticker"`
	Outcome    Outcome     `json:"outcome" msgpack:"outcome"`
	Score      float64     `json:"score" msgpack:"score"`
	Bars       int         `json:"bars" msgpack:"bars"`
	Indicators *Indicators `json:"indicators,omitempty" msgpack:"indicators,omitempty"`
	Bullish    bool        `json:"bullish" msgpack:"bullish"`
	RawWeight  float64     `json:"raw_weight" msgpack:"raw_weight"`
	Weight     float64     `json:"weight" msgpack:"weight"`
}

// Result is the outcome of one evaluation, in universe order
type Result struct {
	Strategy   string           `json:"strategy"`
	Interval   string           `json:"interval"`
	Decisions  []TickerDecision `json:"decisions"`
	RawSum     float64          `json:"raw_sum"`
	Sum        float64          `json:"sum"`
	Normalized bool             `json:"normalized"`
}

// Weights returns the target allocation handed to the execution engine.
// Tickers without data or indicators are absent; failed conditions map to an explicit zero.
func (r *Result) Weights() map[string]float64 {
	weights := make(map[string]float64, len(r.Decisions))
	for _, d := range r.Decisions {
		if d.Outcome.HasEntry() {
			weights[d.Ticker] = d.Weight
		}
	}
	return weights
}

// Decision returns the record for a ticker
func (r *Result) Decision(ticker string) (TickerDecision, bool) {
	for _, d := range r.Decisions {
		if d.Ticker == ticker {
			return d, true
		}
	}
	return TickerDecision{}, false
}

// Counts tallies decisions by outcome
func (r *Result) Counts() map[Outcome]int {
	counts := make(map[Outcome]int)
	for _, d := range r.Decisions {
		counts[d.Outcome]++
	}
	return counts
}

// Decide evaluates every ticker of the universe against the bundle.
// It is pure: no I/O, no mutation of cfg or data.
func Decide(cfg *Config, calc IndicatorCalculator, data domain.MarketData) *Result {
	if calc == nil {
		calc = NewTalibCalculator(cfg.indicators)
	}

	result := &Result{
		Strategy:  cfg.name,
		Interval:  cfg.interval,
		Decisions: make([]TickerDecision, 0, len(cfg.tickers)),
	}

	for _, ticker := range cfg.tickers {
		decision := TickerDecision{
			Ticker: ticker,
			Score:  cfg.scores[ticker],
		}

		series, ok := data.Get(ticker)
		if !ok {
			decision.Outcome = OutcomeNoData
			result.Decisions = append(result.Decisions, decision)
			continue
		}
		decision.Bars = series.Len()

		ind, ok := calc.Calculate(series)
		if !ok {
			decision.Outcome = OutcomeInsufficientHistory
			result.Decisions = append(result.Decisions, decision)
			continue
		}
		decision.Indicators = &ind
		decision.Bullish = IsBullish(ind, cfg.indicators.RSIThreshold)

		switch {
		case !decision.Bullish:
			decision.Outcome = OutcomeNotBullish
		case decision.Score == 0:
			decision.Outcome = OutcomeUnscored
		default:
			decision.Outcome = OutcomeAllocated
			decision.RawWeight = decision.Score / cfg.totalScore
		}

		result.Decisions = append(result.Decisions, decision)
	}

	normalize(result)
	return result
}

// normalize rescales weights to sum to exactly 1 when the raw sum exceeds 1.
// A raw sum of 1 or less is left untouched and the residual stays uninvested.
func normalize(result *Result) {
	var rawSum float64
	for _, d := range result.Decisions {
		rawSum += d.RawWeight
	}
	result.RawSum = rawSum
	result.Normalized = rawSum > 1

	var sum float64
	for i := range result.Decisions {
		d := &result.Decisions[i]
		if result.Normalized {
			d.Weight = d.RawWeight / rawSum
		} else {
			d.Weight = d.RawWeight
		}
		sum += d.Weight
	}
	result.Sum = sum
}

// Strategy binds an immutable configuration to an indicator calculator
type Strategy struct {
	cfg  *Config
	calc IndicatorCalculator
}

// NewStrategy creates a strategy; a nil calculator selects go-talib with the config's parameters
func NewStrategy(cfg *Config, calc IndicatorCalculator) *Strategy {
	if calc == nil {
		calc = NewTalibCalculator(cfg.indicators)
	}
	return &Strategy{cfg: cfg, calc: calc}
}

// Config returns the strategy configuration
func (s *Strategy) Config() *Config {
	return s.cfg
}

// Interval returns the declared evaluation interval
func (s *Strategy) Interval() string {
	return s.cfg.Interval()
}

// Assets returns the declared asset universe
func (s *Strategy) Assets() []string {
	return s.cfg.Assets()
}

// Run evaluates one market data bundle
func (s *Strategy) Run(data domain.MarketData) *Result {
	return Decide(s.cfg, s.calc, data)
}
