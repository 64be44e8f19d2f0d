package allocation

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/aristath/momentum/internal/domain"
	"github.com/aristath/momentum/pkg/formulas"
)

// Defaults reproduce the reference AI/ML momentum strategy
const (
	DefaultName         = "ai-ml-momentum"
	DefaultInterval     = "1day"
	DefaultRSIPeriod    = 14
	DefaultRSIThreshold = 50.0
	DefaultMACDFast     = 12
	DefaultMACDSlow     = 26
	DefaultMACDSignal   = 9
	DefaultScoreMin     = 0.5
	DefaultScoreMax     = 1.0
)

// DefaultTickers is the reference universe of AI/ML related equities
var DefaultTickers = []string{"NVDA", "GOOGL", "AMZN", "MSFT", "IBM"}

// supportedIntervals lists the interval labels the scheduler has a cadence for
var supportedIntervals = map[string]bool{
	"1day": true, "1d": true, "daily": true,
	"1hour": true, "1h": true, "hourly": true,
}

// SupportedIntervals returns the accepted interval labels, sorted
func SupportedIntervals() []string {
	intervals := make([]string, 0, len(supportedIntervals))
	for interval := range supportedIntervals {
		intervals = append(intervals, interval)
	}
	sort.Strings(intervals)
	return intervals
}

// Configuration errors returned by NewConfig
var (
	ErrEmptyUniverse          = errors.New("ticker universe is empty")
	ErrBlankTicker            = errors.New("ticker symbol is blank")
	ErrDuplicateTicker        = errors.New("duplicate ticker in universe")
	ErrNilScoreProvider       = errors.New("score provider is nil")
	ErrInvalidScore           = errors.New("score is negative or not finite")
	ErrScoreOutOfRange        = errors.New("score outside configured range")
	ErrNonPositiveScoreTotal  = errors.New("sum of scores must be positive")
	ErrInvalidIndicatorParams = errors.New("invalid indicator parameters")
	ErrInvalidScoreRange      = errors.New("invalid score range")
	ErrUnsupportedInterval    = errors.New("unsupported interval")
)

// IndicatorParams configures the oscillator and trend-line calculations
type IndicatorParams struct {
	RSIPeriod    int     `json:"rsi_period" yaml:"rsi_period"`
	RSIThreshold float64 `json:"rsi_threshold" yaml:"rsi_threshold"`
	MACDFast     int     `json:"macd_fast" yaml:"macd_fast"`
	MACDSlow     int     `json:"macd_slow" yaml:"macd_slow"`
	MACDSignal   int     `json:"macd_signal" yaml:"macd_signal"`
}

// DefaultIndicatorParams returns RSI(14) > 50 and MACD(12, 26, 9)
func DefaultIndicatorParams() IndicatorParams {
	return IndicatorParams{
		RSIPeriod:    DefaultRSIPeriod,
		RSIThreshold: DefaultRSIThreshold,
		MACDFast:     DefaultMACDFast,
		MACDSlow:     DefaultMACDSlow,
		MACDSignal:   DefaultMACDSignal,
	}
}

// Validate checks the parameters are usable
func (p IndicatorParams) Validate() error {
	switch {
	case p.RSIPeriod < 2:
		return fmt.Errorf("%w: rsi_period must be >= 2, got %d", ErrInvalidIndicatorParams, p.RSIPeriod)
	case p.RSIThreshold < 0 || p.RSIThreshold > 100:
		return fmt.Errorf("%w: rsi_threshold must be within [0, 100], got %v", ErrInvalidIndicatorParams, p.RSIThreshold)
	case p.MACDFast < 2 || p.MACDSlow < 2:
		return fmt.Errorf("%w: macd periods must be >= 2", ErrInvalidIndicatorParams)
	case p.MACDFast >= p.MACDSlow:
		return fmt.Errorf("%w: macd_fast (%d) must be shorter than macd_slow (%d)", ErrInvalidIndicatorParams, p.MACDFast, p.MACDSlow)
	case p.MACDSignal < 1:
		return fmt.Errorf("%w: macd_signal must be >= 1, got %d", ErrInvalidIndicatorParams, p.MACDSignal)
	}
	return nil
}

// MinBars returns the history length needed for both indicators to have a latest value
func (p IndicatorParams) MinBars() int {
	macd := formulas.MACDMinBars(p.MACDFast, p.MACDSlow, p.MACDSignal)
	if rsi := p.RSIPeriod + 1; rsi > macd {
		return rsi
	}
	return macd
}

// ScoreRange bounds acceptable bullishness scores (inclusive)
type ScoreRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether v lies within the range
func (r ScoreRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Options carries the optional parts of a strategy configuration
type Options struct {
	Name       string
	Interval   string
	Indicators IndicatorParams
	// ScoreRange is nil when scores are only required to be non-negative
	ScoreRange *ScoreRange
}

// DefaultOptions returns the reference strategy options
func DefaultOptions() Options {
	return Options{
		Name:       DefaultName,
		Interval:   DefaultInterval,
		Indicators: DefaultIndicatorParams(),
		ScoreRange: &ScoreRange{Min: DefaultScoreMin, Max: DefaultScoreMax},
	}
}

// Config is the immutable strategy state: universe, scores and indicator settings.
// It is built once and shared read-only by every invocation.
type Config struct {
	name       string
	interval   string
	tickers    []string
	scores     map[string]float64
	totalScore float64
	indicators IndicatorParams
}

// NewConfig validates the universe, draws one score per ticker from the provider
// and returns an immutable configuration.
func NewConfig(tickers []string, provider domain.ScoreProvider, opts Options) (*Config, error) {
	if len(tickers) == 0 {
		return nil, ErrEmptyUniverse
	}
	if provider == nil {
		return nil, ErrNilScoreProvider
	}
	if err := opts.Indicators.Validate(); err != nil {
		return nil, err
	}
	if r := opts.ScoreRange; r != nil && (r.Min < 0 || r.Max < r.Min || isNotFinite(r.Min) || isNotFinite(r.Max)) {
		return nil, fmt.Errorf("%w: [%v, %v]", ErrInvalidScoreRange, r.Min, r.Max)
	}

	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = DefaultName
	}
	interval := strings.ToLower(strings.TrimSpace(opts.Interval))
	if interval == "" {
		interval = DefaultInterval
	}
	if !supportedIntervals[interval] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedInterval, opts.Interval)
	}

	cfg := &Config{
		name:       name,
		interval:   interval,
		tickers:    make([]string, 0, len(tickers)),
		scores:     make(map[string]float64, len(tickers)),
		indicators: opts.Indicators,
	}

	for _, raw := range tickers {
		ticker := domain.NormalizeTicker(raw)
		if ticker == "" {
			return nil, ErrBlankTicker
		}
		if _, exists := cfg.scores[ticker]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTicker, ticker)
		}

		score, err := provider.Score(ticker)
		if err != nil {
			return nil, fmt.Errorf("failed to score %s: %w", ticker, err)
		}
		if score < 0 || isNotFinite(score) {
			return nil, fmt.Errorf("%w: %s=%v", ErrInvalidScore, ticker, score)
		}
		if opts.ScoreRange != nil && !opts.ScoreRange.Contains(score) {
			return nil, fmt.Errorf("%w: %s=%v not in [%v, %v]",
				ErrScoreOutOfRange, ticker, score, opts.ScoreRange.Min, opts.ScoreRange.Max)
		}

		cfg.tickers = append(cfg.tickers, ticker)
		cfg.scores[ticker] = score
		cfg.totalScore += score
	}

	if cfg.totalScore <= 0 {
		return nil, ErrNonPositiveScoreTotal
	}

	return cfg, nil
}

// Name returns the strategy name
func (c *Config) Name() string {
	return c.name
}

// Interval returns the declared evaluation interval advertised to the scheduler
func (c *Config) Interval() string {
	return c.interval
}

// Assets returns a copy of the ticker universe in declaration order
func (c *Config) Assets() []string {
	out := make([]string, len(c.tickers))
	copy(out, c.tickers)
	return out
}

// Score returns the held score for a ticker
func (c *Config) Score(ticker string) (float64, bool) {
	score, ok := c.scores[ticker]
	return score, ok
}

// Scores returns a copy of the score map
func (c *Config) Scores() map[string]float64 {
	out := make(map[string]float64, len(c.scores))
	for ticker, score := range c.scores {
		out[ticker] = score
	}
	return out
}

// TotalScore returns the sum of all held scores
func (c *Config) TotalScore() float64 {
	return c.totalScore
}

// Indicators returns the indicator parameters
func (c *Config) Indicators() IndicatorParams {
	return c.indicators
}

func isNotFinite(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}
