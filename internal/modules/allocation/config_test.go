package allocation

import (
	"errors"
	"math"
	"testing"

	"github.com/aristath/momentum/internal/domain"
	"github.com/aristath/momentum/internal/modules/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	provider, err := scoring.NewUniformProvider(DefaultScoreMin, DefaultScoreMax, 1)
	require.NoError(t, err)

	cfg, err := NewConfig(DefaultTickers, provider, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, DefaultName, cfg.Name())
	assert.Equal(t, "1day", cfg.Interval())
	assert.Equal(t, []string{"NVDA", "GOOGL", "AMZN", "MSFT", "IBM"}, cfg.Assets())

	var total float64
	for _, ticker := range cfg.Assets() {
		score, ok := cfg.Score(ticker)
		require.True(t, ok, "every ticker has a score")
		assert.GreaterOrEqual(t, score, 0.5)
		assert.LessOrEqual(t, score, 1.0)
		total += score
	}
	assert.InDelta(t, total, cfg.TotalScore(), 1e-12)
	assert.Equal(t, 34, cfg.Indicators().MinBars())
}

func TestNewConfig_Errors(t *testing.T) {
	valid := scoring.NewStaticProvider(map[string]float64{"A": 0.6, "B": 0.7})

	tests := []struct {
		name     string
		tickers  []string
		provider domain.ScoreProvider
		mutate   func(*Options)
		expected error
	}{
		{name: "empty universe", tickers: nil, provider: valid, expected: ErrEmptyUniverse},
		{name: "blank ticker", tickers: []string{"A", "  "}, provider: valid, expected: ErrBlankTicker},
		{name: "duplicate ticker", tickers: []string{"A", "a"}, provider: valid, expected: ErrDuplicateTicker},
		{name: "unknown ticker", tickers: []string{"A", "C"}, provider: valid, expected: scoring.ErrUnknownTicker},
		{
			name:     "score out of range",
			tickers:  []string{"A"},
			provider: scoring.NewStaticProvider(map[string]float64{"A": 0.2}),
			expected: ErrScoreOutOfRange,
		},
		{
			name:     "negative score",
			tickers:  []string{"A"},
			provider: scoring.NewStaticProvider(map[string]float64{"A": -1}),
			mutate:   func(o *Options) { o.ScoreRange = nil },
			expected: ErrInvalidScore,
		},
		{
			name:     "nan score",
			tickers:  []string{"A"},
			provider: scoring.NewStaticProvider(map[string]float64{"A": math.NaN()}),
			mutate:   func(o *Options) { o.ScoreRange = nil },
			expected: ErrInvalidScore,
		},
		{
			name:     "all zero scores",
			tickers:  []string{"A", "B"},
			provider: scoring.NewStaticProvider(map[string]float64{"A": 0, "B": 0}),
			mutate:   func(o *Options) { o.ScoreRange = nil },
			expected: ErrNonPositiveScoreTotal,
		},
		{
			name:     "inverted score range",
			tickers:  []string{"A"},
			provider: valid,
			mutate:   func(o *Options) { o.ScoreRange = &ScoreRange{Min: 1, Max: 0.5} },
			expected: ErrInvalidScoreRange,
		},
		{
			name:     "fast not shorter than slow",
			tickers:  []string{"A"},
			provider: valid,
			mutate:   func(o *Options) { o.Indicators.MACDFast = 26 },
			expected: ErrInvalidIndicatorParams,
		},
		{
			name:     "interval without a cadence",
			tickers:  []string{"A"},
			provider: valid,
			mutate:   func(o *Options) { o.Interval = "1fortnight" },
			expected: ErrUnsupportedInterval,
		},
		{
			name:     "rsi period too small",
			tickers:  []string{"A"},
			provider: valid,
			mutate:   func(o *Options) { o.Indicators.RSIPeriod = 1 },
			expected: ErrInvalidIndicatorParams,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			if tt.mutate != nil {
				tt.mutate(&opts)
			}

			cfg, err := NewConfig(tt.tickers, tt.provider, opts)

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.expected), "expected %v, got %v", tt.expected, err)
		})
	}
}

func TestNewConfig_NilProvider(t *testing.T) {
	_, err := NewConfig([]string{"A"}, nil, DefaultOptions())
	assert.ErrorIs(t, err, ErrNilScoreProvider)
}

func TestNewConfig_ProviderFailure(t *testing.T) {
	boom := errors.New("model offline")
	provider := scoring.FuncProvider(func(string) (float64, error) { return 0, boom })

	_, err := NewConfig([]string{"A"}, provider, DefaultOptions())

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "A")
}

func TestNewConfig_ScoresRequestedOncePerTicker(t *testing.T) {
	calls := map[string]int{}
	provider := scoring.FuncProvider(func(ticker string) (float64, error) {
		calls[ticker]++
		return 0.75, nil
	})

	cfg, err := NewConfig([]string{"nvda", "ibm"}, provider, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"NVDA": 1, "IBM": 1}, calls)
	assert.Equal(t, []string{"NVDA", "IBM"}, cfg.Assets())
}

func TestConfig_AccessorsReturnCopies(t *testing.T) {
	cfg := mustConfig([]string{"A", "B"}, map[string]float64{"A": 0.6, "B": 0.9})

	assets := cfg.Assets()
	assets[0] = "MUTATED"
	scores := cfg.Scores()
	scores["A"] = 100

	assert.Equal(t, []string{"A", "B"}, cfg.Assets())
	score, _ := cfg.Score("A")
	assert.Equal(t, 0.6, score)
	assert.InDelta(t, 1.5, cfg.TotalScore(), 1e-12)
}

func TestNewConfig_BlankNameAndIntervalFallBack(t *testing.T) {
	opts := DefaultOptions()
	opts.Name = " "
	opts.Interval = ""

	cfg, err := NewConfig([]string{"A"}, scoring.NewStaticProvider(map[string]float64{"A": 0.6}), opts)
	require.NoError(t, err)

	assert.Equal(t, DefaultName, cfg.Name())
	assert.Equal(t, DefaultInterval, cfg.Interval())
}

func TestIndicatorParams_MinBars(t *testing.T) {
	params := DefaultIndicatorParams()
	assert.Equal(t, 34, params.MinBars())

	params.RSIPeriod = 50
	assert.Equal(t, 51, params.MinBars(), "a long RSI period dominates")
}

func TestNewConfig_IntervalIsNormalized(t *testing.T) {
	opts := DefaultOptions()
	opts.Interval = " 1Hour "

	cfg, err := NewConfig([]string{"A"}, scoring.NewStaticProvider(map[string]float64{"A": 0.6}), opts)
	require.NoError(t, err)

	assert.Equal(t, "1hour", cfg.Interval())
	assert.Contains(t, SupportedIntervals(), cfg.Interval())
}
