package allocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/momentum/internal/domain"
	"github.com/rs/zerolog"
)

// ErrNoMarketDataSource is returned by EvaluateFromHistory when no source is wired
var ErrNoMarketDataSource = errors.New("no market data source configured")

// RunStore persists logged runs
type RunStore interface {
	Save(ctx context.Context, run *Run) error
}

// MetricsRecorder receives evaluation telemetry
type MetricsRecorder interface {
	RecordEvaluation(result *Result, elapsed time.Duration)
	RecordFailure(stage string)
}

// Service evaluates the strategy and records every run.
// Decide stays pure; loading bundles and logging runs happen here.
type Service struct {
	strategy *Strategy
	source   domain.MarketDataSource
	runs     RunStore
	metrics  MetricsRecorder
	lookback int
	log      zerolog.Logger
}

// ServiceDeps groups the collaborators of a Service.
// Source, Runs and Metrics are optional.
type ServiceDeps struct {
	Strategy *Strategy
	Source   domain.MarketDataSource
	Runs     RunStore
	Metrics  MetricsRecorder
	Lookback int
}

// NewService creates a new allocation service
func NewService(deps ServiceDeps, log zerolog.Logger) *Service {
	lookback := deps.Lookback
	if minBars := deps.Strategy.Config().Indicators().MinBars(); lookback < minBars {
		lookback = minBars
	}

	return &Service{
		strategy: deps.Strategy,
		source:   deps.Source,
		runs:     deps.Runs,
		metrics:  deps.Metrics,
		lookback: lookback,
		log:      log.With().Str("service", "allocation").Logger(),
	}
}

// Strategy returns the evaluated strategy
func (s *Service) Strategy() *Strategy {
	return s.strategy
}

// Lookback returns how many bars are loaded per ticker from history
func (s *Service) Lookback() int {
	return s.lookback
}

// Evaluate decides on a bundle and logs the run
func (s *Service) Evaluate(ctx context.Context, data domain.MarketData) (*Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if ignored := s.outsideUniverse(data); len(ignored) > 0 {
		s.log.Warn().Strs("tickers", ignored).Msg("Ignoring bundle tickers outside the universe")
	}

	start := time.Now()
	result := s.strategy.Run(data)
	elapsed := time.Since(start)

	for _, d := range result.Decisions {
		event := s.log.Debug().
			Str("ticker", d.Ticker).
			Str("outcome", string(d.Outcome)).
			Float64("score", d.Score).
			Int("bars", d.Bars).
			Float64("weight", d.Weight)
		if d.Indicators != nil {
			event = event.
				Float64("rsi", d.Indicators.RSI).
				Float64("macd", d.Indicators.MACD).
				Float64("signal", d.Indicators.Signal)
		}
		event.Msg("Ticker evaluated")
	}

	counts := result.Counts()
	s.log.Info().
		Str("strategy", result.Strategy).
		Int("allocated", counts[OutcomeAllocated]).
		Int("not_bullish", counts[OutcomeNotBullish]+counts[OutcomeUnscored]).
		Int("skipped", counts[OutcomeNoData]+counts[OutcomeInsufficientHistory]).
		Float64("raw_sum", result.RawSum).
		Float64("sum", result.Sum).
		Bool("normalized", result.Normalized).
		Dur("elapsed", elapsed).
		Msg("Allocation evaluated")

	if s.metrics != nil {
		s.metrics.RecordEvaluation(result, elapsed)
	}

	run := &Run{Result: result}
	if s.runs == nil {
		run.CreatedAt = time.Now().UTC()
		return run, nil
	}

	if err := s.runs.Save(ctx, run); err != nil {
		s.recordFailure("save")
		return nil, fmt.Errorf("failed to save allocation run: %w", err)
	}

	return run, nil
}

// EvaluateFromHistory loads the universe's recent bars and evaluates them
func (s *Service) EvaluateFromHistory(ctx context.Context) (*Run, error) {
	if s.source == nil {
		return nil, ErrNoMarketDataSource
	}

	data, err := s.source.LoadBundle(ctx, s.strategy.Assets(), s.lookback)
	if err != nil {
		s.recordFailure("load")
		return nil, fmt.Errorf("failed to load bundle: %w", err)
	}

	return s.Evaluate(ctx, data)
}

// outsideUniverse returns the bundle tickers the strategy does not hold, sorted
func (s *Service) outsideUniverse(data domain.MarketData) []string {
	var ignored []string
	for _, ticker := range data.Tickers() {
		if _, ok := s.strategy.Config().Score(ticker); !ok {
			ignored = append(ignored, ticker)
		}
	}
	return ignored
}

func (s *Service) recordFailure(stage string) {
	if s.metrics != nil {
		s.metrics.RecordFailure(stage)
	}
}
