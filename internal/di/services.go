package di

import (
	"fmt"

	"github.com/aristath/momentum/internal/config"
	"github.com/aristath/momentum/internal/metrics"
	"github.com/aristath/momentum/internal/modules/allocation"
	"github.com/aristath/momentum/internal/modules/historical"
	"github.com/aristath/momentum/internal/modules/strategy"
	"github.com/rs/zerolog"
)

// LoadStrategy reads the strategy file, or returns the built-in strategy when none is configured
func LoadStrategy(path string) (*strategy.Definition, error) {
	if path == "" {
		return strategy.Default(), nil
	}
	return strategy.Load(path)
}

// InitializeServices builds repositories, the strategy and the allocation service
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	container.HistoryStore = historical.NewHistoryDB(container.HistoryDB.Conn(), log)
	container.RunRepo = allocation.NewRepository(container.RunsDB.Conn(), log)

	def, err := LoadStrategy(cfg.StrategyFile)
	if err != nil {
		return fmt.Errorf("failed to load strategy: %w", err)
	}

	strategyCfg, err := def.Build()
	if err != nil {
		return err
	}
	container.StrategyConfig = strategyCfg
	container.Strategy = allocation.NewStrategy(strategyCfg, nil)

	container.Metrics = metrics.NewRegistry()
	container.AllocationService = allocation.NewService(allocation.ServiceDeps{
		Strategy: container.Strategy,
		Source:   container.HistoryStore,
		Runs:     container.RunRepo,
		Metrics:  container.Metrics,
		Lookback: cfg.HistoryLookback,
	}, log)

	log.Info().
		Str("strategy", strategyCfg.Name()).
		Str("interval", strategyCfg.Interval()).
		Strs("assets", strategyCfg.Assets()).
		Float64("total_score", strategyCfg.TotalScore()).
		Msg("Strategy configured")

	return nil
}
