package di

import (
	"fmt"

	"github.com/aristath/momentum/internal/config"
	"github.com/aristath/momentum/internal/scheduler"
	"github.com/rs/zerolog"
)

// RegisterJobs creates the scheduler jobs.
// Jobs are only added to a scheduler when one is given, so the API can still trigger them manually.
func RegisterJobs(container *Container, cfg *config.Config, sched *scheduler.Scheduler, log zerolog.Logger) (*JobInstances, error) {
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	schedule, err := AllocationSchedule(cfg, container.StrategyConfig.Interval())
	if err != nil {
		return nil, err
	}

	instances := &JobInstances{
		Allocation:         scheduler.NewAllocationJob(container.AllocationService, cfg.JobTimeout, log),
		AllocationSchedule: schedule,
		CheckDatabases:     scheduler.NewCheckDatabasesJob(log, container.HistoryDB, container.RunsDB),
	}

	if sched == nil {
		return instances, nil
	}

	if err := sched.AddJob(schedule, instances.Allocation); err != nil {
		return nil, fmt.Errorf("failed to register allocation job: %w", err)
	}
	if err := sched.AddJob("0 0 3 * * SUN", instances.CheckDatabases); err != nil {
		return nil, fmt.Errorf("failed to register database check job: %w", err)
	}

	return instances, nil
}

// AllocationSchedule returns the configured override, or the cadence of the strategy interval
func AllocationSchedule(cfg *config.Config, interval string) (string, error) {
	if cfg.Schedule != "" {
		return cfg.Schedule, nil
	}
	schedule, err := scheduler.ScheduleForInterval(interval)
	if err != nil {
		return "", fmt.Errorf("failed to derive allocation schedule: %w", err)
	}
	return schedule, nil
}
