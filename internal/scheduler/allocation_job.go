package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultAllocationSchedule runs after the US close on trading days
const DefaultAllocationSchedule = "0 30 21 * * MON-FRI"

// ScheduleForInterval maps a strategy interval to a cron schedule
func ScheduleForInterval(interval string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(interval)) {
	case "1day", "1d", "daily":
		return DefaultAllocationSchedule, nil
	case "1hour", "1h", "hourly":
		return "0 0 * * * MON-FRI", nil
	default:
		return "", fmt.Errorf("no schedule for interval %q", interval)
	}
}

// AllocationJob evaluates the strategy from stored history
type AllocationJob struct {
	svc     AllocationServiceInterface
	timeout time.Duration
	log     zerolog.Logger
}

// NewAllocationJob creates a new AllocationJob
func NewAllocationJob(svc AllocationServiceInterface, timeout time.Duration, log zerolog.Logger) *AllocationJob {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &AllocationJob{
		svc:     svc,
		timeout: timeout,
		log:     log.With().Str("job", "daily_allocation").Logger(),
	}
}

// Name returns the job name
func (j *AllocationJob) Name() string {
	return "daily_allocation"
}

// Run executes one evaluation
func (j *AllocationJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	run, err := j.svc.EvaluateFromHistory(ctx)
	if err != nil {
		return fmt.Errorf("allocation evaluation failed: %w", err)
	}

	j.log.Info().
		Str("run_id", run.ID).
		Int("positions", len(run.Result.Weights())).
		Float64("invested", run.Result.Sum).
		Msg("Scheduled allocation completed")

	return nil
}
