package scheduler

import (
	"context"
	"time"

	"github.com/aristath/momentum/internal/modules/allocation"
)

// JobInfo describes a registered job
type JobInfo struct {
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	Next     time.Time `json:"next"`
	Prev     time.Time `json:"prev"`
}

// AllocationServiceInterface defines the contract for the allocation service
// Used by scheduler to enable testing with mocks
type AllocationServiceInterface interface {
	EvaluateFromHistory(ctx context.Context) (*allocation.Run, error)
}

// HealthChecker is implemented by *database.DB
type HealthChecker interface {
	Name() string
	HealthCheck(ctx context.Context) error
}
