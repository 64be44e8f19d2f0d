// Package di provides dependency injection wiring and initialization.
package di

import (
	"errors"

	"github.com/aristath/momentum/internal/database"
	"github.com/aristath/momentum/internal/metrics"
	"github.com/aristath/momentum/internal/modules/allocation"
	"github.com/aristath/momentum/internal/modules/historical"
	"github.com/aristath/momentum/internal/scheduler"
)

// Container holds all application dependencies.
// It is the single source of truth for service instances and is passed to the server.
type Container struct {
	// Databases
	HistoryDB *database.DB
	RunsDB    *database.DB

	// Repositories
	HistoryStore *historical.HistoryDB
	RunRepo      *allocation.Repository

	// Services
	StrategyConfig    *allocation.Config
	Strategy          *allocation.Strategy
	AllocationService *allocation.Service
	Metrics           *metrics.Registry
}

// JobInstances holds the scheduler jobs for registration and manual triggering
type JobInstances struct {
	Allocation         *scheduler.AllocationJob
	AllocationSchedule string
	CheckDatabases     *scheduler.CheckDatabasesJob
}

// Close closes every open database
func (c *Container) Close() error {
	var errs []error
	if c.HistoryDB != nil {
		errs = append(errs, c.HistoryDB.Close())
	}
	if c.RunsDB != nil {
		errs = append(errs, c.RunsDB.Close())
	}
	return errors.Join(errs...)
}
