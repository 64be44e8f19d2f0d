package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/momentum/internal/database"
	"github.com/aristath/momentum/internal/di"
	"github.com/aristath/momentum/internal/modules/allocation"
	"github.com/aristath/momentum/internal/scheduler"
)

// SystemHandlers serves system status and manual job triggers
type SystemHandlers struct {
	log       zerolog.Logger
	dataDir   string
	container *di.Container
	jobs      *di.JobInstances
	scheduler *scheduler.Scheduler
	startedAt time.Time
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(
	log zerolog.Logger,
	dataDir string,
	container *di.Container,
	jobs *di.JobInstances,
	sched *scheduler.Scheduler,
) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		dataDir:   dataDir,
		container: container,
		jobs:      jobs,
		scheduler: sched,
		startedAt: time.Now(),
	}
}

// SystemStatusResponse represents the system status
type SystemStatusResponse struct {
	Status        string     `json:"status"`
	Strategy      string     `json:"strategy"`
	Interval      string     `json:"interval"`
	Assets        []string   `json:"assets"`
	UptimeSeconds float64    `json:"uptime_seconds"`
	CPUPercent    float64    `json:"cpu_percent"`
	MemoryPercent float64    `json:"memory_percent"`
	GoVersion     string     `json:"go_version"`
	Goroutines    int        `json:"goroutines"`
	Databases     []DBStatus `json:"databases"`
	LastRunID     string     `json:"last_run_id,omitempty"`
	LastRunAt     string     `json:"last_run_at,omitempty"`
}

// DBStatus reports reachability of one database
type DBStatus struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// DatabaseStatsResponse represents database statistics
type DatabaseStatsResponse struct {
	Databases   []DBInfo `json:"databases"`
	TotalSizeMB float64  `json:"total_size_mb"`
	LastChecked string   `json:"last_checked"`
}

// DBInfo represents information about a single database
type DBInfo struct {
	Name    string  `json:"name"`
	Path    string  `json:"path"`
	Profile string  `json:"profile"`
	SizeMB  float64 `json:"size_mb"`
}

// JobsStatusResponse lists scheduled jobs
type JobsStatusResponse struct {
	SchedulerEnabled bool                `json:"scheduler_enabled"`
	Jobs             []scheduler.JobInfo `json:"jobs"`
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()
	cfg := h.container.StrategyConfig

	response := SystemStatusResponse{
		Status:        "ok",
		Strategy:      cfg.Name(),
		Interval:      cfg.Interval(),
		Assets:        cfg.Assets(),
		UptimeSeconds: time.Since(h.startedAt).Seconds(),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		GoVersion:     runtime.Version(),
		Goroutines:    runtime.NumGoroutine(),
	}

	for _, db := range h.databases() {
		status := DBStatus{Name: db.Name(), OK: true}
		if err := db.QuickCheck(r.Context()); err != nil {
			status.OK = false
			status.Error = err.Error()
			response.Status = "degraded"
		}
		response.Databases = append(response.Databases, status)
	}

	latest, err := h.container.RunRepo.Latest(r.Context())
	switch {
	case err == nil:
		response.LastRunID = latest.ID
		response.LastRunAt = latest.CreatedAt.Format(time.RFC3339)
	case !errors.Is(err, allocation.ErrRunNotFound):
		h.log.Warn().Err(err).Msg("Failed to read latest allocation run")
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleDatabaseStats handles GET /api/system/databases
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting database stats")

	response := DatabaseStatsResponse{
		Databases:   []DBInfo{},
		LastChecked: time.Now().Format(time.RFC3339),
	}

	for _, db := range h.databases() {
		info := DBInfo{
			Name:    db.Name(),
			Path:    db.Path(),
			Profile: string(db.Profile()),
			SizeMB:  fileSizeMB(db.Path()),
		}
		response.TotalSizeMB += info.SizeMB
		response.Databases = append(response.Databases, info)
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleJobsStatus handles GET /api/jobs
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	response := JobsStatusResponse{Jobs: []scheduler.JobInfo{}}
	if h.scheduler != nil {
		response.SchedulerEnabled = true
		response.Jobs = h.scheduler.Jobs()
		sort.Slice(response.Jobs, func(i, j int) bool {
			return response.Jobs[i].Name < response.Jobs[j].Name
		})
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleTriggerAllocation handles POST /api/jobs/allocation
func (h *SystemHandlers) HandleTriggerAllocation(w http.ResponseWriter, r *http.Request) {
	h.triggerJob(w, h.jobs.Allocation)
}

// HandleTriggerDatabaseCheck handles POST /api/jobs/check-databases
func (h *SystemHandlers) HandleTriggerDatabaseCheck(w http.ResponseWriter, r *http.Request) {
	h.triggerJob(w, h.jobs.CheckDatabases)
}

func (h *SystemHandlers) triggerJob(w http.ResponseWriter, job scheduler.Job) {
	if err := job.Run(); err != nil {
		h.log.Error().Err(err).Str("job", job.Name()).Msg("Manual job run failed")
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status": "error",
			"job":    job.Name(),
			"error":  err.Error(),
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"job":    job.Name(),
	})
}

func (h *SystemHandlers) databases() []*database.DB {
	var dbs []*database.DB
	for _, db := range []*database.DB{h.container.HistoryDB, h.container.RunsDB} {
		if db != nil {
			dbs = append(dbs, db)
		}
	}
	return dbs
}

// getSystemStats calculates CPU and RAM usage percentages
// Samples CPU over 100ms to keep the endpoint responsive
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	cpuPercent, err := cpu.PercentWithContext(ctx, 100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func fileSizeMB(path string) float64 {
	var total int64
	// WAL and shared-memory files belong to the database
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if info, err := os.Stat(filepath.Clean(p)); err == nil {
			total += info.Size()
		}
	}
	return float64(total) / 1024 / 1024
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
