package allocation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrRunNotFound is returned when no logged run matches the query
var ErrRunNotFound = errors.New("allocation run not found")

// Run is a logged evaluation
type Run struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Result    *Result   `json:"result"`
}

// Repository handles the allocation run log
// Database: runs.db (allocation_runs table)
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new allocation run repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "allocation_runs").Logger(),
	}
}

// Save stores a run, assigning an ID and timestamp when missing
func (r *Repository) Save(ctx context.Context, run *Run) error {
	if run == nil || run.Result == nil {
		return errors.New("cannot save empty allocation run")
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	payload, err := msgpack.Marshal(run.Result.Decisions)
	if err != nil {
		return fmt.Errorf("failed to encode allocation decisions: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO allocation_runs (id, strategy, interval_label, created_at, raw_sum, sum, normalized, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Result.Strategy,
		run.Result.Interval,
		run.CreatedAt.UnixNano(),
		run.Result.RawSum,
		run.Result.Sum,
		boolToInt(run.Result.Normalized),
		payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert allocation run: %w", err)
	}

	r.log.Debug().Str("run_id", run.ID).Int("decisions", len(run.Result.Decisions)).Msg("Allocation run saved")
	return nil
}

// GetByID returns a logged run
func (r *Repository) GetByID(ctx context.Context, id string) (*Run, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, strategy, interval_label, created_at, raw_sum, sum, normalized, payload
		FROM allocation_runs
		WHERE id = ?
	`, id)
	return scanRun(row)
}

// Latest returns the most recent run
func (r *Repository) Latest(ctx context.Context) (*Run, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, strategy, interval_label, created_at, raw_sum, sum, normalized, payload
		FROM allocation_runs
		ORDER BY created_at DESC
		LIMIT 1
	`)
	return scanRun(row)
}

// List returns up to limit runs, newest first
func (r *Repository) List(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, strategy, interval_label, created_at, raw_sum, sum, normalized, payload
		FROM allocation_runs
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocation runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating allocation runs: %w", err)
	}

	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run        Run
		result     Result
		createdAt  int64
		normalized int
		payload    []byte
	)

	err := row.Scan(
		&run.ID,
		&result.Strategy,
		&result.Interval,
		&createdAt,
		&result.RawSum,
		&result.Sum,
		&normalized,
		&payload,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan allocation run: %w", err)
	}

	if err := msgpack.Unmarshal(payload, &result.Decisions); err != nil {
		return nil, fmt.Errorf("failed to decode allocation decisions for run %s: %w", run.ID, err)
	}

	run.CreatedAt = time.Unix(0, createdAt).UTC()
	result.Normalized = normalized != 0
	run.Result = &result
	return &run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
