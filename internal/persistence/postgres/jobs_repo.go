package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sawpanic/marketintel/internal/persistence"
	"github.com/sawpanic/marketintel/internal/types"
)

// backfillJobsRepo implements persistence.BackfillJobsRepo.
type backfillJobsRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewBackfillJobsRepo creates a PostgreSQL-backed backfill_jobs repo.
func NewBackfillJobsRepo(db *sqlx.DB, timeout time.Duration) persistence.BackfillJobsRepo {
	return &backfillJobsRepo{db: db, timeout: timeout}
}

func (r *backfillJobsRepo) Create(ctx context.Context, job types.BackfillJob) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	configJSON, err := json.Marshal(job.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal backfill job config: %w", err)
	}

	query := `
		INSERT INTO backfill_jobs (id, job_type, status, started_at, items_processed, items_total, config)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.db.ExecContext(ctx, query, job.ID, job.JobType, job.Status, job.StartedAt, job.ItemsProcessed, job.ItemsTotal, configJSON)
	if err != nil {
		return fmt.Errorf("failed to create backfill job: %w", err)
	}
	return nil
}

func (r *backfillJobsRepo) Update(ctx context.Context, job types.BackfillJob) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		UPDATE backfill_jobs SET
			status = $2, completed_at = $3, items_processed = $4, items_total = $5, error_message = $6
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, job.ID, job.Status, job.CompletedAt, job.ItemsProcessed, job.ItemsTotal, job.ErrorMessage)
	if err != nil {
		return fmt.Errorf("failed to update backfill job: %w", err)
	}
	return nil
}

func (r *backfillJobsRepo) Latest(ctx context.Context) (*types.BackfillJob, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, job_type, status, started_at, completed_at, items_processed, items_total, error_message, config
		FROM backfill_jobs
		ORDER BY started_at DESC
		LIMIT 1`
	return r.scanOne(r.db.QueryRowxContext(ctx, query))
}

func (r *backfillJobsRepo) GetByID(ctx context.Context, id string) (*types.BackfillJob, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, job_type, status, started_at, completed_at, items_processed, items_total, error_message, config
		FROM backfill_jobs
		WHERE id = $1`
	return r.scanOne(r.db.QueryRowxContext(ctx, query, id))
}

// FailStaleRunning marks any job left "running" as failed so a process
// crash never leaves a job reading as in-progress forever (§7).
func (r *backfillJobsRepo) FailStaleRunning(ctx context.Context, errMessage string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		UPDATE backfill_jobs SET status = $1, error_message = $2, completed_at = $3
		WHERE status = $4`
	_, err := r.db.ExecContext(ctx, query, types.JobFailed, errMessage, time.Now().UTC(), types.JobRunning)
	if err != nil {
		return fmt.Errorf("failed to fail stale backfill jobs: %w", err)
	}
	return nil
}

func (r *backfillJobsRepo) scanOne(row *sqlx.Row) (*types.BackfillJob, error) {
	var job types.BackfillJob
	var configJSON []byte
	err := row.Scan(&job.ID, &job.JobType, &job.Status, &job.StartedAt, &job.CompletedAt,
		&job.ItemsProcessed, &job.ItemsTotal, &job.ErrorMessage, &configJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan backfill job: %w", err)
	}
	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &job.Config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal backfill job config: %w", err)
		}
	}
	return &job, nil
}

// optimizationJobsRepo implements persistence.OptimizationJobsRepo.
type optimizationJobsRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewOptimizationJobsRepo creates a PostgreSQL-backed optimization_jobs repo.
func NewOptimizationJobsRepo(db *sqlx.DB, timeout time.Duration) persistence.OptimizationJobsRepo {
	return &optimizationJobsRepo{db: db, timeout: timeout}
}

func (r *optimizationJobsRepo) Create(ctx context.Context, job types.OptimizationJob) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	configJSON, err := json.Marshal(job.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal optimization job config: %w", err)
	}

	query := `
		INSERT INTO optimization_jobs (id, status, config, total_configs, processed_configs, valid_configs, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.db.ExecContext(ctx, query, job.ID, job.Status, configJSON, job.TotalConfigs, job.ProcessedConfigs, job.ValidConfigs, job.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to create optimization job: %w", err)
	}
	return nil
}

func (r *optimizationJobsRepo) Update(ctx context.Context, job types.OptimizationJob) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		UPDATE optimization_jobs SET
			status = $2, processed_configs = $3, valid_configs = $4, completed_at = $5,
			execution_time_ms = $6, error_message = $7
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, job.ID, job.Status, job.ProcessedConfigs, job.ValidConfigs,
		job.CompletedAt, job.ExecutionTimeMS, job.ErrorMessage)
	if err != nil {
		return fmt.Errorf("failed to update optimization job: %w", err)
	}
	return nil
}

func (r *optimizationJobsRepo) GetByID(ctx context.Context, id string) (*types.OptimizationJob, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, status, config, total_configs, processed_configs, valid_configs, started_at,
		       completed_at, execution_time_ms, error_message
		FROM optimization_jobs
		WHERE id = $1`
	return r.scanOne(r.db.QueryRowxContext(ctx, query, id))
}

func (r *optimizationJobsRepo) Latest(ctx context.Context) (*types.OptimizationJob, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, status, config, total_configs, processed_configs, valid_configs, started_at,
		       completed_at, execution_time_ms, error_message
		FROM optimization_jobs
		ORDER BY started_at DESC
		LIMIT 1`
	return r.scanOne(r.db.QueryRowxContext(ctx, query))
}

func (r *optimizationJobsRepo) FailStaleRunning(ctx context.Context, errMessage string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		UPDATE optimization_jobs SET status = $1, error_message = $2, completed_at = $3
		WHERE status = $4`
	_, err := r.db.ExecContext(ctx, query, types.JobFailed, errMessage, time.Now().UTC(), types.JobRunning)
	if err != nil {
		return fmt.Errorf("failed to fail stale optimization jobs: %w", err)
	}
	return nil
}

func (r *optimizationJobsRepo) scanOne(row *sqlx.Row) (*types.OptimizationJob, error) {
	var job types.OptimizationJob
	var configJSON []byte
	err := row.Scan(&job.ID, &job.Status, &configJSON, &job.TotalConfigs, &job.ProcessedConfigs,
		&job.ValidConfigs, &job.StartedAt, &job.CompletedAt, &job.ExecutionTimeMS, &job.ErrorMessage)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan optimization job: %w", err)
	}
	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &job.Config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal optimization job config: %w", err)
		}
	}
	return &job, nil
}
