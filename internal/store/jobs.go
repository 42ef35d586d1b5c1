// Package store is the durable print job queue backed by PostgreSQL. The
// atomic claim is the only synchronization primitive the executor relies on.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/fondaapp/print-fulfillment/internal/printjob"
)

// Store handles all database access for the print subsystem.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// New creates a Store on top of an open database handle.
func New(db *sqlx.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// CreateJob inserts a new pending job record.
func (s *Store) CreateJob(ctx context.Context, job *printjob.Job) error {
	query := `
		INSERT INTO print_jobs (
			id, order_id, job_type, printer_target,
			status, requested_by, attempts, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.ExecContext(ctx, query,
		job.ID,
		job.OrderID,
		job.Type,
		job.Target,
		job.Status,
		job.RequestedBy,
		job.Attempts,
		job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create print job: %w", err)
	}

	s.logger.Info("print job created",
		slog.String("job_id", job.ID),
		slog.String("order_id", job.OrderID),
		slog.String("type", string(job.Type)),
		slog.String("target", string(job.Target)),
	)
	return nil
}

// GetJob retrieves a job by id.
func (s *Store) GetJob(ctx context.Context, jobID string) (*printjob.Job, error) {
	query := `
		SELECT id, order_id, job_type, printer_target, status,
		       requested_by, attempts, error_message, created_at, processed_at
		FROM print_jobs
		WHERE id = $1
	`

	var job printjob.Job
	if err := s.db.GetContext(ctx, &job, query, jobID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, printjob.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get print job: %w", err)
	}
	return &job, nil
}

// ListJobs returns jobs filtered by optional status and order id, newest
// first. Used by the operator inspection endpoints.
func (s *Store) ListJobs(ctx context.Context, status printjob.Status, orderID string, limit int) ([]printjob.Job, error) {
	query := `
		SELECT id, order_id, job_type, printer_target, status,
		       requested_by, attempts, error_message, created_at, processed_at
		FROM print_jobs
		WHERE 1=1
	`
	args := []interface{}{}
	argIdx := 1

	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}
	if orderID != "" {
		query += fmt.Sprintf(" AND order_id = $%d", argIdx)
		args = append(args, orderID)
		argIdx++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argIdx)
	args = append(args, limit)

	var jobs []printjob.Job
	if err := s.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list print jobs: %w", err)
	}
	return jobs, nil
}

// ListPending returns pending jobs in FIFO order.
func (s *Store) ListPending(ctx context.Context, limit int) ([]printjob.Job, error) {
	query := `
		SELECT id, order_id, job_type, printer_target, status,
		       requested_by, attempts, error_message, created_at, processed_at
		FROM print_jobs
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	var jobs []printjob.Job
	if err := s.db.SelectContext(ctx, &jobs, query, printjob.StatusPending, limit); err != nil {
		return nil, fmt.Errorf("failed to list pending jobs: %w", err)
	}
	return jobs, nil
}

// ClaimJob atomically flips a job from pending to processing. The conditional
// update is a compare-and-swap: under concurrent executors exactly one wins;
// every other caller gets ErrAlreadyClaimed.
func (s *Store) ClaimJob(ctx context.Context, jobID, executorID string) (*printjob.Job, error) {
	query := `
		UPDATE print_jobs
		SET status = $1,
		    claimed_by = $2,
		    attempts = attempts + 1
		WHERE id = $3
		  AND status = $4
		RETURNING id, order_id, job_type, printer_target, status,
		          requested_by, attempts, error_message, created_at, processed_at
	`

	var job printjob.Job
	err := s.db.GetContext(ctx, &job, query,
		printjob.StatusProcessing, executorID, jobID, printjob.StatusPending)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, printjob.ErrAlreadyClaimed
		}
		return nil, fmt.Errorf("failed to claim job: %w", err)
	}

	s.logger.Info("print job claimed",
		slog.String("job_id", jobID),
		slog.String("executor_id", executorID),
	)
	return &job, nil
}

// CompleteJob marks a processing job completed.
func (s *Store) CompleteJob(ctx context.Context, jobID string) error {
	return s.finishJob(ctx, jobID, printjob.StatusCompleted, "")
}

// FailJob marks a processing job failed with the captured error message.
// Failed is terminal: the job is never re-enqueued automatically.
func (s *Store) FailJob(ctx context.Context, jobID, errMsg string) error {
	return s.finishJob(ctx, jobID, printjob.StatusFailed, errMsg)
}

func (s *Store) finishJob(ctx context.Context, jobID string, status printjob.Status, errMsg string) error {
	query := `
		UPDATE print_jobs
		SET status = $1,
		    error_message = NULLIF($2, ''),
		    processed_at = NOW()
		WHERE id = $3
		  AND status = $4
	`

	result, err := s.db.ExecContext(ctx, query, status, errMsg, jobID, printjob.StatusProcessing)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: job %s is not processing", printjob.ErrInvalidTransition, jobID)
	}

	s.logger.Info("print job finished",
		slog.String("job_id", jobID),
		slog.String("status", string(status)),
	)
	return nil
}
