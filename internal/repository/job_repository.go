package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"creatorhub/internal/models"
)

type JobRepository interface {
	Create(ctx context.Context, job *models.Job) (int64, error)
	GetByID(ctx context.Context, id, ownerID int64) (*models.Job, error)
	ListByOwnerID(ctx context.Context, ownerID int64, status string) ([]*models.Job, error)
	HasActiveSyncJob(ctx context.Context, ownerID int64) (int64, bool, error)
	CancelIfPending(ctx context.Context, id, ownerID int64) (bool, error)
	RetryIfFailed(ctx context.Context, id, ownerID int64) (bool, error)
	MarkProcessing(ctx context.Context, id int64) (bool, error)
	MarkCompleted(ctx context.Context, id int64, result []byte) (bool, error)
	MarkFailed(ctx context.Context, id int64, errMsg string) (bool, error)
}

type jobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) JobRepository {
	return &jobRepository{db: db}
}

const jobColumns = `id, owner_id, type, status, payload, result, error, scheduled_for, started_at, completed_at, created_at, updated_at`

func scanJob(row interface{ Scan(...interface{}) error }) (*models.Job, error) {
	var job models.Job
	// result stays NULL until MarkCompleted, so it goes through a plain
	// byte slice; NULL cannot be scanned into json.RawMessage directly.
	var result []byte
	err := row.Scan(&job.ID, &job.OwnerID, &job.Type, &job.Status, &job.Payload, &result,
		&job.Error, &job.ScheduledFor, &job.StartedAt, &job.CompletedAt, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if result != nil {
		job.Result = json.RawMessage(result)
	}
	return &job, nil
}

func (r *jobRepository) Create(ctx context.Context, job *models.Job) (int64, error) {
	query := `
		INSERT INTO jobs (owner_id, type, status, payload, scheduled_for)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, job.OwnerID, job.Type, models.JobStatusPending, job.Payload, job.ScheduledFor).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *jobRepository) GetByID(ctx context.Context, id, ownerID int64) (*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1 AND owner_id = $2`
	job, err := scanJob(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return job, nil
}

func (r *jobRepository) ListByOwnerID(ctx context.Context, ownerID int64, status string) ([]*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE owner_id = $1`
	args := []interface{}{ownerID}

	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *jobRepository) HasActiveSyncJob(ctx context.Context, ownerID int64) (int64, bool, error) {
	query := `
		SELECT id FROM jobs
		WHERE owner_id = $1 AND type = $2 AND status IN ($3, $4)
		ORDER BY created_at DESC
		LIMIT 1
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, ownerID, models.JobTypeSync, models.JobStatusPending, models.JobStatusProcessing).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		slog.Info(err.Error())
		return 0, false, err
	}
	return id, true, nil
}

// CancelIfPending is a conditional delete: the WHERE clause is the lock.
// Returns false when another actor already advanced the status.
func (r *jobRepository) CancelIfPending(ctx context.Context, id, ownerID int64) (bool, error) {
	query := `DELETE FROM jobs WHERE id = $1 AND owner_id = $2 AND status = $3`
	result, err := r.db.ExecContext(ctx, query, id, ownerID, models.JobStatusPending)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return rowsAffected(result)
}

func (r *jobRepository) RetryIfFailed(ctx context.Context, id, ownerID int64) (bool, error) {
	query := `
		UPDATE jobs
		SET status = $4, error = NULL, started_at = NULL, completed_at = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND owner_id = $2 AND status = $3
	`
	result, err := r.db.ExecContext(ctx, query, id, ownerID, models.JobStatusFailed, models.JobStatusPending)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return rowsAffected(result)
}

func (r *jobRepository) MarkProcessing(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE jobs
		SET status = $3, started_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status = $2
	`
	result, err := r.db.ExecContext(ctx, query, id, models.JobStatusPending, models.JobStatusProcessing)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return rowsAffected(result)
}

func (r *jobRepository) MarkCompleted(ctx context.Context, id int64, result []byte) (bool, error) {
	query := `
		UPDATE jobs
		SET status = $3, result = $4, completed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, models.JobStatusProcessing, models.JobStatusCompleted, result)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return rowsAffected(res)
}

func (r *jobRepository) MarkFailed(ctx context.Context, id int64, errMsg string) (bool, error) {
	query := `
		UPDATE jobs
		SET status = $3, error = $4, completed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, models.JobStatusProcessing, models.JobStatusFailed, errMsg)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return rowsAffected(res)
}

func rowsAffected(result sql.Result) (bool, error) {
	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected > 0, nil
}
