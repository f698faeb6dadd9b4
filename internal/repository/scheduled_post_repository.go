package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"creatorhub/internal/models"
)

type ScheduledPostRepository interface {
	Create(ctx context.Context, post *models.ScheduledPost) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error)
	ListByCreatorID(ctx context.Context, creatorID int64, status string) ([]*models.ScheduledPost, error)
	CheckByCreatorID(ctx context.Context, id, creatorID int64) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	Remove(ctx context.Context, id, creatorID int64) error
}

type scheduledPostRepository struct {
	db *sql.DB
}

func NewScheduledPostRepository(db *sql.DB) ScheduledPostRepository {
	return &scheduledPostRepository{db: db}
}

const scheduledPostColumns = `id, creator_id, content_id, scheduled_time, caption, status, created_at, updated_at`

func scanScheduledPost(row interface{ Scan(...interface{}) error }) (*models.ScheduledPost, error) {
	var post models.ScheduledPost
	err := row.Scan(&post.ID, &post.CreatorID, &post.ContentID, &post.ScheduledTime,
		&post.Caption, &post.Status, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *scheduledPostRepository) Create(ctx context.Context, post *models.ScheduledPost) (int64, error) {
	query := `
		INSERT INTO scheduled_posts (creator_id, content_id, scheduled_time, caption, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, post.CreatorID, post.ContentID, post.ScheduledTime, post.Caption, models.PostStatusPending).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *scheduledPostRepository) GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error) {
	query := `SELECT ` + scheduledPostColumns + ` FROM scheduled_posts WHERE id = $1`
	post, err := scanScheduledPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *scheduledPostRepository) ListByCreatorID(ctx context.Context, creatorID int64, status string) ([]*models.ScheduledPost, error) {
	query := `SELECT ` + scheduledPostColumns + ` FROM scheduled_posts WHERE creator_id = $1`
	args := []interface{}{creatorID}

	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY scheduled_time ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.ScheduledPost
	for rows.Next() {
		post, err := scanScheduledPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *scheduledPostRepository) CheckByCreatorID(ctx context.Context, id, creatorID int64) (bool, error) {
	query := `SELECT 1 FROM scheduled_posts WHERE id = $1 AND creator_id = $2`

	var result int
	err := r.db.QueryRowContext(ctx, query, id, creatorID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *scheduledPostRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE scheduled_posts SET status = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *scheduledPostRepository) Remove(ctx context.Context, id, creatorID int64) error {
	query := `DELETE FROM scheduled_posts WHERE id = $1 AND creator_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, creatorID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
