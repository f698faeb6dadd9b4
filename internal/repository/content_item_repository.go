package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"creatorhub/internal/models"

	"github.com/lib/pq"
)

type ContentItemRepository interface {
	Create(ctx context.Context, item *models.ContentItem) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.ContentItem, error)
	ListByCreatorID(ctx context.Context, creatorID int64) ([]*models.ContentItem, error)
	CheckByCreatorID(ctx context.Context, id, creatorID int64) (bool, error)
	UpdateAIFields(ctx context.Context, id int64, caption string, hashtags []string, bestTime time.Time, score int) error
	Remove(ctx context.Context, id, creatorID int64) error
}

type contentItemRepository struct {
	db *sql.DB
}

func NewContentItemRepository(db *sql.DB) ContentItemRepository {
	return &contentItemRepository{db: db}
}

const contentColumns = `id, creator_id, title, description, media_url, media_type, ai_caption, ai_hashtags, ai_best_time, ai_engagement_score, created_at, updated_at`

func scanContentItem(row interface{ Scan(...interface{}) error }) (*models.ContentItem, error) {
	var item models.ContentItem
	// ai_engagement_score stays NULL until the analysis task runs.
	var score sql.NullInt64
	err := row.Scan(&item.ID, &item.CreatorID, &item.Title, &item.Description, &item.MediaURL,
		&item.MediaType, &item.AICaption, &item.AIHashtags, &item.AIBestTime, &score,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.AIEngagementScore = int(score.Int64)
	return &item, nil
}

func (r *contentItemRepository) Create(ctx context.Context, item *models.ContentItem) (int64, error) {
	query := `
		INSERT INTO content_items (creator_id, title, description, media_url, media_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, item.CreatorID, item.Title, item.Description, item.MediaURL, item.MediaType).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *contentItemRepository) GetByID(ctx context.Context, id int64) (*models.ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM content_items WHERE id = $1`
	item, err := scanContentItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return item, nil
}

func (r *contentItemRepository) ListByCreatorID(ctx context.Context, creatorID int64) ([]*models.ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM content_items WHERE creator_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, creatorID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var items []*models.ContentItem
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *contentItemRepository) CheckByCreatorID(ctx context.Context, id, creatorID int64) (bool, error) {
	query := `SELECT 1 FROM content_items WHERE id = $1 AND creator_id = $2`

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

func (r *contentItemRepository) UpdateAIFields(ctx context.Context, id int64, caption string, hashtags []string, bestTime time.Time, score int) error {
	query := `
		UPDATE content_items
		SET ai_caption = $2, ai_hashtags = $3, ai_best_time = $4, ai_engagement_score = $5, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id, caption, pq.StringArray(hashtags), bestTime, score)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *contentItemRepository) Remove(ctx context.Context, id, creatorID int64) error {
	query := `DELETE FROM content_items WHERE id = $1 AND creator_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, creatorID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
