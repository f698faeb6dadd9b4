package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"creatorhub/internal/models"
)

type SubscriberRepository interface {
	Upsert(ctx context.Context, sub *models.Subscriber) (int64, error)
	ListByCreatorID(ctx context.Context, creatorID int64, platform string) ([]*models.Subscriber, error)
	CountActive(ctx context.Context, creatorID int64) (int64, error)
}

type subscriberRepository struct {
	db *sql.DB
}

func NewSubscriberRepository(db *sql.DB) SubscriberRepository {
	return &subscriberRepository{db: db}
}

const subscriberColumns = `id, creator_id, platform, platform_user_id, username, subscribed_at, expires_at, status, total_spent, metadata`

// Upsert is keyed on (creator, platform, platform_user_id) so repeated sync
// runs and webhook deliveries stay idempotent.
func (r *subscriberRepository) Upsert(ctx context.Context, sub *models.Subscriber) (int64, error) {
	query := `
		INSERT INTO subscribers (creator_id, platform, platform_user_id, username, subscribed_at, expires_at, status, total_spent, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (creator_id, platform, platform_user_id) DO UPDATE SET
			username = EXCLUDED.username,
			expires_at = EXCLUDED.expires_at,
			status = EXCLUDED.status,
			total_spent = EXCLUDED.total_spent,
			metadata = EXCLUDED.metadata
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, sub.CreatorID, sub.Platform, sub.PlatformUserID, sub.Username,
		sub.SubscribedAt, sub.ExpiresAt, sub.Status, sub.TotalSpent, sub.Metadata).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *subscriberRepository) ListByCreatorID(ctx context.Context, creatorID int64, platform string) ([]*models.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE creator_id = $1`
	args := []interface{}{creatorID}

	if platform != "" {
		query += ` AND platform = $2`
		args = append(args, platform)
	}
	query += ` ORDER BY subscribed_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var subscribers []*models.Subscriber
	for rows.Next() {
		var sub models.Subscriber
		// metadata is nullable; scan through a byte slice.
		var metadata []byte
		err := rows.Scan(&sub.ID, &sub.CreatorID, &sub.Platform, &sub.PlatformUserID, &sub.Username,
			&sub.SubscribedAt, &sub.ExpiresAt, &sub.Status, &sub.TotalSpent, &metadata)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		if metadata != nil {
			sub.Metadata = json.RawMessage(metadata)
		}
		subscribers = append(subscribers, &sub)
	}
	return subscribers, rows.Err()
}

func (r *subscriberRepository) CountActive(ctx context.Context, creatorID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM subscribers WHERE creator_id = $1 AND status = $2`

	var count int64
	err := r.db.QueryRowContext(ctx, query, creatorID, models.SubscriberStatusActive).Scan(&count)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return count, nil
}
