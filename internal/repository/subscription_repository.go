package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"creatorhub/internal/models"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *models.Subscription) (int64, error)
	GetByUserID(ctx context.Context, userID int64) (*models.Subscription, error)
	UpdateSubscription(ctx context.Context, sub *models.Subscription) error
}

type subscriptionRepository struct {
	db *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *models.Subscription) (int64, error) {
	query := `
		INSERT INTO subscriptions (user_id, subscription_id, subscription_end_date, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, sub.UserID, sub.SubscriptionID, sub.SubscriptionEndDate, sub.Status).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *subscriptionRepository) GetByUserID(ctx context.Context, userID int64) (*models.Subscription, error) {
	query := `SELECT id, user_id, subscription_id, subscription_end_date, status, created_at, updated_at FROM subscriptions WHERE user_id = $1`
	row := r.db.QueryRowContext(ctx, query, userID)

	var sub models.Subscription
	err := row.Scan(&sub.ID, &sub.UserID, &sub.SubscriptionID, &sub.SubscriptionEndDate, &sub.Status, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &sub, nil
}

func (r *subscriptionRepository) UpdateSubscription(ctx context.Context, sub *models.Subscription) error {
	query := `
		UPDATE subscriptions
		SET subscription_id = $2, subscription_end_date = $3, status = $4, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1
	`
	_, err := r.db.ExecContext(ctx, query, sub.UserID, sub.SubscriptionID, sub.SubscriptionEndDate, sub.Status)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
