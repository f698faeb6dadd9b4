package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"creatorhub/internal/models"

	"github.com/lib/pq"
)

type WebhookRepository interface {
	Create(ctx context.Context, wh *models.Webhook) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Webhook, error)
	ListByOwnerID(ctx context.Context, ownerID int64) ([]*models.Webhook, error)
	TouchLastTriggered(ctx context.Context, id int64) error
	SetActive(ctx context.Context, id, ownerID int64, active bool) error
	Remove(ctx context.Context, id, ownerID int64) error
}

type webhookRepository struct {
	db *sql.DB
}

func NewWebhookRepository(db *sql.DB) WebhookRepository {
	return &webhookRepository{db: db}
}

const webhookColumns = `id, owner_id, url, events, secret, active, last_triggered_at, created_at, updated_at`

func scanWebhook(row interface{ Scan(...interface{}) error }) (*models.Webhook, error) {
	var wh models.Webhook
	err := row.Scan(&wh.ID, &wh.OwnerID, &wh.URL, &wh.Events, &wh.Secret, &wh.Active,
		&wh.LastTriggeredAt, &wh.CreatedAt, &wh.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &wh, nil
}

func (r *webhookRepository) Create(ctx context.Context, wh *models.Webhook) (int64, error) {
	query := `
		INSERT INTO webhooks (owner_id, url, events, secret, active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, wh.OwnerID, wh.URL, pq.StringArray(wh.Events), wh.Secret).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *webhookRepository) GetByID(ctx context.Context, id int64) (*models.Webhook, error) {
	query := `SELECT ` + webhookColumns + ` FROM webhooks WHERE id = $1`
	wh, err := scanWebhook(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return wh, nil
}

func (r *webhookRepository) ListByOwnerID(ctx context.Context, ownerID int64) ([]*models.Webhook, error) {
	query := `SELECT ` + webhookColumns + ` FROM webhooks WHERE owner_id = $1`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var webhooks []*models.Webhook
	for rows.Next() {
		wh, err := scanWebhook(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		webhooks = append(webhooks, wh)
	}
	return webhooks, rows.Err()
}

func (r *webhookRepository) TouchLastTriggered(ctx context.Context, id int64) error {
	query := `UPDATE webhooks SET last_triggered_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *webhookRepository) SetActive(ctx context.Context, id, ownerID int64, active bool) error {
	query := `UPDATE webhooks SET active = $3, updated_at = CURRENT_TIMESTAMP WHERE id = $1 AND owner_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, ownerID, active)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *webhookRepository) Remove(ctx context.Context, id, ownerID int64) error {
	query := `DELETE FROM webhooks WHERE id = $1 AND owner_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
