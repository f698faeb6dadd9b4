package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"creatorhub/internal/models"
)

type PlatformConnectionRepository interface {
	Upsert(ctx context.Context, pc *models.PlatformConnection) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.PlatformConnection, error)
	GetByCreatorAndPlatform(ctx context.Context, creatorID int64, platform string) (*models.PlatformConnection, error)
	ListByCreatorID(ctx context.Context, creatorID int64) ([]*models.PlatformConnection, error)
	ListByTokenExpiry(ctx context.Context, before time.Time) ([]*models.PlatformConnection, error)
	SetToken(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error
	Remove(ctx context.Context, id, creatorID int64) error
}

type platformConnectionRepository struct {
	db *sql.DB
}

func NewPlatformConnectionRepository(db *sql.DB) PlatformConnectionRepository {
	return &platformConnectionRepository{db: db}
}

const connectionColumns = `id, creator_id, platform, access_token, refresh_token, username, profile_url, metadata, token_expires_at, created_at, updated_at`

func scanConnection(row interface{ Scan(...interface{}) error }) (*models.PlatformConnection, error) {
	var pc models.PlatformConnection
	// metadata is nullable; scan through a byte slice.
	var metadata []byte
	err := row.Scan(&pc.ID, &pc.CreatorID, &pc.Platform, &pc.AccessToken, &pc.RefreshToken,
		&pc.Username, &pc.ProfileURL, &metadata, &pc.TokenExpiresAt, &pc.CreatedAt, &pc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if metadata != nil {
		pc.Metadata = json.RawMessage(metadata)
	}
	return &pc, nil
}

// Upsert keeps the one-row-per-(creator,platform) invariant: reconnecting
// rotates the tokens and profile fields in place.
func (r *platformConnectionRepository) Upsert(ctx context.Context, pc *models.PlatformConnection) (int64, error) {
	query := `
		INSERT INTO platform_connections (creator_id, platform, access_token, refresh_token, username, profile_url, metadata, token_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (creator_id, platform) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			username = EXCLUDED.username,
			profile_url = EXCLUDED.profile_url,
			metadata = EXCLUDED.metadata,
			token_expires_at = EXCLUDED.token_expires_at,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, pc.CreatorID, pc.Platform, pc.AccessToken, pc.RefreshToken,
		pc.Username, pc.ProfileURL, pc.Metadata, pc.TokenExpiresAt).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *platformConnectionRepository) GetByID(ctx context.Context, id int64) (*models.PlatformConnection, error) {
	query := `SELECT ` + connectionColumns + ` FROM platform_connections WHERE id = $1`
	pc, err := scanConnection(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return pc, nil
}

func (r *platformConnectionRepository) GetByCreatorAndPlatform(ctx context.Context, creatorID int64, platform string) (*models.PlatformConnection, error) {
	query := `SELECT ` + connectionColumns + ` FROM platform_connections WHERE creator_id = $1 AND platform = $2`
	pc, err := scanConnection(r.db.QueryRowContext(ctx, query, creatorID, platform))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return pc, nil
}

func (r *platformConnectionRepository) ListByCreatorID(ctx context.Context, creatorID int64) ([]*models.PlatformConnection, error) {
	query := `SELECT ` + connectionColumns + ` FROM platform_connections WHERE creator_id = $1`
	rows, err := r.db.QueryContext(ctx, query, creatorID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var connections []*models.PlatformConnection
	for rows.Next() {
		pc, err := scanConnection(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		connections = append(connections, pc)
	}
	return connections, rows.Err()
}

func (r *platformConnectionRepository) ListByTokenExpiry(ctx context.Context, before time.Time) ([]*models.PlatformConnection, error) {
	query := `SELECT ` + connectionColumns + ` FROM platform_connections WHERE token_expires_at < $1`
	rows, err := r.db.QueryContext(ctx, query, before)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var connections []*models.PlatformConnection
	for rows.Next() {
		pc, err := scanConnection(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		connections = append(connections, pc)
	}
	return connections, rows.Err()
}

func (r *platformConnectionRepository) SetToken(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error {
	query := `
		UPDATE platform_connections
		SET
			access_token = $2,
			refresh_token = COALESCE(NULLIF($3, ''), refresh_token),
			token_expires_at = $4,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id, accessToken, refreshToken, expiresAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *platformConnectionRepository) Remove(ctx context.Context, id, creatorID int64) error {
	query := `DELETE FROM platform_connections WHERE id = $1 AND creator_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, creatorID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
