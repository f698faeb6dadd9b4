package models

import (
	"encoding/json"
	"time"
)

// PlatformConnection links a creator to one external platform account.
// One row per (creator, platform), enforced by upsert.
type PlatformConnection struct {
	ID             int64           `db:"id" json:"id"`
	CreatorID      int64           `db:"creator_id" json:"creator_id"`
	Platform       string          `db:"platform" json:"platform"`
	AccessToken    string          `db:"access_token" json:"-"`
	RefreshToken   string          `db:"refresh_token" json:"-"`
	Username       string          `db:"username" json:"username"`
	ProfileURL     string          `db:"profile_url" json:"profile_url"`
	Metadata       json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	TokenExpiresAt time.Time       `db:"token_expires_at" json:"token_expires_at"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

const (
	PlatformOnlyFans = "onlyfans"
	PlatformFansly   = "fansly"
)
