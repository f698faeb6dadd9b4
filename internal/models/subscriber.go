package models

import (
	"encoding/json"
	"time"
)

// Subscriber is a fan subscribed to a creator on one platform. Status is
// derived upstream from expires_at; it is stored as reported, not recomputed.
type Subscriber struct {
	ID             int64           `db:"id" json:"id"`
	CreatorID      int64           `db:"creator_id" json:"creator_id"`
	Platform       string          `db:"platform" json:"platform"`
	PlatformUserID string          `db:"platform_user_id" json:"platform_user_id"`
	Username       string          `db:"username" json:"username"`
	SubscribedAt   time.Time       `db:"subscribed_at" json:"subscribed_at"`
	ExpiresAt      *time.Time      `db:"expires_at" json:"expires_at,omitempty"`
	Status         string          `db:"status" json:"status"`
	TotalSpent     float64         `db:"total_spent" json:"total_spent"`
	Metadata       json.RawMessage `db:"metadata" json:"metadata,omitempty"`
}

const (
	SubscriberStatusActive  = "active"
	SubscriberStatusExpired = "expired"
)
