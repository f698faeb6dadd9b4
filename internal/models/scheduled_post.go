package models

import "time"

type ScheduledPost struct {
	ID            int64     `db:"id" json:"id"`
	CreatorID     int64     `db:"creator_id" json:"creator_id"`
	ContentID     int64     `db:"content_id" json:"content_id"`
	ScheduledTime time.Time `db:"scheduled_time" json:"scheduled_time"`
	Caption       *string   `db:"caption" json:"caption,omitempty"`
	Status        string    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

const (
	PostStatusPending   = "pending"
	PostStatusPublished = "published"
	PostStatusFailed    = "failed"
)
