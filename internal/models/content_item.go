package models

import (
	"time"

	"github.com/lib/pq"
)

// ContentItem is an uploaded media asset. The AI fields are filled in
// asynchronously by the analyze task and may be absent.
type ContentItem struct {
	ID                int64          `db:"id" json:"id"`
	CreatorID         int64          `db:"creator_id" json:"creator_id"`
	Title             string         `db:"title" json:"title"`
	Description       *string        `db:"description" json:"description,omitempty"`
	MediaURL          string         `db:"media_url" json:"media_url"`
	MediaType         string         `db:"media_type" json:"media_type"`
	AICaption         *string        `db:"ai_caption" json:"ai_caption,omitempty"`
	AIHashtags        pq.StringArray `db:"ai_hashtags" json:"ai_hashtags"`
	AIBestTime        *time.Time     `db:"ai_best_time" json:"ai_best_time,omitempty"`
	AIEngagementScore int            `db:"ai_engagement_score" json:"ai_engagement_score"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)
