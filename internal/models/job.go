package models

import (
	"encoding/json"
	"time"
)

type Job struct {
	ID           int64           `db:"id" json:"id"`
	OwnerID      int64           `db:"owner_id" json:"owner_id"`
	Type         string          `db:"type" json:"type"`
	Status       string          `db:"status" json:"status"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Result       json.RawMessage `db:"result" json:"result,omitempty"`
	Error        *string         `db:"error" json:"error,omitempty"`
	ScheduledFor *time.Time      `db:"scheduled_for" json:"scheduled_for,omitempty"`
	StartedAt    *time.Time      `db:"started_at" json:"started_at,omitempty"`
	CompletedAt  *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

const (
	JobTypePost    = "post"
	JobTypeMessage = "message"
	JobTypeSync    = "sync"
)

// Status transitions are monotonic: pending -> processing -> completed|failed.
// Cancellation is only permitted while pending and removes the row.
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
	JobStatusCancelled  = "cancelled"
)

// Terminal reports whether the poller can stop watching this status.
func JobStatusTerminal(status string) bool {
	return status == JobStatusCompleted || status == JobStatusFailed || status == JobStatusCancelled
}

// SyncJobPayload is what a sync-type job records: which platforms and
// content types the out-of-process worker should reconcile.
type SyncJobPayload struct {
	Platforms    []string `json:"platforms"`
	ContentTypes []string `json:"content_types"`
}
