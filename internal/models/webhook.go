package models

import (
	"time"

	"github.com/lib/pq"
)

// Webhook holds one registered endpoint and the HMAC secret generated at
// creation. The secret never rotates; deliveries are verified against it
// for the lifetime of the record.
type Webhook struct {
	ID              int64          `db:"id" json:"id"`
	OwnerID         int64          `db:"owner_id" json:"owner_id"`
	URL             string         `db:"url" json:"url"`
	Events          pq.StringArray `db:"events" json:"events"`
	Secret          string         `db:"secret" json:"-"`
	Active          bool           `db:"active" json:"active"`
	LastTriggeredAt *time.Time     `db:"last_triggered_at" json:"last_triggered_at,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// Closed set of event tags a webhook can subscribe to.
const (
	EventContentCreated  = "content.created"
	EventContentUpdated  = "content.updated"
	EventContentDeleted  = "content.deleted"
	EventMessageReceived = "message.received"
	EventMessageSent     = "message.sent"
)
