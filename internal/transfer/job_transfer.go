package transfer

import "encoding/json"

type JobCreation struct {
	Type         string          `json:"type"`
	Payload      json.RawMessage `json:"payload"`
	ScheduledFor string          `json:"scheduled_for,omitempty"`
}

// SyncOptions narrows a content sync. Empty slices mean "all connected
// platforms" and "image+video" respectively.
type SyncOptions struct {
	Platforms    []string `json:"platforms,omitempty"`
	ContentTypes []string `json:"content_types,omitempty"`
}
