package transfer

import "encoding/json"

// WebhookEvent is the delivery body: {"type": "<event-tag>", "data": {...}}.
type WebhookEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type WebhookCreation struct {
	URL    string   `json:"url"`
	Events []string `json:"events"`
}

// WebhookCreated is returned exactly once, at creation, with the secret.
type WebhookCreated struct {
	ID     int64  `json:"id"`
	URL    string `json:"url"`
	Secret string `json:"secret"`
}
