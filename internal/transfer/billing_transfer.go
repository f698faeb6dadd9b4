package transfer

import "time"

// SubscriptionEvent is the payment processor's webhook body.
type SubscriptionEvent struct {
	EventType string `json:"event_type"`
	Object    struct {
		ID                   string    `json:"id"`
		Status               string    `json:"status"`
		CurrentPeriodEndDate time.Time `json:"current_period_end_date"`
		Customer             struct {
			Email string `json:"email"`
		} `json:"customer"`
	} `json:"object"`
}

type Invoice struct {
	ID        string  `json:"id"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
	PDFURL    string  `json:"pdf_url,omitempty"`
}

type PaymentMethod struct {
	ID        string `json:"id"`
	Brand     string `json:"brand"`
	Last4     string `json:"last4"`
	ExpMonth  int    `json:"exp_month"`
	ExpYear   int    `json:"exp_year"`
	IsDefault bool   `json:"is_default"`
}
