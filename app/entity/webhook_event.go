package entity

import "time"

// WebhookEvent is the durable record of a gateway notification that could
// not be resolved at receive time, usually because the local payment did not
// exist yet. Rows are unique by reference and stay queued until the payment
// reaches a terminal state or an operator steps in.
type WebhookEvent struct {
	ID uint64

	Reference string
	Payload   string
	Signature string

	Processed   bool
	Attempts    int32
	LastError   *string
	ProcessedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
