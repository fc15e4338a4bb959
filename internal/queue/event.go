// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into audit-log lines.
package queue

// Queue names for the audit events the API publishes.
const (
	UserRegisteredQueue      = "user.registered"
	TransactionRecordedQueue = "transaction.recorded"
)

// UserRegisteredEvent is published after a successful registration. It
// carries enough for downstream consumers to log or notify without
// touching the primary database. Password material is never included.
type UserRegisteredEvent struct {
	UserID       uint64 `json:"user_id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	RegisteredAt string `json:"registered_at"`
}

// TransactionRecordedEvent is published after a transaction is created.
type TransactionRecordedEvent struct {
	TransactionID uint64 `json:"transaction_id"`
	UserID        uint64 `json:"user_id"`
	Username      string `json:"username"`
	Description   string `json:"description"`
	AmountCents   int64  `json:"amount_cents"`
	Type          string `json:"type"`
	OccurredOn    string `json:"occurred_on"`
	RecordedAt    string `json:"recorded_at"`
}
