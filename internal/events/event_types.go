package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAccountCreated EventType = "account_created"
	EventAccountUpdated EventType = "account_updated"
	EventAccountDeleted EventType = "account_deleted"
)

// Event represents a domain event emitted by services. Events carry the
// account id and handle only; emails and verifiers never leave the store
// through this path.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	AccountID string    `json:"account_id"`
	Handle    string    `json:"handle"`
	Timestamp time.Time `json:"timestamp"`
}
