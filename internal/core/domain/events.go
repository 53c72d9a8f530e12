package domain

import "time"

// AccountRegisteredEvent represents the payload for wayfare.account.registered messages.
type AccountRegisteredEvent struct {
	EventID      string
	AccountID    string
	Handle       string
	Email        string
	RegisteredAt time.Time
	Metadata     map[string]any
}

// SessionStartedEvent represents the payload for wayfare.session.started messages.
type SessionStartedEvent struct {
	EventID   string
	AccountID string
	Handle    string
	StartedAt time.Time
	IP        string
	UserAgent string
	Metadata  map[string]any
}

// SessionClosedEvent represents the payload for wayfare.session.closed messages.
type SessionClosedEvent struct {
	EventID   string
	AccountID string
	Handle    string
	ClosedAt  time.Time
	Reason    string
	Metadata  map[string]any
}

// AccountDeactivatedEvent represents the payload for wayfare.account.deactivated messages.
type AccountDeactivatedEvent struct {
	EventID       string
	AccountID     string
	Handle        string
	DeactivatedAt time.Time
	Metadata      map[string]any
}
