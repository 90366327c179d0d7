package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a directory change.
type EventType string

const (
	EventUserCreated EventType = "user.created"
	EventUserUpdated EventType = "user.updated"
	EventUserDeleted EventType = "user.deleted"
)

// UserEventTypes lists every directory change type.
var UserEventTypes = []EventType{EventUserCreated, EventUserUpdated, EventUserDeleted}

// Known reports whether t is one of UserEventTypes.
func (t EventType) Known() bool {
	switch t {
	case EventUserCreated, EventUserUpdated, EventUserDeleted:
		return true
	}
	return false
}

// Actor identifies the principal behind a change, when known.
type Actor struct {
	UserID   string `json:"user_id,omitempty"`
	UserName string `json:"user_name,omitempty"`
}

// UserChange summarizes the user after the change.
type UserChange struct {
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

// Event is one directory change.
type Event struct {
	ID        string     `json:"id"`
	Type      EventType  `json:"type"`
	UserID    int        `json:"user_id"`
	Actor     Actor      `json:"actor"`
	Timestamp time.Time  `json:"timestamp"`
	Change    UserChange `json:"change"`
}

// NewUserEvent stamps a change with a fresh id and the current UTC time.
func NewUserEvent(eventType EventType, userID int, actor Actor, change UserChange) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Change:    change,
	}
}
