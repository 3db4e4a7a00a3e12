package events

import (
	"time"

	"github.com/spec-kit/revdup-client/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionEstablished EventType = "session_established"
	EventSessionCleared     EventType = "session_cleared"
)

// Event represents a session lifecycle event emitted by the controller.
type Event struct {
	Type      EventType   `json:"type"`
	Role      domain.Role `json:"role,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
