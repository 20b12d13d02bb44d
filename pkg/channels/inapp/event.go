package inapp

import (
	"time"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// EventType names what happened to a user's inbox.
type EventType string

const (
	EventNotification EventType = "notification"
	EventWithdrawn    EventType = "withdrawn"
	EventCleared      EventType = "cleared"
)

// Event is pushed to realtime subscribers.
type Event struct {
	Type           EventType                   `json:"type"`
	UserID         string                      `json:"user_id,omitempty"`
	NotificationID string                      `json:"notification_id,omitempty"`
	Notification   *notifications.Notification `json:"notification,omitempty"`
	At             time.Time                   `json:"at"`
}
