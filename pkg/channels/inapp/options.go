package inapp

import (
	"log/slog"
	"time"
)

const (
	DefaultUserID     = "default"
	DefaultBufferSize = 32
)

// Option configures a Channel.
type Option func(*Channel)

// WithDefaultUserID sets the inbox used for notifications without a recipient.
// Empty values are ignored.
func WithDefaultUserID(userID string) Option {
	return func(c *Channel) {
		if userID != "" {
			c.defaultUserID = userID
		}
	}
}

// WithHub replaces the realtime hub, e.g. to share one between channels.
func WithHub(h *Hub) Option {
	return func(c *Channel) {
		if h != nil {
			c.hub = h
		}
	}
}

// WithClock sets the time source used for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Channel) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Channel) {
		if l != nil {
			c.logger = l
		}
	}
}
