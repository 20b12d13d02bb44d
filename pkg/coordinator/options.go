package coordinator

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithConfig replaces the engine configuration.
func WithConfig(cfg Config) Option {
	return func(c *Coordinator) {
		c.cfg = cfg
	}
}

// WithChannel routes notifications of delivery type dt to ch.
func WithChannel(dt notifications.DeliveryType, ch notifications.Channel) Option {
	return func(c *Coordinator) {
		if ch != nil {
			c.channels[dt] = ch
		}
	}
}

// WithClock overrides the time source for policy and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger shared by the engine components.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver registers the outcome observer.
func WithObserver(o Observer) Option {
	return func(c *Coordinator) {
		if o != nil {
			c.observer = o
		}
	}
}
