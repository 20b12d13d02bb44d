package queue

import (
	"log/slog"
	"time"
)

// Option configures a Queue.
type Option func(*Queue)

// WithCapacity sets the maximum number of deferred notifications. Default 100.
func WithCapacity(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.capacity = n
		}
	}
}

// WithDrainInterval sets how often the head of the queue is looked at. Default 500ms.
func WithDrainInterval(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.interval = d
		}
	}
}

// WithMinSpacing sets the minimum time between two handed-off notifications.
// Ticks arriving sooner are skipped. Zero means one hand-off per tick.
func WithMinSpacing(d time.Duration) Option {
	return func(q *Queue) {
		if d >= 0 {
			q.minSpacing = d
		}
	}
}

// WithGate sets a predicate consulted on every tick; while it reports false
// the tick is skipped and nothing is popped.
func WithGate(open func(now time.Time) bool) Option {
	return func(q *Queue) {
		q.gate = open
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) {
		if now != nil {
			q.now = now
		}
	}
}

// WithLogger sets the logger for the queue.
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) {
		if logger != nil {
			q.logger = logger
		}
	}
}

// WithExpiredHandler registers a callback for notifications that expired
// while waiting in the queue.
func WithExpiredHandler(fn ReadyFunc) Option {
	return func(q *Queue) {
		q.onExpired = fn
	}
}
