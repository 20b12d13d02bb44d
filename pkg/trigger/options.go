package trigger

import (
	"log/slog"
	"time"
)

// Option configures a Store.
type Option func(*Store)

// WithScanInterval sets how often due entries are looked for. Default 1s.
func WithScanInterval(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithClock overrides the time source used for due and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithExpiredHandler registers a callback for entries dropped because they
// expired before firing. It is observational; the entry is dropped regardless.
func WithExpiredHandler(fn ReadyFunc) Option {
	return func(s *Store) {
		s.onExpired = fn
	}
}
