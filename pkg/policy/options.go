package policy

import (
	"log/slog"
	"time"
)

// Option configures a Store.
type Option func(*Store)

// WithConfig applies defaults, user id and save timeout from cfg.
func WithConfig(cfg Config) Option {
	return func(s *Store) {
		s.cfg = cfg
	}
}

// WithUserID sets the key the preferences document is stored under.
func WithUserID(userID string) Option {
	return func(s *Store) {
		if userID != "" {
			s.cfg.UserID = userID
		}
	}
}

// WithClock overrides the time source used for daily counters.
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
