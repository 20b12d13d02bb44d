package policy

import "time"

// Config holds policy defaults and the persistence settings of the store.
type Config struct {
	DefaultQuietHoursStart int           `env:"NOTIFY_DEFAULT_QUIET_HOURS_START" envDefault:"22"`
	DefaultQuietHoursEnd   int           `env:"NOTIFY_DEFAULT_QUIET_HOURS_END" envDefault:"8"`
	DefaultMaxPerDay       int           `env:"NOTIFY_DEFAULT_MAX_PER_DAY" envDefault:"5"`
	Backend                string        `env:"NOTIFY_POLICY_BACKEND" envDefault:"memory"` // memory, redis, mongo, postgres
	UserID                 string        `env:"NOTIFY_USER_ID" envDefault:"default"`
	SaveTimeout            time.Duration `env:"NOTIFY_POLICY_SAVE_TIMEOUT" envDefault:"5s"`
}

// DefaultConfig returns the values used when no environment is loaded.
func DefaultConfig() Config {
	return Config{
		DefaultQuietHoursStart: 22,
		DefaultQuietHoursEnd:   8,
		DefaultMaxPerDay:       5,
		Backend:                "memory",
		UserID:                 "default",
		SaveTimeout:            5 * time.Second,
	}
}
