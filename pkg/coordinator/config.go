package coordinator

import "time"

// Config holds the engine cadence and dispatch limits.
type Config struct {
	TriggerScanInterval time.Duration `env:"NOTIFY_TRIGGER_SCAN_INTERVAL" envDefault:"1s"`
	QueueDrainInterval  time.Duration `env:"NOTIFY_QUEUE_DRAIN_INTERVAL" envDefault:"500ms"`
	QueueCapacity       int           `env:"NOTIFY_QUEUE_CAPACITY" envDefault:"100"`
	QueueMinSpacing     time.Duration `env:"NOTIFY_QUEUE_MIN_SPACING" envDefault:"0s"`
	DispatchTimeout     time.Duration `env:"NOTIFY_DISPATCH_TIMEOUT" envDefault:"15s"`
	MaxInFlight         int           `env:"NOTIFY_MAX_IN_FLIGHT" envDefault:"16"`
	DispatchBacklog     int           `env:"NOTIFY_DISPATCH_BACKLOG" envDefault:"64"`
	EnforceDailyCap     bool          `env:"NOTIFY_ENFORCE_DAILY_CAP" envDefault:"false"`
	StatusRetention     int           `env:"NOTIFY_STATUS_RETENTION" envDefault:"10000"`
}

// DefaultConfig returns the values used when no environment is loaded.
func DefaultConfig() Config {
	return Config{
		TriggerScanInterval: time.Second,
		QueueDrainInterval:  500 * time.Millisecond,
		QueueCapacity:       100,
		DispatchTimeout:     15 * time.Second,
		MaxInFlight:         16,
		DispatchBacklog:     64,
		StatusRetention:     10_000,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.TriggerScanInterval <= 0 {
		c.TriggerScanInterval = def.TriggerScanInterval
	}
	if c.QueueDrainInterval <= 0 {
		c.QueueDrainInterval = def.QueueDrainInterval
	}
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = def.QueueCapacity
	}
	if c.QueueMinSpacing < 0 {
		c.QueueMinSpacing = 0
	}
	if c.DispatchTimeout <= 0 {
		c.DispatchTimeout = def.DispatchTimeout
	}
	if c.MaxInFlight <= 0 {
		c.MaxInFlight = def.MaxInFlight
	}
	if c.DispatchBacklog < 0 {
		c.DispatchBacklog = 0
	}
	if c.StatusRetention <= 0 {
		c.StatusRetention = def.StatusRetention
	}
	return c
}
