package push

import "time"

// Config holds the push gateway transport settings.
type Config struct {
	Brokers      []string      `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic        string        `env:"PUSH_TOPIC" envDefault:"notifykit.push"`
	MaxAttempts  int           `env:"PUSH_MAX_ATTEMPTS" envDefault:"3"`
	BatchTimeout time.Duration `env:"PUSH_BATCH_TIMEOUT" envDefault:"10ms"`
	WriteTimeout time.Duration `env:"PUSH_WRITE_TIMEOUT" envDefault:"10s"`
}
