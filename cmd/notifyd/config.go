package main

// appConfig holds process-level settings; every component loads its own
// Config through the same loader.
type appConfig struct {
	Env            string   `env:"APP_ENV" envDefault:"development"`
	ServiceName    string   `env:"SERVICE_NAME" envDefault:"notifyd"`
	Channels       []string `env:"NOTIFY_CHANNELS" envSeparator:"," envDefault:"in_app,email"`
	TemplatesFile  string   `env:"NOTIFY_TEMPLATES_FILE"`
	InboxUserID    string   `env:"NOTIFY_INBOX_DEFAULT_USER" envDefault:"default"`
	InboxBuffer    int      `env:"NOTIFY_INBOX_STREAM_BUFFER" envDefault:"32"`
	AllowedOrigins []string `env:"API_ALLOWED_ORIGINS" envSeparator:","`
	RateLimit      bool     `env:"API_RATE_LIMIT_ENABLED" envDefault:"true"`
}
