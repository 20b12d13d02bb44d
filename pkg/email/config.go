package email

// Config holds email transport configuration.
// Postmark tokens are needed only when Provider is "postmark"; the dev
// provider writes messages to DevDir instead of sending them.
type Config struct {
	Provider             string `env:"EMAIL_PROVIDER" envDefault:"dev"` // postmark, dev
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"notifications@localhost"`
	SupportEmail         string `env:"SUPPORT_EMAIL" envDefault:"support@localhost"`
	DevDir               string `env:"EMAIL_DEV_DIR" envDefault:"./tmp/emails"`
}
