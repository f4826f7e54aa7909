package email

import "fmt"

// Config holds email transport configuration. Provider selects the backend
// statically; only the fields for the chosen backend need to be set.
// SenderEmail is required everywhere as it establishes the sender identity.
type Config struct {
	Provider    string `env:"EMAIL_PROVIDER" envDefault:"smtp"` // smtp, postmark, resend, dev
	SenderEmail string `env:"EMAIL_SENDER,required"`
	ReplyTo     string `env:"EMAIL_REPLY_TO"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`

	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`

	ResendAPIKey  string `env:"RESEND_API_KEY"`
	ResendBaseURL string `env:"RESEND_BASE_URL" envDefault:"https://api.resend.com"`

	DevOutputDir string `env:"EMAIL_DEV_DIR" envDefault:"./tmp/emails"`
}

// NewFromConfig builds the Sender the configuration names.
func NewFromConfig(cfg Config) (Sender, error) {
	switch cfg.Provider {
	case "smtp":
		return NewSMTPSender(cfg)
	case "postmark":
		return NewPostmarkSender(cfg)
	case "resend":
		return NewResendSender(cfg)
	case "dev":
		return NewDevSender(cfg.DevOutputDir), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// MustNewFromConfig panics on invalid configuration, failing fast during
// initialization rather than letting a broken transport serve traffic.
func MustNewFromConfig(cfg Config) Sender {
	s, err := NewFromConfig(cfg)
	if err != nil {
		panic(err)
	}
	return s
}
