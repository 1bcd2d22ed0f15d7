package email

import "fmt"

// Config holds email service configuration.
// Postmark tokens are optional so development setups can write mail to
// DevOutputDir instead.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	SupportEmail         string `env:"SUPPORT_EMAIL,required"`
	DevOutputDir         string `env:"EMAIL_DEV_OUTPUT_DIR" envDefault:"./tmp/emails"`
}

// NewSender returns a Postmark sender when a server token is configured and
// a DevSender writing to DevOutputDir otherwise.
func NewSender(cfg Config, opts ...DevOption) (Sender, error) {
	if cfg.PostmarkServerToken != "" {
		return NewPostmarkSender(cfg)
	}
	if cfg.DevOutputDir == "" {
		return nil, fmt.Errorf("%w: either PostmarkServerToken or DevOutputDir is required", ErrInvalidConfig)
	}
	return NewDevSender(cfg.DevOutputDir, opts...), nil
}
