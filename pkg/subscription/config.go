package subscription

import "time"

// DefaultTrialDays is the trial length when none is configured.
const DefaultTrialDays = 14

// Config is the environment-driven configuration of the Service.
type Config struct {
	TrialDays int `env:"SUBSCRIPTION_TRIAL_DAYS" envDefault:"14"`
	// WebhookSecret enables local HMAC verification instead of the provider's verifier.
	WebhookSecret    string        `env:"SUBSCRIPTION_WEBHOOK_SECRET"`
	WebhookTolerance time.Duration `env:"SUBSCRIPTION_WEBHOOK_TOLERANCE" envDefault:"5m"`
}
