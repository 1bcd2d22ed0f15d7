package subscription

import (
	"log/slog"
	"time"
)

// Option configures a Service instance.
type Option func(*service)

// WithConfig applies an environment-loaded Config.
func WithConfig(cfg Config) Option {
	return func(s *service) {
		if cfg.TrialDays > 0 {
			s.trialDays = cfg.TrialDays
		}
		if cfg.WebhookSecret != "" {
			s.webhookSecret = cfg.WebhookSecret
		}
		if cfg.WebhookTolerance > 0 {
			s.webhookTolerance = cfg.WebhookTolerance
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTrialDays sets the length of trials started by CreateTrialSubscription.
func WithTrialDays(days int) Option {
	return func(s *service) {
		if days > 0 {
			s.trialDays = days
		}
	}
}

// WithWebhookSecret verifies webhooks locally with HMAC-SHA256 over
// timestamp + "." + payload, using a t=<unix>,v1=<hex> signature header.
// Without it the provider's own verifier is used.
func WithWebhookSecret(secret string, tolerance time.Duration) Option {
	return func(s *service) {
		s.webhookSecret = secret
		s.webhookTolerance = tolerance
	}
}

// WithUserResolver lets webhooks fall back to the user id carried in checkout
// custom data. Without a resolver only users linked to a billing customer are
// recognized.
func WithUserResolver(r UserResolver) Option {
	return func(s *service) {
		s.users = r
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}
