package paddle

import "errors"

var (
	ErrMissingAPIKey        = errors.New("paddle API key is required")
	ErrMissingWebhookSecret = errors.New("paddle webhook secret is required")
	ErrInvalidEnvironment   = errors.New("invalid paddle environment")
	ErrNoCheckoutURL        = errors.New("no checkout URL returned from paddle")
	ErrNoPortalURL          = errors.New("no customer portal URL returned from paddle")
	ErrMissingCustomerID    = errors.New("paddle customer id is required")
	ErrMissingEventType     = errors.New("webhook payload has no event_type")
)
