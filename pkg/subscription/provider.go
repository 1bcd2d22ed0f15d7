package subscription

import "context"

// Provider is the mandatory contract of a billing provider integration.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	// CancelSubscription schedules cancellation at the end of the current period.
	CancelSubscription(ctx context.Context, providerSubscriptionID string) error
	VerifyWebhookSignature(payload []byte, signature string) bool
	// ParseWebhookEvent normalizes a verified payload. Unrecognized event types
	// yield UnknownEvent, not an error.
	ParseWebhookEvent(payload []byte) (Event, error)
}

// ResumableProvider can undo a scheduled cancellation.
type ResumableProvider interface {
	ResumeSubscription(ctx context.Context, providerSubscriptionID string) error
}

// UpdatableProvider can move a subscription to another price.
type UpdatableProvider interface {
	UpdateSubscription(ctx context.Context, providerSubscriptionID, priceID string) error
}

// PortalProvider can open the provider's customer billing portal.
type PortalProvider interface {
	CreatePortalSession(ctx context.Context, customerID, providerSubscriptionID string) (*PortalLink, error)
}
