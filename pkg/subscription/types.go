package subscription

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accesskit/pkg/catalog"
)

// Status is the lifecycle state of a subscription as reported by the provider.
type Status string

const (
	StatusTrialing   Status = "trialing"
	StatusActive     Status = "active"
	StatusPastDue    Status = "past_due"
	StatusCanceled   Status = "canceled"
	StatusPaused     Status = "paused"
	StatusIncomplete Status = "incomplete"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusTrialing, StatusActive, StatusPastDue, StatusCanceled, StatusPaused, StatusIncomplete:
		return true
	}
	return false
}

// Subscription is the local ledger row of a user's subscription.
type Subscription struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	PlanID             string
	PriceID            string
	Status             Status
	BillingCycle       catalog.BillingCycle
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CancelAtPeriodEnd  bool
	TrialEndDate       *time.Time

	// Empty for trials that never reached the provider.
	ProviderSubscriptionID string
	ProviderCustomerID     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsValidAt reports whether sub grants access at now.
// Active subscriptions are valid until the current period ends; trials until
// their end date, or indefinitely when none is set. Every other status is invalid.
func IsValidAt(sub *Subscription, now time.Time) bool {
	if sub == nil {
		return false
	}
	switch sub.Status {
	case StatusActive:
		return sub.CurrentPeriodEnd.After(now)
	case StatusTrialing:
		return sub.TrialEndDate == nil || sub.TrialEndDate.After(now)
	default:
		return false
	}
}

// CheckoutOptions are caller-supplied checkout settings.
type CheckoutOptions struct {
	SuccessURL string
	CancelURL  string
}

// CheckoutRequest is what the Service hands to Provider.CreateCheckoutSession.
type CheckoutRequest struct {
	UserID  uuid.UUID
	Email   string
	PriceID string
	// CustomerID is the provider customer already linked to the user, if any.
	CustomerID string
	SuccessURL string
	CancelURL  string
}

// CheckoutSession is a hosted checkout created by the provider.
type CheckoutSession struct {
	ID  string
	URL string
	// CustomerID is set when the provider already knows the paying customer.
	CustomerID string
	ExpiresAt  time.Time
}

// PortalLink is a short-lived, authenticated link into the provider's
// self-service billing portal. It must not be stored.
type PortalLink struct {
	URL string
	// CancelURL and UpdatePaymentURL deep-link into the subscription's pages
	// when the provider offers them.
	CancelURL        string
	UpdatePaymentURL string
	ExpiresAt        time.Time
}
