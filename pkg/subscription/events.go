package subscription

import "time"

// Provider event names understood by the Service.
const (
	EventSubscriptionCreated   = "subscription.created"
	EventSubscriptionUpdated   = "subscription.updated"
	EventSubscriptionActivated = "subscription.activated"
	EventSubscriptionCanceled  = "subscription.canceled"
)

// Event is a normalized webhook event. The concrete type is one of
// SubscriptionCreated, SubscriptionUpdated, SubscriptionCanceled or UnknownEvent.
type Event interface {
	EventType() string
	event()
}

// SubscriptionData is the provider's view of a subscription carried by an event.
// Zero values and nil pointers mean the provider did not send the field.
type SubscriptionData struct {
	ProviderSubscriptionID string
	ProviderCustomerID     string
	// UserID is the user id echoed back from checkout custom data, if any.
	UserID             string
	Status             Status
	PriceID            string
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	TrialEndDate       *time.Time
	CancelAtPeriodEnd  *bool
}

// SubscriptionCreated is the first event for a provider subscription.
type SubscriptionCreated struct {
	Data SubscriptionData
}

// SubscriptionUpdated is a partial update. Type keeps the provider event name,
// e.g. subscription.updated, subscription.activated or subscription.past_due.
type SubscriptionUpdated struct {
	Type string
	Data SubscriptionData
}

// SubscriptionCanceled marks the subscription canceled.
type SubscriptionCanceled struct {
	Data SubscriptionData
}

// UnknownEvent is any event the Service does not act on.
type UnknownEvent struct {
	Type string
}

func (SubscriptionCreated) EventType() string { return EventSubscriptionCreated }
func (e SubscriptionUpdated) EventType() string { return e.Type }
func (SubscriptionCanceled) EventType() string { return EventSubscriptionCanceled }
func (e UnknownEvent) EventType() string { return e.Type }

func (SubscriptionCreated) event() {}
func (SubscriptionUpdated) event() {}
func (SubscriptionCanceled) event() {}
func (UnknownEvent) event() {}
