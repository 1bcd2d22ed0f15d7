package subscription

import (
	"context"

	"github.com/google/uuid"
)

// Store persists subscriptions and the user to billing-customer mapping.
// Lookups return ErrSubscriptionNotFound or ErrCustomerNotFound when nothing matches.
type Store interface {
	// CreateSubscription inserts a row. It returns ErrSubscriptionExists when the
	// user already has one or the provider subscription id is already recorded.
	CreateSubscription(ctx context.Context, sub *Subscription) error
	GetSubscriptionByUserID(ctx context.Context, userID uuid.UUID) (*Subscription, error)
	GetSubscriptionByProviderID(ctx context.Context, providerSubscriptionID string) (*Subscription, error)
	// UpdateSubscription writes every field except CancelAtPeriodEnd.
	UpdateSubscription(ctx context.Context, sub *Subscription) error
	// SetCancelAtPeriodEnd writes only the locally owned cancellation flag.
	SetCancelAtPeriodEnd(ctx context.Context, id uuid.UUID, cancel bool) error

	SetProviderCustomerID(ctx context.Context, userID uuid.UUID, customerID string) error
	GetUserIDByProviderCustomerID(ctx context.Context, customerID string) (uuid.UUID, error)
}

// UserResolver confirms that a user id echoed back by the provider belongs to
// an existing account.
type UserResolver interface {
	UserExists(ctx context.Context, userID uuid.UUID) (bool, error)
}

// UserResolverFunc adapts a function to UserResolver.
type UserResolverFunc func(ctx context.Context, userID uuid.UUID) (bool, error)

func (f UserResolverFunc) UserExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	return f(ctx, userID)
}
