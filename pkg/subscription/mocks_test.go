package subscription_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/accesskit/pkg/subscription"
)

// MockProvider is a mock implementation of subscription.Provider.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) CreateCheckoutSession(ctx context.Context, req subscription.CheckoutRequest) (*subscription.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.CheckoutSession), args.Error(1)
}

func (m *MockProvider) CancelSubscription(ctx context.Context, providerSubscriptionID string) error {
	args := m.Called(ctx, providerSubscriptionID)
	return args.Error(0)
}

func (m *MockProvider) VerifyWebhookSignature(payload []byte, signature string) bool {
	args := m.Called(payload, signature)
	return args.Bool(0)
}

func (m *MockProvider) ParseWebhookEvent(payload []byte) (subscription.Event, error) {
	args := m.Called(payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(subscription.Event), args.Error(1)
}

// MockFullProvider also implements the optional capabilities.
type MockFullProvider struct {
	MockProvider
}

func (m *MockFullProvider) ResumeSubscription(ctx context.Context, providerSubscriptionID string) error {
	args := m.Called(ctx, providerSubscriptionID)
	return args.Error(0)
}

func (m *MockFullProvider) UpdateSubscription(ctx context.Context, providerSubscriptionID, priceID string) error {
	args := m.Called(ctx, providerSubscriptionID, priceID)
	return args.Error(0)
}

func (m *MockFullProvider) CreatePortalSession(ctx context.Context, customerID, providerSubscriptionID string) (*subscription.PortalLink, error) {
	args := m.Called(ctx, customerID, providerSubscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.PortalLink), args.Error(1)
}

// MockStore is a mock implementation of subscription.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateSubscription(ctx context.Context, sub *subscription.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockStore) GetSubscriptionByUserID(ctx context.Context, userID uuid.UUID) (*subscription.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *MockStore) GetSubscriptionByProviderID(ctx context.Context, providerSubscriptionID string) (*subscription.Subscription, error) {
	args := m.Called(ctx, providerSubscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *MockStore) UpdateSubscription(ctx context.Context, sub *subscription.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockStore) SetCancelAtPeriodEnd(ctx context.Context, id uuid.UUID, cancel bool) error {
	args := m.Called(ctx, id, cancel)
	return args.Error(0)
}

func (m *MockStore) SetProviderCustomerID(ctx context.Context, userID uuid.UUID, customerID string) error {
	args := m.Called(ctx, userID, customerID)
	return args.Error(0)
}

func (m *MockStore) GetUserIDByProviderCustomerID(ctx context.Context, customerID string) (uuid.UUID, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}
