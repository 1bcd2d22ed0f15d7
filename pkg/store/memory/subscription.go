package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accesskit/pkg/subscription"
)

// SubscriptionStore implements subscription.Store.
type SubscriptionStore struct {
	mu sync.Mutex

	rows       map[uuid.UUID]subscription.Subscription
	byUser     map[uuid.UUID]uuid.UUID
	byProvider map[string]uuid.UUID

	customers     map[uuid.UUID]string
	customerUsers map[string]uuid.UUID
}

var _ subscription.Store = (*SubscriptionStore)(nil)

// NewSubscriptionStore creates an empty store.
func NewSubscriptionStore() *SubscriptionStore {
	return &SubscriptionStore{
		rows:          make(map[uuid.UUID]subscription.Subscription),
		byUser:        make(map[uuid.UUID]uuid.UUID),
		byProvider:    make(map[string]uuid.UUID),
		customers:     make(map[uuid.UUID]string),
		customerUsers: make(map[string]uuid.UUID),
	}
}

func copySubscription(sub subscription.Subscription) *subscription.Subscription {
	if sub.TrialEndDate != nil {
		t := *sub.TrialEndDate
		sub.TrialEndDate = &t
	}
	return &sub
}

func (s *SubscriptionStore) CreateSubscription(_ context.Context, sub *subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byUser[sub.UserID]; ok {
		return subscription.ErrSubscriptionExists
	}
	if sub.ProviderSubscriptionID != "" {
		if _, ok := s.byProvider[sub.ProviderSubscriptionID]; ok {
			return subscription.ErrSubscriptionExists
		}
		s.byProvider[sub.ProviderSubscriptionID] = sub.ID
	}
	s.rows[sub.ID] = *copySubscription(*sub)
	s.byUser[sub.UserID] = sub.ID
	return nil
}

func (s *SubscriptionStore) GetSubscriptionByUserID(_ context.Context, userID uuid.UUID) (*subscription.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byUser[userID]
	if !ok {
		return nil, subscription.ErrSubscriptionNotFound
	}
	return copySubscription(s.rows[id]), nil
}

func (s *SubscriptionStore) GetSubscriptionByProviderID(_ context.Context, providerSubscriptionID string) (*subscription.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byProvider[providerSubscriptionID]
	if !ok {
		return nil, subscription.ErrSubscriptionNotFound
	}
	return copySubscription(s.rows[id]), nil
}

func (s *SubscriptionStore) UpdateSubscription(_ context.Context, sub *subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.rows[sub.ID]
	if !ok {
		return subscription.ErrSubscriptionNotFound
	}
	if sub.ProviderSubscriptionID != prev.ProviderSubscriptionID && sub.ProviderSubscriptionID != "" {
		if owner, taken := s.byProvider[sub.ProviderSubscriptionID]; taken && owner != sub.ID {
			return subscription.ErrSubscriptionExists
		}
		if prev.ProviderSubscriptionID != "" {
			delete(s.byProvider, prev.ProviderSubscriptionID)
		}
		s.byProvider[sub.ProviderSubscriptionID] = sub.ID
	}

	next := *copySubscription(*sub)
	next.UserID = prev.UserID
	next.CreatedAt = prev.CreatedAt
	next.CancelAtPeriodEnd = prev.CancelAtPeriodEnd
	s.rows[sub.ID] = next
	return nil
}

func (s *SubscriptionStore) SetCancelAtPeriodEnd(_ context.Context, id uuid.UUID, cancel bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok {
		return subscription.ErrSubscriptionNotFound
	}
	row.CancelAtPeriodEnd = cancel
	s.rows[id] = row
	return nil
}

func (s *SubscriptionStore) SetProviderCustomerID(_ context.Context, userID uuid.UUID, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.customers[userID]; ok {
		delete(s.customerUsers, prev)
	}
	s.customers[userID] = customerID
	s.customerUsers[customerID] = userID

	if id, ok := s.byUser[userID]; ok {
		row := s.rows[id]
		row.ProviderCustomerID = customerID
		s.rows[id] = row
	}
	return nil
}

func (s *SubscriptionStore) GetUserIDByProviderCustomerID(_ context.Context, customerID string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.customerUsers[customerID]
	if !ok {
		return uuid.Nil, subscription.ErrCustomerNotFound
	}
	return id, nil
}
