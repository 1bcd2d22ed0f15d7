package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/accesskit/pkg/catalog"
	"github.com/dmitrymomot/accesskit/pkg/pg"
	"github.com/dmitrymomot/accesskit/pkg/subscription"
)

// SubscriptionStore implements subscription.Store.
type SubscriptionStore struct {
	db DB
}

var _ subscription.Store = (*SubscriptionStore)(nil)

// NewSubscriptionStore creates a store over db, usually a *pgxpool.Pool.
func NewSubscriptionStore(db DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

const subscriptionColumns = `id, user_id, plan_id, price_id, status, billing_cycle,
	current_period_start, current_period_end, cancel_at_period_end, trial_end_date,
	provider_subscription_id, provider_customer_id, created_at, updated_at`

func scanSubscription(row pgx.Row) (*subscription.Subscription, error) {
	var (
		sub        subscription.Subscription
		status     string
		cycle      string
		trialEnd   *time.Time
		providerID *string
	)
	err := row.Scan(
		&sub.ID, &sub.UserID, &sub.PlanID, &sub.PriceID, &status, &cycle,
		&sub.CurrentPeriodStart, &sub.CurrentPeriodEnd, &sub.CancelAtPeriodEnd, &trialEnd,
		&providerID, &sub.ProviderCustomerID, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	sub.Status = subscription.Status(status)
	sub.BillingCycle = catalog.BillingCycle(cycle)
	sub.CurrentPeriodStart = sub.CurrentPeriodStart.UTC()
	sub.CurrentPeriodEnd = sub.CurrentPeriodEnd.UTC()
	sub.CreatedAt = sub.CreatedAt.UTC()
	sub.UpdatedAt = sub.UpdatedAt.UTC()
	if trialEnd != nil {
		t := trialEnd.UTC()
		sub.TrialEndDate = &t
	}
	if providerID != nil {
		sub.ProviderSubscriptionID = *providerID
	}
	return &sub, nil
}

// nullable maps "" to SQL NULL so unique constraints ignore unset ids.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *SubscriptionStore) CreateSubscription(ctx context.Context, sub *subscription.Subscription) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO subscriptions (`+subscriptionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		sub.ID, sub.UserID, sub.PlanID, sub.PriceID, string(sub.Status), string(sub.BillingCycle),
		sub.CurrentPeriodStart, sub.CurrentPeriodEnd, sub.CancelAtPeriodEnd, sub.TrialEndDate,
		nullable(sub.ProviderSubscriptionID), sub.ProviderCustomerID, sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return subscription.ErrSubscriptionExists
		}
		return fmt.Errorf("failed to insert subscription: %w", err)
	}
	return nil
}

func (s *SubscriptionStore) GetSubscriptionByUserID(ctx context.Context, userID uuid.UUID) (*subscription.Subscription, error) {
	return s.get(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE user_id = $1`, userID)
}

func (s *SubscriptionStore) GetSubscriptionByProviderID(ctx context.Context, providerSubscriptionID string) (*subscription.Subscription, error) {
	return s.get(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE provider_subscription_id = $1`, providerSubscriptionID)
}

func (s *SubscriptionStore) get(ctx context.Context, query string, arg any) (*subscription.Subscription, error) {
	sub, err := scanSubscription(s.db.QueryRow(ctx, query, arg))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, subscription.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return sub, nil
}

// UpdateSubscription leaves user_id, created_at and cancel_at_period_end untouched.
func (s *SubscriptionStore) UpdateSubscription(ctx context.Context, sub *subscription.Subscription) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE subscriptions SET
			plan_id = $2, price_id = $3, status = $4, billing_cycle = $5,
			current_period_start = $6, current_period_end = $7, trial_end_date = $8,
			provider_subscription_id = $9, provider_customer_id = $10, updated_at = $11
		WHERE id = $1`,
		sub.ID, sub.PlanID, sub.PriceID, string(sub.Status), string(sub.BillingCycle),
		sub.CurrentPeriodStart, sub.CurrentPeriodEnd, sub.TrialEndDate,
		nullable(sub.ProviderSubscriptionID), sub.ProviderCustomerID, sub.UpdatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return subscription.ErrSubscriptionExists
		}
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return subscription.ErrSubscriptionNotFound
	}
	return nil
}

func (s *SubscriptionStore) SetCancelAtPeriodEnd(ctx context.Context, id uuid.UUID, cancel bool) error {
	tag, err := s.db.Exec(ctx, `UPDATE subscriptions SET cancel_at_period_end = $2 WHERE id = $1`, id, cancel)
	if err != nil {
		return fmt.Errorf("failed to set cancellation flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return subscription.ErrSubscriptionNotFound
	}
	return nil
}

// SetProviderCustomerID links the customer and copies it onto the user's
// subscription row, if any, in one statement.
func (s *SubscriptionStore) SetProviderCustomerID(ctx context.Context, userID uuid.UUID, customerID string) error {
	_, err := s.db.Exec(ctx,
		`WITH link AS (
			INSERT INTO billing_customers (user_id, customer_id) VALUES ($1, $2)
			ON CONFLICT (user_id) DO UPDATE SET customer_id = EXCLUDED.customer_id
		)
		UPDATE subscriptions SET provider_customer_id = $2 WHERE user_id = $1`,
		userID, customerID,
	)
	if err != nil {
		return fmt.Errorf("failed to link billing customer: %w", err)
	}
	return nil
}

func (s *SubscriptionStore) GetUserIDByProviderCustomerID(ctx context.Context, customerID string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT user_id FROM billing_customers WHERE customer_id = $1`, customerID).Scan(&id)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return uuid.Nil, subscription.ErrCustomerNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to resolve billing customer: %w", err)
	}
	return id, nil
}
