package subscription

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accesskit/pkg/catalog"
	"github.com/dmitrymomot/accesskit/pkg/logger"
	"github.com/dmitrymomot/accesskit/pkg/webhook"
)

// Service defines the public interface for subscription management.
type Service interface {
	// Catalog
	GetPlans() []catalog.Plan
	GetPlan(planID string) (catalog.Plan, error)
	IsPriceValid(priceID string) bool
	GetPlanFromPriceID(priceID string) (catalog.Plan, error)

	// Ledger
	GetSubscription(ctx context.Context, userID uuid.UUID) (*Subscription, error)
	IsSubscriptionValid(sub *Subscription) bool
	IsSubscriptionValidAt(sub *Subscription, now time.Time) bool
	CreateTrialSubscription(ctx context.Context, userID uuid.UUID, planID string) (*Subscription, error)

	// Provider interactions
	CreateCheckout(ctx context.Context, userID uuid.UUID, email, priceID string, opts CheckoutOptions) (*CheckoutSession, error)
	CancelSubscription(ctx context.Context, userID uuid.UUID) error
	ResumeSubscription(ctx context.Context, userID uuid.UUID) error
	ChangePlan(ctx context.Context, userID uuid.UUID, priceID string) (*Subscription, error)
	GetCustomerPortalLink(ctx context.Context, userID uuid.UUID) (*PortalLink, error)

	// Webhooks
	VerifyWebhook(payload []byte, signature string) bool
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type service struct {
	catalog  *catalog.Catalog
	provider Provider
	store    Store
	users    UserResolver
	logger   *slog.Logger
	now      func() time.Time

	trialDays        int
	webhookSecret    string
	webhookTolerance time.Duration
}

// NewService creates a Service. It panics on nil dependencies.
func NewService(cat *catalog.Catalog, provider Provider, store Store, opts ...Option) Service {
	if cat == nil {
		panic("subscription: catalog is required")
	}
	if provider == nil {
		panic("subscription: provider is required")
	}
	if store == nil {
		panic("subscription: store is required")
	}

	s := &service{
		catalog:          cat,
		provider:         provider,
		store:            store,
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:              time.Now,
		trialDays:        DefaultTrialDays,
		webhookTolerance: webhook.DefaultTolerance,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *service) GetPlans() []catalog.Plan {
	return s.catalog.Plans()
}

func (s *service) GetPlan(planID string) (catalog.Plan, error) {
	return s.catalog.Plan(planID)
}

func (s *service) IsPriceValid(priceID string) bool {
	return s.catalog.IsPriceValid(priceID)
}

func (s *service) GetPlanFromPriceID(priceID string) (catalog.Plan, error) {
	return s.catalog.PlanFromPriceID(priceID)
}

func (s *service) GetSubscription(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	sub, err := s.store.GetSubscriptionByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return sub, nil
}

func (s *service) IsSubscriptionValid(sub *Subscription) bool {
	return IsValidAt(sub, s.now())
}

func (s *service) IsSubscriptionValidAt(sub *Subscription, now time.Time) bool {
	return IsValidAt(sub, now)
}

// findByUser returns the user's row, or nil when there is none.
func (s *service) findByUser(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	sub, err := s.store.GetSubscriptionByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return sub, nil
}

// CreateTrialSubscription starts a trial on the plan's first price.
// A user gets one trial in their lifetime: any existing row, even a canceled one, blocks it.
func (s *service) CreateTrialSubscription(ctx context.Context, userID uuid.UUID, planID string) (*Subscription, error) {
	plan, err := s.catalog.Plan(planID)
	if err != nil {
		return nil, err
	}

	existing, err := s.findByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrTrialAlreadyUsed
	}

	now := s.now().UTC()
	trialEnd := now.AddDate(0, 0, s.trialDays)
	sub := &Subscription{
		ID:           uuid.New(),
		UserID:       userID,
		PlanID:       plan.ID,
		Status:       StatusTrialing,
		TrialEndDate: &trialEnd,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if price, ok := plan.FirstPrice(); ok {
		sub.PriceID = price.ID
		sub.BillingCycle = price.BillingCycle
	}

	if err := s.store.CreateSubscription(ctx, sub); err != nil {
		if errors.Is(err, ErrSubscriptionExists) {
			return nil, ErrTrialAlreadyUsed
		}
		return nil, fmt.Errorf("failed to create trial subscription: %w", err)
	}

	s.logger.InfoContext(ctx, "trial started",
		logger.UserID(userID.String()),
		logger.PlanID(plan.ID),
		logger.Component("subscription"),
	)
	return sub, nil
}

// CreateCheckout opens a hosted checkout for priceID.
// Trialing users may check out; users with an active subscription may not.
func (s *service) CreateCheckout(ctx context.Context, userID uuid.UUID, email, priceID string, opts CheckoutOptions) (*CheckoutSession, error) {
	if !s.catalog.IsPriceValid(priceID) {
		return nil, ErrInvalidPrice
	}

	existing, err := s.findByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status == StatusActive {
		return nil, ErrAlreadySubscribed
	}

	req := CheckoutRequest{
		UserID:     userID,
		Email:      email,
		PriceID:    priceID,
		SuccessURL: opts.SuccessURL,
		CancelURL:  opts.CancelURL,
	}
	if existing != nil {
		req.CustomerID = existing.ProviderCustomerID
	}

	session, err := s.provider.CreateCheckoutSession(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	if session.CustomerID != "" {
		if err := s.store.SetProviderCustomerID(ctx, userID, session.CustomerID); err != nil {
			// Webhooks fall back to the user id carried in custom data.
			s.logger.WarnContext(ctx, "failed to link billing customer",
				logger.UserID(userID.String()),
				logger.Error(err),
				logger.Component("subscription"),
			)
		}
	}

	s.logger.InfoContext(ctx, "checkout created",
		logger.UserID(userID.String()),
		logger.PriceID(priceID),
		logger.Component("subscription"),
	)
	return session, nil
}

// CancelSubscription schedules cancellation at period end. The status changes
// only when the provider confirms it.
func (s *service) CancelSubscription(ctx context.Context, userID uuid.UUID) error {
	sub, err := s.GetSubscription(ctx, userID)
	if err != nil {
		return err
	}

	if sub.ProviderSubscriptionID != "" {
		if err := s.provider.CancelSubscription(ctx, sub.ProviderSubscriptionID); err != nil {
			return fmt.Errorf("failed to cancel subscription with provider: %w", err)
		}
	}

	if err := s.store.SetCancelAtPeriodEnd(ctx, sub.ID, true); err != nil {
		return fmt.Errorf("failed to mark subscription for cancellation: %w", err)
	}

	s.logger.InfoContext(ctx, "subscription scheduled for cancellation",
		logger.UserID(userID.String()),
		logger.SubscriptionID(sub.ID.String()),
		logger.ProviderSubscriptionID(sub.ProviderSubscriptionID),
		logger.Component("subscription"),
	)
	return nil
}

// ResumeSubscription clears a scheduled cancellation. The provider is only
// called when it implements ResumableProvider.
func (s *service) ResumeSubscription(ctx context.Context, userID uuid.UUID) error {
	sub, err := s.GetSubscription(ctx, userID)
	if err != nil {
		return err
	}

	if rp, ok := s.provider.(ResumableProvider); ok && sub.ProviderSubscriptionID != "" {
		if err := rp.ResumeSubscription(ctx, sub.ProviderSubscriptionID); err != nil {
			return fmt.Errorf("failed to resume subscription with provider: %w", err)
		}
	}

	if err := s.store.SetCancelAtPeriodEnd(ctx, sub.ID, false); err != nil {
		return fmt.Errorf("failed to clear cancellation: %w", err)
	}

	s.logger.InfoContext(ctx, "subscription resumed",
		logger.UserID(userID.String()),
		logger.SubscriptionID(sub.ID.String()),
		logger.Component("subscription"),
	)
	return nil
}

// ChangePlan moves the user to priceID. Billed subscriptions need an
// UpdatableProvider; trials without a provider subscription switch locally.
func (s *service) ChangePlan(ctx context.Context, userID uuid.UUID, priceID string) (*Subscription, error) {
	plan, price, ok := s.catalog.PlanForPrice(priceID)
	if !ok {
		return nil, ErrInvalidPrice
	}

	sub, err := s.GetSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}

	if sub.ProviderSubscriptionID != "" {
		up, ok := s.provider.(UpdatableProvider)
		if !ok {
			return nil, ErrCapabilityUnsupported
		}
		if err := up.UpdateSubscription(ctx, sub.ProviderSubscriptionID, priceID); err != nil {
			return nil, fmt.Errorf("failed to update subscription with provider: %w", err)
		}
	}

	sub.PlanID = plan.ID
	sub.PriceID = price.ID
	sub.BillingCycle = price.BillingCycle
	sub.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	s.logger.InfoContext(ctx, "subscription plan changed",
		logger.UserID(userID.String()),
		logger.PlanID(plan.ID),
		logger.PriceID(price.ID),
		logger.Component("subscription"),
	)
	return sub, nil
}

// GetCustomerPortalLink opens the provider's billing portal for the user's
// subscription. Local trials have no billing account and are rejected with
// ErrNoBillingAccount.
func (s *service) GetCustomerPortalLink(ctx context.Context, userID uuid.UUID) (*PortalLink, error) {
	sub, err := s.GetSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}

	pp, ok := s.provider.(PortalProvider)
	if !ok {
		return nil, ErrCapabilityUnsupported
	}
	if sub.ProviderCustomerID == "" || sub.ProviderSubscriptionID == "" {
		return nil, ErrNoBillingAccount
	}

	link, err := pp.CreatePortalSession(ctx, sub.ProviderCustomerID, sub.ProviderSubscriptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to create portal session: %w", err)
	}

	s.logger.DebugContext(ctx, "customer portal link issued",
		logger.UserID(userID.String()),
		logger.SubscriptionID(sub.ID.String()),
		logger.Component("subscription"),
	)
	return link, nil
}
