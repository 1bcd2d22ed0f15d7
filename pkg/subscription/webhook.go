package subscription

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accesskit/pkg/logger"
	"github.com/dmitrymomot/accesskit/pkg/webhook"
)

// VerifyWebhook checks the signature with the configured secret, or with the
// provider's verifier when no secret is set.
func (s *service) VerifyWebhook(payload []byte, signature string) bool {
	if s.webhookSecret != "" {
		return webhook.VerifyAt(s.webhookSecret, payload, signature, s.webhookTolerance, s.now()) == nil
	}
	return s.provider.VerifyWebhookSignature(payload, signature)
}

// HandleWebhook verifies, parses and applies one provider delivery.
// Errors are terminal for the delivery; the caller should answer with a
// retryable status so the provider redelivers.
func (s *service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if !s.VerifyWebhook(payload, signature) {
		s.logger.WarnContext(ctx, "rejected webhook with invalid signature",
			logger.Component("subscription"),
		)
		return ErrInvalidSignature
	}

	event, err := s.provider.ParseWebhookEvent(payload)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedWebhook, err.Error())
	}

	switch e := event.(type) {
	case SubscriptionCreated:
		return s.applyCreated(ctx, e.Data)
	case SubscriptionUpdated:
		return s.applyUpdated(ctx, e.Type, e.Data)
	case SubscriptionCanceled:
		return s.applyCanceled(ctx, e.Data)
	case UnknownEvent:
		s.logger.DebugContext(ctx, "ignoring webhook event",
			logger.EventType(e.Type),
			logger.Component("subscription"),
		)
		return nil
	default:
		s.logger.DebugContext(ctx, "ignoring webhook event",
			logger.EventType(fmt.Sprintf("%T", event)),
			logger.Component("subscription"),
		)
		return nil
	}
}

func (s *service) applyCreated(ctx context.Context, data SubscriptionData) error {
	if data.ProviderSubscriptionID == "" {
		return fmt.Errorf("%w: subscription id is missing", ErrMalformedWebhook)
	}

	dup, err := s.findByProviderID(ctx, data.ProviderSubscriptionID)
	if err != nil {
		return err
	}
	if dup != nil {
		s.logger.DebugContext(ctx, "duplicate subscription.created ignored",
			logger.ProviderSubscriptionID(data.ProviderSubscriptionID),
			logger.Component("subscription"),
		)
		return nil
	}

	userID, ok, err := s.resolveUser(ctx, data)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.WarnContext(ctx, "dropping subscription.created for unknown customer",
			logger.ProviderSubscriptionID(data.ProviderSubscriptionID),
			logger.Component("subscription"),
		)
		return nil
	}

	plan, price, found := s.catalog.PlanForPrice(data.PriceID)
	if !found {
		return fmt.Errorf("%w: %q", ErrInvalidPrice, data.PriceID)
	}

	now := s.now().UTC()
	status := data.Status
	if status == "" {
		status = StatusActive
	}

	existing, err := s.findByUser(ctx, userID)
	if err != nil {
		return err
	}

	sub := existing
	if sub == nil {
		sub = &Subscription{
			ID:        uuid.New(),
			UserID:    userID,
			CreatedAt: now,
		}
	}
	sub.PlanID = plan.ID
	sub.PriceID = price.ID
	sub.BillingCycle = price.BillingCycle
	sub.Status = status
	sub.ProviderSubscriptionID = data.ProviderSubscriptionID
	if data.ProviderCustomerID != "" {
		sub.ProviderCustomerID = data.ProviderCustomerID
	}
	applyPeriods(sub, data)
	sub.UpdatedAt = now

	if existing != nil {
		// One row per user: a trial or a previous subscription is taken over in place.
		if err := s.store.UpdateSubscription(ctx, sub); err != nil {
			return fmt.Errorf("failed to update subscription: %w", err)
		}
	} else {
		if data.CancelAtPeriodEnd != nil {
			sub.CancelAtPeriodEnd = *data.CancelAtPeriodEnd
		}
		if err := s.store.CreateSubscription(ctx, sub); err != nil {
			if errors.Is(err, ErrSubscriptionExists) {
				// Lost a race with a concurrent delivery of the same event.
				return nil
			}
			return fmt.Errorf("failed to create subscription: %w", err)
		}
	}

	if existing != nil {
		// A new provider subscription starts without a scheduled cancellation unless it says otherwise.
		cancel := data.CancelAtPeriodEnd != nil && *data.CancelAtPeriodEnd
		if existing.CancelAtPeriodEnd != cancel {
			if err := s.store.SetCancelAtPeriodEnd(ctx, sub.ID, cancel); err != nil {
				return fmt.Errorf("failed to set cancellation flag: %w", err)
			}
		}
	}

	s.logger.InfoContext(ctx, "subscription created",
		logger.UserID(userID.String()),
		logger.SubscriptionID(sub.ID.String()),
		logger.ProviderSubscriptionID(sub.ProviderSubscriptionID),
		logger.PlanID(plan.ID),
		logger.Component("subscription"),
	)
	return nil
}

func (s *service) applyUpdated(ctx context.Context, eventType string, data SubscriptionData) error {
	sub, err := s.findByProviderID(ctx, data.ProviderSubscriptionID)
	if err != nil {
		return err
	}
	if sub == nil {
		s.logger.DebugContext(ctx, "dropping update for unknown subscription",
			logger.EventType(eventType),
			logger.ProviderSubscriptionID(data.ProviderSubscriptionID),
			logger.Component("subscription"),
		)
		return nil
	}

	if data.Status != "" {
		sub.Status = data.Status
	}
	if data.PriceID != "" && data.PriceID != sub.PriceID {
		if plan, price, ok := s.catalog.PlanForPrice(data.PriceID); ok {
			sub.PlanID = plan.ID
			sub.PriceID = price.ID
			sub.BillingCycle = price.BillingCycle
		} else {
			s.logger.WarnContext(ctx, "subscription moved to a price outside the catalog",
				logger.PriceID(data.PriceID),
				logger.ProviderSubscriptionID(data.ProviderSubscriptionID),
				logger.Component("subscription"),
			)
			sub.PriceID = data.PriceID
		}
	}
	if data.ProviderCustomerID != "" {
		sub.ProviderCustomerID = data.ProviderCustomerID
	}
	applyPeriods(sub, data)
	sub.UpdatedAt = s.now().UTC()

	if err := s.store.UpdateSubscription(ctx, sub); err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	if data.CancelAtPeriodEnd != nil {
		if err := s.store.SetCancelAtPeriodEnd(ctx, sub.ID, *data.CancelAtPeriodEnd); err != nil {
			return fmt.Errorf("failed to set cancellation flag: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "subscription updated",
		logger.EventType(eventType),
		logger.SubscriptionID(sub.ID.String()),
		logger.Component("subscription"),
	)
	return nil
}

func (s *service) applyCanceled(ctx context.Context, data SubscriptionData) error {
	sub, err := s.findByProviderID(ctx, data.ProviderSubscriptionID)
	if err != nil {
		return err
	}
	if sub == nil {
		s.logger.DebugContext(ctx, "dropping cancellation for unknown subscription",
			logger.ProviderSubscriptionID(data.ProviderSubscriptionID),
			logger.Component("subscription"),
		)
		return nil
	}

	sub.Status = StatusCanceled
	sub.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateSubscription(ctx, sub); err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}

	s.logger.InfoContext(ctx, "subscription canceled",
		logger.UserID(sub.UserID.String()),
		logger.SubscriptionID(sub.ID.String()),
		logger.Component("subscription"),
	)
	return nil
}

func applyPeriods(sub *Subscription, data SubscriptionData) {
	if data.CurrentPeriodStart != nil {
		sub.CurrentPeriodStart = data.CurrentPeriodStart.UTC()
	}
	if data.CurrentPeriodEnd != nil {
		sub.CurrentPeriodEnd = data.CurrentPeriodEnd.UTC()
	}
	if data.TrialEndDate != nil {
		t := data.TrialEndDate.UTC()
		sub.TrialEndDate = &t
	}
}

func (s *service) findByProviderID(ctx context.Context, providerSubscriptionID string) (*Subscription, error) {
	if providerSubscriptionID == "" {
		return nil, nil
	}
	sub, err := s.store.GetSubscriptionByProviderID(ctx, providerSubscriptionID)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return sub, nil
}

// resolveUser maps the event to a local user: first through the stored
// customer link, then through the user id echoed from checkout custom data,
// which must name an account the UserResolver knows. A user resolved the
// second way is linked to the customer for later events.
func (s *service) resolveUser(ctx context.Context, data SubscriptionData) (uuid.UUID, bool, error) {
	if data.ProviderCustomerID != "" {
		id, err := s.store.GetUserIDByProviderCustomerID(ctx, data.ProviderCustomerID)
		switch {
		case err == nil:
			return id, true, nil
		case !errors.Is(err, ErrCustomerNotFound):
			return uuid.Nil, false, fmt.Errorf("failed to resolve billing customer: %w", err)
		}
	}

	if data.UserID == "" || s.users == nil {
		return uuid.Nil, false, nil
	}
	id, err := uuid.Parse(data.UserID)
	if err != nil {
		return uuid.Nil, false, nil
	}
	exists, err := s.users.UserExists(ctx, id)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to resolve user: %w", err)
	}
	if !exists {
		return uuid.Nil, false, nil
	}

	if data.ProviderCustomerID != "" {
		if err := s.store.SetProviderCustomerID(ctx, id, data.ProviderCustomerID); err != nil {
			return uuid.Nil, false, fmt.Errorf("failed to link billing customer: %w", err)
		}
	}
	return id, true, nil
}
