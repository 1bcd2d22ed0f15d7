package paddle

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	paddlesdk "github.com/PaddleHQ/paddle-go-sdk/v4"

	"github.com/dmitrymomot/accesskit/pkg/logger"
	"github.com/dmitrymomot/accesskit/pkg/subscription"
)

// SignatureHeader is the header Paddle signs webhooks with.
const SignatureHeader = "Paddle-Signature"

// checkoutTTL is how long Paddle keeps a checkout transaction payable.
const checkoutTTL = 24 * time.Hour

// portalTTL bounds the lifetime of the temporary token in portal links.
const portalTTL = time.Hour

// Provider implements subscription.Provider, subscription.ResumableProvider
// and subscription.PortalProvider.
type Provider struct {
	client   *paddlesdk.SDK
	verifier *paddlesdk.WebhookVerifier
	logger   *slog.Logger
	now      func() time.Time
}

var (
	_ subscription.Provider          = (*Provider)(nil)
	_ subscription.ResumableProvider = (*Provider)(nil)
	_ subscription.PortalProvider    = (*Provider)(nil)
)

// Option configures a Provider.
type Option func(*Provider)

func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock replaces time.Now for checkout expiry.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a Paddle provider for the configured environment.
func New(cfg Config, opts ...Option) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.WebhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}

	var (
		client *paddlesdk.SDK
		err    error
	)
	switch strings.ToLower(cfg.Environment) {
	case EnvironmentSandbox:
		client, err = paddlesdk.NewSandbox(cfg.APIKey)
	case EnvironmentProduction, "":
		client, err = paddlesdk.New(cfg.APIKey)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidEnvironment, cfg.Environment)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle client: %w", err)
	}

	p := &Provider{
		client:   client,
		verifier: paddlesdk.NewWebhookVerifier(cfg.WebhookSecret),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// CreateCheckoutSession creates a Paddle transaction for one unit of the price.
func (p *Provider) CreateCheckoutSession(ctx context.Context, req subscription.CheckoutRequest) (*subscription.CheckoutSession, error) {
	item := paddlesdk.NewCreateTransactionItemsTransactionItemFromCatalog(&paddlesdk.TransactionItemFromCatalog{
		PriceID:  req.PriceID,
		Quantity: 1,
	})

	txReq := &paddlesdk.CreateTransactionRequest{
		Items:      []paddlesdk.CreateTransactionItems{*item},
		CustomData: customData(req),
	}
	if req.SuccessURL != "" {
		txReq.Checkout = &paddlesdk.TransactionCheckout{
			URL: paddlesdk.PtrTo(req.SuccessURL),
		}
	}

	tx, err := p.client.TransactionsClient.CreateTransaction(ctx, txReq)
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle transaction: %w", err)
	}
	if tx.Checkout == nil || tx.Checkout.URL == nil || *tx.Checkout.URL == "" {
		return nil, ErrNoCheckoutURL
	}

	p.logger.DebugContext(ctx, "paddle transaction created",
		logger.UserID(req.UserID.String()),
		logger.PriceID(req.PriceID),
		logger.Component("paddle"),
	)

	return &subscription.CheckoutSession{
		ID:        tx.ID,
		URL:       *tx.Checkout.URL,
		ExpiresAt: p.now().Add(checkoutTTL),
	}, nil
}

// customData is echoed back by Paddle on the resulting subscription.
func customData(req subscription.CheckoutRequest) paddlesdk.CustomData {
	data := paddlesdk.CustomData{
		customDataUserID: req.UserID.String(),
	}
	if req.Email != "" {
		data["email"] = req.Email
	}
	if req.CustomerID != "" {
		data["customer_id"] = req.CustomerID
	}
	if req.CancelURL != "" {
		data["cancel_url"] = req.CancelURL
	}
	return data
}

// CancelSubscription schedules the cancellation for the next billing period.
func (p *Provider) CancelSubscription(ctx context.Context, providerSubscriptionID string) error {
	_, err := p.client.SubscriptionsClient.CancelSubscription(ctx, &paddlesdk.CancelSubscriptionRequest{
		SubscriptionID: providerSubscriptionID,
		EffectiveFrom:  paddlesdk.PtrTo(paddlesdk.EffectiveFromNextBillingPeriod),
	})
	if err != nil {
		return fmt.Errorf("failed to cancel paddle subscription: %w", err)
	}
	return nil
}

// ResumeSubscription removes a scheduled cancellation.
func (p *Provider) ResumeSubscription(ctx context.Context, providerSubscriptionID string) error {
	_, err := p.client.SubscriptionsClient.UpdateSubscription(ctx, &paddlesdk.UpdateSubscriptionRequest{
		SubscriptionID:  providerSubscriptionID,
		ScheduledChange: paddlesdk.NewNullPatchField[*paddlesdk.SubscriptionScheduledChange](),
	})
	if err != nil {
		return fmt.Errorf("failed to remove scheduled change: %w", err)
	}
	return nil
}

// CreatePortalSession opens an authenticated customer portal session with
// deep links for the given subscription.
func (p *Provider) CreatePortalSession(ctx context.Context, customerID, providerSubscriptionID string) (*subscription.PortalLink, error) {
	if customerID == "" {
		return nil, ErrMissingCustomerID
	}
	req := &paddlesdk.CreateCustomerPortalSessionRequest{CustomerID: customerID}
	if providerSubscriptionID != "" {
		req.SubscriptionIDs = []string{providerSubscriptionID}
	}

	session, err := p.client.CustomerPortalSessionsClient.CreateCustomerPortalSession(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle portal session: %w", err)
	}
	return portalLink(session, providerSubscriptionID, p.now().Add(portalTTL))
}

func portalLink(session *paddlesdk.CustomerPortalSession, providerSubscriptionID string, expiresAt time.Time) (*subscription.PortalLink, error) {
	if session == nil || session.URLs.General.Overview == "" {
		return nil, ErrNoPortalURL
	}
	link := &subscription.PortalLink{
		URL:       session.URLs.General.Overview,
		ExpiresAt: expiresAt,
	}
	for _, sub := range session.URLs.Subscriptions {
		if sub.ID == providerSubscriptionID {
			link.CancelURL = sub.CancelSubscription
			link.UpdatePaymentURL = sub.UpdateSubscriptionPaymentMethod
			break
		}
	}
	return link, nil
}

// VerifyWebhookSignature checks a Paddle-Signature header value against payload.
func (p *Provider) VerifyWebhookSignature(payload []byte, signature string) bool {
	if signature == "" {
		return false
	}
	req, err := http.NewRequest(http.MethodPost, "/", bytes.NewReader(payload))
	if err != nil {
		return false
	}
	req.Header.Set(SignatureHeader, signature)

	ok, err := p.verifier.Verify(req)
	if err != nil {
		p.logger.Debug("paddle signature rejected",
			logger.Error(err),
			logger.Component("paddle"),
		)
		return false
	}
	return ok
}

// ParseWebhookEvent normalizes a Paddle notification.
func (p *Provider) ParseWebhookEvent(payload []byte) (subscription.Event, error) {
	return ParseEvent(payload)
}
