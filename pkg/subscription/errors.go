package subscription

import (
	"github.com/dmitrymomot/accesskit/pkg/apperr"
	"github.com/dmitrymomot/accesskit/pkg/catalog"
)

var (
	ErrInvalidPrice          = apperr.New(apperr.KindPolicyRejection, "subscription.invalid_price", "price is not in the plan catalog")
	ErrCapabilityUnsupported = apperr.New(apperr.KindPolicyRejection, "subscription.capability_unsupported", "operation not supported by the billing provider")
	ErrNoBillingAccount      = apperr.New(apperr.KindPolicyRejection, "subscription.no_billing_account", "subscription has no billing account with the provider")
	ErrPlanNotFound          = catalog.ErrPlanNotFound

	ErrAlreadySubscribed = apperr.New(apperr.KindConflict, "subscription.already_subscribed", "user already has an active subscription")
	ErrTrialAlreadyUsed  = apperr.New(apperr.KindConflict, "subscription.trial_already_used", "trial already used")

	ErrSubscriptionNotFound = apperr.New(apperr.KindNotFound, "subscription.not_found", "subscription not found")

	ErrInvalidSignature = apperr.New(apperr.KindSecurityRejection, "subscription.invalid_signature", "invalid webhook signature")
	ErrMalformedWebhook = apperr.New(apperr.KindValidation, "subscription.malformed_webhook", "malformed webhook payload")
)

// Storage-level errors. The Service maps them before returning.
var (
	// ErrSubscriptionExists is returned by Store.CreateSubscription when the user
	// already has a row or the provider subscription id is taken.
	ErrSubscriptionExists = apperr.New(apperr.KindConflict, "subscription.exists", "subscription already exists")
	ErrCustomerNotFound   = apperr.New(apperr.KindNotFound, "subscription.customer_not_found", "billing customer not found")
)
