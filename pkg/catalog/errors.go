package catalog

import (
	"errors"

	"github.com/dmitrymomot/accesskit/pkg/apperr"
)

var (
	ErrPlanNotFound  = apperr.New(apperr.KindPolicyRejection, "catalog.plan_not_found", "plan not found")
	ErrPriceNotFound = apperr.New(apperr.KindPolicyRejection, "catalog.price_not_found", "price not found")
)

var (
	ErrFailedToLoadPlans        = errors.New("failed to load plans")
	ErrInvalidPlanConfiguration = errors.New("invalid plan configuration")
)
