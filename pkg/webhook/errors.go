package webhook

import "errors"

var (
	ErrInvalidConfiguration = errors.New("invalid webhook configuration")
	ErrInvalidPayload       = errors.New("invalid webhook payload")
	ErrMalformedHeader      = errors.New("malformed webhook signature header")
	ErrTimestampOutOfRange  = errors.New("webhook signature timestamp outside tolerance")
	ErrSignatureMismatch    = errors.New("webhook signature mismatch")
)
