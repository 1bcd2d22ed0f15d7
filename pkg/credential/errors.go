package credential

import "github.com/dmitrymomot/accesskit/pkg/apperr"

var (
	ErrInvalidEmail       = apperr.New(apperr.KindValidation, "auth.invalid_email", "invalid email address")
	ErrWeakPassword       = apperr.New(apperr.KindValidation, "auth.weak_password", "password does not meet security requirements")
	ErrEmailAlreadyExists = apperr.New(apperr.KindConflict, "auth.email_exists", "email already exists")

	// ErrInvalidCredentials covers unknown email, missing hash and mismatch alike.
	ErrInvalidCredentials   = apperr.New(apperr.KindUnauthorized, "auth.invalid_credentials", "invalid credentials")
	ErrEmailNotVerified     = apperr.New(apperr.KindUnauthorized, "auth.email_not_verified", "email not verified")
	ErrInvalidToken         = apperr.New(apperr.KindUnauthorized, "auth.invalid_token", "invalid or expired token")
	ErrEmailAlreadyVerified = apperr.New(apperr.KindUnauthorized, "auth.email_already_verified", "email already verified")

	ErrUserNotFound = apperr.New(apperr.KindNotFound, "auth.user_not_found", "user not found")
	// ErrTokenNotFound is returned by storage implementations; the Manager never surfaces it.
	ErrTokenNotFound = apperr.New(apperr.KindNotFound, "auth.token_not_found", "token not found")
)
