// Package credential manages the lifecycle of user credentials: password
// registration and login, single-use email verification and password reset
// tokens, HS256 access tokens and rotating refresh tokens.
//
// The Manager never touches a database or mail server directly. It consumes
// UserStorage, RefreshTokenStorage and EmailSender, which are implemented by
// the adapters under pkg/store and pkg/email.
//
// Opaque tokens (verification, reset, refresh) are handed to the caller once
// and persisted only as their SHA-256 digest. A refresh token is redeemed by
// RefreshTokenStorage.ConsumeRefreshToken, a single compare-and-delete, so
// two concurrent redemptions of the same token produce one winner.
//
// Account enumeration is avoided on purpose: RequestPasswordReset and
// ResendVerificationEmail return nil for unknown addresses, and every token
// failure surfaces as ErrInvalidToken.
//
//	mgr := credential.NewService(store, store, issuer, mailer,
//	    credential.WithConfig(cfg),
//	    credential.WithLogger(log),
//	)
//	res, err := mgr.Register(ctx, "user@example.com", "correct horse")
package credential
