package credential

import (
	"context"

	"github.com/google/uuid"
)

// UserStorage persists users, password hashes and the single-use tokens bound to them.
//
// Lookups return ErrUserNotFound or ErrTokenNotFound when nothing matches.
// Set*Token replaces any token of the same kind the user already holds.
type UserStorage interface {
	// CreateUser stores the user together with its password hash, which may be
	// nil for accounts without a password. It returns ErrEmailAlreadyExists when
	// the email is taken.
	CreateUser(ctx context.Context, user *User, passwordHash []byte) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, user *User) error

	SetPasswordHash(ctx context.Context, userID uuid.UUID, hash []byte) error
	// GetPasswordHash returns ErrUserNotFound when the user has no password.
	GetPasswordHash(ctx context.Context, userID uuid.UUID) ([]byte, error)

	SetVerificationToken(ctx context.Context, rec TokenRecord) error
	GetVerificationToken(ctx context.Context, tokenHash string) (*TokenRecord, error)
	ClearVerificationToken(ctx context.Context, userID uuid.UUID) error

	SetPasswordResetToken(ctx context.Context, rec TokenRecord) error
	GetPasswordResetToken(ctx context.Context, tokenHash string) (*TokenRecord, error)
	ClearPasswordResetToken(ctx context.Context, userID uuid.UUID) error
}

// RefreshTokenStorage tracks refresh tokens. A user may hold many.
type RefreshTokenStorage interface {
	CreateRefreshToken(ctx context.Context, rec TokenRecord) error
	// ConsumeRefreshToken atomically deletes the record and returns it.
	// Of several concurrent calls for the same digest at most one succeeds;
	// the rest get ErrTokenNotFound. Expiry is checked by the caller.
	ConsumeRefreshToken(ctx context.Context, tokenHash string) (*TokenRecord, error)
	// DeleteRefreshToken is a no-op for unknown digests.
	DeleteRefreshToken(ctx context.Context, tokenHash string) error
	DeleteUserRefreshTokens(ctx context.Context, userID uuid.UUID) error
}

// Storage is implemented by stores that hold both users and refresh tokens.
type Storage interface {
	UserStorage
	RefreshTokenStorage
}

// EmailSender delivers credential mails. The url already embeds the token.
type EmailSender interface {
	SendVerificationEmail(ctx context.Context, email, token, url string) error
	SendPasswordResetEmail(ctx context.Context, email, token, url string) error
}

// ClaimsProvider supplies extra claims for every access token issued to a user.
// Reserved claims (userId, sub, iat, exp, jti) are always overwritten.
type ClaimsProvider interface {
	DeriveClaims(ctx context.Context, userID uuid.UUID) (map[string]any, error)
}

// ClaimsProviderFunc adapts a function to ClaimsProvider.
type ClaimsProviderFunc func(ctx context.Context, userID uuid.UUID) (map[string]any, error)

func (f ClaimsProviderFunc) DeriveClaims(ctx context.Context, userID uuid.UUID) (map[string]any, error) {
	return f(ctx, userID)
}
