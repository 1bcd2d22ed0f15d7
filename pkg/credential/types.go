package credential

import (
	"time"

	"github.com/google/uuid"
)

// User is an account known to the credential store.
type User struct {
	ID            uuid.UUID
	Email         string
	EmailVerified bool
	CreatedAt     time.Time
}

// TokenRecord is the persisted half of an opaque token.
// Token holds the SHA-256 digest of the value handed to the user, never the value itself.
type TokenRecord struct {
	Token     string
	UserID    uuid.UUID
	ExpiresAt time.Time
}

// Expired reports whether the record is no longer redeemable at now.
func (r TokenRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// TokenPair is a freshly issued access and refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User *User
	TokenPair
}

// TokenValidation is the outcome of ValidateToken. UserID is zero when Valid is false.
type TokenValidation struct {
	Valid  bool
	UserID uuid.UUID
}
