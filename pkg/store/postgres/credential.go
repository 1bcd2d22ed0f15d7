package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accesskit/pkg/credential"
	"github.com/dmitrymomot/accesskit/pkg/pg"
)

// CredentialStore implements credential.Storage.
type CredentialStore struct {
	db DB
}

var _ credential.Storage = (*CredentialStore)(nil)

// NewCredentialStore creates a store over db, usually a *pgxpool.Pool.
func NewCredentialStore(db DB) *CredentialStore {
	return &CredentialStore{db: db}
}

func (s *CredentialStore) CreateUser(ctx context.Context, user *credential.User, passwordHash []byte) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO users (id, email, email_verified, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Email, user.EmailVerified, passwordHash, user.CreatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return credential.ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *CredentialStore) GetUserByID(ctx context.Context, id uuid.UUID) (*credential.User, error) {
	return s.getUser(ctx, `SELECT id, email, email_verified, created_at FROM users WHERE id = $1`, id)
}

func (s *CredentialStore) GetUserByEmail(ctx context.Context, email string) (*credential.User, error) {
	return s.getUser(ctx, `SELECT id, email, email_verified, created_at FROM users WHERE email = $1`, email)
}

func (s *CredentialStore) getUser(ctx context.Context, query string, arg any) (*credential.User, error) {
	var u credential.User
	err := s.db.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Email, &u.EmailVerified, &u.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, credential.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

func (s *CredentialStore) UpdateUser(ctx context.Context, user *credential.User) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE users SET email = $2, email_verified = $3 WHERE id = $1`,
		user.ID, user.Email, user.EmailVerified,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return credential.ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return credential.ErrUserNotFound
	}
	return nil
}

func (s *CredentialStore) SetPasswordHash(ctx context.Context, userID uuid.UUID, hash []byte) error {
	tag, err := s.db.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, userID, hash)
	if err != nil {
		return fmt.Errorf("failed to set password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return credential.ErrUserNotFound
	}
	return nil
}

func (s *CredentialStore) GetPasswordHash(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	var hash []byte
	err := s.db.QueryRow(ctx, `SELECT password_hash FROM users WHERE id = $1`, userID).Scan(&hash)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, credential.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get password hash: %w", err)
	}
	if hash == nil {
		return nil, credential.ErrUserNotFound
	}
	return hash, nil
}

// Single-use token tables share one shape and keep one row per user.
const (
	verificationTokens  = "verification_tokens"
	passwordResetTokens = "password_reset_tokens"
)

func (s *CredentialStore) setToken(ctx context.Context, table string, rec credential.TokenRecord) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO `+table+` (token_hash, user_id, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET token_hash = EXCLUDED.token_hash, expires_at = EXCLUDED.expires_at`,
		rec.Token, rec.UserID, rec.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store token in %s: %w", table, err)
	}
	return nil
}

func (s *CredentialStore) getToken(ctx context.Context, table, tokenHash string) (*credential.TokenRecord, error) {
	rec := credential.TokenRecord{Token: tokenHash}
	var expires time.Time
	err := s.db.QueryRow(ctx,
		`SELECT user_id, expires_at FROM `+table+` WHERE token_hash = $1`, tokenHash,
	).Scan(&rec.UserID, &expires)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, credential.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get token from %s: %w", table, err)
	}
	rec.ExpiresAt = expires.UTC()
	return &rec, nil
}

func (s *CredentialStore) clearToken(ctx context.Context, table string, userID uuid.UUID) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM `+table+` WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear token in %s: %w", table, err)
	}
	return nil
}

func (s *CredentialStore) SetVerificationToken(ctx context.Context, rec credential.TokenRecord) error {
	return s.setToken(ctx, verificationTokens, rec)
}

func (s *CredentialStore) GetVerificationToken(ctx context.Context, tokenHash string) (*credential.TokenRecord, error) {
	return s.getToken(ctx, verificationTokens, tokenHash)
}

func (s *CredentialStore) ClearVerificationToken(ctx context.Context, userID uuid.UUID) error {
	return s.clearToken(ctx, verificationTokens, userID)
}

func (s *CredentialStore) SetPasswordResetToken(ctx context.Context, rec credential.TokenRecord) error {
	return s.setToken(ctx, passwordResetTokens, rec)
}

func (s *CredentialStore) GetPasswordResetToken(ctx context.Context, tokenHash string) (*credential.TokenRecord, error) {
	return s.getToken(ctx, passwordResetTokens, tokenHash)
}

func (s *CredentialStore) ClearPasswordResetToken(ctx context.Context, userID uuid.UUID) error {
	return s.clearToken(ctx, passwordResetTokens, userID)
}

func (s *CredentialStore) CreateRefreshToken(ctx context.Context, rec credential.TokenRecord) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO refresh_tokens (token_hash, user_id, expires_at) VALUES ($1, $2, $3)`,
		rec.Token, rec.UserID, rec.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert refresh token: %w", err)
	}
	return nil
}

// ConsumeRefreshToken deletes and returns the row in one statement. Postgres
// row locking lets only one concurrent DELETE see the row.
func (s *CredentialStore) ConsumeRefreshToken(ctx context.Context, tokenHash string) (*credential.TokenRecord, error) {
	rec := credential.TokenRecord{Token: tokenHash}
	var expires time.Time
	err := s.db.QueryRow(ctx,
		`DELETE FROM refresh_tokens WHERE token_hash = $1 RETURNING user_id, expires_at`, tokenHash,
	).Scan(&rec.UserID, &expires)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, credential.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to consume refresh token: %w", err)
	}
	rec.ExpiresAt = expires.UTC()
	return &rec, nil
}

func (s *CredentialStore) DeleteRefreshToken(ctx context.Context, tokenHash string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE token_hash = $1`, tokenHash); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

func (s *CredentialStore) DeleteUserRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete user refresh tokens: %w", err)
	}
	return nil
}

// PurgeExpiredRefreshTokens removes refresh tokens that expired before now
// and returns how many were removed.
func (s *CredentialStore) PurgeExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
