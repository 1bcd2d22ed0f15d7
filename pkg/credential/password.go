package credential

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/accesskit/pkg/logger"
	"github.com/dmitrymomot/accesskit/pkg/sanitizer"
)

// bcrypt ignores everything past 72 bytes.
const maxPasswordBytes = 72

func (s *service) validateEmail(email string) error {
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidEmail, err.Error())
	}
	return nil
}

func (s *service) validatePassword(password string) error {
	if err := validation.Validate(password, validation.Required, validation.Length(s.minPwLen, 0)); err != nil {
		return fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("%w: must be at most %d bytes", ErrWeakPassword, maxPasswordBytes)
	}
	return nil
}

// Register creates an unverified account, mails a verification link and signs the user in.
func (s *service) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	email = sanitizer.NormalizeEmail(email)

	if err := s.validateEmail(email); err != nil {
		return nil, err
	}
	if err := s.validatePassword(password); err != nil {
		return nil, err
	}

	_, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailAlreadyExists
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:            uuid.New(),
		Email:         email,
		EmailVerified: false,
		CreatedAt:     s.now().UTC(),
	}

	// A concurrent registration can still win the race; the store reports it as ErrEmailAlreadyExists.
	if err := s.users.CreateUser(ctx, user, hash); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// The account exists at this point; a lost mail is recoverable through a resend.
	if err := s.sendVerification(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to issue verification token",
			logger.UserID(user.ID.String()),
			logger.Error(err),
			logger.Component("credential"),
		)
	}

	pair, err := s.issueTokenPair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered",
		logger.UserID(user.ID.String()),
		logger.Email(sanitizer.MaskEmail(email)),
		logger.Component("credential"),
	)

	return &AuthResult{User: user, TokenPair: *pair}, nil
}

// Login checks the password and issues a new token pair.
// Unknown email, missing password and mismatch all return ErrInvalidCredentials
// after the same bcrypt work.
func (s *service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = sanitizer.NormalizeEmail(email)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.burnCompare(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	hash, err := s.users.GetPasswordHash(ctx, user.ID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.burnCompare(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get password hash: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if s.requireVerified && !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	pair, err := s.issueTokenPair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, TokenPair: *pair}, nil
}

// ChangePassword replaces the password of a signed-in user after checking the current one.
func (s *service) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	hash, err := s.users.GetPasswordHash(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get password hash: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	if err := s.validatePassword(newPassword); err != nil {
		return err
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.SetPasswordHash(ctx, userID, newHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// RequestPasswordReset mails a reset link. Unknown addresses are ignored silently.
func (s *service) RequestPasswordReset(ctx context.Context, email string) error {
	email = sanitizer.NormalizeEmail(email)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.logger.DebugContext(ctx, "password reset requested for unknown email",
				logger.Email(sanitizer.MaskEmail(email)),
				logger.Component("credential"),
			)
			return nil
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	raw, err := s.storeToken(ctx, user.ID, s.resetTTL, s.users.SetPasswordResetToken)
	if err != nil {
		return fmt.Errorf("failed to store password reset token: %w", err)
	}

	link := s.link("/reset-password", raw)
	if err := s.sender.SendPasswordResetEmail(ctx, user.Email, raw, link); err != nil {
		s.logger.ErrorContext(ctx, "failed to send password reset email",
			logger.UserID(user.ID.String()),
			logger.Error(err),
			logger.Component("credential"),
		)
	}
	return nil
}

// ResetPassword redeems a reset token, replaces the password and signs the user out everywhere.
func (s *service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if err := s.validatePassword(newPassword); err != nil {
		return err
	}

	rec, err := s.lookupToken(ctx, resetToken, s.users.GetPasswordResetToken)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.SetPasswordHash(ctx, rec.UserID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := s.users.ClearPasswordResetToken(ctx, rec.UserID); err != nil {
		return fmt.Errorf("failed to clear password reset token: %w", err)
	}
	if err := s.refresh.DeleteUserRefreshTokens(ctx, rec.UserID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}

	s.logger.InfoContext(ctx, "password reset",
		logger.UserID(rec.UserID.String()),
		logger.Component("credential"),
	)
	return nil
}

// storeToken mints an opaque token, persists its digest through set and returns the raw value.
func (s *service) storeToken(ctx context.Context, userID uuid.UUID, ttl time.Duration, set func(context.Context, TokenRecord) error) (string, error) {
	raw, hash, err := newOpaqueToken()
	if err != nil {
		return "", err
	}
	rec := TokenRecord{
		Token:     hash,
		UserID:    userID,
		ExpiresAt: s.now().Add(ttl),
	}
	if err := set(ctx, rec); err != nil {
		return "", err
	}
	return raw, nil
}

// lookupToken resolves a single-use token. Unknown and expired tokens both yield ErrInvalidToken.
func (s *service) lookupToken(ctx context.Context, raw string, get func(context.Context, string) (*TokenRecord, error)) (*TokenRecord, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}
	rec, err := get(ctx, hashToken(raw))
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	if rec.Expired(s.now()) {
		return nil, ErrInvalidToken
	}
	return rec, nil
}

// burnCompare spends the time of a real password check against a hash that
// matches nothing.
func (s *service) burnCompare(password string) {
	_ = bcrypt.CompareHashAndPassword(s.dummyHash(), []byte(password))
}
