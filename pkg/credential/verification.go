package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrymomot/accesskit/pkg/logger"
	"github.com/dmitrymomot/accesskit/pkg/sanitizer"
)

// sendVerification replaces the user's verification token and mails the new link.
// Only the storage error is returned; delivery failures are logged.
func (s *service) sendVerification(ctx context.Context, user *User) error {
	raw, err := s.storeToken(ctx, user.ID, s.verificationTTL, s.users.SetVerificationToken)
	if err != nil {
		return fmt.Errorf("failed to store verification token: %w", err)
	}

	link := s.link("/verify-email", raw)
	if err := s.sender.SendVerificationEmail(ctx, user.Email, raw, link); err != nil {
		s.logger.ErrorContext(ctx, "failed to send verification email",
			logger.UserID(user.ID.String()),
			logger.Error(err),
			logger.Component("credential"),
		)
	}
	return nil
}

// VerifyEmail redeems a verification token and marks the account verified.
func (s *service) VerifyEmail(ctx context.Context, verificationToken string) (*User, error) {
	rec, err := s.lookupToken(ctx, verificationToken, s.users.GetVerificationToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, rec.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.EmailVerified = true
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if err := s.users.ClearVerificationToken(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to clear verification token: %w", err)
	}

	s.logger.InfoContext(ctx, "email verified",
		logger.UserID(user.ID.String()),
		logger.Component("credential"),
	)
	return user, nil
}

// ResendVerificationEmail rotates the verification token. Unknown addresses are
// ignored silently; verified accounts get ErrEmailAlreadyVerified.
func (s *service) ResendVerificationEmail(ctx context.Context, email string) error {
	email = sanitizer.NormalizeEmail(email)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.EmailVerified {
		return ErrEmailAlreadyVerified
	}

	return s.sendVerification(ctx, user)
}
