package email

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/accesskit/pkg/credential"
	"github.com/dmitrymomot/accesskit/pkg/email/templates"
	"github.com/dmitrymomot/accesskit/pkg/logger"
	"github.com/dmitrymomot/accesskit/pkg/sanitizer"
)

// Tags attached to credential mail.
const (
	TagVerification  = "email-verification"
	TagPasswordReset = "password-reset"
)

// AuthMailer implements credential.EmailSender.
type AuthMailer struct {
	sender  Sender
	logger  *slog.Logger
	product string

	verificationTTL time.Duration
	resetTTL        time.Duration
}

var _ credential.EmailSender = (*AuthMailer)(nil)

// AuthMailerOption configures an AuthMailer.
type AuthMailerOption func(*AuthMailer)

// WithProductName sets the product name shown in subjects and bodies.
func WithProductName(name string) AuthMailerOption {
	return func(m *AuthMailer) {
		if name != "" {
			m.product = name
		}
	}
}

// WithLinkLifetimes sets the expiry shown in messages. Zero hides the notice.
func WithLinkLifetimes(verification, reset time.Duration) AuthMailerOption {
	return func(m *AuthMailer) {
		m.verificationTTL = verification
		m.resetTTL = reset
	}
}

func WithMailerLogger(l *slog.Logger) AuthMailerOption {
	return func(m *AuthMailer) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewAuthMailer wraps sender. It panics if sender is nil.
func NewAuthMailer(sender Sender, opts ...AuthMailerOption) *AuthMailer {
	if sender == nil {
		panic("email: sender is required")
	}
	m := &AuthMailer{
		sender:          sender,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		product:         "AccessKit",
		verificationTTL: credential.DefaultVerificationTokenTTL,
		resetTTL:        credential.DefaultPasswordResetTTL,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SendVerificationEmail sends the address confirmation link. The raw token is
// already part of url and is not rendered separately.
func (m *AuthMailer) SendVerificationEmail(ctx context.Context, to, token, url string) error {
	return m.send(ctx, to, "Confirm your "+m.product+" email address", TagVerification,
		templates.VerifyEmail(m.product, url, m.verificationTTL))
}

// SendPasswordResetEmail sends the password reset link.
func (m *AuthMailer) SendPasswordResetEmail(ctx context.Context, to, token, url string) error {
	return m.send(ctx, to, "Reset your "+m.product+" password", TagPasswordReset,
		templates.ResetPassword(m.product, url, m.resetTTL))
}

func (m *AuthMailer) send(ctx context.Context, to, subject, tag string, body templ.Component) error {
	html, err := templates.Render(ctx, body)
	if err != nil {
		return fmt.Errorf("failed to render %s email: %w", tag, err)
	}

	if err := m.sender.SendEmail(ctx, SendEmailParams{
		SendTo:   to,
		Subject:  subject,
		BodyHTML: html,
		Tag:      tag,
	}); err != nil {
		return err
	}

	m.logger.DebugContext(ctx, "email sent",
		logger.Email(sanitizer.MaskEmail(to)),
		slog.String("tag", tag),
		logger.Component("email"),
	)
	return nil
}
