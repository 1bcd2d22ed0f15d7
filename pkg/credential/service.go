package credential

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/accesskit/pkg/jwt"
)

// Manager is the credential lifecycle API consumed by request handlers.
type Manager interface {
	Register(ctx context.Context, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	ValidateToken(ctx context.Context, accessToken string) TokenValidation
	GetUserFromToken(ctx context.Context, accessToken string) (*User, error)

	VerifyEmail(ctx context.Context, token string) (*User, error)
	ResendVerificationEmail(ctx context.Context, email string) error

	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error

	RefreshAccessToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	RevokeRefreshToken(ctx context.Context, refreshToken string) error
	RevokeAllRefreshTokens(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	users   UserStorage
	refresh RefreshTokenStorage
	issuer  *jwt.Service
	sender  EmailSender
	claims  ClaimsProvider
	logger  *slog.Logger
	now     func() time.Time

	baseURL         string
	minPwLen        int
	cost            int
	requireVerified bool
	verificationTTL time.Duration
	resetTTL        time.Duration
	accessTTL       time.Duration
	refreshTTL      time.Duration

	// dummyHash is compared on logins without a stored hash.
	dummyHash func() []byte
}

// Option configures the Manager.
type Option func(*service)

// WithConfig applies an environment-loaded Config. Options after it still win.
func WithConfig(cfg Config) Option {
	return func(s *service) {
		if cfg.BaseURL != "" {
			s.baseURL = cfg.BaseURL
		}
		if cfg.MinPasswordLength > 0 {
			s.minPwLen = cfg.MinPasswordLength
		}
		if cfg.BcryptCost > 0 {
			s.cost = cfg.BcryptCost
		}
		s.requireVerified = cfg.RequireEmailVerification
		s.verificationTTL = ParseTTL(cfg.VerificationTokenTTL, DefaultVerificationTokenTTL)
		s.resetTTL = ParseTTL(cfg.PasswordResetTokenTTL, DefaultPasswordResetTTL)
		s.accessTTL = ParseTTL(cfg.AccessTokenTTL, DefaultAccessTokenTTL)
		s.refreshTTL = ParseTTL(cfg.RefreshTokenTTL, DefaultRefreshTokenTTL)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClaimsProvider merges provider claims into every access token.
func WithClaimsProvider(p ClaimsProvider) Option {
	return func(s *service) {
		s.claims = p
	}
}

// WithBaseURL sets the prefix of the links sent by email.
func WithBaseURL(baseURL string) Option {
	return func(s *service) {
		s.baseURL = baseURL
	}
}

func WithMinPasswordLength(n int) Option {
	return func(s *service) {
		if n > 0 {
			s.minPwLen = n
		}
	}
}

func WithBcryptCost(cost int) Option {
	return func(s *service) {
		s.cost = cost
	}
}

// WithRequireEmailVerification makes Login reject unverified accounts.
func WithRequireEmailVerification(require bool) Option {
	return func(s *service) {
		s.requireVerified = require
	}
}

func WithVerificationTokenTTL(ttl time.Duration) Option {
	return func(s *service) {
		s.verificationTTL = ttl
	}
}

func WithPasswordResetTokenTTL(ttl time.Duration) Option {
	return func(s *service) {
		s.resetTTL = ttl
	}
}

func WithAccessTokenTTL(ttl time.Duration) Option {
	return func(s *service) {
		s.accessTTL = ttl
	}
}

func WithRefreshTokenTTL(ttl time.Duration) Option {
	return func(s *service) {
		s.refreshTTL = ttl
	}
}

// WithClock replaces time.Now for expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a Manager. It panics on nil dependencies.
func NewService(users UserStorage, refresh RefreshTokenStorage, issuer *jwt.Service, sender EmailSender, opts ...Option) Manager {
	if users == nil {
		panic("credential: user storage is required")
	}
	if refresh == nil {
		panic("credential: refresh token storage is required")
	}
	if issuer == nil {
		panic("credential: jwt service is required")
	}
	if sender == nil {
		panic("credential: email sender is required")
	}

	s := &service{
		users:           users,
		refresh:         refresh,
		issuer:          issuer,
		sender:          sender,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:             time.Now,
		baseURL:         "http://localhost:8080",
		minPwLen:        DefaultMinPasswordLength,
		cost:            DefaultBcryptCost,
		verificationTTL: DefaultVerificationTokenTTL,
		resetTTL:        DefaultPasswordResetTTL,
		accessTTL:       DefaultAccessTokenTTL,
		refreshTTL:      DefaultRefreshTokenTTL,
	}

	for _, opt := range opts {
		opt(s)
	}

	cost := s.cost
	s.dummyHash = sync.OnceValue(func() []byte {
		h, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cost)
		if err != nil {
			h, _ = bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
		}
		return h
	})

	return s
}
