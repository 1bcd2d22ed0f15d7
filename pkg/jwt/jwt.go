package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Registered claim names used by this package.
const (
	ClaimSubject   = "sub"
	ClaimIssuer    = "iss"
	ClaimExpiresAt = "exp"
	ClaimIssuedAt  = "iat"
	ClaimID        = "jti"
)

// Claims is the JSON object carried by a token.
type Claims map[string]any

// Service handles token generation and validation using HMAC-SHA256.
type Service struct {
	signingKey []byte
	issuer     string
	leeway     time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithIssuer stamps generated tokens with iss and requires it when parsing.
func WithIssuer(issuer string) Option {
	return func(s *Service) {
		s.issuer = issuer
	}
}

// WithLeeway tolerates clock skew when validating exp/nbf/iat.
func WithLeeway(d time.Duration) Option {
	return func(s *Service) {
		s.leeway = d
	}
}

// New creates a JWT service with the provided signing key.
// The key should be at least 32 bytes for adequate security with HMAC-SHA256.
func New(signingKey []byte, opts ...Option) (*Service, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}

	s := &Service{signingKey: signingKey}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewFromString is New for string keys.
func NewFromString(signingKey string, opts ...Option) (*Service, error) {
	return New([]byte(signingKey), opts...)
}

// Generate signs claims. The configured issuer is added when claims has none.
func (s *Service) Generate(claims Claims) (string, error) {
	if len(claims) == 0 {
		return "", ErrMissingClaims
	}

	mc := make(gojwt.MapClaims, len(claims)+1)
	for k, v := range claims {
		mc[k] = v
	}
	if _, ok := mc[ClaimIssuer]; !ok && s.issuer != "" {
		mc[ClaimIssuer] = s.issuer
	}

	signed, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, mc).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature and temporal claims and returns the claims.
func (s *Service) Parse(tokenString string) (Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.issuer))
	}
	if s.leeway > 0 {
		opts = append(opts, gojwt.WithLeeway(s.leeway))
	}

	mc := gojwt.MapClaims{}
	tok, err := gojwt.ParseWithClaims(tokenString, mc, func(*gojwt.Token) (any, error) {
		return s.signingKey, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, gojwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, gojwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, errors.Join(ErrInvalidToken, err)
		}
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}

	return Claims(mc), nil
}

// String returns the string claim stored under key.
func (c Claims) String(key string) (string, bool) {
	v, ok := c[key].(string)
	return v, ok
}
