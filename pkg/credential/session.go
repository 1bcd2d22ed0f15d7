package credential

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accesskit/pkg/jwt"
	"github.com/dmitrymomot/accesskit/pkg/logger"
	"github.com/dmitrymomot/accesskit/pkg/token"
)

// ClaimUserID is the reserved claim carrying the user id. Custom claims never override it.
const ClaimUserID = "userId"

func newOpaqueToken() (raw, hash string, err error) {
	raw, err = token.Generate()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate token: %w", err)
	}
	return raw, token.Hash(raw), nil
}

func hashToken(raw string) string {
	return token.Hash(raw)
}

func (s *service) link(path, raw string) string {
	return strings.TrimRight(s.baseURL, "/") + path + "?token=" + url.QueryEscape(raw)
}

// accessToken signs a JWT for userID. Provider claims go in first so the reserved ones win.
func (s *service) accessToken(ctx context.Context, userID uuid.UUID) (string, error) {
	claims := jwt.Claims{}
	if s.claims != nil {
		custom, err := s.claims.DeriveClaims(ctx, userID)
		if err != nil {
			return "", fmt.Errorf("failed to derive custom claims: %w", err)
		}
		for k, v := range custom {
			claims[k] = v
		}
	}

	now := s.now()
	claims[ClaimUserID] = userID.String()
	claims[jwt.ClaimSubject] = userID.String()
	claims[jwt.ClaimIssuedAt] = now.Unix()
	claims[jwt.ClaimExpiresAt] = now.Add(s.accessTTL).Unix()
	claims[jwt.ClaimID] = uuid.NewString()

	signed, err := s.issuer.Generate(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

func (s *service) issueTokenPair(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	access, err := s.accessToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	refresh, err := s.storeToken(ctx, userID, s.refreshTTL, s.refresh.CreateRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// ValidateToken never fails; any problem with the token reports Valid=false.
func (s *service) ValidateToken(_ context.Context, accessToken string) TokenValidation {
	claims, err := s.issuer.Parse(accessToken)
	if err != nil {
		return TokenValidation{}
	}
	raw, ok := claims.String(ClaimUserID)
	if !ok {
		return TokenValidation{}
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return TokenValidation{}
	}
	return TokenValidation{Valid: true, UserID: id}
}

// GetUserFromToken validates the access token and loads its user.
func (s *service) GetUserFromToken(ctx context.Context, accessToken string) (*User, error) {
	v := s.ValidateToken(ctx, accessToken)
	if !v.Valid {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetUserByID(ctx, v.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// RefreshAccessToken redeems a refresh token exactly once and returns a new pair.
func (s *service) RefreshAccessToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrInvalidToken
	}

	rec, err := s.refresh.ConsumeRefreshToken(ctx, hashToken(refreshToken))
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to consume refresh token: %w", err)
	}
	if rec.Expired(s.now()) {
		return nil, ErrInvalidToken
	}

	return s.issueTokenPair(ctx, rec.UserID)
}

// RevokeRefreshToken invalidates one session. Unknown tokens are ignored.
func (s *service) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.refresh.DeleteRefreshToken(ctx, hashToken(refreshToken)); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAllRefreshTokens signs the user out of every session.
func (s *service) RevokeAllRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	if err := s.refresh.DeleteUserRefreshTokens(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	s.logger.InfoContext(ctx, "all sessions revoked",
		logger.UserID(userID.String()),
		logger.Component("credential"),
	)
	return nil
}
