package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/accesskit/pkg/credential"
)

// DefaultKeyPrefix namespaces every key the store writes.
const DefaultKeyPrefix = "accesskit:"

// RefreshTokenStore implements credential.RefreshTokenStorage.
type RefreshTokenStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

var _ credential.RefreshTokenStorage = (*RefreshTokenStore)(nil)

// Option configures a RefreshTokenStore.
type Option func(*RefreshTokenStore)

func WithKeyPrefix(prefix string) Option {
	return func(s *RefreshTokenStore) {
		s.prefix = prefix
	}
}

// WithClock replaces time.Now when computing key expiry.
func WithClock(now func() time.Time) Option {
	return func(s *RefreshTokenStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewRefreshTokenStore creates a store. It panics if client is nil.
func NewRefreshTokenStore(client redis.UniversalClient, opts ...Option) *RefreshTokenStore {
	if client == nil {
		panic("redis: client is required")
	}
	s := &RefreshTokenStore{
		client: client,
		prefix: DefaultKeyPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type refreshRecord struct {
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *RefreshTokenStore) tokenKey(tokenHash string) string {
	return s.prefix + "refresh:" + tokenHash
}

func (s *RefreshTokenStore) userKey(userID uuid.UUID) string {
	return s.prefix + "refresh:user:" + userID.String()
}

func (s *RefreshTokenStore) CreateRefreshToken(ctx context.Context, rec credential.TokenRecord) error {
	ttl := rec.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		// Already expired; nothing could redeem it.
		return nil
	}

	data, err := json.Marshal(refreshRecord{UserID: rec.UserID, ExpiresAt: rec.ExpiresAt.UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode refresh token: %w", err)
	}

	userKey := s.userKey(rec.UserID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.tokenKey(rec.Token), data, ttl)
		pipe.SAdd(ctx, userKey, rec.Token)
		// The index lives as long as the newest token.
		pipe.ExpireGT(ctx, userKey, ttl)
		pipe.ExpireNX(ctx, userKey, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

func (s *RefreshTokenStore) ConsumeRefreshToken(ctx context.Context, tokenHash string) (*credential.TokenRecord, error) {
	data, err := s.client.GetDel(ctx, s.tokenKey(tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, credential.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to consume refresh token: %w", err)
	}

	var rec refreshRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode refresh token: %w", err)
	}
	// Index cleanup is best effort; stale members point at missing keys.
	_ = s.client.SRem(ctx, s.userKey(rec.UserID), tokenHash).Err()

	return &credential.TokenRecord{
		Token:     tokenHash,
		UserID:    rec.UserID,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

func (s *RefreshTokenStore) DeleteRefreshToken(ctx context.Context, tokenHash string) error {
	if _, err := s.ConsumeRefreshToken(ctx, tokenHash); err != nil && !errors.Is(err, credential.ErrTokenNotFound) {
		return err
	}
	return nil
}

func (s *RefreshTokenStore) DeleteUserRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	userKey := s.userKey(userID)
	members, err := s.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return fmt.Errorf("failed to list refresh tokens: %w", err)
	}

	keys := make([]string, 0, len(members)+1)
	for _, m := range members {
		keys = append(keys, s.tokenKey(m))
	}
	keys = append(keys, userKey)

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete refresh tokens: %w", err)
	}
	return nil
}
