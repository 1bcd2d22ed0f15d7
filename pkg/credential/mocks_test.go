package credential_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/accesskit/pkg/credential"
)

// MockEmailSender is a mock implementation of credential.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendVerificationEmail(ctx context.Context, email, token, url string) error {
	args := m.Called(ctx, email, token, url)
	return args.Error(0)
}

func (m *MockEmailSender) SendPasswordResetEmail(ctx context.Context, email, token, url string) error {
	args := m.Called(ctx, email, token, url)
	return args.Error(0)
}

// lastToken returns the token argument of the most recent call to method.
func (m *MockEmailSender) lastToken(method string) string {
	var tok string
	for _, c := range m.Calls {
		if c.Method == method {
			tok = c.Arguments.String(2)
		}
	}
	return tok
}

// lastURL returns the url argument of the most recent call to method.
func (m *MockEmailSender) lastURL(method string) string {
	var u string
	for _, c := range m.Calls {
		if c.Method == method {
			u = c.Arguments.String(3)
		}
	}
	return u
}

// MockStorage is a mock implementation of credential.Storage.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) CreateUser(ctx context.Context, user *credential.User, passwordHash []byte) error {
	args := m.Called(ctx, user, passwordHash)
	return args.Error(0)
}

func (m *MockStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*credential.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credential.User), args.Error(1)
}

func (m *MockStorage) GetUserByEmail(ctx context.Context, email string) (*credential.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credential.User), args.Error(1)
}

func (m *MockStorage) UpdateUser(ctx context.Context, user *credential.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockStorage) SetPasswordHash(ctx context.Context, userID uuid.UUID, hash []byte) error {
	args := m.Called(ctx, userID, hash)
	return args.Error(0)
}

func (m *MockStorage) GetPasswordHash(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStorage) SetVerificationToken(ctx context.Context, rec credential.TokenRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockStorage) GetVerificationToken(ctx context.Context, tokenHash string) (*credential.TokenRecord, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credential.TokenRecord), args.Error(1)
}

func (m *MockStorage) ClearVerificationToken(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockStorage) SetPasswordResetToken(ctx context.Context, rec credential.TokenRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockStorage) GetPasswordResetToken(ctx context.Context, tokenHash string) (*credential.TokenRecord, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credential.TokenRecord), args.Error(1)
}

func (m *MockStorage) ClearPasswordResetToken(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockStorage) CreateRefreshToken(ctx context.Context, rec credential.TokenRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockStorage) ConsumeRefreshToken(ctx context.Context, tokenHash string) (*credential.TokenRecord, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credential.TokenRecord), args.Error(1)
}

func (m *MockStorage) DeleteRefreshToken(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *MockStorage) DeleteUserRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Now()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
