package credential_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/accesskit/pkg/apperr"
	"github.com/dmitrymomot/accesskit/pkg/credential"
	"github.com/dmitrymomot/accesskit/pkg/jwt"
	"github.com/dmitrymomot/accesskit/pkg/store/memory"
)

const (
	testSecret   = "test-signing-key-with-at-least-32-bytes!"
	testPassword = "securePassword123"
	baseURL      = "https://app.test"

	sendVerification = "SendVerificationEmail"
	sendReset        = "SendPasswordResetEmail"
)

type fixture struct {
	mgr    credential.Manager
	store  *memory.CredentialStore
	sender *MockEmailSender
	clock  *fakeClock
	issuer *jwt.Service
}

func newFixture(t *testing.T, opts ...credential.Option) *fixture {
	t.Helper()

	issuer, err := jwt.NewFromString(testSecret, jwt.WithIssuer("accesskit-test"))
	require.NoError(t, err)

	f := &fixture{
		store:  memory.NewCredentialStore(),
		sender: &MockEmailSender{},
		clock:  newFakeClock(),
		issuer: issuer,
	}
	f.sender.On(sendVerification, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.sender.On(sendReset, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	base := []credential.Option{
		credential.WithBcryptCost(bcrypt.MinCost),
		credential.WithBaseURL(baseURL),
		credential.WithClock(f.clock.Now),
	}
	f.mgr = credential.NewService(f.store, f.store, issuer, f.sender, append(base, opts...)...)
	return f
}

func (f *fixture) register(t *testing.T, email string) *credential.AuthResult {
	t.Helper()
	res, err := f.mgr.Register(context.Background(), email, testPassword)
	require.NoError(t, err)
	return res
}

func TestNewService(t *testing.T) {
	t.Parallel()

	issuer, err := jwt.NewFromString(testSecret)
	require.NoError(t, err)
	store := memory.NewCredentialStore()
	sender := &MockEmailSender{}

	assert.Panics(t, func() { credential.NewService(nil, store, issuer, sender) })
	assert.Panics(t, func() { credential.NewService(store, nil, issuer, sender) })
	assert.Panics(t, func() { credential.NewService(store, store, nil, sender) })
	assert.Panics(t, func() { credential.NewService(store, store, issuer, nil) })
	assert.NotPanics(t, func() { credential.NewService(store, store, issuer, sender) })
}

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("normalizes email and creates unverified user", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()

		res, err := f.mgr.Register(ctx, "  Test@Example.com ", testPassword)
		require.NoError(t, err)
		require.NotNil(t, res.User)
		assert.Equal(t, "test@example.com", res.User.Email)
		assert.False(t, res.User.EmailVerified)
		assert.NotEmpty(t, res.AccessToken)
		assert.NotEmpty(t, res.RefreshToken)
		assert.Equal(t, int64(3600), res.ExpiresIn)

		stored, err := f.store.GetUserByEmail(ctx, "test@example.com")
		require.NoError(t, err)
		assert.Equal(t, res.User.ID, stored.ID)
	})

	t.Run("stores a slow hash instead of the password", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		res := f.register(t, "hash@example.com")

		hash, err := f.store.GetPasswordHash(context.Background(), res.User.ID)
		require.NoError(t, err)
		assert.NotEqual(t, testPassword, string(hash))
		assert.Greater(t, len(hash), len(testPassword))
		assert.NoError(t, bcrypt.CompareHashAndPassword(hash, []byte(testPassword)))
	})

	t.Run("uses cost 10 by default", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, credential.WithBcryptCost(credential.DefaultBcryptCost))
		res := f.register(t, "cost@example.com")

		hash, err := f.store.GetPasswordHash(context.Background(), res.User.ID)
		require.NoError(t, err)
		cost, err := bcrypt.Cost(hash)
		require.NoError(t, err)
		assert.Equal(t, 10, cost)
	})

	t.Run("sends verification link", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.register(t, "link@example.com")

		tok := f.sender.lastToken(sendVerification)
		require.NotEmpty(t, tok)
		assert.Equal(t, baseURL+"/verify-email?token="+tok, f.sender.lastURL(sendVerification))
		f.sender.AssertCalled(t, sendVerification, mock.Anything, "link@example.com", tok, mock.Anything)
	})

	t.Run("access token carries user id", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		res := f.register(t, "claims@example.com")

		v := f.mgr.ValidateToken(context.Background(), res.AccessToken)
		assert.True(t, v.Valid)
		assert.Equal(t, res.User.ID, v.UserID)
	})

	t.Run("rejects duplicate normalized email", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.register(t, "dup@example.com")

		_, err := f.mgr.Register(context.Background(), "DUP@example.com ", "anotherPassword1")
		require.ErrorIs(t, err, credential.ErrEmailAlreadyExists)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		for _, email := range []string{"", "not-an-email", "a@", "@b.com"} {
			_, err := f.mgr.Register(context.Background(), email, testPassword)
			require.ErrorIs(t, err, credential.ErrInvalidEmail, email)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Equal(t, "auth.invalid_email", apperr.CodeOf(err))
		}
	})

	t.Run("rejects weak password", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		for _, pw := range []string{"", "short", "1234567", strings.Repeat("x", 73)} {
			_, err := f.mgr.Register(context.Background(), "weak@example.com", pw)
			require.ErrorIs(t, err, credential.ErrWeakPassword)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		}
		f.sender.AssertNotCalled(t, sendVerification, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("respects custom minimum length", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, credential.WithMinPasswordLength(20))

		_, err := f.mgr.Register(context.Background(), "min@example.com", testPassword)
		assert.ErrorIs(t, err, credential.ErrWeakPassword)
	})

	t.Run("email failure does not fail registration", func(t *testing.T) {
		t.Parallel()
		issuer, err := jwt.NewFromString(testSecret)
		require.NoError(t, err)
		store := memory.NewCredentialStore()
		sender := &MockEmailSender{}
		sender.On(sendVerification, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("smtp down"))

		mgr := credential.NewService(store, store, issuer, sender, credential.WithBcryptCost(bcrypt.MinCost))
		res, err := mgr.Register(context.Background(), "mailfail@example.com", testPassword)
		require.NoError(t, err)
		assert.NotNil(t, res.User)
		sender.AssertExpectations(t)
	})

	t.Run("user and password hash are written together", func(t *testing.T) {
		t.Parallel()
		issuer, err := jwt.NewFromString(testSecret)
		require.NoError(t, err)
		storage := &MockStorage{}
		storage.On("GetUserByEmail", mock.Anything, "atomic@example.com").Return(nil, credential.ErrUserNotFound)
		storage.On("CreateUser", mock.Anything, mock.Anything, mock.MatchedBy(func(hash []byte) bool {
			return bcrypt.CompareHashAndPassword(hash, []byte(testPassword)) == nil
		})).Return(nil).Once()
		storage.On("SetVerificationToken", mock.Anything, mock.Anything).Return(nil)
		storage.On("CreateRefreshToken", mock.Anything, mock.Anything).Return(nil)
		sender := &MockEmailSender{}
		sender.On(sendVerification, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		mgr := credential.NewService(storage, storage, issuer, sender, credential.WithBcryptCost(bcrypt.MinCost))
		_, err = mgr.Register(context.Background(), "atomic@example.com", testPassword)
		require.NoError(t, err)
		storage.AssertExpectations(t)
		storage.AssertNotCalled(t, "SetPasswordHash", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failed insert leaves the email free", func(t *testing.T) {
		t.Parallel()
		issuer, err := jwt.NewFromString(testSecret)
		require.NoError(t, err)
		storage := &MockStorage{}
		storage.On("GetUserByEmail", mock.Anything, "retry@example.com").Return(nil, credential.ErrUserNotFound)
		storage.On("CreateUser", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection reset")).Once()

		mgr := credential.NewService(storage, storage, issuer, &MockEmailSender{}, credential.WithBcryptCost(bcrypt.MinCost))
		_, err = mgr.Register(context.Background(), "retry@example.com", testPassword)
		require.Error(t, err)
		assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
		storage.AssertNotCalled(t, "SetVerificationToken", mock.Anything, mock.Anything)
		storage.AssertNotCalled(t, "CreateRefreshToken", mock.Anything, mock.Anything)
	})

	t.Run("storage failure is internal", func(t *testing.T) {
		t.Parallel()
		issuer, err := jwt.NewFromString(testSecret)
		require.NoError(t, err)
		storage := &MockStorage{}
		storage.On("GetUserByEmail", mock.Anything, "db@example.com").Return(nil, errors.New("connection refused"))

		mgr := credential.NewService(storage, storage, issuer, &MockEmailSender{})
		_, err = mgr.Register(context.Background(), "db@example.com", testPassword)
		require.Error(t, err)
		assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
		storage.AssertExpectations(t)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("succeeds with differently cased email", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		reg := f.register(t, "Test@Example.com")

		res, err := f.mgr.Login(context.Background(), "TEST@EXAMPLE.COM", testPassword)
		require.NoError(t, err)
		assert.Equal(t, reg.User.ID, res.User.ID)
		assert.NotEqual(t, reg.RefreshToken, res.RefreshToken)
	})

	t.Run("same error for unknown user and wrong password", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.register(t, "known@example.com")

		_, errUnknown := f.mgr.Login(context.Background(), "unknown@example.com", testPassword)
		_, errWrong := f.mgr.Login(context.Background(), "known@example.com", "wrongPassword1")

		require.ErrorIs(t, errUnknown, credential.ErrInvalidCredentials)
		require.ErrorIs(t, errWrong, credential.ErrInvalidCredentials)
		assert.Equal(t, errUnknown.Error(), errWrong.Error())
		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(errWrong))
	})

	t.Run("unknown user pays for a password comparison", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, credential.WithBcryptCost(bcrypt.MinCost+1))

		dummy := credential.DummyHash(f.mgr)
		cost, err := bcrypt.Cost(dummy)
		require.NoError(t, err)
		assert.Equal(t, bcrypt.MinCost+1, cost)
		assert.Error(t, bcrypt.CompareHashAndPassword(dummy, []byte(testPassword)))

		_, err = f.mgr.Login(context.Background(), "nobody@example.com", testPassword)
		assert.ErrorIs(t, err, credential.ErrInvalidCredentials)
	})

	t.Run("missing password hash is invalid credentials", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		user := &credential.User{ID: uuid.New(), Email: "nohash@example.com"}
		require.NoError(t, f.store.CreateUser(context.Background(), user, nil))

		_, err := f.mgr.Login(context.Background(), "nohash@example.com", testPassword)
		assert.ErrorIs(t, err, credential.ErrInvalidCredentials)
	})

	t.Run("requires verified email when configured", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, credential.WithRequireEmailVerification(true))
		f.register(t, "verify@example.com")

		_, err := f.mgr.Login(context.Background(), "verify@example.com", testPassword)
		require.ErrorIs(t, err, credential.ErrEmailNotVerified)
		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

		_, err = f.mgr.VerifyEmail(context.Background(), f.sender.lastToken(sendVerification))
		require.NoError(t, err)

		_, err = f.mgr.Login(context.Background(), "verify@example.com", testPassword)
		assert.NoError(t, err)
	})

	t.Run("wrong password still rejected before verification check", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, credential.WithRequireEmailVerification(true))
		f.register(t, "order@example.com")

		_, err := f.mgr.Login(context.Background(), "order@example.com", "wrongPassword1")
		assert.ErrorIs(t, err, credential.ErrInvalidCredentials)
	})
}

func TestVerifyEmail(t *testing.T) {
	t.Parallel()

	t.Run("flips verified exactly once", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()
		reg := f.register(t, "once@example.com")
		tok := f.sender.lastToken(sendVerification)

		user, err := f.mgr.VerifyEmail(ctx, tok)
		require.NoError(t, err)
		assert.True(t, user.EmailVerified)
		assert.Equal(t, reg.User.ID, user.ID)

		stored, err := f.store.GetUserByID(ctx, reg.User.ID)
		require.NoError(t, err)
		assert.True(t, stored.EmailVerified)

		_, err = f.mgr.VerifyEmail(ctx, tok)
		assert.ErrorIs(t, err, credential.ErrInvalidToken)
	})

	t.Run("expired and unknown tokens look the same", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.register(t, "expired@example.com")
		tok := f.sender.lastToken(sendVerification)

		f.clock.Advance(credential.DefaultVerificationTokenTTL + time.Second)

		_, errExpired := f.mgr.VerifyEmail(context.Background(), tok)
		_, errUnknown := f.mgr.VerifyEmail(context.Background(), "does-not-exist")
		_, errEmpty := f.mgr.VerifyEmail(context.Background(), "")

		assert.ErrorIs(t, errExpired, credential.ErrInvalidToken)
		assert.ErrorIs(t, errUnknown, credential.ErrInvalidToken)
		assert.ErrorIs(t, errEmpty, credential.ErrInvalidToken)
	})
}

func TestResendVerificationEmail(t *testing.T) {
	t.Parallel()

	t.Run("invalidates previous token", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()
		f.register(t, "resend@example.com")
		oldTok := f.sender.lastToken(sendVerification)

		require.NoError(t, f.mgr.ResendVerificationEmail(ctx, "Resend@Example.com"))
		newTok := f.sender.lastToken(sendVerification)
		require.NotEqual(t, oldTok, newTok)

		_, err := f.mgr.VerifyEmail(ctx, oldTok)
		assert.ErrorIs(t, err, credential.ErrInvalidToken)

		user, err := f.mgr.VerifyEmail(ctx, newTok)
		require.NoError(t, err)
		assert.True(t, user.EmailVerified)
	})

	t.Run("unknown email is silent", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		assert.NoError(t, f.mgr.ResendVerificationEmail(context.Background(), "ghost@example.com"))
		f.sender.AssertNotCalled(t, sendVerification, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("verified account is rejected", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()
		f.register(t, "done@example.com")
		_, err := f.mgr.VerifyEmail(ctx, f.sender.lastToken(sendVerification))
		require.NoError(t, err)

		err = f.mgr.ResendVerificationEmail(ctx, "done@example.com")
		require.ErrorIs(t, err, credential.ErrEmailAlreadyVerified)
		assert.Equal(t, "auth.email_already_verified", apperr.CodeOf(err))
		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	})
}

func TestPasswordReset(t *testing.T) {
	t.Parallel()

	t.Run("unknown email is silent and sends nothing", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		err := f.mgr.RequestPasswordReset(context.Background(), "nonexistent@example.com")
		require.NoError(t, err)
		f.sender.AssertNotCalled(t, sendReset, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reset replaces password and revokes sessions", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()
		reg := f.register(t, "reset@example.com")

		require.NoError(t, f.mgr.RequestPasswordReset(ctx, "RESET@example.com"))
		tok := f.sender.lastToken(sendReset)
		require.NotEmpty(t, tok)
		assert.Equal(t, baseURL+"/reset-password?token="+tok, f.sender.lastURL(sendReset))

		require.NoError(t, f.mgr.ResetPassword(ctx, tok, "brandNewPassword1"))

		_, err := f.mgr.Login(ctx, "reset@example.com", testPassword)
		assert.ErrorIs(t, err, credential.ErrInvalidCredentials)
		_, err = f.mgr.Login(ctx, "reset@example.com", "brandNewPassword1")
		assert.NoError(t, err)

		_, err = f.mgr.RefreshAccessToken(ctx, reg.RefreshToken)
		assert.ErrorIs(t, err, credential.ErrInvalidToken)

		err = f.mgr.ResetPassword(ctx, tok, "anotherPassword1")
		assert.ErrorIs(t, err, credential.ErrInvalidToken)
	})

	t.Run("new request invalidates previous token", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()
		f.register(t, "twice@example.com")

		require.NoError(t, f.mgr.RequestPasswordReset(ctx, "twice@example.com"))
		first := f.sender.lastToken(sendReset)
		require.NoError(t, f.mgr.RequestPasswordReset(ctx, "twice@example.com"))
		second := f.sender.lastToken(sendReset)

		assert.ErrorIs(t, f.mgr.ResetPassword(ctx, first, "brandNewPassword1"), credential.ErrInvalidToken)
		assert.NoError(t, f.mgr.ResetPassword(ctx, second, "brandNewPassword1"))
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()
		f.register(t, "late@example.com")
		require.NoError(t, f.mgr.RequestPasswordReset(ctx, "late@example.com"))
		tok := f.sender.lastToken(sendReset)

		f.clock.Advance(credential.DefaultPasswordResetTTL + time.Second)

		assert.ErrorIs(t, f.mgr.ResetPassword(ctx, tok, "brandNewPassword1"), credential.ErrInvalidToken)
	})

	t.Run("weak new password is rejected first", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		assert.ErrorIs(t, f.mgr.ResetPassword(context.Background(), "whatever", "short"), credential.ErrWeakPassword)
	})
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	t.Run("requires current password", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()
		reg := f.register(t, "change@example.com")

		err := f.mgr.ChangePassword(ctx, reg.User.ID, "wrongPassword1", "brandNewPassword1")
		assert.ErrorIs(t, err, credential.ErrInvalidCredentials)

		require.NoError(t, f.mgr.ChangePassword(ctx, reg.User.ID, testPassword, "brandNewPassword1"))
		_, err = f.mgr.Login(ctx, "change@example.com", "brandNewPassword1")
		assert.NoError(t, err)
	})

	t.Run("validates new password strength", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		reg := f.register(t, "strength@example.com")

		err := f.mgr.ChangePassword(context.Background(), reg.User.ID, testPassword, "short")
		assert.ErrorIs(t, err, credential.ErrWeakPassword)
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		err := f.mgr.ChangePassword(context.Background(), uuid.New(), testPassword, "brandNewPassword1")
		require.ErrorIs(t, err, credential.ErrUserNotFound)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestRefreshAccessToken(t *testing.T) {
	t.Parallel()

	t.Run("rotates the refresh token", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()
		reg := f.register(t, "rotate@example.com")

		pair, err := f.mgr.RefreshAccessToken(ctx, reg.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, reg.RefreshToken, pair.RefreshToken)
		assert.True(t, f.mgr.ValidateToken(ctx, pair.AccessToken).Valid)

		_, err = f.mgr.RefreshAccessToken(ctx, reg.RefreshToken)
		require.ErrorIs(t, err, credential.ErrInvalidToken)
		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

		next, err := f.mgr.RefreshAccessToken(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)
	})

	t.Run("concurrent redemption has one winner", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		reg := f.register(t, "race@example.com")

		const workers = 16
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			failures  int
		)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.mgr.RefreshAccessToken(context.Background(), reg.RefreshToken)
				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					successes++
				} else if errors.Is(err, credential.ErrInvalidToken) {
					failures++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, successes)
		assert.Equal(t, workers-1, failures)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		reg := f.register(t, "old@example.com")

		f.clock.Advance(credential.DefaultRefreshTokenTTL + time.Second)

		_, err := f.mgr.RefreshAccessToken(context.Background(), reg.RefreshToken)
		assert.ErrorIs(t, err, credential.ErrInvalidToken)
	})

	t.Run("unknown and empty tokens", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.mgr.RefreshAccessToken(context.Background(), "nope")
		assert.ErrorIs(t, err, credential.ErrInvalidToken)
		_, err = f.mgr.RefreshAccessToken(context.Background(), "")
		assert.ErrorIs(t, err, credential.ErrInvalidToken)
	})
}

func TestRevokeRefreshTokens(t *testing.T) {
	t.Parallel()

	t.Run("revoke one", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()
		reg := f.register(t, "logout@example.com")
		login, err := f.mgr.Login(ctx, "logout@example.com", testPassword)
		require.NoError(t, err)

		require.NoError(t, f.mgr.RevokeRefreshToken(ctx, reg.RefreshToken))
		require.NoError(t, f.mgr.RevokeRefreshToken(ctx, reg.RefreshToken))

		_, err = f.mgr.RefreshAccessToken(ctx, reg.RefreshToken)
		assert.ErrorIs(t, err, credential.ErrInvalidToken)
		_, err = f.mgr.RefreshAccessToken(ctx, login.RefreshToken)
		assert.NoError(t, err)
	})

	t.Run("revoke all", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()
		reg := f.register(t, "everywhere@example.com")
		login, err := f.mgr.Login(ctx, "everywhere@example.com", testPassword)
		require.NoError(t, err)
		other := f.register(t, "bystander@example.com")

		require.NoError(t, f.mgr.RevokeAllRefreshTokens(ctx, reg.User.ID))

		_, err = f.mgr.RefreshAccessToken(ctx, reg.RefreshToken)
		assert.ErrorIs(t, err, credential.ErrInvalidToken)
		_, err = f.mgr.RefreshAccessToken(ctx, login.RefreshToken)
		assert.ErrorIs(t, err, credential.ErrInvalidToken)
		_, err = f.mgr.RefreshAccessToken(ctx, other.RefreshToken)
		assert.NoError(t, err)
	})
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	reg := f.register(t, "validate@example.com")

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, credential.TokenValidation{}, f.mgr.ValidateToken(ctx, "not.a.jwt"))
		assert.False(t, f.mgr.ValidateToken(ctx, "").Valid)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		t.Parallel()
		assert.False(t, f.mgr.ValidateToken(ctx, reg.RefreshToken).Valid)
	})

	t.Run("foreign signature", func(t *testing.T) {
		t.Parallel()
		other, err := jwt.NewFromString("another-signing-key-of-sufficient-len", jwt.WithIssuer("accesskit-test"))
		require.NoError(t, err)
		forged, err := other.Generate(jwt.Claims{
			credential.ClaimUserID: reg.User.ID.String(),
			jwt.ClaimExpiresAt:     time.Now().Add(time.Hour).Unix(),
		})
		require.NoError(t, err)
		assert.False(t, f.mgr.ValidateToken(ctx, forged).Valid)
	})

	t.Run("token without user id", func(t *testing.T) {
		t.Parallel()
		tok, err := f.issuer.Generate(jwt.Claims{jwt.ClaimExpiresAt: time.Now().Add(time.Hour).Unix()})
		require.NoError(t, err)
		assert.False(t, f.mgr.ValidateToken(ctx, tok).Valid)
	})

	t.Run("expired access token", func(t *testing.T) {
		t.Parallel()
		tok, err := f.issuer.Generate(jwt.Claims{
			credential.ClaimUserID: reg.User.ID.String(),
			jwt.ClaimExpiresAt:     time.Now().Add(-time.Minute).Unix(),
		})
		require.NoError(t, err)
		assert.False(t, f.mgr.ValidateToken(ctx, tok).Valid)
	})
}

func TestGetUserFromToken(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	reg := f.register(t, "me@example.com")

	user, err := f.mgr.GetUserFromToken(ctx, reg.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, user.ID)

	_, err = f.mgr.GetUserFromToken(ctx, "bad")
	assert.ErrorIs(t, err, credential.ErrInvalidToken)

	orphan, err := f.issuer.Generate(jwt.Claims{
		credential.ClaimUserID: uuid.NewString(),
		jwt.ClaimExpiresAt:     time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)
	_, err = f.mgr.GetUserFromToken(ctx, orphan)
	assert.ErrorIs(t, err, credential.ErrInvalidToken)
}

func TestClaimsProvider(t *testing.T) {
	t.Parallel()

	t.Run("merges custom claims without overriding reserved ones", func(t *testing.T) {
		t.Parallel()
		provider := credential.ClaimsProviderFunc(func(_ context.Context, _ uuid.UUID) (map[string]any, error) {
			return map[string]any{
				"tier":                 "pro",
				credential.ClaimUserID: "attacker",
				jwt.ClaimSubject:       "attacker",
			}, nil
		})
		f := newFixture(t, credential.WithClaimsProvider(provider))
		reg := f.register(t, "claims@example.com")

		claims, err := f.issuer.Parse(reg.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "pro", claims["tier"])
		assert.Equal(t, reg.User.ID.String(), claims[credential.ClaimUserID])
		assert.Equal(t, reg.User.ID.String(), claims[jwt.ClaimSubject])
		jti, ok := claims.String(jwt.ClaimID)
		require.True(t, ok)
		assert.NotEmpty(t, jti)
	})

	t.Run("provider error fails issuance", func(t *testing.T) {
		t.Parallel()
		provider := credential.ClaimsProviderFunc(func(context.Context, uuid.UUID) (map[string]any, error) {
			return nil, errors.New("claims backend down")
		})
		f := newFixture(t, credential.WithClaimsProvider(provider))

		_, err := f.mgr.Register(context.Background(), "fail@example.com", testPassword)
		assert.Error(t, err)
	})
}

func TestWithConfig(t *testing.T) {
	t.Parallel()

	f := newFixture(t, credential.WithConfig(credential.Config{
		BaseURL:               "https://cfg.test/",
		MinPasswordLength:     10,
		BcryptCost:            bcrypt.MinCost,
		AccessTokenTTL:        "15m",
		VerificationTokenTTL:  "bogus",
		PasswordResetTokenTTL: "2h",
		RefreshTokenTTL:       "7d",
	}))

	_, err := f.mgr.Register(context.Background(), "cfg@example.com", "nineChars")
	assert.ErrorIs(t, err, credential.ErrWeakPassword)

	res, err := f.mgr.Register(context.Background(), "cfg@example.com", "tenCharsOK")
	require.NoError(t, err)
	assert.Equal(t, int64(900), res.ExpiresIn)
	assert.True(t, strings.HasPrefix(f.sender.lastURL(sendVerification), "https://cfg.test/verify-email?token="))

	// "bogus" falls back to the 24h default.
	f.clock.Advance(23 * time.Hour)
	_, err = f.mgr.VerifyEmail(context.Background(), f.sender.lastToken(sendVerification))
	assert.NoError(t, err)
}
