package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accesskit/pkg/credential"
)

// CredentialStore implements credential.Storage.
type CredentialStore struct {
	mu sync.Mutex

	users   map[uuid.UUID]credential.User
	byEmail map[string]uuid.UUID
	hashes  map[uuid.UUID][]byte

	verification verificationIndex
	reset        verificationIndex

	refresh     map[string]credential.TokenRecord
	userRefresh map[uuid.UUID]map[string]struct{}
}

var _ credential.Storage = (*CredentialStore)(nil)

// verificationIndex keeps at most one token per user.
type verificationIndex struct {
	byToken map[string]credential.TokenRecord
	byUser  map[uuid.UUID]string
}

func newVerificationIndex() verificationIndex {
	return verificationIndex{
		byToken: make(map[string]credential.TokenRecord),
		byUser:  make(map[uuid.UUID]string),
	}
}

func (idx verificationIndex) set(rec credential.TokenRecord) {
	if prev, ok := idx.byUser[rec.UserID]; ok {
		delete(idx.byToken, prev)
	}
	idx.byToken[rec.Token] = rec
	idx.byUser[rec.UserID] = rec.Token
}

func (idx verificationIndex) get(tokenHash string) (*credential.TokenRecord, error) {
	rec, ok := idx.byToken[tokenHash]
	if !ok {
		return nil, credential.ErrTokenNotFound
	}
	return &rec, nil
}

func (idx verificationIndex) clear(userID uuid.UUID) {
	if tok, ok := idx.byUser[userID]; ok {
		delete(idx.byToken, tok)
		delete(idx.byUser, userID)
	}
}

// NewCredentialStore creates an empty store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		users:        make(map[uuid.UUID]credential.User),
		byEmail:      make(map[string]uuid.UUID),
		hashes:       make(map[uuid.UUID][]byte),
		verification: newVerificationIndex(),
		reset:        newVerificationIndex(),
		refresh:      make(map[string]credential.TokenRecord),
		userRefresh:  make(map[uuid.UUID]map[string]struct{}),
	}
}

func (s *CredentialStore) CreateUser(_ context.Context, user *credential.User, passwordHash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[user.Email]; ok {
		return credential.ErrEmailAlreadyExists
	}
	s.users[user.ID] = *user
	s.byEmail[user.Email] = user.ID
	if passwordHash != nil {
		s.hashes[user.ID] = slices.Clone(passwordHash)
	}
	return nil
}

func (s *CredentialStore) GetUserByID(_ context.Context, id uuid.UUID) (*credential.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, credential.ErrUserNotFound
	}
	return &u, nil
}

func (s *CredentialStore) GetUserByEmail(_ context.Context, email string) (*credential.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, credential.ErrUserNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (s *CredentialStore) UpdateUser(_ context.Context, user *credential.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.users[user.ID]
	if !ok {
		return credential.ErrUserNotFound
	}
	if prev.Email != user.Email {
		if _, taken := s.byEmail[user.Email]; taken {
			return credential.ErrEmailAlreadyExists
		}
		delete(s.byEmail, prev.Email)
		s.byEmail[user.Email] = user.ID
	}
	s.users[user.ID] = *user
	return nil
}

func (s *CredentialStore) SetPasswordHash(_ context.Context, userID uuid.UUID, hash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return credential.ErrUserNotFound
	}
	s.hashes[userID] = slices.Clone(hash)
	return nil
}

func (s *CredentialStore) GetPasswordHash(_ context.Context, userID uuid.UUID) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.hashes[userID]
	if !ok {
		return nil, credential.ErrUserNotFound
	}
	return slices.Clone(h), nil
}

func (s *CredentialStore) SetVerificationToken(_ context.Context, rec credential.TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verification.set(rec)
	return nil
}

func (s *CredentialStore) GetVerificationToken(_ context.Context, tokenHash string) (*credential.TokenRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verification.get(tokenHash)
}

func (s *CredentialStore) ClearVerificationToken(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verification.clear(userID)
	return nil
}

func (s *CredentialStore) SetPasswordResetToken(_ context.Context, rec credential.TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset.set(rec)
	return nil
}

func (s *CredentialStore) GetPasswordResetToken(_ context.Context, tokenHash string) (*credential.TokenRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reset.get(tokenHash)
}

func (s *CredentialStore) ClearPasswordResetToken(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset.clear(userID)
	return nil
}

func (s *CredentialStore) CreateRefreshToken(_ context.Context, rec credential.TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refresh[rec.Token] = rec
	set, ok := s.userRefresh[rec.UserID]
	if !ok {
		set = make(map[string]struct{})
		s.userRefresh[rec.UserID] = set
	}
	set[rec.Token] = struct{}{}
	return nil
}

func (s *CredentialStore) ConsumeRefreshToken(_ context.Context, tokenHash string) (*credential.TokenRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.refresh[tokenHash]
	if !ok {
		return nil, credential.ErrTokenNotFound
	}
	s.deleteRefreshLocked(rec)
	return &rec, nil
}

func (s *CredentialStore) DeleteRefreshToken(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.refresh[tokenHash]; ok {
		s.deleteRefreshLocked(rec)
	}
	return nil
}

func (s *CredentialStore) DeleteUserRefreshTokens(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for tok := range s.userRefresh[userID] {
		delete(s.refresh, tok)
	}
	delete(s.userRefresh, userID)
	return nil
}

func (s *CredentialStore) deleteRefreshLocked(rec credential.TokenRecord) {
	delete(s.refresh, rec.Token)
	if set, ok := s.userRefresh[rec.UserID]; ok {
		delete(set, rec.Token)
		if len(set) == 0 {
			delete(s.userRefresh, rec.UserID)
		}
	}
}
