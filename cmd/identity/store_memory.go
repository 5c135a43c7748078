package identity

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for dev mode and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]User
	byEmail map[string]string // email -> id
}

// NewMemoryStore creates an empty in-memory user store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]User),
		byEmail: make(map[string]string),
	}
}

// Create inserts a new user.
func (s *MemoryStore) Create(_ context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[u.Email]; ok {
		return ErrEmailTaken
	}
	s.byID[u.ID] = u
	s.byEmail[u.Email] = u.ID
	return nil
}

// GetByEmail loads a user by normalized email.
func (s *MemoryStore) GetByEmail(_ context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return User{}, ErrNotFound
	}
	return s.byID[id], nil
}

// GetByID loads a user by id.
func (s *MemoryStore) GetByID(_ context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

// UpdateProfile applies the non-nil fields and returns the updated row.
func (s *MemoryStore) UpdateProfile(_ context.Context, id string, nickname, profileImg *string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	if nickname != nil {
		u.Nickname = *nickname
	}
	if profileImg != nil {
		img := *profileImg
		u.ProfileImg = &img
	}
	s.byID[id] = u
	return u, nil
}

// UpdatePassword replaces the stored credential hash.
func (s *MemoryStore) UpdatePassword(_ context.Context, id string, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	s.byID[id] = u
	return nil
}

// Delete removes the account.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.byEmail, u.Email)
	delete(s.byID, id)
	return nil
}
