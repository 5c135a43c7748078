package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for dev mode and tests.
// Rotation atomicity is provided by a single mutex over the hash index.
type MemoryStore struct {
	mu     sync.Mutex
	byHash map[string]Row
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byHash: make(map[string]Row)}
}

// Create inserts a new session row.
func (s *MemoryStore) Create(_ context.Context, row Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byHash[row.RefreshTokenHash] = row
	return nil
}

// Rotate replaces the stored hash under the lock; the second of two
// racing calls finds the old hash already gone.
func (s *MemoryStore) Rotate(_ context.Context, now time.Time, oldHash, newHash, wantUserID string) (Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.byHash[oldHash]
	if !ok {
		return Row{}, ErrSessionNotFound
	}
	if row.UserID != wantUserID {
		return Row{}, ErrSubjectMismatch
	}

	delete(s.byHash, oldHash)
	row.RefreshTokenHash = newHash
	row.LastUsedAt = now
	s.byHash[newHash] = row
	return row, nil
}

// DeleteByHash removes the session matching hash.
func (s *MemoryStore) DeleteByHash(_ context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byHash[hash]; !ok {
		return ErrSessionNotFound
	}
	delete(s.byHash, hash)
	return nil
}

// DeleteByUser removes every session owned by userID.
func (s *MemoryStore) DeleteByUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for hash, row := range s.byHash {
		if row.UserID == userID {
			delete(s.byHash, hash)
		}
	}
	return nil
}

// DeleteStale removes sessions unused since before cutoff.
func (s *MemoryStore) DeleteStale(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for hash, row := range s.byHash {
		if row.LastUsedAt.Before(cutoff) {
			delete(s.byHash, hash)
			n++
		}
	}
	return n, nil
}

// Len reports the number of live sessions. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byHash)
}
