package session

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// Row mirrors the user_sessions row used by the session subsystem.
type Row struct {
	ID               string
	UserID           string
	RefreshTokenHash string
	DeviceInfo       string
	CreatedAt        time.Time
	LastUsedAt       time.Time
}

// Store abstracts persistence for session state.
//
// Implementations must make Rotate atomic with respect to concurrent
// calls for the same oldHash: of two racing rotations exactly one may
// succeed, the other must observe a missing hash.
type Store interface {
	// Create inserts a new session row.
	Create(ctx context.Context, row Row) error

	// Rotate locates the row whose stored hash equals oldHash, checks it
	// belongs to wantUserID, then atomically replaces the stored hash
	// with newHash and bumps last_used_at. Returns the updated row.
	//
	// No matching row -> ErrSessionNotFound (the reuse signal).
	// Row owned by someone else -> ErrSubjectMismatch, nothing written.
	Rotate(ctx context.Context, now time.Time, oldHash, newHash, wantUserID string) (Row, error)

	// DeleteByHash removes the session matching hash.
	// Returns ErrSessionNotFound when nothing matched.
	DeleteByHash(ctx context.Context, hash string) error

	// DeleteByUser removes every session owned by userID (account
	// deletion, logout-everywhere).
	DeleteByUser(ctx context.Context, userID string) error

	// DeleteStale removes sessions whose last_used_at is older than
	// cutoff and reports how many rows went away.
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewSessionID mints a lexically sortable session id.
func NewSessionID() string {
	return ulid.Make().String()
}
