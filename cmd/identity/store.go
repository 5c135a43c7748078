package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Public, stable errors for callers.
var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// User is a user account row.
//
// PasswordHash is the stored credential. It is never logged, never
// serialized into a response, and only ever compared through the
// password package's constant-time verify.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Nickname     string
	ProfileImg   *string
	CreatedAt    time.Time
}

// Store abstracts user persistence.
type Store interface {
	// Create inserts a new user. Returns ErrEmailTaken if the
	// (normalized) email is already registered.
	Create(ctx context.Context, u User) error

	// GetByEmail loads a user by normalized email.
	GetByEmail(ctx context.Context, email string) (User, error)

	// GetByID loads a user by id.
	GetByID(ctx context.Context, id string) (User, error)

	// UpdateProfile applies the non-nil fields and returns the updated row.
	UpdateProfile(ctx context.Context, id string, nickname, profileImg *string) (User, error)

	// UpdatePassword replaces the stored credential hash.
	UpdatePassword(ctx context.Context, id string, passwordHash string) error

	// Delete removes the account. Authored posts and comments survive
	// with a null author.
	Delete(ctx context.Context, id string) error
}

// NewUserID mints an opaque user id.
func NewUserID() string {
	return uuid.NewString()
}
