package identity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStore_CreateAndLookup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStore()

	u := User{
		ID:           NewUserID(),
		Email:        NormalizeEmail("  A@X.com "),
		PasswordHash: "$2a$04$fakefakefakefakefakefakefakefakefakefakefakefakefak",
		Nickname:     "alice",
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.GetByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("id mismatch: got %q want %q", got.ID, u.ID)
	}

	if err := s.Create(ctx, User{ID: NewUserID(), Email: "a@x.com"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestMemoryStore_UpdateProfile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStore()
	u := User{ID: "u1", Email: "a@x.com", Nickname: "alice"}
	if err := s.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}

	nick := "bob"
	got, err := s.UpdateProfile(ctx, "u1", &nick, nil)
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if got.Nickname != "bob" {
		t.Fatalf("nickname not applied: %q", got.Nickname)
	}
	if got.ProfileImg != nil {
		t.Fatalf("profile_img must stay nil")
	}

	if _, err := s.UpdateProfile(ctx, "missing", &nick, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStore()
	if err := s.Create(ctx, User{ID: "u1", Email: "a@x.com"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Delete(ctx, "u1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.GetByID(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	// Email is released for re-registration.
	if err := s.Create(ctx, User{ID: "u2", Email: "a@x.com"}); err != nil {
		t.Fatalf("re-Create: %v", err)
	}
}
