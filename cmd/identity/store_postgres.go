package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store using PostgreSQL (users).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed user store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("identity: nil pool")
	}
	return &PostgresStore{pool: pool}, nil
}

const pgUniqueViolation = "23505"

// Create inserts a new user row.
func (s *PostgresStore) Create(ctx context.Context, u User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, nickname, profile_img, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.Email, u.PasswordHash, u.Nickname, u.ProfileImg, u.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrEmailTaken
	}
	return err
}

// GetByEmail loads a user by normalized email.
func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.get(ctx, `
		SELECT id, email, password_hash, nickname, profile_img, created_at
		FROM users
		WHERE email = $1
	`, email)
}

// GetByID loads a user by id.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (User, error) {
	return s.get(ctx, `
		SELECT id, email, password_hash, nickname, profile_img, created_at
		FROM users
		WHERE id = $1
	`, id)
}

func (s *PostgresStore) get(ctx context.Context, query, arg string) (User, error) {
	var u User

	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Nickname,
		&u.ProfileImg,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}

	return u, nil
}

// UpdateProfile applies the non-nil fields and returns the updated row.
// Mutable columns are fixed here; nothing from the request reaches the
// statement text.
func (s *PostgresStore) UpdateProfile(ctx context.Context, id string, nickname, profileImg *string) (User, error) {
	var u User

	err := s.pool.QueryRow(ctx, `
		UPDATE users
		SET nickname    = COALESCE($2, nickname),
		    profile_img = COALESCE($3, profile_img)
		WHERE id = $1
		RETURNING id, email, password_hash, nickname, profile_img, created_at
	`, id, nickname, profileImg).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Nickname,
		&u.ProfileImg,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}

	return u, nil
}

// UpdatePassword replaces the stored credential hash.
func (s *PostgresStore) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET password_hash = $2 WHERE id = $1
	`, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the account. Sessions cascade; posts and comments keep
// a null author (schema ON DELETE SET NULL).
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
