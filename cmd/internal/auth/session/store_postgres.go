package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store using PostgreSQL (user_sessions).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed session store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Create inserts a new session row.
func (s *PostgresStore) Create(ctx context.Context, row Row) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_sessions (
			id, user_id, refresh_token_hash, device_info, created_at, last_used_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`, row.ID, row.UserID, row.RefreshTokenHash, row.DeviceInfo, row.CreatedAt, row.LastUsedAt)
	return err
}

// Rotate performs the lookup-and-replace inside a single transaction,
// locking the row so concurrent rotations of the same hash serialize:
// the loser re-runs the lookup after the winner commits and finds no row.
func (s *PostgresStore) Rotate(ctx context.Context, now time.Time, oldHash, newHash, wantUserID string) (Row, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Row{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var row Row
	err = tx.QueryRow(ctx, `
		SELECT id, user_id, refresh_token_hash, device_info, created_at, last_used_at
		FROM user_sessions
		WHERE refresh_token_hash = $1
		FOR UPDATE
	`, oldHash).Scan(
		&row.ID,
		&row.UserID,
		&row.RefreshTokenHash,
		&row.DeviceInfo,
		&row.CreatedAt,
		&row.LastUsedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Row{}, ErrSessionNotFound
	}
	if err != nil {
		return Row{}, err
	}

	if row.UserID != wantUserID {
		return Row{}, ErrSubjectMismatch
	}

	if _, err := tx.Exec(ctx, `
		UPDATE user_sessions
		SET refresh_token_hash = $2,
		    last_used_at = $3
		WHERE id = $1
	`, row.ID, newHash, now); err != nil {
		return Row{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Row{}, err
	}

	row.RefreshTokenHash = newHash
	row.LastUsedAt = now
	return row, nil
}

// DeleteByHash removes the session matching hash.
func (s *PostgresStore) DeleteByHash(ctx context.Context, hash string) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM user_sessions WHERE refresh_token_hash = $1
	`, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteByUser removes every session owned by userID.
func (s *PostgresStore) DeleteByUser(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM user_sessions WHERE user_id = $1
	`, userID)
	return err
}

// DeleteStale removes sessions unused since before cutoff.
func (s *PostgresStore) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM user_sessions WHERE last_used_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
