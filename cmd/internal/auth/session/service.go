package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"plume/cmd/security/token"
)

// TokenManager is the signing surface the session service needs.
// *token.Manager satisfies it; tests substitute doubles.
type TokenManager interface {
	IssueAccess(subject string, now time.Time) (string, time.Time, error)
	IssueRefresh(subject string, now time.Time) (string, time.Time, error)
	Decode(tokenStr string, want token.Type) (token.Claims, error)
	RefreshTTL() time.Duration
}

// Service implements the high-level session operations for plume.
//
// It starts sessions at login, performs refresh rotation with reuse
// detection, ends sessions at logout, and sweeps stale rows.
type Service struct {
	log    *slog.Logger
	tokens TokenManager
	store  Store
}

// Issued is the result of starting or rotating a session.
type Issued struct {
	SessionID    string
	AccessToken  string
	AccessExp    time.Time
	RefreshToken string
	RefreshExp   time.Time
}

// NewService constructs a Service.
func NewService(log *slog.Logger, tokens TokenManager, store Store) (*Service, error) {
	if tokens == nil || store == nil {
		return nil, fmt.Errorf("%w: nil dependency", ErrConfig)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{log: log, tokens: tokens, store: store}, nil
}

// IssueSession starts a new session for userID and returns a fresh token
// pair. Multiple concurrent sessions per user are permitted, one per
// device/login.
func (s *Service) IssueSession(ctx context.Context, now time.Time, userID, deviceInfo string) (Issued, error) {
	refreshPlain, refreshExp, err := s.tokens.IssueRefresh(userID, now)
	if err != nil {
		return Issued{}, fmt.Errorf("issue refresh token: %w", err)
	}

	row := Row{
		ID:               NewSessionID(),
		UserID:           userID,
		RefreshTokenHash: token.HashRefreshTokenHex(refreshPlain),
		DeviceInfo:       deviceInfo,
		CreatedAt:        now,
		LastUsedAt:       now,
	}
	if err := s.store.Create(ctx, row); err != nil {
		return Issued{}, fmt.Errorf("create session: %w", err)
	}

	accessToken, accessExp, err := s.tokens.IssueAccess(userID, now)
	if err != nil {
		return Issued{}, fmt.Errorf("issue access token: %w", err)
	}

	return Issued{
		SessionID:    row.ID,
		AccessToken:  accessToken,
		AccessExp:    accessExp,
		RefreshToken: refreshPlain,
		RefreshExp:   refreshExp,
	}, nil
}

// RotateRefresh performs strict rotate-on-use refresh.
//
// The presented token must decode as typ=refresh and its hash must match
// exactly one session row. The store swaps the hash atomically, so of two
// racing refreshes with the same token only one wins; the other observes
// a missing hash and fails with ErrRefreshReuseDetected.
func (s *Service) RotateRefresh(ctx context.Context, now time.Time, refreshTokenPlain string) (Issued, error) {
	refreshTokenPlain = strings.TrimSpace(refreshTokenPlain)
	// Basic sanity bounds to avoid pathological inputs.
	if refreshTokenPlain == "" || len(refreshTokenPlain) > 4096 {
		return Issued{}, token.ErrTokenInvalid
	}

	claims, err := s.tokens.Decode(refreshTokenPlain, token.TypeRefresh)
	if err != nil {
		return Issued{}, err
	}

	// Mint the replacement before touching the store so the swap is a
	// single atomic operation.
	newRefresh, newRefreshExp, err := s.tokens.IssueRefresh(claims.Subject, now)
	if err != nil {
		return Issued{}, fmt.Errorf("issue refresh token: %w", err)
	}

	oldHash := token.HashRefreshTokenHex(refreshTokenPlain)
	newHash := token.HashRefreshTokenHex(newRefresh)

	row, err := s.store.Rotate(ctx, now, oldHash, newHash, claims.Subject)
	if errors.Is(err, ErrSessionNotFound) {
		// The token was rotated away or never issued against a session.
		// We cannot tell which user was affected from the hash alone, so
		// the only safe response is to refuse.
		s.log.Warn("session.refresh.reuse_detected", "subject", claims.Subject)
		return Issued{}, ErrRefreshReuseDetected
	}
	if errors.Is(err, ErrSubjectMismatch) {
		s.log.Warn("session.refresh.subject_mismatch", "subject", claims.Subject)
		return Issued{}, ErrSubjectMismatch
	}
	if err != nil {
		return Issued{}, fmt.Errorf("rotate session: %w", err)
	}

	accessToken, accessExp, err := s.tokens.IssueAccess(row.UserID, now)
	if err != nil {
		return Issued{}, fmt.Errorf("issue access token: %w", err)
	}

	return Issued{
		SessionID:    row.ID,
		AccessToken:  accessToken,
		AccessExp:    accessExp,
		RefreshToken: newRefresh,
		RefreshExp:   newRefreshExp,
	}, nil
}

// Logout deletes the session matching the presented refresh token.
// An unknown or already-rotated token is not an error: the caller clears
// the cookie either way.
func (s *Service) Logout(ctx context.Context, refreshTokenPlain string) error {
	refreshTokenPlain = strings.TrimSpace(refreshTokenPlain)
	if refreshTokenPlain == "" {
		return nil
	}

	err := s.store.DeleteByHash(ctx, token.HashRefreshTokenHex(refreshTokenPlain))
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	return err
}

// RevokeUser deletes every session owned by userID.
func (s *Service) RevokeUser(ctx context.Context, userID string) error {
	return s.store.DeleteByUser(ctx, userID)
}

// SweepExpired deletes sessions unused for longer than the refresh-token
// lifetime. Expiry is belt-and-braces: the token's own exp claim already
// rejects stale refreshes, the sweep just reclaims the rows.
func (s *Service) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	return s.store.DeleteStale(ctx, now.Add(-s.tokens.RefreshTTL()))
}
