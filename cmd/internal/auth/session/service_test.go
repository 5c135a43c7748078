package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"plume/cmd/security/token"
)

func testService(t *testing.T) (*Service, *MemoryStore, *token.Manager) {
	t.Helper()

	mgr, err := token.NewManager(token.Config{
		SecretKey:  []byte("session-test-secret-0123456789ab"),
		Issuer:     "plume-test",
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("token.NewManager: %v", err)
	}

	store := NewMemoryStore()
	svc, err := NewService(nil, mgr, store)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, store, mgr
}

func TestIssueSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, store, mgr := testService(t)
	now := time.Now().UTC()

	issued, err := svc.IssueSession(ctx, now, "user-1", "cli-test")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	if issued.AccessToken == "" || issued.RefreshToken == "" {
		t.Fatalf("expected both tokens")
	}
	if store.Len() != 1 {
		t.Fatalf("expected one session row, got %d", store.Len())
	}

	// The refresh token decodes as typ=refresh only.
	if _, err := mgr.Decode(issued.RefreshToken, token.TypeAccess); err == nil {
		t.Fatalf("refresh token must not decode as access")
	}
	claims, err := mgr.Decode(issued.RefreshToken, token.TypeRefresh)
	if err != nil {
		t.Fatalf("Decode refresh: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("subject mismatch: %q", claims.Subject)
	}
}

func TestRotateRefresh_InvalidatesOldToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := testService(t)
	now := time.Now().UTC()

	issued, err := svc.IssueSession(ctx, now, "user-1", "cli-test")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	rotated, err := svc.RotateRefresh(ctx, now.Add(time.Minute), issued.RefreshToken)
	if err != nil {
		t.Fatalf("RotateRefresh: %v", err)
	}
	if rotated.RefreshToken == issued.RefreshToken {
		t.Fatalf("rotation must mint a new refresh token")
	}
	if rotated.SessionID != issued.SessionID {
		t.Fatalf("rotation must keep the same session row")
	}

	// The old token is single-use: presenting it again is the theft signal.
	if _, err := svc.RotateRefresh(ctx, now.Add(2*time.Minute), issued.RefreshToken); !errors.Is(err, ErrRefreshReuseDetected) {
		t.Fatalf("expected ErrRefreshReuseDetected, got %v", err)
	}

	// The new token succeeds exactly once more.
	if _, err := svc.RotateRefresh(ctx, now.Add(3*time.Minute), rotated.RefreshToken); err != nil {
		t.Fatalf("RotateRefresh with new token: %v", err)
	}
	if _, err := svc.RotateRefresh(ctx, now.Add(4*time.Minute), rotated.RefreshToken); !errors.Is(err, ErrRefreshReuseDetected) {
		t.Fatalf("expected ErrRefreshReuseDetected on second use, got %v", err)
	}
}

func TestRotateRefresh_ConcurrentRace(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := testService(t)
	now := time.Now().UTC()

	issued, err := svc.IssueSession(ctx, now, "user-1", "cli-test")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.RotateRefresh(ctx, now.Add(time.Minute), issued.RefreshToken)
		}(i)
	}
	wg.Wait()

	var wins, reuses int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrRefreshReuseDetected):
			reuses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("exactly one rotation must win, got %d", wins)
	}
	if reuses != attempts-1 {
		t.Fatalf("all losers must observe reuse, got %d", reuses)
	}
}

func TestRotateRefresh_ExpiredToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := testService(t)

	// Mint against a past clock so the token is expired on arrival.
	past := time.Now().UTC().Add(-30 * 24 * time.Hour)
	issued, err := svc.IssueSession(ctx, past, "user-1", "cli-test")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	if _, err := svc.RotateRefresh(ctx, time.Now().UTC(), issued.RefreshToken); !errors.Is(err, token.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestRotateRefresh_AccessTokenRejected(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := testService(t)
	now := time.Now().UTC()

	issued, err := svc.IssueSession(ctx, now, "user-1", "cli-test")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	// An access token must never rotate a session.
	if _, err := svc.RotateRefresh(ctx, now, issued.AccessToken); !errors.Is(err, token.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestRotateRefresh_SubjectMismatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, store, mgr := testService(t)
	now := time.Now().UTC()

	// Forge a row that claims the token hash but belongs to someone else.
	refresh, _, err := mgr.IssueRefresh("user-1", now)
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	err = store.Create(ctx, Row{
		ID:               NewSessionID(),
		UserID:           "user-2",
		RefreshTokenHash: token.HashRefreshTokenHex(refresh),
		CreatedAt:        now,
		LastUsedAt:       now,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.RotateRefresh(ctx, now, refresh); !errors.Is(err, ErrSubjectMismatch) {
		t.Fatalf("expected ErrSubjectMismatch, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, store, _ := testService(t)
	now := time.Now().UTC()

	issued, err := svc.IssueSession(ctx, now, "user-1", "cli-test")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	if err := svc.Logout(ctx, issued.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("logout must delete the session row")
	}

	// The logged-out token cannot refresh.
	if _, err := svc.RotateRefresh(ctx, now, issued.RefreshToken); !errors.Is(err, ErrRefreshReuseDetected) {
		t.Fatalf("expected ErrRefreshReuseDetected after logout, got %v", err)
	}

	// Logging out twice is fine.
	if err := svc.Logout(ctx, issued.RefreshToken); err != nil {
		t.Fatalf("repeat Logout: %v", err)
	}
}

func TestSweepExpired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, store, mgr := testService(t)
	now := time.Now().UTC()

	// One fresh session, one unused past the refresh TTL.
	if _, err := svc.IssueSession(ctx, now, "user-1", "cli-test"); err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	stale := Row{
		ID:               NewSessionID(),
		UserID:           "user-2",
		RefreshTokenHash: token.HashRefreshTokenHex("stale"),
		CreatedAt:        now.Add(-60 * 24 * time.Hour),
		LastUsedAt:       now.Add(-mgr.RefreshTTL() - time.Hour),
	}
	if err := store.Create(ctx, stale); err != nil {
		t.Fatalf("Create: %v", err)
	}

	n, err := svc.SweepExpired(ctx, now)
	if err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 swept row, got %d", n)
	}
	if store.Len() != 1 {
		t.Fatalf("fresh session must survive the sweep")
	}
}

func TestRotateRefresh_SameInstant(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, store, _ := testService(t)
	now := time.Now().UTC()

	issued, err := svc.IssueSession(ctx, now, "user-1", "cli-test")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	// Rotate with the clock unchanged since issuance. The replacement
	// must still differ from the presented token, or the swap would be
	// a no-op and the old token would stay live.
	rotated, err := svc.RotateRefresh(ctx, now, issued.RefreshToken)
	if err != nil {
		t.Fatalf("RotateRefresh: %v", err)
	}
	if rotated.RefreshToken == issued.RefreshToken {
		t.Fatalf("same-instant rotation must mint a distinct refresh token")
	}
	if store.Len() != 1 {
		t.Fatalf("rotation must not add rows, got %d", store.Len())
	}

	if _, err := svc.RotateRefresh(ctx, now, issued.RefreshToken); !errors.Is(err, ErrRefreshReuseDetected) {
		t.Fatalf("expected ErrRefreshReuseDetected for the rotated-away token, got %v", err)
	}
	if _, err := svc.RotateRefresh(ctx, now, rotated.RefreshToken); err != nil {
		t.Fatalf("RotateRefresh with replacement token: %v", err)
	}
}

func TestIssueSession_SameInstantTwoDevices(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, store, _ := testService(t)
	now := time.Now().UTC()

	first, err := svc.IssueSession(ctx, now, "user-1", "device-a")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	second, err := svc.IssueSession(ctx, now, "user-1", "device-b")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	// Concurrent sessions for one user must not collide on the token
	// hash, even at identical timestamps.
	if first.RefreshToken == second.RefreshToken {
		t.Fatalf("two logins must not share a refresh token")
	}
	if store.Len() != 2 {
		t.Fatalf("expected two session rows, got %d", store.Len())
	}

	// Both stay independently usable.
	if _, err := svc.RotateRefresh(ctx, now, first.RefreshToken); err != nil {
		t.Fatalf("RotateRefresh first session: %v", err)
	}
	if _, err := svc.RotateRefresh(ctx, now, second.RefreshToken); err != nil {
		t.Fatalf("RotateRefresh second session: %v", err)
	}
}
