package session

import "errors"

// Public, stable errors for callers.
var (
	// ErrSessionNotFound is returned when a refresh-token hash matches no
	// session row and the token itself could not have been valid (e.g. a
	// logout for an unknown token).
	ErrSessionNotFound = errors.New("session not found")

	// ErrRefreshReuseDetected is returned when a well-formed, unexpired
	// refresh token matches no session row: it was rotated away (or never
	// issued by us). Surfaced to clients as a generic 401; logged as a
	// security event server-side.
	ErrRefreshReuseDetected = errors.New("refresh token reuse detected")

	// ErrSubjectMismatch is returned when the locked session row's owner
	// differs from the token's subject claim. Defensive cross-check; it
	// should never fire if the storage hash is collision-free.
	ErrSubjectMismatch = errors.New("session subject mismatch")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid session config")
)
