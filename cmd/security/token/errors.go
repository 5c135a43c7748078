package token

import "errors"

// Public, stable errors for callers.
var (
	// ErrTokenExpired is returned when a token's signature is valid but its
	// expiry has passed. Callers surface it to clients exactly like
	// ErrTokenInvalid but log it differently.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid is returned for malformed tokens, bad signatures, and
	// type-discriminator mismatches.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrConfig is returned for invalid manager configuration.
	ErrConfig = errors.New("invalid token config")
)
