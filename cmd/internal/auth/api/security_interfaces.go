package authapi

import "plume/cmd/security/token"

// PasswordHasher is the credential surface the auth handlers need.
// *password.Hasher satisfies it; tests substitute counting doubles.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) bool
	// VerifyDummy burns a full-cost verify so "unknown email" and
	// "wrong password" cost the same.
	VerifyDummy(password string)
	ValidatePolicy(password string) error
}

// AccessTokenDecoder verifies bearer tokens for the auth middleware.
// *token.Manager satisfies it.
type AccessTokenDecoder interface {
	Decode(tokenStr string, want token.Type) (token.Claims, error)
}
