package token

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashRefreshTokenHex hashes refresh tokens for server-side storage.
// The digest is deterministic so a presented token can be matched against
// its session row; the raw token itself is never persisted.
func HashRefreshTokenHex(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
