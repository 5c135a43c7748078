package identity

import "strings"

// NormalizeEmail performs case-insensitive canonicalization. All store
// lookups and writes go through it so "A@x.com" and "a@x.com" are one
// account.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeNickname trims surrounding whitespace only; nicknames keep
// their case.
func NormalizeNickname(s string) string {
	return strings.TrimSpace(s)
}
