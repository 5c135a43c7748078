package password

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher produces and verifies peppered bcrypt credential hashes.
type Hasher struct {
	cfg Config

	// dummyHash is verified against when no account matches a login
	// attempt, equalizing latency between "unknown email" and "wrong
	// password" so response timing cannot enumerate accounts.
	dummyHash string
}

// New validates cfg and constructs a Hasher, precomputing the dummy hash
// at the configured cost.
func New(cfg Config) (*Hasher, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	h := &Hasher{cfg: cfg}

	dummy, err := h.Hash("dummy-password-for-timing-only")
	if err != nil {
		return nil, fmt.Errorf("precompute dummy hash: %w", err)
	}
	h.dummyHash = dummy

	return h, nil
}

// prehash normalizes the plaintext to a fixed-length, peppered digest.
// Hex encoding keeps the bcrypt input free of NUL bytes.
func (h *Hasher) prehash(password string) []byte {
	mac := hmac.New(sha256.New, h.cfg.Pepper)
	_, _ = mac.Write([]byte(password))
	return []byte(hex.EncodeToString(mac.Sum(nil)))
}

// Hash derives a storable credential from password.
// The returned string embeds bcrypt's salt and cost factor.
func (h *Hasher) Hash(password string) (string, error) {
	out, err := bcrypt.GenerateFromPassword(h.prehash(password), h.cfg.Cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(out), nil
}

// Verify reports whether password matches encodedHash.
// Malformed or foreign-format stored hashes verify false; they never
// escalate past the caller's normal wrong-password path.
func (h *Hasher) Verify(password, encodedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encodedHash), h.prehash(password)) == nil
}

// VerifyDummy performs a full-cost verify against the precomputed dummy
// hash. Login calls it when no account matches the supplied email.
func (h *Hasher) VerifyDummy(password string) {
	_ = bcrypt.CompareHashAndPassword([]byte(h.dummyHash), h.prehash(password))
}

// ValidatePolicy checks a plaintext password against the configured policy.
func (h *Hasher) ValidatePolicy(password string) error {
	return h.cfg.Validate(password)
}
