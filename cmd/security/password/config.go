package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Policy controls plaintext validation before hashing.
type Policy struct {
	MinLength int
	MaxLength int
}

// Config is the single configuration surface for this package.
type Config struct {
	// Pepper is the server-held HMAC key for the pre-hash stage. Required.
	// It is distinct from bcrypt's per-hash salt and is never stored
	// alongside the credential hashes.
	Pepper []byte

	// Cost is the bcrypt cost factor.
	Cost int

	Policy Policy
}

// DefaultConfig returns a baseline suitable for interactive logins.
// Pepper must still be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		Cost: bcrypt.DefaultCost,
		Policy: Policy{
			MinLength: 8,
			MaxLength: 256,
		},
	}
}

func (c Config) validate() error {
	if len(c.Pepper) == 0 {
		return fmt.Errorf("%w: empty pepper", ErrConfig)
	}
	if c.Cost < bcrypt.MinCost || c.Cost > 17 {
		return fmt.Errorf("%w: bcrypt cost %d out of range [%d..17]", ErrConfig, c.Cost, bcrypt.MinCost)
	}
	if c.Policy.MinLength < 1 || c.Policy.MaxLength < c.Policy.MinLength {
		return fmt.Errorf("%w: policy min=%d max=%d", ErrConfig, c.Policy.MinLength, c.Policy.MaxLength)
	}
	return nil
}

// Validate checks a plaintext password against the policy.
func (c Config) Validate(password string) error {
	if len(password) < c.Policy.MinLength {
		return ErrPasswordTooShort
	}
	if len(password) > c.Policy.MaxLength {
		return ErrPasswordTooLong
	}
	return nil
}
