package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Type discriminates access tokens from refresh tokens via the "typ" claim.
type Type string

const (
	// TypeAccess marks a short-lived access token.
	TypeAccess Type = "access"
	// TypeRefresh marks a long-lived refresh token.
	TypeRefresh Type = "refresh"
)

// Claims is the claim set carried by every plume token.
type Claims struct {
	Type Type `json:"typ"`
	jwt.RegisteredClaims
}

// Config defines the signing parameters for a Manager.
type Config struct {
	// SecretKey signs and verifies all tokens. Required.
	SecretKey []byte

	// Algorithm is the JWT signing algorithm identifier (e.g. "HS256").
	Algorithm string

	// Issuer is the value set in the "iss" claim.
	Issuer string

	// AccessTTL is the access-token lifetime (tens of minutes).
	AccessTTL time.Duration

	// RefreshTTL is the refresh-token lifetime (days).
	RefreshTTL time.Duration
}

// Manager mints and verifies signed tokens for a single server secret.
//
// Access tokens are stateless: validity is purely a function of signature
// and expiry. Refresh tokens additionally back a server-side session row,
// which is the caller's concern, not this package's.
type Manager struct {
	secret     []byte
	method     jwt.SigningMethod
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewManager validates cfg and constructs a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.SecretKey) == 0 {
		return nil, fmt.Errorf("%w: empty secret key", ErrConfig)
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("%w: non-positive TTL", ErrConfig)
	}

	alg := strings.TrimSpace(cfg.Algorithm)
	if alg == "" {
		alg = "HS256"
	}
	method := jwt.GetSigningMethod(alg)
	if method == nil {
		return nil, fmt.Errorf("%w: unknown algorithm %q", ErrConfig, alg)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("%w: algorithm %q is not HMAC-based", ErrConfig, alg)
	}

	return &Manager{
		secret:     cfg.SecretKey,
		method:     method,
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

// AccessTTL reports the configured access-token lifetime.
func (m *Manager) AccessTTL() time.Duration { return m.accessTTL }

// RefreshTTL reports the configured refresh-token lifetime.
func (m *Manager) RefreshTTL() time.Duration { return m.refreshTTL }

// IssueAccess mints an access token for subject.
func (m *Manager) IssueAccess(subject string, now time.Time) (string, time.Time, error) {
	return m.issue(TypeAccess, subject, now, m.accessTTL)
}

// IssueRefresh mints a refresh token for subject.
func (m *Manager) IssueRefresh(subject string, now time.Time) (string, time.Time, error) {
	return m.issue(TypeRefresh, subject, now, m.refreshTTL)
}

func (m *Manager) issue(typ Type, subject string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	exp := now.Add(ttl)

	// The jti makes every mint unique. Timestamps alone have second
	// precision, so without it two tokens for the same subject in the
	// same second would be byte-identical and their session rows would
	// collide on the refresh-token hash.
	claims := Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, exp, nil
}

// Decode verifies signature, expiry, and the type discriminator.
//
// Expired tokens return ErrTokenExpired; everything else that fails
// verification returns ErrTokenInvalid. Both map to 401 at the HTTP
// boundary but are logged distinctly.
func (m *Manager) Decode(tokenStr string, want Type) (Claims, error) {
	var claims Claims

	parsed, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{m.method.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if !parsed.Valid {
		return Claims{}, ErrTokenInvalid
	}
	if claims.Type != want {
		return Claims{}, ErrTokenInvalid
	}
	if claims.Subject == "" {
		return Claims{}, ErrTokenInvalid
	}

	return claims, nil
}
