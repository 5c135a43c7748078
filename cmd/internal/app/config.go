package app

import (
	"errors"
	"fmt"
	"time"
)

const minSecretLen = 32

// Config contains all runtime configuration loaded from environment
// variables. Secrets stay as byte slices and are never logged.
type Config struct {
	HTTPAddr string
	LogLevel string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// If true, /readyz returns 503 unless the DB is configured and
	// reachable.
	ReadinessRequireDB bool

	// TokenSecret signs access and refresh tokens. Required.
	TokenSecret []byte
	// TokenAlgorithm is the JWT HMAC algorithm (HS256/HS384/HS512).
	TokenAlgorithm string
	TokenIssuer    string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// PasswordPepper is mixed into every password hash. Required.
	PasswordPepper []byte
	BcryptCost     int

	// CookieSecure disables only for non-TLS local development.
	CookieSecure bool

	// SweepInterval is how often stale sessions are purged.
	SweepInterval time.Duration

	SentryDSN   string
	Environment string
}

// LoadConfig loads Config from environment variables with defaults.
// It fails when a required secret is missing or too short rather than
// starting with a guessable default.
func LoadConfig() (Config, error) {
	cfg := Config{
		HTTPAddr: EnvString("PLUME_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel: EnvString("PLUME_LOG_LEVEL", "info"),

		ReadHeaderTimeout: EnvDuration("PLUME_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("PLUME_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("PLUME_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("PLUME_HTTP_IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    EnvInt("PLUME_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("PLUME_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("PLUME_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("PLUME_DB_MIN_CONNS", 0),

		ReadinessRequireDB: EnvBool("PLUME_READINESS_REQUIRE_DB", false),

		TokenSecret:    EnvSecret("PLUME_TOKEN_SECRET"),
		TokenAlgorithm: EnvString("PLUME_TOKEN_ALGORITHM", "HS256"),
		TokenIssuer:    EnvString("PLUME_TOKEN_ISSUER", "plume"),

		AccessTokenTTL:  EnvDuration("PLUME_ACCESS_TOKEN_TTL", 30*time.Minute),
		RefreshTokenTTL: EnvDuration("PLUME_REFRESH_TOKEN_TTL", 7*24*time.Hour),

		PasswordPepper: EnvSecret("PLUME_PASSWORD_PEPPER"),
		BcryptCost:     EnvInt("PLUME_BCRYPT_COST", 12),

		CookieSecure: EnvBool("PLUME_COOKIE_SECURE", true),

		SweepInterval: EnvDuration("PLUME_SESSION_SWEEP_INTERVAL", time.Hour),

		SentryDSN:   EnvString("PLUME_SENTRY_DSN", ""),
		Environment: EnvString("PLUME_ENVIRONMENT", "production"),
	}

	if len(cfg.TokenSecret) == 0 {
		return Config{}, errors.New("PLUME_TOKEN_SECRET is required")
	}
	if len(cfg.TokenSecret) < minSecretLen {
		return Config{}, fmt.Errorf("PLUME_TOKEN_SECRET must be at least %d bytes", minSecretLen)
	}
	if len(cfg.PasswordPepper) == 0 {
		return Config{}, errors.New("PLUME_PASSWORD_PEPPER is required")
	}
	if len(cfg.PasswordPepper) < minSecretLen {
		return Config{}, fmt.Errorf("PLUME_PASSWORD_PEPPER must be at least %d bytes", minSecretLen)
	}

	return cfg, nil
}
