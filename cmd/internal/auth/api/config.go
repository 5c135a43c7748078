package authapi

// Config controls the HTTP auth surface.
type Config struct {
	// RefreshCookieName is the cookie carrying the refresh token.
	// The refresh token travels only here, never in a JSON body.
	RefreshCookieName string

	// CookiePath scopes the refresh cookie.
	CookiePath string

	// CookieSecure toggles the Secure attribute. Disable only for
	// non-TLS local development.
	CookieSecure bool

	// MaxBodyBytes bounds request bodies.
	MaxBodyBytes int64
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		RefreshCookieName: "refresh_token",
		CookiePath:        "/",
		CookieSecure:      true,
		MaxBodyBytes:      1 << 16,
	}
}
