package app

import (
	"time"

	"github.com/getsentry/sentry-go"
)

// InitSentry initializes error reporting. An empty DSN disables it.
func InitSentry(cfg Config) error {
	if cfg.SentryDSN == "" {
		return nil
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		AttachStacktrace: true,
	})
}

// FlushSentry drains pending events on shutdown.
func FlushSentry() {
	sentry.Flush(2 * time.Second)
}
