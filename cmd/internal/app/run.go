package app

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

// Run is the CLI entrypoint used by cmd/plume. It returns an error
// instead of calling os.Exit to keep defers effective.
func Run() error {
	// Missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	log := NewLogger(cfg.LogLevel)

	if err := InitSentry(cfg); err != nil {
		return err
	}
	defer FlushSentry()

	a, err := New(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.Run(ctx)
}
