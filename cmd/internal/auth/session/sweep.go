package session

import (
	"context"
	"time"
)

// RunSweeper deletes stale sessions on a fixed interval until ctx is
// cancelled. It runs independently of request traffic.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.SweepExpired(ctx, time.Now().UTC())
			if err != nil {
				s.log.Error("session.sweep.fail", "err", err)
				continue
			}
			if n > 0 {
				s.log.Info("session.sweep", "deleted", n)
			}
		}
	}
}
