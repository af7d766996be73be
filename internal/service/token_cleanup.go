package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type expiredDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// SessionCleanup periodically drops sessions that are past their expiry.
// Only the database store needs this, redis expires keys on its own.
func SessionCleanup(ctx context.Context, t time.Duration, s expiredDeleter) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Session cleanup attached", zap.Duration("tick_every", t))

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.DeleteExpired(ctx)
				if err != nil {
					zap.L().Error("Failed to cleanup expired sessions", zap.Error(err))
					continue
				}

				if n > 0 {
					zap.L().Debug("Cleaned up expired sessions", zap.Int64("count", n))
				}
			}
		}
	}()
}
