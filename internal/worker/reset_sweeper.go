package worker

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/service"
)

const sweepLockKey = "account-service:reset-sweep-lock"

// ResetTokenSweeper periodically deletes expired password-reset tokens.
// Housekeeping only: expired tokens are rejected on use regardless, so a
// missed tick costs nothing. A Redis leader lock keeps multiple instances
// from sweeping at once; when Redis is unreachable the sweep proceeds, since
// the deletion is idempotent.
type ResetTokenSweeper struct {
	resets   *service.PasswordResetService
	redis    *redis.Client
	logger   *zap.Logger
	interval time.Duration
}

// NewResetTokenSweeper builds the sweeper. The redis client may be nil.
func NewResetTokenSweeper(resets *service.PasswordResetService, redisClient *redis.Client, logger *zap.Logger, interval time.Duration) *ResetTokenSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ResetTokenSweeper{
		resets:   resets,
		redis:    redisClient,
		logger:   logger,
		interval: interval,
	}
}

// Run loops until the context is cancelled.
func (s *ResetTokenSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ResetTokenSweeper) sweep(ctx context.Context) {
	if !s.acquireLock(ctx) {
		return
	}

	deleted, err := s.resets.SweepExpired(ctx)
	if err != nil {
		s.logger.Error("reset token sweep failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.logger.Info("expired reset tokens deleted", zap.Int64("count", deleted))
	}
}

func (s *ResetTokenSweeper) acquireLock(ctx context.Context) bool {
	if s.redis == nil {
		return true
	}
	ok, err := s.redis.SetNX(ctx, sweepLockKey, "1", s.interval/2).Result()
	if err != nil {
		s.logger.Warn("sweep lock unavailable, proceeding", zap.Error(err))
		return true
	}
	return ok
}
