package service

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bookticket/user-service/internal/config"
	"github.com/bookticket/user-service/internal/domain"
)

// LoginLimiter throttles login and registration attempts per email and per
// client IP using Redis counters. Redis being unreachable does not block
// authentication; the limiter fails open and logs.
type LoginLimiter struct {
	client *redis.Client
	cfg    config.LimiterConfig
	logger *zap.Logger
}

// NewLoginLimiter builds the limiter. Returns nil when throttling is
// disabled or no client is available.
func NewLoginLimiter(client *redis.Client, cfg config.LimiterConfig, logger *zap.Logger) *LoginLimiter {
	if client == nil || !cfg.Enabled {
		return nil
	}
	return &LoginLimiter{client: client, cfg: cfg, logger: logger}
}

// Enforce counts the attempt against both keys and rejects once either
// exceeds the configured budget within the cooldown window.
func (l *LoginLimiter) Enforce(ctx context.Context, email, ip string) error {
	if err := l.enforceKey(ctx, "auth:attempt:email:"+email); err != nil {
		return err
	}
	if ip != "" {
		return l.enforceKey(ctx, "auth:attempt:ip:"+ip)
	}
	return nil
}

func (l *LoginLimiter) enforceKey(ctx context.Context, key string) error {
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warn("limiter unavailable", zap.Error(err))
		return nil
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.cfg.Cooldown).Err(); err != nil {
			l.logger.Warn("limiter expire failed", zap.Error(err))
		}
	}
	if count > int64(l.cfg.MaxAttempts) {
		return domain.ErrRateLimited
	}
	return nil
}
