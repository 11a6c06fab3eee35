package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dougsimpsoncodes/myailandlord/internal/invites/metrics"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/service"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/store"
	"github.com/dougsimpsoncodes/myailandlord/pkg/ratelimit"
	"github.com/redis/go-redis/v9"
)

// InitLimiter builds the rate limiter for the configured backend.
//
// Backends:
//   - "store": buckets live in the invitation database next to the tokens.
//   - "redis": buckets live in Redis and expire on their own.
//   - "memory": per-process buckets; development only.
//
// Persistent backends are wrapped so an unreachable bucket store degrades to
// per-process limiting instead of failing every request.
func InitLimiter(ctx context.Context, cfg Config, db store.Store, logger *slog.Logger) (ratelimit.Limiter, func() error, error) {
	if err := cfg.RateLimits.Validate(); err != nil {
		return nil, nil, err
	}

	closer := func() error { return nil }
	memory := ratelimit.NewMemoryLimiter(cfg.RateLimits, cfg.BucketIdleTTL)

	var primary ratelimit.Limiter
	switch cfg.RateLimitBackend {
	case "memory":
		logger.Warn("using in-memory rate limiter; limits reset on restart")
		return metrics.InstrumentLimiter(memory), closer, nil

	case "redis":
		if cfg.RedisAddr == "" {
			return nil, nil, fmt.Errorf("REDIS_ADDR is required for the redis rate limit backend")
		}
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unreachable at startup, falling back until it recovers", "addr", cfg.RedisAddr, "error", err)
		}

		primary = ratelimit.NewRedisLimiter(client, cfg.RateLimits, "", cfg.BucketIdleTTL)
		closer = client.Close
		logger.Info("rate limiter backend: redis", "addr", cfg.RedisAddr)

	case "store", "":
		primary = &service.RateLimitService{Store: db, Policies: cfg.RateLimits}
		logger.Info("rate limiter backend: store")

	default:
		return nil, nil, fmt.Errorf("unknown rate limit backend %q", cfg.RateLimitBackend)
	}

	limiter := &ratelimit.FallbackLimiter{
		Primary:    primary,
		Secondary:  memory,
		OnFallback: metrics.ObserveFallback,
	}
	return metrics.InstrumentLimiter(limiter), closer, nil
}
