package ratelimit

import (
	"context"
	"log/slog"

	"github.com/dougsimpsoncodes/myailandlord/pkg/slogx"
)

// FallbackLimiter consults Primary and, when it fails (storage down,
// network error), answers from Secondary instead of failing the request or
// letting it through unchecked.
type FallbackLimiter struct {
	Primary   Limiter
	Secondary Limiter

	// OnFallback is called every time Secondary answers. Optional.
	OnFallback func(operation string, err error)
}

// Allow implements Limiter.
func (f *FallbackLimiter) Allow(ctx context.Context, operation, caller string) (Decision, error) {
	d, err := f.Primary.Allow(ctx, operation, caller)
	if err == nil {
		return d, nil
	}

	slogx.FromContext(ctx).Warn("rate limiter degraded, using fallback",
		slog.String("operation", operation),
		slog.Any("error", err),
	)
	if f.OnFallback != nil {
		f.OnFallback(operation, err)
	}
	return f.Secondary.Allow(ctx, operation, caller)
}
