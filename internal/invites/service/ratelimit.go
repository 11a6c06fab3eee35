package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dougsimpsoncodes/myailandlord/internal/invites/store"
	"github.com/dougsimpsoncodes/myailandlord/pkg/ratelimit"
)

// Rate limited operations.
const (
	OpIssue    = "issue"
	OpValidate = "validate"
	OpAccept   = "accept"
	OpRevoke   = "revoke"
)

// DefaultPolicies returns the stock bucket shape for every operation.
func DefaultPolicies() ratelimit.Policies {
	return ratelimit.Policies{
		OpIssue:    ratelimit.PerMinute(10, 10),
		OpValidate: ratelimit.PerMinute(20, 20),
		OpAccept:   ratelimit.PerMinute(10, 10),
		OpRevoke:   ratelimit.PerMinute(20, 20),
	}
}

// RateLimitService is the persistent limiter. Each check is a single atomic
// upsert on the bucket row, so limits hold across restarts and across
// instances sharing the database.
type RateLimitService struct {
	Store    store.Store
	Policies ratelimit.Policies
	Now      func() time.Time
}

var _ ratelimit.Limiter = (*RateLimitService)(nil)

// Allow consumes one token from the operation:caller bucket if it has one.
func (s *RateLimitService) Allow(ctx context.Context, operation, caller string) (ratelimit.Decision, error) {
	p, err := s.Policies.For(operation)
	if err != nil {
		return ratelimit.Decision{}, err
	}

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	b, err := s.Store.RateLimits().TakeToken(ctx, ratelimit.Key(operation, caller), p.Capacity, p.RefillRate, now)
	if err != nil {
		return ratelimit.Decision{}, fmt.Errorf("rate limit %s: %w", operation, err)
	}
	return ratelimit.NewDecision(p, b.Tokens, b.Allowed), nil
}
