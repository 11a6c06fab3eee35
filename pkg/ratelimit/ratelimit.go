package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrRateLimited is returned (wrapped) by callers that turn a denied
	// Decision into an error.
	ErrRateLimited = errors.New("ratelimit: rate limited")

	// ErrUnknownOperation is returned when no Policy is configured for an operation.
	ErrUnknownOperation = errors.New("ratelimit: unknown operation")

	// ErrInvalidPolicy is returned by Policy.Validate.
	ErrInvalidPolicy = errors.New("ratelimit: invalid policy")
)

// Policy describes one bucket shape.
type Policy struct {
	// Capacity is the burst size; a fresh bucket starts full.
	Capacity float64
	// RefillRate is the number of tokens added per second.
	RefillRate float64
}

// PerMinute builds a Policy allowing capacity as a burst and refilling
// perMinute tokens every minute.
func PerMinute(capacity int, perMinute float64) Policy {
	return Policy{Capacity: float64(capacity), RefillRate: perMinute / 60}
}

// Validate rejects buckets that could never allow a request.
func (p Policy) Validate() error {
	if p.Capacity < 1 || math.IsNaN(p.Capacity) || math.IsInf(p.Capacity, 0) {
		return fmt.Errorf("%w: capacity must be >= 1, got %v", ErrInvalidPolicy, p.Capacity)
	}
	if p.RefillRate <= 0 || math.IsNaN(p.RefillRate) || math.IsInf(p.RefillRate, 0) {
		return fmt.Errorf("%w: refill rate must be > 0, got %v", ErrInvalidPolicy, p.RefillRate)
	}
	return nil
}

// Policies maps operation names to bucket shapes.
type Policies map[string]Policy

// For returns the policy for op.
func (ps Policies) For(op string) (Policy, error) {
	p, ok := ps[op]
	if !ok {
		return Policy{}, fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
	return p, nil
}

// Validate checks every configured policy.
func (ps Policies) Validate() error {
	for op, p := range ps {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("policy %q: %w", op, err)
		}
	}
	return nil
}

// Decision is the outcome of a single check.
type Decision struct {
	Allowed    bool
	Limit      int           // bucket capacity
	Remaining  int           // whole tokens left after this check
	RetryAfter time.Duration // zero when allowed
}

// Err returns nil for an allowed Decision and a wrapped ErrRateLimited
// otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return fmt.Errorf("%w: retry after %s", ErrRateLimited, d.RetryAfter)
}

// Limiter gates calls by (operation, caller). Implementations must be safe
// for concurrent use and must evaluate each check atomically per key.
type Limiter interface {
	Allow(ctx context.Context, operation, caller string) (Decision, error)
}

// Key builds the bucket key for an operation and caller identity.
func Key(operation, caller string) string {
	return operation + ":" + caller
}

// Step applies one refill-and-consume step to a bucket holding tokens after
// elapsed time. Negative elapsed (clock skew between instances) refills
// nothing. This is the reference the persistent backends implement in SQL
// and Lua.
func Step(p Policy, tokens float64, elapsed time.Duration) (float64, bool) {
	refill := max(elapsed.Seconds(), 0) * p.RefillRate
	next := math.Min(p.Capacity, tokens+refill)
	if next >= 1 {
		return next - 1, true
	}
	return next, false
}

// RetryAfter reports how long until a bucket holding tokens has one full
// token again, rounded up to whole seconds with a one second floor so it can
// be used directly as a Retry-After header.
func RetryAfter(p Policy, tokens float64) time.Duration {
	if tokens >= 1 || p.RefillRate <= 0 {
		return time.Second
	}
	secs := math.Ceil((1 - tokens) / p.RefillRate)
	return time.Duration(max(secs, 1)) * time.Second
}

// NewDecision assembles a Decision from the post-step bucket state.
func NewDecision(p Policy, tokens float64, allowed bool) Decision {
	d := Decision{
		Allowed:   allowed,
		Limit:     int(p.Capacity),
		Remaining: max(int(math.Floor(tokens)), 0),
	}
	if !allowed {
		d.RetryAfter = RetryAfter(p, tokens)
	}
	return d
}
