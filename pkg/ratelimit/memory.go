package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// entry holds a limiter and its last access time.
type entry struct {
	limiter    *rate.Limiter
	policy     Policy
	lastAccess time.Time
}

// MemoryLimiter keeps one x/time/rate limiter per key in process memory. It
// does not survive restarts and is not shared between instances, so it is
// only used in development or while the persistent backend is unavailable.
type MemoryLimiter struct {
	policies Policies
	maxAge   time.Duration

	// Now is the clock used for every check. Tests replace it.
	Now func() time.Time

	mu          sync.Mutex
	entries     map[string]*entry
	lastCleanup time.Time
}

// NewMemoryLimiter returns a limiter enforcing policies. Entries idle for
// longer than maxAge are dropped lazily.
func NewMemoryLimiter(policies Policies, maxAge time.Duration) *MemoryLimiter {
	if maxAge <= 0 {
		maxAge = 10 * time.Minute
	}
	return &MemoryLimiter{
		policies: policies,
		maxAge:   maxAge,
		Now:      time.Now,
		entries:  make(map[string]*entry),
	}
}

// Allow implements Limiter.
func (m *MemoryLimiter) Allow(_ context.Context, operation, caller string) (Decision, error) {
	p, err := m.policies.For(operation)
	if err != nil {
		return Decision{}, err
	}

	now := m.Now()
	key := Key(operation, caller)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.maybeCleanup(now)

	e, ok := m.entries[key]
	if !ok || e.policy != p {
		e = &entry{
			limiter: rate.NewLimiter(rate.Limit(p.RefillRate), int(p.Capacity)),
			policy:  p,
		}
		m.entries[key] = e
	}
	e.lastAccess = now

	allowed := e.limiter.AllowN(now, 1)
	return NewDecision(p, e.limiter.TokensAt(now), allowed), nil
}

// Len returns the number of tracked keys.
func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// maybeCleanup removes stale entries at most once per maxAge. Callers hold mu.
func (m *MemoryLimiter) maybeCleanup(now time.Time) {
	if now.Sub(m.lastCleanup) < m.maxAge {
		return
	}
	m.lastCleanup = now

	for key, e := range m.entries {
		if now.Sub(e.lastAccess) > m.maxAge {
			delete(m.entries, key)
		}
	}
}
