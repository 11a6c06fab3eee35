package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucketScript performs one refill-and-consume step. The whole step runs
// inside Redis, so concurrent callers on any instance serialize per key.
//
// KEYS[1] bucket key
// ARGV[1] capacity, ARGV[2] refill rate (tokens/s), ARGV[3] now (unix seconds),
// ARGV[4] idle ttl in seconds (0 disables expiry)
var tokenBucketScript = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local state = redis.call("HMGET", KEYS[1], "tokens", "last_refill")
local tokens = tonumber(state[1])
local last = tonumber(state[2])
if tokens == nil or last == nil then
	tokens = capacity
	last = now
end

tokens = math.min(capacity, tokens + math.max(0, now - last) * rate)
local allowed = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
end

redis.call("HSET", KEYS[1], "tokens", tostring(tokens), "last_refill", tostring(math.max(last, now)))
if ttl > 0 then
	redis.call("EXPIRE", KEYS[1], ttl)
end
return {allowed, tostring(tokens)}
`)

// RedisLimiter keeps buckets in Redis hashes.
type RedisLimiter struct {
	client    redis.Scripter
	policies  Policies
	keyPrefix string
	idleTTL   time.Duration

	// Now is the clock used for every check. Tests replace it.
	Now func() time.Time
}

// NewRedisLimiter returns a limiter storing buckets under keyPrefix. Buckets
// expire after idleTTL without traffic, which replaces the housekeeping sweep
// the SQL backends need.
func NewRedisLimiter(client redis.Scripter, policies Policies, keyPrefix string, idleTTL time.Duration) *RedisLimiter {
	if keyPrefix == "" {
		keyPrefix = "invites-rate:"
	}
	return &RedisLimiter{
		client:    client,
		policies:  policies,
		keyPrefix: keyPrefix,
		idleTTL:   idleTTL,
		Now:       time.Now,
	}
}

// Allow implements Limiter.
func (r *RedisLimiter) Allow(ctx context.Context, operation, caller string) (Decision, error) {
	p, err := r.policies.For(operation)
	if err != nil {
		return Decision{}, err
	}

	now := float64(r.Now().UnixMicro()) / 1e6
	res, err := tokenBucketScript.Run(ctx, r.client,
		[]string{r.keyPrefix + Key(operation, caller)},
		p.Capacity, p.RefillRate, strconv.FormatFloat(now, 'f', 6, 64), int64(r.idleTTL.Seconds()),
	).Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: redis script: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("ratelimit: unexpected redis reply %v", res)
	}

	allowed, _ := res[0].(int64)
	raw, _ := res[1].(string)
	tokens, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: parse tokens %q: %w", raw, err)
	}

	return NewDecision(p, tokens, allowed == 1), nil
}
