// Package ratelimit implements the token-bucket rate limiting contract shared
// by the invitation service's limiter backends.
//
// A bucket is keyed by operation and caller identity. On every check the
// allowance is refilled by elapsed*RefillRate (capped at Capacity) and one
// token is consumed when at least one is available. Backends differ only in
// where the bucket lives:
//
//   - the store-backed limiter in internal/invites/service persists buckets in
//     the service database and evaluates the step in one SQL statement;
//   - RedisLimiter evaluates the step in a single Lua script;
//   - MemoryLimiter keeps golang.org/x/time/rate limiters per key and is used
//     for development and as the degraded fallback.
package ratelimit
