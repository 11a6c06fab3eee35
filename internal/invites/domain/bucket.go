package domain

import "time"

// RateLimitBucket is the persisted token bucket for one operation:caller key.
type RateLimitBucket struct {
	Key        string
	Tokens     float64
	Capacity   float64
	RefillRate float64 // tokens per second
	LastRefill time.Time
	Allowed    bool // outcome of the most recent check
	UpdatedAt  time.Time
}

// CleanupResult reports what a housekeeping sweep removed.
type CleanupResult struct {
	TokensDeleted  int64
	BucketsDeleted int64
}
