package sqlite

import (
	"context"
	"time"

	"github.com/dougsimpsoncodes/myailandlord/internal/invites/domain"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/store/drivers/sqlite/gen"
)

type rateLimitsRepo struct {
	q *gen.Queries
}

func (r *rateLimitsRepo) TakeToken(
	ctx context.Context,
	key string,
	capacity, refillRate float64,
	now time.Time,
) (domain.RateLimitBucket, error) {
	row, err := r.q.TakeRateLimitToken(ctx, gen.TakeRateLimitTokenParams{
		BucketKey:  key,
		Capacity:   capacity,
		RefillRate: refillRate,
		LastRefill: unixSeconds(now),
		UpdatedAt:  toMillis(now),
	})
	if err != nil {
		return domain.RateLimitBucket{}, err
	}
	return mapBucket(row), nil
}

func (r *rateLimitsRepo) GetBucket(ctx context.Context, key string) (domain.RateLimitBucket, error) {
	row, err := r.q.GetRateLimitBucket(ctx, key)
	if err != nil {
		return domain.RateLimitBucket{}, mapNotFound(err)
	}
	return mapBucket(row), nil
}

func (r *rateLimitsRepo) DeleteBucketsIdleSince(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.q.DeleteRateLimitBucketsIdleSince(ctx, toMillis(cutoff))
}

func mapBucket(row gen.RateLimitBucket) domain.RateLimitBucket {
	return domain.RateLimitBucket{
		Key:        row.BucketKey,
		Tokens:     row.Tokens,
		Capacity:   row.Capacity,
		RefillRate: row.RefillRate,
		LastRefill: fromUnixSeconds(row.LastRefill),
		Allowed:    row.Allowed,
		UpdatedAt:  fromMillis(row.UpdatedAt),
	}
}
