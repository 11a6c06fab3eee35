package store

import (
	"context"
	"errors"
	"time"

	"github.com/dougsimpsoncodes/myailandlord/internal/invites/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConditionFailed is returned when a conditional update matched no
	// row, e.g. consuming a use of an exhausted or revoked token.
	ErrConditionFailed = errors.New("store: condition failed")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories so a Tx can hand out the same
// repos bound to the transaction, and nested transactions are impossible.
type Store interface {
	Tokens() Tokens
	Redemptions() Redemptions
	RateLimits() RateLimits
	Properties() Properties
	Links() Links

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error, the
	// transaction is rolled back; otherwise it is committed. fn must only use
	// the repos of the Tx it is given.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Tokens interface {
	// CreateToken inserts a new token. A selector collision returns ErrAlreadyExists.
	CreateToken(ctx context.Context, t domain.InviteToken) error

	// GetTokenByID returns a token by id.
	GetTokenByID(ctx context.Context, id string) (domain.InviteToken, error)

	// GetTokenBySelector returns the token holding the public selector.
	GetTokenBySelector(ctx context.Context, selector string) (domain.InviteToken, error)

	// IncrementUseCount consumes one use in a single conditional update and
	// returns the updated row. It returns ErrConditionFailed when the token
	// is exhausted or revoked; it never reads before writing.
	IncrementUseCount(ctx context.Context, id string, now time.Time) (domain.InviteToken, error)

	// RevokeToken sets revoked_at if it is not already set. Revoking twice is
	// not an error and keeps the first timestamp.
	RevokeToken(ctx context.Context, id string, now time.Time) error

	// DeleteTokensExpiredBefore removes tokens whose expires_at is before
	// cutoff. Redemptions cascade; tenant links keep their row.
	DeleteTokensExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Redemptions interface {
	// CreateRedemption inserts the (token, principal) record. created is false
	// when the pair already existed; nothing is changed in that case.
	CreateRedemption(ctx context.Context, r domain.Redemption) (created bool, err error)

	// GetRedemption returns the record for a token and principal.
	GetRedemption(ctx context.Context, tokenID, principalID string) (domain.Redemption, error)

	// CountRedemptions returns the number of principals that redeemed a token.
	CountRedemptions(ctx context.Context, tokenID string) (int, error)
}

type RateLimits interface {
	// TakeToken performs one refill-and-consume step on the bucket at key in
	// a single atomic statement and returns the resulting bucket. The
	// bucket is created full on first use. bucket.Allowed reports whether a
	// token was consumed.
	TakeToken(ctx context.Context, key string, capacity, refillRate float64, now time.Time) (domain.RateLimitBucket, error)

	// GetBucket returns the bucket stored at key.
	GetBucket(ctx context.Context, key string) (domain.RateLimitBucket, error)

	// DeleteBucketsIdleSince removes buckets not touched since cutoff.
	DeleteBucketsIdleSince(ctx context.Context, cutoff time.Time) (int64, error)
}

type Properties interface {
	// GetProperty returns a property by id.
	GetProperty(ctx context.Context, id string) (domain.Property, error)

	// CreateProperty inserts a property. Property management belongs to the
	// tenancy collaborator; this exists for seeding and tests.
	CreateProperty(ctx context.Context, p domain.Property) error
}

type Links interface {
	// ActivateLink inserts or reactivates the (property, tenant) link.
	ActivateLink(ctx context.Context, l domain.TenantLink) error

	// GetLink returns the link between a property and a tenant.
	GetLink(ctx context.Context, propertyID, tenantID string) (domain.TenantLink, error)
}
