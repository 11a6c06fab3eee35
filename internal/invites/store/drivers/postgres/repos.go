package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dougsimpsoncodes/myailandlord/internal/invites/domain"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/store"
)

const tokenColumns = `id, selector, token_hash, salt, property_id, issuer_id,
	max_uses, use_count, expires_at, revoked_at, created_at, updated_at`

type tokensRepo struct {
	db DBTX
}

func (r *tokensRepo) CreateToken(ctx context.Context, t domain.InviteToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invite_tokens (
			id, selector, token_hash, salt, property_id, issuer_id,
			max_uses, use_count, expires_at, revoked_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, NULL, $9, $10)`,
		t.ID, t.Selector, t.TokenHash, t.Salt, t.PropertyID, t.IssuerID,
		t.MaxUses, t.ExpiresAt, t.CreatedAt, t.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *tokensRepo) GetTokenByID(ctx context.Context, id string) (domain.InviteToken, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+tokenColumns+` FROM invite_tokens WHERE id = $1`, id)
	t, err := scanToken(row)
	return t, mapNotFound(err)
}

func (r *tokensRepo) GetTokenBySelector(ctx context.Context, selector string) (domain.InviteToken, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+tokenColumns+` FROM invite_tokens WHERE selector = $1`, selector)
	t, err := scanToken(row)
	return t, mapNotFound(err)
}

func (r *tokensRepo) IncrementUseCount(ctx context.Context, id string, now time.Time) (domain.InviteToken, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE invite_tokens
		SET use_count = use_count + 1, updated_at = $1
		WHERE id = $2 AND use_count < max_uses AND revoked_at IS NULL
		RETURNING `+tokenColumns, now, id)
	t, err := scanToken(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.InviteToken{}, store.ErrConditionFailed
	}
	return t, err
}

func (r *tokensRepo) RevokeToken(ctx context.Context, id string, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE invite_tokens SET revoked_at = $1, updated_at = $1
		WHERE id = $2 AND revoked_at IS NULL`, now, id)
	return err
}

func (r *tokensRepo) DeleteTokensExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM invite_tokens WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanToken(row *sql.Row) (domain.InviteToken, error) {
	var (
		t         domain.InviteToken
		revokedAt sql.NullTime
	)
	err := row.Scan(
		&t.ID, &t.Selector, &t.TokenHash, &t.Salt, &t.PropertyID, &t.IssuerID,
		&t.MaxUses, &t.UseCount, &t.ExpiresAt, &revokedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return domain.InviteToken{}, err
	}
	t.RevokedAt = mapNullTime(revokedAt)
	t.ExpiresAt = t.ExpiresAt.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

type redemptionsRepo struct {
	db DBTX
}

func (r *redemptionsRepo) CreateRedemption(ctx context.Context, red domain.Redemption) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO invite_redemptions (token_id, principal_id, property_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token_id, principal_id) DO NOTHING`,
		red.TokenID, red.PrincipalID, red.PropertyID, red.CreatedAt,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *redemptionsRepo) GetRedemption(ctx context.Context, tokenID, principalID string) (domain.Redemption, error) {
	var red domain.Redemption
	err := r.db.QueryRowContext(ctx, `
		SELECT token_id, principal_id, property_id, created_at
		FROM invite_redemptions WHERE token_id = $1 AND principal_id = $2`,
		tokenID, principalID,
	).Scan(&red.TokenID, &red.PrincipalID, &red.PropertyID, &red.CreatedAt)
	if err != nil {
		return domain.Redemption{}, mapNotFound(err)
	}
	red.CreatedAt = red.CreatedAt.UTC()
	return red, nil
}

func (r *redemptionsRepo) CountRedemptions(ctx context.Context, tokenID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM invite_redemptions WHERE token_id = $1`, tokenID).Scan(&n)
	return n, err
}

type rateLimitsRepo struct {
	db DBTX
}

const bucketColumns = `bucket_key, tokens, capacity, refill_rate, last_refill, allowed, updated_at`

// takeToken is one refill-and-consume step. SET expressions see the
// pre-update row, and the row lock serialises concurrent callers per key.
const takeToken = `
INSERT INTO rate_limit_buckets AS b (
	bucket_key, tokens, capacity, refill_rate, last_refill, allowed, updated_at
) VALUES ($1, $2::double precision - 1, $2, $3, $4, TRUE, $5)
ON CONFLICT (bucket_key) DO UPDATE SET
	tokens = CASE
		WHEN LEAST(EXCLUDED.capacity, b.tokens + GREATEST(0, EXCLUDED.last_refill - b.last_refill) * EXCLUDED.refill_rate) >= 1
		THEN LEAST(EXCLUDED.capacity, b.tokens + GREATEST(0, EXCLUDED.last_refill - b.last_refill) * EXCLUDED.refill_rate) - 1
		ELSE LEAST(EXCLUDED.capacity, b.tokens + GREATEST(0, EXCLUDED.last_refill - b.last_refill) * EXCLUDED.refill_rate)
	END,
	allowed = LEAST(EXCLUDED.capacity, b.tokens + GREATEST(0, EXCLUDED.last_refill - b.last_refill) * EXCLUDED.refill_rate) >= 1,
	capacity = EXCLUDED.capacity,
	refill_rate = EXCLUDED.refill_rate,
	last_refill = GREATEST(b.last_refill, EXCLUDED.last_refill),
	updated_at = EXCLUDED.updated_at
RETURNING ` + bucketColumns

func (r *rateLimitsRepo) TakeToken(
	ctx context.Context,
	key string,
	capacity, refillRate float64,
	now time.Time,
) (domain.RateLimitBucket, error) {
	row := r.db.QueryRowContext(ctx, takeToken, key, capacity, refillRate, unixSeconds(now), now)
	return scanBucket(row)
}

func (r *rateLimitsRepo) GetBucket(ctx context.Context, key string) (domain.RateLimitBucket, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bucketColumns+` FROM rate_limit_buckets WHERE bucket_key = $1`, key)
	b, err := scanBucket(row)
	return b, mapNotFound(err)
}

func (r *rateLimitsRepo) DeleteBucketsIdleSince(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rate_limit_buckets WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanBucket(row *sql.Row) (domain.RateLimitBucket, error) {
	var (
		b          domain.RateLimitBucket
		lastRefill float64
	)
	if err := row.Scan(&b.Key, &b.Tokens, &b.Capacity, &b.RefillRate, &lastRefill, &b.Allowed, &b.UpdatedAt); err != nil {
		return domain.RateLimitBucket{}, err
	}
	b.LastRefill = fromUnixSeconds(lastRefill)
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b, nil
}

type propertiesRepo struct {
	db DBTX
}

func (r *propertiesRepo) GetProperty(ctx context.Context, id string) (domain.Property, error) {
	var p domain.Property
	err := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, address, owner_name, created_at
		FROM properties WHERE id = $1`, id,
	).Scan(&p.ID, &p.OwnerID, &p.Name, &p.Address, &p.OwnerName, &p.CreatedAt)
	if err != nil {
		return domain.Property{}, mapNotFound(err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}

func (r *propertiesRepo) CreateProperty(ctx context.Context, p domain.Property) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO properties (id, owner_id, name, address, owner_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.OwnerID, p.Name, p.Address, p.OwnerName, p.CreatedAt,
	)
	return mapConstraint(err)
}

type linksRepo struct {
	db DBTX
}

func (r *linksRepo) ActivateLink(ctx context.Context, l domain.TenantLink) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tenant_links (id, property_id, tenant_id, invite_token_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'active', $5, $6)
		ON CONFLICT (property_id, tenant_id) DO UPDATE SET
			status = 'active',
			invite_token_id = EXCLUDED.invite_token_id,
			updated_at = EXCLUDED.updated_at`,
		l.ID, l.PropertyID, l.TenantID, l.InviteTokenID, l.CreatedAt, l.UpdatedAt,
	)
	return err
}

func (r *linksRepo) GetLink(ctx context.Context, propertyID, tenantID string) (domain.TenantLink, error) {
	var (
		l       domain.TenantLink
		tokenID sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, property_id, tenant_id, invite_token_id, status, created_at, updated_at
		FROM tenant_links WHERE property_id = $1 AND tenant_id = $2`,
		propertyID, tenantID,
	).Scan(&l.ID, &l.PropertyID, &l.TenantID, &tokenID, &l.Status, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return domain.TenantLink{}, mapNotFound(err)
	}
	l.InviteTokenID = mapNullString(tokenID)
	l.CreatedAt = l.CreatedAt.UTC()
	l.UpdatedAt = l.UpdatedAt.UTC()
	return l, nil
}
