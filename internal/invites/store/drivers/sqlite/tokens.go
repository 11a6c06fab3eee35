package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dougsimpsoncodes/myailandlord/internal/invites/domain"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/store"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/store/drivers/sqlite/gen"
)

type tokensRepo struct {
	q *gen.Queries
}

func (r *tokensRepo) CreateToken(ctx context.Context, t domain.InviteToken) error {
	err := r.q.CreateInviteToken(ctx, gen.CreateInviteTokenParams{
		ID:         t.ID,
		Selector:   t.Selector,
		TokenHash:  t.TokenHash,
		Salt:       t.Salt,
		PropertyID: t.PropertyID,
		IssuerID:   t.IssuerID,
		MaxUses:    int64(t.MaxUses),
		ExpiresAt:  toMillis(t.ExpiresAt),
		CreatedAt:  toMillis(t.CreatedAt),
		UpdatedAt:  toMillis(t.UpdatedAt),
	})
	return mapConstraint(err)
}

func (r *tokensRepo) GetTokenByID(ctx context.Context, id string) (domain.InviteToken, error) {
	row, err := r.q.GetInviteTokenByID(ctx, id)
	if err != nil {
		return domain.InviteToken{}, mapNotFound(err)
	}
	return mapInviteToken(row), nil
}

func (r *tokensRepo) GetTokenBySelector(ctx context.Context, selector string) (domain.InviteToken, error) {
	row, err := r.q.GetInviteTokenBySelector(ctx, selector)
	if err != nil {
		return domain.InviteToken{}, mapNotFound(err)
	}
	return mapInviteToken(row), nil
}

func (r *tokensRepo) IncrementUseCount(ctx context.Context, id string, now time.Time) (domain.InviteToken, error) {
	row, err := r.q.IncrementInviteTokenUseCount(ctx, gen.IncrementInviteTokenUseCountParams{
		UpdatedAt: toMillis(now),
		ID:        id,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return domain.InviteToken{}, store.ErrConditionFailed
	}
	if err != nil {
		return domain.InviteToken{}, err
	}
	return mapInviteToken(row), nil
}

func (r *tokensRepo) RevokeToken(ctx context.Context, id string, now time.Time) error {
	_, err := r.q.RevokeInviteToken(ctx, gen.RevokeInviteTokenParams{
		RevokedAt: sql.NullInt64{Int64: toMillis(now), Valid: true},
		UpdatedAt: toMillis(now),
		ID:        id,
	})
	return err
}

func (r *tokensRepo) DeleteTokensExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.q.DeleteInviteTokensExpiredBefore(ctx, toMillis(cutoff))
}

func mapInviteToken(row gen.InviteToken) domain.InviteToken {
	return domain.InviteToken{
		ID:         row.ID,
		Selector:   row.Selector,
		TokenHash:  row.TokenHash,
		Salt:       row.Salt,
		PropertyID: row.PropertyID,
		IssuerID:   row.IssuerID,
		MaxUses:    int(row.MaxUses),
		UseCount:   int(row.UseCount),
		ExpiresAt:  fromMillis(row.ExpiresAt),
		RevokedAt:  mapNullMillis(row.RevokedAt),
		CreatedAt:  fromMillis(row.CreatedAt),
		UpdatedAt:  fromMillis(row.UpdatedAt),
	}
}
