package sqlite

import (
	"context"

	"github.com/dougsimpsoncodes/myailandlord/internal/invites/domain"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/store/drivers/sqlite/gen"
)

type redemptionsRepo struct {
	q *gen.Queries
}

func (r *redemptionsRepo) CreateRedemption(ctx context.Context, red domain.Redemption) (bool, error) {
	n, err := r.q.CreateInviteRedemption(ctx, gen.CreateInviteRedemptionParams{
		TokenID:     red.TokenID,
		PrincipalID: red.PrincipalID,
		PropertyID:  red.PropertyID,
		CreatedAt:   toMillis(red.CreatedAt),
	})
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *redemptionsRepo) GetRedemption(ctx context.Context, tokenID, principalID string) (domain.Redemption, error) {
	row, err := r.q.GetInviteRedemption(ctx, gen.GetInviteRedemptionParams{
		TokenID:     tokenID,
		PrincipalID: principalID,
	})
	if err != nil {
		return domain.Redemption{}, mapNotFound(err)
	}
	return domain.Redemption{
		TokenID:     row.TokenID,
		PrincipalID: row.PrincipalID,
		PropertyID:  row.PropertyID,
		CreatedAt:   fromMillis(row.CreatedAt),
	}, nil
}

func (r *redemptionsRepo) CountRedemptions(ctx context.Context, tokenID string) (int, error) {
	n, err := r.q.CountInviteRedemptions(ctx, tokenID)
	return int(n), err
}
