package sqlite

import (
	"context"

	"github.com/dougsimpsoncodes/myailandlord/internal/invites/domain"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/store/drivers/sqlite/gen"
)

type linksRepo struct {
	q *gen.Queries
}

func (r *linksRepo) ActivateLink(ctx context.Context, l domain.TenantLink) error {
	return r.q.UpsertActiveTenantLink(ctx, gen.UpsertActiveTenantLinkParams{
		ID:            l.ID,
		PropertyID:    l.PropertyID,
		TenantID:      l.TenantID,
		InviteTokenID: mapOptionalString(l.InviteTokenID),
		CreatedAt:     toMillis(l.CreatedAt),
		UpdatedAt:     toMillis(l.UpdatedAt),
	})
}

func (r *linksRepo) GetLink(ctx context.Context, propertyID, tenantID string) (domain.TenantLink, error) {
	row, err := r.q.GetTenantLink(ctx, gen.GetTenantLinkParams{
		PropertyID: propertyID,
		TenantID:   tenantID,
	})
	if err != nil {
		return domain.TenantLink{}, mapNotFound(err)
	}
	return domain.TenantLink{
		ID:            row.ID,
		PropertyID:    row.PropertyID,
		TenantID:      row.TenantID,
		InviteTokenID: mapNullString(row.InviteTokenID),
		Status:        row.Status,
		CreatedAt:     fromMillis(row.CreatedAt),
		UpdatedAt:     fromMillis(row.UpdatedAt),
	}, nil
}
