package sqlite

import (
	"context"

	"github.com/dougsimpsoncodes/myailandlord/internal/invites/domain"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/store/drivers/sqlite/gen"
)

type propertiesRepo struct {
	q *gen.Queries
}

func (r *propertiesRepo) GetProperty(ctx context.Context, id string) (domain.Property, error) {
	row, err := r.q.GetProperty(ctx, id)
	if err != nil {
		return domain.Property{}, mapNotFound(err)
	}
	return domain.Property{
		ID:        row.ID,
		OwnerID:   row.OwnerID,
		Name:      row.Name,
		Address:   row.Address,
		OwnerName: row.OwnerName,
		CreatedAt: fromMillis(row.CreatedAt),
	}, nil
}

func (r *propertiesRepo) CreateProperty(ctx context.Context, p domain.Property) error {
	err := r.q.CreateProperty(ctx, gen.CreatePropertyParams{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		Name:      p.Name,
		Address:   p.Address,
		OwnerName: p.OwnerName,
		CreatedAt: toMillis(p.CreatedAt),
	})
	return mapConstraint(err)
}
