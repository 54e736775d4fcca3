package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/triage-api/internal/model"
	"github.com/jwalitptl/triage-api/internal/repository"
)

const resourceColumns = `id, resource_type, current_stock, critical_level, last_updated, location`

type resourceRepository struct {
	BaseRepository
}

func NewResourceRepository(db *sqlx.DB) repository.ResourceRepository {
	return &resourceRepository{NewBaseRepository(db)}
}

func (r *resourceRepository) List(ctx context.Context) ([]*model.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources ORDER BY resource_type ASC`
	resources := []*model.Resource{}
	if err := r.db.SelectContext(ctx, &resources, query); err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	return resources, nil
}

func (r *resourceRepository) GetByType(ctx context.Context, resourceType string) (*model.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE resource_type = $1`
	var resource model.Resource
	if err := r.db.GetContext(ctx, &resource, query, resourceType); err != nil {
		return nil, fmt.Errorf("failed to get resource: %w", translate(err))
	}
	return &resource, nil
}

// Upsert inserts or replaces the row for resource.ResourceType and refreshes the
// caller's copy with the stored state.
func (r *resourceRepository) Upsert(ctx context.Context, resource *model.Resource) error {
	query := `
		INSERT INTO resources (resource_type, current_stock, critical_level, last_updated, location)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (resource_type) DO UPDATE SET
			current_stock = EXCLUDED.current_stock,
			critical_level = EXCLUDED.critical_level,
			last_updated = EXCLUDED.last_updated,
			location = EXCLUDED.location
		RETURNING ` + resourceColumns

	err := r.db.QueryRowxContext(ctx, query,
		resource.ResourceType,
		resource.CurrentStock,
		resource.CriticalLevel,
		resource.LastUpdated,
		resource.Location,
	).StructScan(resource)
	if err != nil {
		return fmt.Errorf("failed to upsert resource: %w", err)
	}
	return nil
}

func (r *resourceRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM resources`); err != nil {
		return 0, fmt.Errorf("failed to count resources: %w", err)
	}
	return n, nil
}
