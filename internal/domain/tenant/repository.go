package tenant

import "context"

type Repository interface {
	Create(ctx context.Context, tenant *Tenant) error
	GetByID(ctx context.Context, id uint) (*Tenant, error)
	// UpdateProjection writes only the subscription projection columns.
	UpdateProjection(ctx context.Context, tenant *Tenant) error
}
