package tenant

import (
	"context"
	"errors"
)

var (
	ErrTenantNotFound = errors.New("tenant not found")
	ErrTenantExists   = errors.New("tenant already exists")
)

// Repository defines the interface for tenant storage. Tenants live in
// the shared schema, not in any tenant schema.
type Repository interface {
	Create(ctx context.Context, tenant *Tenant) error
	GetByID(ctx context.Context, id string) (*Tenant, error)
	GetByName(ctx context.Context, name string) (*Tenant, error)
	Update(ctx context.Context, tenant *Tenant) error
	// List returns one page of tenants plus the total count of
	// non-deleted tenants, so callers can paginate honestly.
	List(ctx context.Context, limit, offset int) ([]*Tenant, int, error)
	ListSchemaNames(ctx context.Context) ([]string, error)
	MarkDeleted(ctx context.Context, id string) error
}

// Provisioner is the slice of the schema layer the tenant service needs:
// create the tenant's schema on creation, drop it on hard delete.
type Provisioner interface {
	Provision(ctx context.Context, tenantID string) error
	Drop(ctx context.Context, tenantID string, confirm bool) error
}
