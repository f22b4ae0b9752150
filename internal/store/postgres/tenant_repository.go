// Copyright 2026 The Casefolio Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/casefolio/casefolio/internal/schema"
	"github.com/casefolio/casefolio/internal/tenant"
)

// TenantRepository implements tenant.Repository and schema.TenantSource.
// Tenant rows live in the shared public schema.
type TenantRepository struct {
	db *DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *DB) *TenantRepository {
	return &TenantRepository{db: db}
}

const tenantColumns = `id, name, schema_name, max_users, max_storage_mb, tier, status, created_at, updated_at`

// Create inserts a new tenant
func (r *TenantRepository) Create(ctx context.Context, t *tenant.Tenant) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO tenants (`+tenantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, t.ID, t.Name, t.SchemaName, t.MaxUsers, t.MaxStorageMB, t.Tier, t.Status, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert tenant: %w", err)
	}
	return nil
}

// GetByID retrieves a tenant by ID
func (r *TenantRepository) GetByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT `+tenantColumns+`
		FROM tenants
		WHERE id = $1 AND status <> 'deleted'
	`, id)
	return scanTenant(row)
}

// GetByName retrieves a tenant by display name
func (r *TenantRepository) GetByName(ctx context.Context, name string) (*tenant.Tenant, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT `+tenantColumns+`
		FROM tenants
		WHERE name = $1 AND status <> 'deleted'
	`, name)
	return scanTenant(row)
}

// Update rewrites the mutable fields of a tenant. The schema name is
// immutable and deliberately absent from the SET list.
func (r *TenantRepository) Update(ctx context.Context, t *tenant.Tenant) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE tenants
		SET name = $2, max_users = $3, max_storage_mb = $4, tier = $5, status = $6, updated_at = $7
		WHERE id = $1 AND status <> 'deleted'
	`, t.ID, t.Name, t.MaxUsers, t.MaxStorageMB, t.Tier, t.Status, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tenant.ErrTenantNotFound
	}
	return nil
}

// List retrieves one page of tenants plus the total count
func (r *TenantRepository) List(ctx context.Context, limit, offset int) ([]*tenant.Tenant, int, error) {
	var total int
	err := r.db.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM tenants WHERE status <> 'deleted'
	`).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count tenants: %w", err)
	}

	rows, err := r.db.pool.Query(ctx, `
		SELECT `+tenantColumns+`
		FROM tenants
		WHERE status <> 'deleted'
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var out []*tenant.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

// ListSchemaNames returns the schema names of all live tenants, used by
// the repair pass of the migrate command.
func (r *TenantRepository) ListSchemaNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT schema_name FROM tenants WHERE status <> 'deleted' ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list schema names: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan schema name: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// MarkDeleted flags a tenant as hard-deleted. The schema drop happens
// separately in the provisioner.
func (r *TenantRepository) MarkDeleted(ctx context.Context, id string) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE tenants SET status = 'deleted', updated_at = now() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to mark tenant deleted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tenant.ErrTenantNotFound
	}
	return nil
}

// SchemaName implements schema.TenantSource.
func (r *TenantRepository) SchemaName(ctx context.Context, tenantID string) (string, error) {
	var name string
	err := r.db.pool.QueryRow(ctx, `
		SELECT schema_name FROM tenants WHERE id = $1 AND status <> 'deleted'
	`, tenantID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("tenant %s: %w", tenantID, schema.ErrTenantUnknown)
		}
		return "", fmt.Errorf("failed to resolve tenant schema: %w", err)
	}
	return name, nil
}

func scanTenant(row pgx.Row) (*tenant.Tenant, error) {
	var t tenant.Tenant
	err := row.Scan(
		&t.ID, &t.Name, &t.SchemaName, &t.MaxUsers, &t.MaxStorageMB,
		&t.Tier, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to scan tenant: %w", err)
	}
	return &t, nil
}
