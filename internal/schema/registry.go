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

package schema

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Store is the minimal SQL surface the tenant-schema layer requires. It
// is satisfied by the pgx-backed store but deliberately agnostic to the
// driver; it only needs positional parameter binding, arbitrary DDL and
// a namespace existence check.
type Store interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SchemaExists(ctx context.Context, name string) (bool, error)
}

// TenantSource resolves a tenant identifier to its recorded schema name.
// Implementations return ErrTenantUnknown for tenants with no record.
type TenantSource interface {
	SchemaName(ctx context.Context, tenantID string) (string, error)
}

// Registry maps tenant identifiers to schema names and tracks whether a
// schema has been verified to exist in the store catalog. A tenant row
// can exist before its schema does (creation and provisioning are not
// atomic), so existence is checked against store metadata rather than
// assumed.
type Registry struct {
	tenants TenantSource
	store   Store

	mu       sync.RWMutex
	verified map[string]struct{}
}

// NewRegistry creates a registry backed by the given tenant source and
// store.
func NewRegistry(tenants TenantSource, store Store) *Registry {
	return &Registry{
		tenants:  tenants,
		store:    store,
		verified: make(map[string]struct{}),
	}
}

// Resolve returns the schema name for a tenant without checking whether
// the schema exists.
func (r *Registry) Resolve(ctx context.Context, tenantID string) (string, error) {
	name, err := r.tenants.SchemaName(ctx, tenantID)
	if err != nil {
		return "", err
	}
	if err := ValidateIdentifier(name); err != nil {
		return "", fmt.Errorf("stored schema name for tenant %s: %w", tenantID, err)
	}
	return name, nil
}

// ResolveExisting resolves the schema name and verifies against the
// store catalog that the schema has been provisioned. Verified schemas
// are cached; schemas are immutable once created and the cache is
// invalidated on drop.
func (r *Registry) ResolveExisting(ctx context.Context, tenantID string) (string, error) {
	name, err := r.Resolve(ctx, tenantID)
	if err != nil {
		return "", err
	}

	r.mu.RLock()
	_, ok := r.verified[name]
	r.mu.RUnlock()
	if ok {
		return name, nil
	}

	exists, err := r.store.SchemaExists(ctx, name)
	if err != nil {
		return "", fmt.Errorf("checking schema %s: %w", name, err)
	}
	if !exists {
		return "", fmt.Errorf("tenant %s: %w", tenantID, ErrTenantNotInitialized)
	}

	r.mu.Lock()
	r.verified[name] = struct{}{}
	r.mu.Unlock()
	return name, nil
}

// MarkProvisioned records that a schema is known to exist, typically
// right after provisioning, so the next resolve skips the catalog query.
func (r *Registry) MarkProvisioned(schemaName string) {
	r.mu.Lock()
	r.verified[schemaName] = struct{}{}
	r.mu.Unlock()
}

// Forget drops a schema from the verified cache. Called when a tenant
// schema is dropped.
func (r *Registry) Forget(schemaName string) {
	r.mu.Lock()
	delete(r.verified, schemaName)
	r.mu.Unlock()
}
