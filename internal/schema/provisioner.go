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
	"log/slog"
)

// Provisioner creates and repairs tenant schemas. All DDL uses IF NOT
// EXISTS semantics, so Provision is idempotent: running it against a
// fully provisioned schema is a no-op, and running it against a
// partially provisioned one creates only what is missing, without
// touching existing tables' data.
type Provisioner struct {
	store    Store
	registry *Registry
}

// NewProvisioner creates a provisioner over the given store and registry.
func NewProvisioner(store Store, registry *Registry) *Provisioner {
	return &Provisioner{store: store, registry: registry}
}

// Provision creates the tenant's schema and the full canonical table set.
// Safe to call at any time, including as a repair operation.
func (p *Provisioner) Provision(ctx context.Context, tenantID string) error {
	name, err := p.registry.Resolve(ctx, tenantID)
	if err != nil {
		return err
	}
	return p.ProvisionSchema(ctx, name)
}

// ProvisionSchema provisions by schema name directly. Used by repair
// tooling that iterates recorded schema names without re-resolving
// tenants.
func (p *Provisioner) ProvisionSchema(ctx context.Context, schemaName string) error {
	if err := ValidateIdentifier(schemaName); err != nil {
		return err
	}

	if _, err := p.store.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+QuoteIdentifier(schemaName)); err != nil {
		return &ProvisioningError{Tenant: schemaName, Step: "create schema", Err: err}
	}

	for _, table := range TenantTables {
		stmt, err := Expand(table.Create, schemaName)
		if err != nil {
			return &ProvisioningError{Tenant: schemaName, Step: "expand " + table.Name, Err: err}
		}
		if _, err := p.store.Exec(ctx, stmt); err != nil {
			return &ProvisioningError{Tenant: schemaName, Step: "create table " + table.Name, Err: err}
		}
		for _, idx := range table.Indexes {
			stmt, err := Expand(idx, schemaName)
			if err != nil {
				return &ProvisioningError{Tenant: schemaName, Step: "expand index on " + table.Name, Err: err}
			}
			if _, err := p.store.Exec(ctx, stmt); err != nil {
				return &ProvisioningError{Tenant: schemaName, Step: "create index on " + table.Name, Err: err}
			}
		}
	}

	p.registry.MarkProvisioned(schemaName)
	slog.InfoContext(ctx, "tenant schema provisioned", slog.String("schema", schemaName))
	return nil
}

// Drop removes a tenant's schema and all its data. Destructive and
// irreversible; callers must pass confirm=true explicitly, a bare
// delete-by-id path can never reach the cascade.
func (p *Provisioner) Drop(ctx context.Context, tenantID string, confirm bool) error {
	if !confirm {
		return ErrDropNotConfirmed
	}
	name, err := p.registry.Resolve(ctx, tenantID)
	if err != nil {
		return err
	}
	if _, err := p.store.Exec(ctx, "DROP SCHEMA IF EXISTS "+QuoteIdentifier(name)+" CASCADE"); err != nil {
		return fmt.Errorf("dropping schema %s: %w", name, err)
	}
	p.registry.Forget(name)
	slog.InfoContext(ctx, "tenant schema dropped", slog.String("schema", name))
	return nil
}
