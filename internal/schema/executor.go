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
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ProvisionPolicy decides what the executor does when it hits a tenant
// whose schema has never been created. The choice is explicit at
// construction; an uninitialized schema is never silently treated as an
// empty result set.
type ProvisionPolicy int

const (
	// FailUnprovisioned surfaces ErrTenantNotInitialized to the caller.
	FailUnprovisioned ProvisionPolicy = iota
	// AutoProvision lazily provisions the schema and retries the call.
	AutoProvision
)

// Executor routes templated queries into the correct tenant schema:
// resolve the schema through the registry, expand the template, bind
// parameters positionally and run against the shared store. It holds no
// per-call mutable state, so calls for any mix of tenants may run
// concurrently; isolation between tenants is the schema qualification
// itself.
type Executor struct {
	store       Store
	registry    *Registry
	provisioner *Provisioner
	policy      ProvisionPolicy
}

// NewExecutor creates a tenant-scoped executor. The provisioner may be
// nil when the policy is FailUnprovisioned.
func NewExecutor(store Store, registry *Registry, provisioner *Provisioner, policy ProvisionPolicy) *Executor {
	if policy == AutoProvision && provisioner == nil {
		panic("schema: AutoProvision policy requires a provisioner")
	}
	return &Executor{
		store:       store,
		registry:    registry,
		provisioner: provisioner,
		policy:      policy,
	}
}

// Query expands the template for the tenant's schema and runs it,
// returning driver rows. Callers own closing the rows; pgx row-mapping
// helpers (pgx.CollectRows) compose directly on the result.
func (e *Executor) Query(ctx context.Context, tenantID, template string, args ...any) (pgx.Rows, error) {
	stmt, err := e.prepare(ctx, tenantID, template)
	if err != nil {
		return nil, err
	}
	rows, err := e.store.Query(ctx, stmt, args...)
	if err != nil {
		e.logStoreError(ctx, tenantID, stmt, err)
		return nil, fmt.Errorf("tenant query failed: %w", err)
	}
	return rows, nil
}

// QueryRow runs a single-row template. The row's Scan reports
// pgx.ErrNoRows when nothing matched.
func (e *Executor) QueryRow(ctx context.Context, tenantID, template string, args ...any) (pgx.Row, error) {
	stmt, err := e.prepare(ctx, tenantID, template)
	if err != nil {
		return nil, err
	}
	return e.store.QueryRow(ctx, stmt, args...), nil
}

// Exec runs a mutation template and returns the command tag.
func (e *Executor) Exec(ctx context.Context, tenantID, template string, args ...any) (pgconn.CommandTag, error) {
	stmt, err := e.prepare(ctx, tenantID, template)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	tag, err := e.store.Exec(ctx, stmt, args...)
	if err != nil {
		e.logStoreError(ctx, tenantID, stmt, err)
		return pgconn.CommandTag{}, fmt.Errorf("tenant exec failed: %w", err)
	}
	return tag, nil
}

// prepare resolves the tenant schema, applying the provisioning policy,
// and expands the template.
func (e *Executor) prepare(ctx context.Context, tenantID, template string) (string, error) {
	name, err := e.registry.ResolveExisting(ctx, tenantID)
	if err != nil {
		if !errors.Is(err, ErrTenantNotInitialized) || e.policy != AutoProvision {
			return "", err
		}
		name, err = e.registry.Resolve(ctx, tenantID)
		if err != nil {
			return "", err
		}
		if err := e.provisioner.ProvisionSchema(ctx, name); err != nil {
			return "", err
		}
	}
	return Expand(template, name)
}

// logStoreError records the schema-expanded statement server-side for
// diagnosis. The wrapped error returned to callers stays generic; raw
// store internals never reach API responses.
func (e *Executor) logStoreError(ctx context.Context, tenantID, stmt string, err error) {
	slog.ErrorContext(ctx, "tenant-scoped statement failed",
		slog.String("tenant_id", tenantID),
		slog.String("statement", stmt),
		slog.String("error", err.Error()),
	)
}
