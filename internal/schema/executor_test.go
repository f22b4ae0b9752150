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
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeStore records executed statements and simulates the schema
// catalog. Schemas become "existing" when a CREATE SCHEMA statement for
// them is executed.
type fakeStore struct {
	executed    []string
	schemas     map[string]bool
	existsCalls int
	execErr     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{schemas: make(map[string]bool)}
}

func (s *fakeStore) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	s.executed = append(s.executed, sql)
	return nil, nil
}

func (s *fakeStore) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	s.executed = append(s.executed, sql)
	return nil
}

func (s *fakeStore) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if s.execErr != nil {
		return pgconn.CommandTag{}, s.execErr
	}
	s.executed = append(s.executed, sql)
	if strings.HasPrefix(sql, "CREATE SCHEMA IF NOT EXISTS ") {
		name := strings.Trim(strings.TrimPrefix(sql, "CREATE SCHEMA IF NOT EXISTS "), `"`)
		s.schemas[name] = true
	}
	if strings.HasPrefix(sql, "DROP SCHEMA IF EXISTS ") {
		name := strings.TrimSuffix(strings.TrimPrefix(sql, "DROP SCHEMA IF EXISTS "), " CASCADE")
		delete(s.schemas, strings.Trim(name, `"`))
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (s *fakeStore) SchemaExists(ctx context.Context, name string) (bool, error) {
	s.existsCalls++
	return s.schemas[name], nil
}

// fakeTenants maps tenant IDs to schema names.
type fakeTenants map[string]string

func (f fakeTenants) SchemaName(ctx context.Context, tenantID string) (string, error) {
	name, ok := f[tenantID]
	if !ok {
		return "", fmt.Errorf("tenant %s: %w", tenantID, ErrTenantUnknown)
	}
	return name, nil
}

// TestPurpose: Validates the fail-closed provisioning policy: an unprovisioned tenant is a hard error, never an empty result.
// Scope: Unit Test
// Security: Tenant isolation; prevents silent queries against the wrong namespace
// Expected: ErrTenantNotInitialized for known-but-unprovisioned tenants, ErrTenantUnknown for unknown ones.
// Test Case ID: SCH-04
func TestExecutor_FailUnprovisioned(t *testing.T) {
	store := newFakeStore()
	tenants := fakeTenants{"t1": "tenant_t1"}
	registry := NewRegistry(tenants, store)
	exec := NewExecutor(store, registry, nil, FailUnprovisioned)

	ctx := context.Background()

	_, err := exec.Query(ctx, "t1", `SELECT id FROM {{schema}}.clients`)
	if !errors.Is(err, ErrTenantNotInitialized) {
		t.Fatalf("expected ErrTenantNotInitialized, got %v", err)
	}
	if len(store.executed) != 0 {
		t.Errorf("no statement should reach the store, got %v", store.executed)
	}

	_, err = exec.Query(ctx, "nobody", `SELECT id FROM {{schema}}.clients`)
	if !errors.Is(err, ErrTenantUnknown) {
		t.Fatalf("expected ErrTenantUnknown, got %v", err)
	}
}

// TestPurpose: Validates lazy provisioning under the AutoProvision policy.
// Scope: Unit Test
// Expected: First touch creates the schema and full table set, then the original statement runs schema-qualified.
// Test Case ID: SCH-05
func TestExecutor_AutoProvision(t *testing.T) {
	store := newFakeStore()
	tenants := fakeTenants{"t1": "tenant_t1"}
	registry := NewRegistry(tenants, store)
	provisioner := NewProvisioner(store, registry)
	exec := NewExecutor(store, registry, provisioner, AutoProvision)

	ctx := context.Background()

	if _, err := exec.Exec(ctx, "t1", `UPDATE {{schema}}.clients SET active = FALSE WHERE id = $1`, "c1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.executed) == 0 {
		t.Fatal("expected statements to be executed")
	}
	if store.executed[0] != `CREATE SCHEMA IF NOT EXISTS "tenant_t1"` {
		t.Errorf("expected schema creation first, got %q", store.executed[0])
	}
	last := store.executed[len(store.executed)-1]
	if last != `UPDATE "tenant_t1".clients SET active = FALSE WHERE id = $1` {
		t.Errorf("expected expanded statement last, got %q", last)
	}
	// One table per canonical module, all in the tenant schema
	var creates int
	for _, stmt := range store.executed {
		if strings.HasPrefix(stmt, "CREATE TABLE IF NOT EXISTS ") {
			creates++
			if !strings.Contains(stmt, `"tenant_t1".`) {
				t.Errorf("table created outside tenant schema: %q", stmt)
			}
		}
	}
	if creates != len(TenantTables) {
		t.Errorf("expected %d tables, got %d", len(TenantTables), creates)
	}
}

// TestPurpose: Verifies the verified-schema cache skips redundant catalog checks.
// Scope: Unit Test
// Expected: The existence check runs once; subsequent calls for the same tenant reuse the cached verification.
// Test Case ID: SCH-06
func TestExecutor_VerifiedCache(t *testing.T) {
	store := newFakeStore()
	store.schemas["tenant_t1"] = true
	tenants := fakeTenants{"t1": "tenant_t1"}
	registry := NewRegistry(tenants, store)
	exec := NewExecutor(store, registry, nil, FailUnprovisioned)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := exec.Query(ctx, "t1", `SELECT id FROM {{schema}}.clients`); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if store.existsCalls != 1 {
		t.Errorf("expected 1 catalog check, got %d", store.existsCalls)
	}
}

func TestNewExecutor_PanicsWithoutProvisioner(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for AutoProvision without provisioner")
		}
	}()
	NewExecutor(newFakeStore(), NewRegistry(fakeTenants{}, newFakeStore()), nil, AutoProvision)
}
