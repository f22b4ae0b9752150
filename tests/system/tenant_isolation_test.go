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

// Package system provides integration tests that run against a real PostgreSQL database.
//
// Test Execution:
//
//	INTEGRATION_TEST=true go test -v ./tests/system/...
//
// Prerequisites:
//
//	docker compose up -d postgres
//
// Test Categories:
//   - TEN-*: Tenant isolation tests
//   - PRV-*: Provisioning and repair tests
//   - PAG-*: Pagination tests
package system

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casefolio/casefolio/internal/audit"
	"github.com/casefolio/casefolio/internal/clients"
	"github.com/casefolio/casefolio/internal/schema"
	"github.com/casefolio/casefolio/internal/store/postgres"
	"github.com/casefolio/casefolio/internal/store/tenantpg"
	"github.com/casefolio/casefolio/internal/tasks"
	"github.com/casefolio/casefolio/internal/tenant"
)

// testDB is the shared database connection for integration tests
var testDB *postgres.DB

// TestMain sets up and tears down the test database connection
func TestMain(m *testing.M) {
	// Skip if not integration test
	if os.Getenv("INTEGRATION_TEST") != "true" {
		os.Exit(0)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, postgres.Config{
		Host:         getEnvOrDefault("DB_HOST", "localhost"),
		Port:         getEnvOrDefault("DB_PORT", "5432"),
		User:         getEnvOrDefault("DB_USER", "casefolio"),
		Password:     getEnvOrDefault("DB_PASSWORD", "casefolio_dev_password"),
		Database:     getEnvOrDefault("DB_NAME", "casefolio"),
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	})
	if err != nil {
		panic("failed to connect to test database: " + err.Error())
	}
	testDB = db

	if err := db.Migrate(ctx, postgres.SharedSchema); err != nil {
		// Shared schema is idempotent; ignore re-run errors
		_ = err
	}

	code := m.Run()

	testDB.Close()
	os.Exit(code)
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// newStack wires a full tenancy stack against the test database.
func newStack() (*tenant.Service, *schema.Executor, *schema.Provisioner) {
	tenantRepo := postgres.NewTenantRepository(testDB)
	registry := schema.NewRegistry(tenantRepo, testDB)
	provisioner := schema.NewProvisioner(testDB, registry)
	executor := schema.NewExecutor(testDB, registry, provisioner, schema.FailUnprovisioned)
	tenantService := tenant.NewService(tenantRepo, provisioner, audit.NewSlogLogger())
	return tenantService, executor, provisioner
}

func uniqueName(prefix string) string {
	return prefix + " " + uuid.Must(uuid.NewV7()).String()[:8]
}

// =============================================================================
// TENANT ISOLATION TESTS
// =============================================================================

// TestPurpose: Validates that identical data in two tenant workspaces never bleeds across the boundary.
// Scope: Integration Test
// Security: Multi-tenancy boundary enforcement via schema separation
// Expected: A client named Alice in both tenants resolves per tenant; deleting one leaves the other intact.
// Test Case ID: TEN-01
func TestTenant_Isolation_SameDataDistinctWorkspaces(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database (set INTEGRATION_TEST=true)")
	}

	ctx := context.Background()
	tenantService, executor, _ := newStack()
	clientRepo := tenantpg.NewClientRepository(executor)

	tenantA, err := tenantService.CreateTenant(ctx, uniqueName("Firm A"), "", 0, 0)
	require.NoError(t, err, "TEN-01: Failed to create tenant A")
	tenantB, err := tenantService.CreateTenant(ctx, uniqueName("Firm B"), "", 0, 0)
	require.NoError(t, err, "TEN-01: Failed to create tenant B")
	defer tenantService.DeleteTenant(ctx, tenantA.ID, true)
	defer tenantService.DeleteTenant(ctx, tenantB.ID, true)

	assert.NotEqual(t, tenantA.SchemaName, tenantB.SchemaName,
		"TEN-01: Tenants must land in distinct schemas")

	// Same display data in both workspaces
	aliceA := &clients.Client{Name: "Alice", Email: "alice@a.example"}
	require.NoError(t, clientRepo.Create(ctx, tenantA.ID, aliceA))
	aliceB := &clients.Client{Name: "Alice", Email: "alice@b.example"}
	require.NoError(t, clientRepo.Create(ctx, tenantB.ID, aliceB))

	// Each tenant resolves its own Alice by its own ID
	gotA, err := clientRepo.GetByID(ctx, tenantA.ID, aliceA.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@a.example", gotA.Email)

	// CRITICAL: tenant A's ID resolves nothing inside tenant B
	_, err = clientRepo.GetByID(ctx, tenantB.ID, aliceA.ID)
	assert.ErrorIs(t, err, clients.ErrClientNotFound,
		"TEN-01 SECURITY: Tenant A's rows MUST be invisible to tenant B")

	// Deleting in B leaves A untouched
	require.NoError(t, clientRepo.Delete(ctx, tenantB.ID, aliceB.ID))
	_, err = clientRepo.GetByID(ctx, tenantA.ID, aliceA.ID)
	assert.NoError(t, err, "TEN-01: Deletion in tenant B must not affect tenant A")
}

// TestPurpose: Validates the fail-closed behavior for tenants whose workspace was never provisioned.
// Scope: Integration Test
// Security: An unprovisioned workspace is an error, never an empty dataset
// Expected: Queries against an unknown tenant fail with ErrTenantUnknown.
// Test Case ID: TEN-02
func TestTenant_Isolation_UnknownTenantFailsClosed(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database")
	}

	_, executor, _ := newStack()
	clientRepo := tenantpg.NewClientRepository(executor)

	_, err := clientRepo.GetByID(context.Background(), uuid.Must(uuid.NewV7()).String(), "any")
	assert.ErrorIs(t, err, schema.ErrTenantUnknown,
		"TEN-02 SECURITY: Unknown tenants MUST fail closed")
}

// =============================================================================
// PROVISIONING TESTS
// =============================================================================

// TestPurpose: Validates that re-provisioning repairs a partially created workspace without data loss.
// Scope: Integration Test
// Expected: After dropping one table, Provision recreates it and leaves existing rows in other tables intact.
// Test Case ID: PRV-01
func TestProvision_RepairRestoresMissingTables(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database")
	}

	ctx := context.Background()
	tenantService, executor, provisioner := newStack()
	clientRepo := tenantpg.NewClientRepository(executor)

	created, err := tenantService.CreateTenant(ctx, uniqueName("Repair Firm"), "", 0, 0)
	require.NoError(t, err)
	defer tenantService.DeleteTenant(ctx, created.ID, true)

	alice := &clients.Client{Name: "Alice"}
	require.NoError(t, clientRepo.Create(ctx, created.ID, alice))

	// Simulate a damaged workspace: one canonical table is gone
	_, err = testDB.Exec(ctx, fmt.Sprintf(`DROP TABLE %s.tasks`, schema.QuoteIdentifier(created.SchemaName)))
	require.NoError(t, err)

	// Repair
	require.NoError(t, provisioner.Provision(ctx, created.ID), "PRV-01: Repair provision failed")

	// The missing table is back and usable
	taskRepo := tenantpg.NewTaskRepository(executor)
	_, total, err := taskRepo.List(ctx, created.ID, tasks.Filter{})
	require.NoError(t, err, "PRV-01: Repaired table should be queryable")
	assert.Zero(t, total)

	// Existing data in untouched tables survived
	got, err := clientRepo.GetByID(ctx, created.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
}

// TestPurpose: Validates the confirmed drop removes the schema entirely.
// Scope: Integration Test
// Expected: After DeleteTenant with confirm=true the schema is gone from the catalog.
// Test Case ID: PRV-02
func TestProvision_ConfirmedDropRemovesSchema(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database")
	}

	ctx := context.Background()
	tenantService, _, _ := newStack()

	created, err := tenantService.CreateTenant(ctx, uniqueName("Doomed Firm"), "", 0, 0)
	require.NoError(t, err)

	exists, err := testDB.SchemaExists(ctx, created.SchemaName)
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, tenantService.DeleteTenant(ctx, created.ID, true))

	exists, err = testDB.SchemaExists(ctx, created.SchemaName)
	require.NoError(t, err)
	assert.False(t, exists, "PRV-02: Schema must be dropped")
}

// =============================================================================
// PAGINATION TESTS
// =============================================================================

// TestPurpose: Validates that paging a filtered list to exhaustion yields every row exactly once.
// Scope: Integration Test
// Expected: The page lengths sum to the reported total, every total agrees across pages, and no ID repeats.
// Test Case ID: PAG-01
func TestList_PaginationSumEqualsTotal(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database")
	}

	ctx := context.Background()
	tenantService, executor, _ := newStack()
	clientRepo := tenantpg.NewClientRepository(executor)

	created, err := tenantService.CreateTenant(ctx, uniqueName("Paging Firm"), "", 0, 0)
	require.NoError(t, err)
	defer tenantService.DeleteTenant(ctx, created.ID, true)

	const seeded = 7
	for i := 0; i < seeded; i++ {
		c := &clients.Client{Name: fmt.Sprintf("Client %02d", i), Tags: []string{"paged"}}
		require.NoError(t, clientRepo.Create(ctx, created.ID, c))
	}

	seen := make(map[string]bool)
	fetched := 0
	for page := 1; ; page++ {
		items, total, err := clientRepo.List(ctx, created.ID, clients.Filter{Tag: "paged", Page: page, Limit: 3})
		require.NoError(t, err, "PAG-01: page %d failed", page)
		require.Equal(t, seeded, total, "PAG-01: total must be stable across pages")

		for _, c := range items {
			require.False(t, seen[c.ID], "PAG-01: client %s returned twice", c.ID)
			seen[c.ID] = true
		}
		fetched += len(items)
		if len(items) == 0 {
			break
		}
	}
	assert.Equal(t, seeded, fetched, "PAG-01: page lengths must sum to the total")
}
