package schema

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// TestPurpose: Validates idempotent workspace provisioning and its use as a repair pass.
// Scope: Unit Test
// Expected: All DDL carries IF NOT EXISTS; a rerun issues the same statements and no destructive ones.
// Test Case ID: SCH-07
func TestProvisioner_Provision(t *testing.T) {
	store := newFakeStore()
	tenants := fakeTenants{"t1": "tenant_t1"}
	registry := NewRegistry(tenants, store)
	p := NewProvisioner(store, registry)

	ctx := context.Background()
	if err := p.Provision(ctx, "t1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, stmt := range store.executed {
		if !strings.Contains(stmt, "IF NOT EXISTS") {
			t.Errorf("non-idempotent DDL: %q", stmt)
		}
		if strings.Contains(stmt, Placeholder) {
			t.Errorf("unexpanded placeholder: %q", stmt)
		}
	}

	first := len(store.executed)
	if err := p.Provision(ctx, "t1"); err != nil {
		t.Fatalf("repair run failed: %v", err)
	}
	if len(store.executed) != 2*first {
		t.Errorf("repair run should reissue the same DDL, got %d then %d statements", first, len(store.executed)-first)
	}
}

func TestProvisioner_ProvisionUnknownTenant(t *testing.T) {
	store := newFakeStore()
	p := NewProvisioner(store, NewRegistry(fakeTenants{}, store))
	if err := p.Provision(context.Background(), "ghost"); !errors.Is(err, ErrTenantUnknown) {
		t.Errorf("expected ErrTenantUnknown, got %v", err)
	}
}

func TestProvisioner_ProvisionWrapsStepFailures(t *testing.T) {
	store := newFakeStore()
	store.execErr = errors.New("disk full")
	p := NewProvisioner(store, NewRegistry(fakeTenants{"t1": "tenant_t1"}, store))

	err := p.Provision(context.Background(), "t1")
	var perr *ProvisioningError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProvisioningError, got %v", err)
	}
	if perr.Step == "" {
		t.Error("expected the failing step to be recorded")
	}
	if !errors.Is(err, store.execErr) {
		t.Error("expected the cause to be unwrappable")
	}
}

// TestPurpose: Validates the destructive-drop guard.
// Scope: Unit Test
// Security: Prevents accidental loss of a tenant workspace
// Expected: Drop without confirm=true returns ErrDropNotConfirmed and never reaches the store; confirmed drops cascade and invalidate the cache.
// Test Case ID: SCH-08
func TestProvisioner_Drop(t *testing.T) {
	store := newFakeStore()
	tenants := fakeTenants{"t1": "tenant_t1"}
	registry := NewRegistry(tenants, store)
	p := NewProvisioner(store, registry)

	ctx := context.Background()

	if err := p.Drop(ctx, "t1", false); !errors.Is(err, ErrDropNotConfirmed) {
		t.Fatalf("expected ErrDropNotConfirmed, got %v", err)
	}
	if len(store.executed) != 0 {
		t.Fatalf("unconfirmed drop must not touch the store, got %v", store.executed)
	}

	if err := p.Provision(ctx, "t1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Drop(ctx, "t1", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := store.executed[len(store.executed)-1]
	if last != `DROP SCHEMA IF EXISTS "tenant_t1" CASCADE` {
		t.Errorf("unexpected drop statement: %q", last)
	}

	// The registry forgot the schema: resolution fails closed again.
	if _, err := registry.ResolveExisting(ctx, "t1"); !errors.Is(err, ErrTenantNotInitialized) {
		t.Errorf("expected ErrTenantNotInitialized after drop, got %v", err)
	}
}
