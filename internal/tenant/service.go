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

package tenant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/casefolio/casefolio/internal/audit"
	"github.com/casefolio/casefolio/internal/schema"
)

// Service provides tenant lifecycle management: create (with schema
// provisioning), plan updates, soft deactivation and hard deletion
// (schema drop cascade).
type Service struct {
	repo        Repository
	provisioner Provisioner
	auditLogger audit.Logger
}

// NewService creates a new tenant service
func NewService(repo Repository, provisioner Provisioner, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		provisioner: provisioner,
		auditLogger: auditLogger,
	}
}

// CreateTenant creates a tenant row and provisions its schema. The
// tenant ID is a UUIDv7 generated here; the schema name is derived from
// it and fixed for the tenant's lifetime.
func (s *Service) CreateTenant(ctx context.Context, name, tier string, maxUsers, maxStorageMB int) (*Tenant, error) {
	if name == "" {
		return nil, fmt.Errorf("tenant name is required")
	}
	if tier == "" {
		tier = TierBasic
	}
	if tier != TierBasic && tier != TierPro {
		return nil, fmt.Errorf("invalid tier: %s", tier)
	}
	if maxUsers <= 0 {
		maxUsers = DefaultMaxUsers
	}
	if maxStorageMB <= 0 {
		maxStorageMB = DefaultMaxStorageMB
	}

	if existing, err := s.repo.GetByName(ctx, name); err == nil && existing != nil {
		return nil, fmt.Errorf("tenant %q: %w", name, ErrTenantExists)
	}

	id := uuid.Must(uuid.NewV7()).String()
	schemaName, err := schema.ForTenant(id)
	if err != nil {
		return nil, fmt.Errorf("deriving schema name: %w", err)
	}

	now := time.Now()
	t := &Tenant{
		ID:           id,
		Name:         name,
		SchemaName:   schemaName,
		MaxUsers:     maxUsers,
		MaxStorageMB: maxStorageMB,
		Tier:         tier,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	// The row exists before the schema does. Provisioning is idempotent,
	// so a crash between the two steps is repaired by the next provision
	// (or by the executor's auto-provision policy).
	if err := s.provisioner.Provision(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to provision tenant schema: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantCreated,
		TenantID: id,
		Resource: schemaName,
		Metadata: map[string]any{"name": name, "tier": tier},
	})

	return t, nil
}

// GetTenant retrieves a tenant by ID
func (s *Service) GetTenant(ctx context.Context, id string) (*Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

// ListTenants lists tenants with pagination
func (s *Service) ListTenants(ctx context.Context, limit, offset int) ([]*Tenant, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// UpdatePlan changes a tenant's plan attributes and tier.
func (s *Service) UpdatePlan(ctx context.Context, id, tier string, maxUsers, maxStorageMB int) (*Tenant, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tier != "" {
		if tier != TierBasic && tier != TierPro {
			return nil, fmt.Errorf("invalid tier: %s", tier)
		}
		t.Tier = tier
	}
	if maxUsers > 0 {
		t.MaxUsers = maxUsers
	}
	if maxStorageMB > 0 {
		t.MaxStorageMB = maxStorageMB
	}
	t.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}
	return t, nil
}

// Deactivate flips the tenant to inactive. Soft: the schema and all data
// stay in place.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	t.Status = StatusInactive
	t.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, t); err != nil {
		return fmt.Errorf("failed to deactivate tenant: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantDeactivated,
		TenantID: id,
	})
	return nil
}

// DeleteTenant hard-deletes a tenant: marks the row deleted and drops
// its schema cascade. Irreversible; confirm must be true, the flag is
// threaded through to the provisioner rather than assumed here.
func (s *Service) DeleteTenant(ctx context.Context, id string, confirm bool) error {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.provisioner.Drop(ctx, id, confirm); err != nil {
		return err
	}
	if err := s.repo.MarkDeleted(ctx, id); err != nil {
		return fmt.Errorf("failed to mark tenant deleted: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantDeleted,
		TenantID: id,
		Resource: t.SchemaName,
	})
	return nil
}
