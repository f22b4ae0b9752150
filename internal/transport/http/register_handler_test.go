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

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casefolio/casefolio/internal/audit"
	"github.com/casefolio/casefolio/internal/regkey"
	"github.com/casefolio/casefolio/internal/tenant"
)

// memTenantRepo is a map-backed tenant.Repository for handler tests.
type memTenantRepo struct {
	tenants map[string]*tenant.Tenant
}

func newMemTenantRepo() *memTenantRepo {
	return &memTenantRepo{tenants: make(map[string]*tenant.Tenant)}
}

func (m *memTenantRepo) Create(ctx context.Context, t *tenant.Tenant) error {
	for _, existing := range m.tenants {
		if existing.Name == t.Name && existing.Status != tenant.StatusDeleted {
			return tenant.ErrTenantExists
		}
	}
	cp := *t
	m.tenants[t.ID] = &cp
	return nil
}

func (m *memTenantRepo) GetByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	t, ok := m.tenants[id]
	if !ok || t.Status == tenant.StatusDeleted {
		return nil, tenant.ErrTenantNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTenantRepo) GetByName(ctx context.Context, name string) (*tenant.Tenant, error) {
	for _, t := range m.tenants {
		if t.Name == name && t.Status != tenant.StatusDeleted {
			cp := *t
			return &cp, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (m *memTenantRepo) Update(ctx context.Context, t *tenant.Tenant) error {
	if _, ok := m.tenants[t.ID]; !ok {
		return tenant.ErrTenantNotFound
	}
	cp := *t
	m.tenants[t.ID] = &cp
	return nil
}

func (m *memTenantRepo) List(ctx context.Context, limit, offset int) ([]*tenant.Tenant, int, error) {
	var out []*tenant.Tenant
	for _, t := range m.tenants {
		if t.Status != tenant.StatusDeleted {
			out = append(out, t)
		}
	}
	return out, len(out), nil
}

func (m *memTenantRepo) ListSchemaNames(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (m *memTenantRepo) MarkDeleted(ctx context.Context, id string) error {
	t, ok := m.tenants[id]
	if !ok {
		return tenant.ErrTenantNotFound
	}
	t.Status = tenant.StatusDeleted
	return nil
}

type memProvisioner struct{}

func (memProvisioner) Provision(ctx context.Context, tenantID string) error { return nil }

func (memProvisioner) Drop(ctx context.Context, tenantID string, confirm bool) error { return nil }

// memKeyRepo is a map-backed regkey.Repository for handler tests.
type memKeyRepo struct {
	keys map[string]*regkey.Key
}

func newMemKeyRepo() *memKeyRepo {
	return &memKeyRepo{keys: make(map[string]*regkey.Key)}
}

func (m *memKeyRepo) Create(ctx context.Context, k *regkey.Key) error {
	cp := *k
	m.keys[k.ID] = &cp
	return nil
}

func (m *memKeyRepo) GetByID(ctx context.Context, id string) (*regkey.Key, error) {
	k, ok := m.keys[id]
	if !ok {
		return nil, regkey.ErrKeyNotFound
	}
	cp := *k
	return &cp, nil
}

func (m *memKeyRepo) ConsumeUse(ctx context.Context, id string) (bool, error) {
	k, ok := m.keys[id]
	if !ok || k.UsesRemaining <= 0 {
		return false, nil
	}
	k.UsesRemaining--
	return true, nil
}

func (m *memKeyRepo) RestoreUse(ctx context.Context, id string) error {
	k, ok := m.keys[id]
	if !ok {
		return regkey.ErrKeyNotFound
	}
	k.UsesRemaining++
	return nil
}

func (m *memKeyRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.keys[id]; !ok {
		return regkey.ErrKeyNotFound
	}
	delete(m.keys, id)
	return nil
}

func newRegisterHandler() (*Handler, *memKeyRepo) {
	keyRepo := newMemKeyRepo()
	auditLogger := audit.NewSlogLogger()
	return NewHandler(Deps{
		TenantService: tenant.NewService(newMemTenantRepo(), memProvisioner{}, auditLogger),
		RegKeyService: regkey.NewService(keyRepo, regkey.NewHasher(), auditLogger),
		AuditLogger:   auditLogger,
	}), keyRepo
}

func postRegister(t *testing.T, h *Handler, key, name string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(RegisterAccountRequest{Key: key, Name: name})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.RegisterAccount(rec, req)
	return rec
}

// TestPurpose: Validates that a failed registration does not spend the registration key.
// Scope: Unit Test
// Expected: A tenant-name conflict returns 409 and restores the consumed use; the key then registers a fresh name.
// Test Case ID: API-04
func TestRegisterAccount_FailedRegistrationKeepsKeyUse(t *testing.T) {
	h, keyRepo := newRegisterHandler()
	ctx := context.Background()

	_, err := h.tenantService.CreateTenant(ctx, "Acme Legal", "", 0, 0)
	require.NoError(t, err)

	key, plaintext, err := h.regkeyService.CreateKey(ctx, 1, "basic", nil, nil)
	require.NoError(t, err)

	rec := postRegister(t, h, plaintext, "Acme Legal")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 1, keyRepo.keys[key.ID].UsesRemaining,
		"a registration that created nothing must not spend the key")

	rec = postRegister(t, h, plaintext, "Blackstone & Rowe")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 0, keyRepo.keys[key.ID].UsesRemaining)

	rec = postRegister(t, h, plaintext, "Third Firm")
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "spent key must not register again")
}
