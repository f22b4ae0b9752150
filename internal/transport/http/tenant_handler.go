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
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/casefolio/casefolio/internal/schema"
	"github.com/casefolio/casefolio/internal/tenant"
)

// TenantRequest carries the writable tenant fields for the operator
// surface.
type TenantRequest struct {
	Name         string `json:"name"`
	Tier         string `json:"tier"`
	MaxUsers     int    `json:"max_users"`
	MaxStorageMB int    `json:"max_storage_mb"`
}

// CreateTenant handles POST /api/v1/admin/tenants
func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req TenantRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	t, err := h.tenantService.CreateTenant(r.Context(), req.Name, req.Tier, req.MaxUsers, req.MaxStorageMB)
	if err != nil {
		h.respondTenantError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, t)
}

// GetTenant handles GET /api/v1/admin/tenants/{id}
func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	t, err := h.tenantService.GetTenant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondTenantError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

// ListTenants handles GET /api/v1/admin/tenants
func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	items, total, err := h.tenantService.ListTenants(r.Context(), limit, (page-1)*limit)
	if err != nil {
		h.respondTenantError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, listResponse{Items: items, Total: total, Page: page, Limit: limit})
}

// UpdateTenantPlan handles PUT /api/v1/admin/tenants/{id}/plan
func (h *Handler) UpdateTenantPlan(w http.ResponseWriter, r *http.Request) {
	var req TenantRequest
	if !decodeBody(w, r, &req) {
		return
	}

	t, err := h.tenantService.UpdatePlan(r.Context(), chi.URLParam(r, "id"), req.Tier, req.MaxUsers, req.MaxStorageMB)
	if err != nil {
		h.respondTenantError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

// DeactivateTenant handles POST /api/v1/admin/tenants/{id}/deactivate
func (h *Handler) DeactivateTenant(w http.ResponseWriter, r *http.Request) {
	if err := h.tenantService.Deactivate(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondTenantError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteTenant handles DELETE /api/v1/admin/tenants/{id}. Destroying a
// workspace schema is irreversible, so the request must carry
// confirm=true explicitly.
func (h *Handler) DeleteTenant(w http.ResponseWriter, r *http.Request) {
	confirm := r.URL.Query().Get("confirm") == "true"
	err := h.tenantService.DeleteTenant(r.Context(), chi.URLParam(r, "id"), confirm)
	if err != nil {
		if errors.Is(err, schema.ErrDropNotConfirmed) {
			respondError(w, http.StatusBadRequest, "deletion requires confirm=true")
			return
		}
		h.respondTenantError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondTenantError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tenant.ErrTenantNotFound):
		respondError(w, http.StatusNotFound, "tenant not found")
	case errors.Is(err, tenant.ErrTenantExists):
		respondError(w, http.StatusConflict, "tenant already exists")
	default:
		respondStoreError(w, r, err, tenant.ErrTenantNotFound)
	}
}
