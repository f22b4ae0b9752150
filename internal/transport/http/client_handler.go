package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/casefolio/casefolio/internal/clients"
)

// ClientRequest carries the writable client fields.
type ClientRequest struct {
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Phone   string   `json:"phone"`
	Company string   `json:"company"`
	Address string   `json:"address"`
	Notes   string   `json:"notes"`
	Tags    []string `json:"tags"`
}

// CreateClient handles POST /api/v1/clients
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	c := &clients.Client{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Address: req.Address,
		Notes:   req.Notes,
		Tags:    req.Tags,
	}
	if err := h.clients.Create(r.Context(), GetTenantID(r.Context()), c); err != nil {
		respondStoreError(w, r, err, clients.ErrClientNotFound)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

// GetClient handles GET /api/v1/clients/{id}
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	c, err := h.clients.GetByID(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, clients.ErrClientNotFound)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// UpdateClient handles PUT /api/v1/clients/{id}
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	tenantID := GetTenantID(r.Context())
	c, err := h.clients.GetByID(r.Context(), tenantID, chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, clients.ErrClientNotFound)
		return
	}

	var req ClientRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	c.Name = req.Name
	c.Email = req.Email
	c.Phone = req.Phone
	c.Company = req.Company
	c.Address = req.Address
	c.Notes = req.Notes
	c.Tags = req.Tags

	if err := h.clients.Update(r.Context(), tenantID, c); err != nil {
		respondStoreError(w, r, err, clients.ErrClientNotFound)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// DeleteClient handles DELETE /api/v1/clients/{id}
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	err := h.clients.Delete(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, clients.ErrClientNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListClients handles GET /api/v1/clients
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	f := clients.Filter{
		Search: r.URL.Query().Get("search"),
		Tag:    r.URL.Query().Get("tag"),
		Page:   page,
		Limit:  limit,
	}

	items, total, err := h.clients.List(r.Context(), GetTenantID(r.Context()), f)
	if err != nil {
		respondStoreError(w, r, err, clients.ErrClientNotFound)
		return
	}
	respondJSON(w, http.StatusOK, listResponse{Items: items, Total: total, Page: page, Limit: limit})
}
