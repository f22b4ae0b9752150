package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/casefolio/casefolio/internal/publications"
)

// PublicationRequest carries the writable publication fields.
type PublicationRequest struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Status string   `json:"status"`
	Tags   []string `json:"tags"`
}

// CreatePublication handles POST /api/v1/publications
func (h *Handler) CreatePublication(w http.ResponseWriter, r *http.Request) {
	var req PublicationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	p := &publications.Publication{
		Title:  req.Title,
		Body:   req.Body,
		Status: req.Status,
		Tags:   req.Tags,
	}
	if p.Status == publications.StatusPublished {
		now := time.Now()
		p.PublishedAt = &now
	}
	if err := h.publications.Create(r.Context(), GetTenantID(r.Context()), p); err != nil {
		respondStoreError(w, r, err, publications.ErrPublicationNotFound)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

// GetPublication handles GET /api/v1/publications/{id}
func (h *Handler) GetPublication(w http.ResponseWriter, r *http.Request) {
	p, err := h.publications.GetByID(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, publications.ErrPublicationNotFound)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// UpdatePublication handles PUT /api/v1/publications/{id}
func (h *Handler) UpdatePublication(w http.ResponseWriter, r *http.Request) {
	tenantID := GetTenantID(r.Context())
	p, err := h.publications.GetByID(r.Context(), tenantID, chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, publications.ErrPublicationNotFound)
		return
	}

	var req PublicationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	p.Title = req.Title
	p.Body = req.Body
	p.Tags = req.Tags
	// First transition to published stamps the publication time.
	if req.Status == publications.StatusPublished && p.Status != publications.StatusPublished {
		now := time.Now()
		p.PublishedAt = &now
	}
	if req.Status != "" {
		p.Status = req.Status
	}

	if err := h.publications.Update(r.Context(), tenantID, p); err != nil {
		respondStoreError(w, r, err, publications.ErrPublicationNotFound)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// DeletePublication handles DELETE /api/v1/publications/{id}
func (h *Handler) DeletePublication(w http.ResponseWriter, r *http.Request) {
	err := h.publications.Delete(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, publications.ErrPublicationNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPublications handles GET /api/v1/publications
func (h *Handler) ListPublications(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	q := r.URL.Query()
	f := publications.Filter{
		Status: q.Get("status"),
		Search: q.Get("search"),
		Tag:    q.Get("tag"),
		Page:   page,
		Limit:  limit,
	}

	items, total, err := h.publications.List(r.Context(), GetTenantID(r.Context()), f)
	if err != nil {
		respondStoreError(w, r, err, publications.ErrPublicationNotFound)
		return
	}
	respondJSON(w, http.StatusOK, listResponse{Items: items, Total: total, Page: page, Limit: limit})
}
