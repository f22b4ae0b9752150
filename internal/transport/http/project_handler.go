package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/casefolio/casefolio/internal/projects"
)

// ProjectRequest carries the writable project fields.
type ProjectRequest struct {
	ClientID    string     `json:"client_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	StartDate   *time.Time `json:"start_date"`
	DueDate     *time.Time `json:"due_date"`
	Tags        []string   `json:"tags"`
}

// CreateProject handles POST /api/v1/projects
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req ProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	p := &projects.Project{
		ClientID:    req.ClientID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
	}
	if err := h.projects.Create(r.Context(), GetTenantID(r.Context()), p); err != nil {
		respondStoreError(w, r, err, projects.ErrProjectNotFound)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

// GetProject handles GET /api/v1/projects/{id}
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.projects.GetByID(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, projects.ErrProjectNotFound)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// UpdateProject handles PUT /api/v1/projects/{id}
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	tenantID := GetTenantID(r.Context())
	p, err := h.projects.GetByID(r.Context(), tenantID, chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, projects.ErrProjectNotFound)
		return
	}

	var req ProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	p.ClientID = req.ClientID
	p.Title = req.Title
	p.Description = req.Description
	if req.Status != "" {
		p.Status = req.Status
	}
	p.Priority = req.Priority
	p.StartDate = req.StartDate
	p.DueDate = req.DueDate
	p.Tags = req.Tags

	if err := h.projects.Update(r.Context(), tenantID, p); err != nil {
		respondStoreError(w, r, err, projects.ErrProjectNotFound)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// DeleteProject handles DELETE /api/v1/projects/{id}
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	err := h.projects.Delete(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, projects.ErrProjectNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListProjects handles GET /api/v1/projects
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	q := r.URL.Query()
	f := projects.Filter{
		ClientID: q.Get("client_id"),
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		Search:   q.Get("search"),
		Tag:      q.Get("tag"),
		Page:     page,
		Limit:    limit,
	}

	items, total, err := h.projects.List(r.Context(), GetTenantID(r.Context()), f)
	if err != nil {
		respondStoreError(w, r, err, projects.ErrProjectNotFound)
		return
	}
	respondJSON(w, http.StatusOK, listResponse{Items: items, Total: total, Page: page, Limit: limit})
}
