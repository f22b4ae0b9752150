package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/casefolio/casefolio/internal/tasks"
)

// TaskRequest carries the writable task fields.
type TaskRequest struct {
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Assignee    string     `json:"assignee"`
	DueDate     *time.Time `json:"due_date"`
	Tags        []string   `json:"tags"`
}

// CreateTask handles POST /api/v1/tasks
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	t := &tasks.Task{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Assignee:    req.Assignee,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
	}
	if err := h.tasks.Create(r.Context(), GetTenantID(r.Context()), t); err != nil {
		respondStoreError(w, r, err, tasks.ErrTaskNotFound)
		return
	}
	respondJSON(w, http.StatusCreated, t)
}

// GetTask handles GET /api/v1/tasks/{id}
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.tasks.GetByID(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, tasks.ErrTaskNotFound)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

// UpdateTask handles PUT /api/v1/tasks/{id}
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	tenantID := GetTenantID(r.Context())
	t, err := h.tasks.GetByID(r.Context(), tenantID, chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, tasks.ErrTaskNotFound)
		return
	}

	var req TaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	t.ProjectID = req.ProjectID
	t.Title = req.Title
	t.Description = req.Description
	if req.Status != "" {
		t.Status = req.Status
	}
	t.Priority = req.Priority
	t.Assignee = req.Assignee
	t.DueDate = req.DueDate
	t.Tags = req.Tags

	if err := h.tasks.Update(r.Context(), tenantID, t); err != nil {
		respondStoreError(w, r, err, tasks.ErrTaskNotFound)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

// DeleteTask handles DELETE /api/v1/tasks/{id}
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	err := h.tasks.Delete(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, tasks.ErrTaskNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTasks handles GET /api/v1/tasks
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	q := r.URL.Query()
	f := tasks.Filter{
		ProjectID: q.Get("project_id"),
		Status:    q.Get("status"),
		Priority:  q.Get("priority"),
		Assignee:  q.Get("assignee"),
		Search:    q.Get("search"),
		Tag:       q.Get("tag"),
		Page:      page,
		Limit:     limit,
	}

	items, total, err := h.tasks.List(r.Context(), GetTenantID(r.Context()), f)
	if err != nil {
		respondStoreError(w, r, err, tasks.ErrTaskNotFound)
		return
	}
	respondJSON(w, http.StatusOK, listResponse{Items: items, Total: total, Page: page, Limit: limit})
}
