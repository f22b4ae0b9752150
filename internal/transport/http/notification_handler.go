package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/casefolio/casefolio/internal/notifications"
)

// ListNotifications handles GET /api/v1/notifications. The list is
// always scoped to the authenticated user.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	f := notifications.Filter{
		UserID:     GetUserID(r.Context()),
		UnreadOnly: r.URL.Query().Get("unread") == "true",
		Page:       page,
		Limit:      limit,
	}

	items, total, err := h.notifications.List(r.Context(), GetTenantID(r.Context()), f)
	if err != nil {
		respondStoreError(w, r, err, notifications.ErrNotificationNotFound)
		return
	}
	respondJSON(w, http.StatusOK, listResponse{Items: items, Total: total, Page: page, Limit: limit})
}

// MarkNotificationRead handles POST /api/v1/notifications/{id}/read
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	err := h.notifications.MarkRead(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, notifications.ErrNotificationNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllNotificationsRead handles POST /api/v1/notifications/read-all
func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	err := h.notifications.MarkAllRead(r.Context(), GetTenantID(r.Context()), GetUserID(r.Context()))
	if err != nil {
		respondStoreError(w, r, err, notifications.ErrNotificationNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteNotification handles DELETE /api/v1/notifications/{id}
func (h *Handler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	err := h.notifications.Delete(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, notifications.ErrNotificationNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
