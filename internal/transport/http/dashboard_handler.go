package http

import (
	"log/slog"
	"net/http"

	"github.com/casefolio/casefolio/internal/observability/logger"
)

// GetDashboard handles GET /api/v1/dashboard
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := h.dashboardService.Stats(r.Context(), GetTenantID(r.Context()), GetTier(r.Context()))
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to build dashboard",
			logger.TenantID(GetTenantID(r.Context())),
			logger.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "failed to build dashboard")
		return
	}
	respondJSON(w, http.StatusOK, snap)
}
