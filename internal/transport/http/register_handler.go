package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/casefolio/casefolio/internal/regkey"
	"github.com/casefolio/casefolio/internal/tenant"
)

// RegisterAccountRequest is the self-service signup payload. The
// registration key decides the account tier.
type RegisterAccountRequest struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// RegisterAccount handles POST /api/v1/register. The key is burned and
// the tenant workspace provisioned in one request; a failed provision
// is repaired by the idempotent re-provision on next attempt.
func (h *Handler) RegisterAccount(w http.ResponseWriter, r *http.Request) {
	var req RegisterAccountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Key == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, "key and name are required")
		return
	}

	key, err := h.regkeyService.Consume(r.Context(), req.Key)
	if err != nil {
		switch {
		case errors.Is(err, regkey.ErrKeyNotFound), errors.Is(err, regkey.ErrKeyInvalid):
			respondError(w, http.StatusUnauthorized, "invalid registration key")
		case errors.Is(err, regkey.ErrKeyExpired):
			respondError(w, http.StatusUnauthorized, "registration key expired")
		case errors.Is(err, regkey.ErrKeyExhausted):
			respondError(w, http.StatusUnauthorized, "registration key has no uses remaining")
		default:
			respondStoreError(w, r, err, regkey.ErrKeyNotFound)
		}
		return
	}

	// Tenant-bound keys add a member to an existing workspace; keys
	// without a binding create a fresh one. A failure after the consume
	// refunds the use so the key is only spent on a created account.
	if key.TenantID != nil {
		t, err := h.tenantService.GetTenant(r.Context(), *key.TenantID)
		if err != nil {
			h.refundKeyUse(r.Context(), key.ID)
			h.respondTenantError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, t)
		return
	}

	t, err := h.tenantService.CreateTenant(r.Context(), req.Name, key.Tier, 0, 0)
	if err != nil {
		h.refundKeyUse(r.Context(), key.ID)
		h.respondTenantError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, t)
}

func (h *Handler) refundKeyUse(ctx context.Context, keyID string) {
	if err := h.regkeyService.Refund(ctx, keyID); err != nil {
		slog.ErrorContext(ctx, "failed to refund registration key use",
			slog.String("key_id", keyID), slog.String("error", err.Error()))
	}
}

// RegKeyRequest carries the registration key issuance parameters.
type RegKeyRequest struct {
	Uses      int        `json:"uses"`
	Tier      string     `json:"tier"`
	TenantID  *string    `json:"tenant_id"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// CreateRegistrationKey handles POST /api/v1/admin/registration-keys.
// The plaintext key appears once in this response and nowhere else.
func (h *Handler) CreateRegistrationKey(w http.ResponseWriter, r *http.Request) {
	var req RegKeyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Tier != "" && req.Tier != tenant.TierBasic && req.Tier != tenant.TierPro {
		respondError(w, http.StatusBadRequest, "unknown tier")
		return
	}

	key, plaintext, err := h.regkeyService.CreateKey(r.Context(), req.Uses, req.Tier, req.TenantID, req.ExpiresAt)
	if err != nil {
		respondStoreError(w, r, err, regkey.ErrKeyNotFound)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"key":       key,
		"plaintext": plaintext,
	})
}

// DeleteRegistrationKey handles DELETE /api/v1/admin/registration-keys/{id}
func (h *Handler) DeleteRegistrationKey(w http.ResponseWriter, r *http.Request) {
	err := h.regkeyService.DeleteKey(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, regkey.ErrKeyNotFound) {
			respondError(w, http.StatusNotFound, "registration key not found")
			return
		}
		respondStoreError(w, r, err, regkey.ErrKeyNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
