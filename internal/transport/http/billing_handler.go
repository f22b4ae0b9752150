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
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/casefolio/casefolio/internal/billing"
)

// TransactionRequest carries the writable transaction fields.
type TransactionRequest struct {
	ClientID    string    `json:"client_id"`
	ProjectID   string    `json:"project_id"`
	Kind        string    `json:"kind"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// CreateTransaction handles POST /api/v1/transactions
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req TransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Kind != billing.KindIncome && req.Kind != billing.KindExpense {
		respondError(w, http.StatusBadRequest, "kind must be income or expense")
		return
	}
	if req.Amount <= 0 {
		respondError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	tx := &billing.Transaction{
		ClientID:    req.ClientID,
		ProjectID:   req.ProjectID,
		Kind:        req.Kind,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Category:    req.Category,
		Description: req.Description,
		OccurredAt:  req.OccurredAt,
	}
	if err := h.transactions.Create(r.Context(), GetTenantID(r.Context()), tx); err != nil {
		respondStoreError(w, r, err, billing.ErrTransactionNotFound)
		return
	}
	respondJSON(w, http.StatusCreated, tx)
}

// GetTransaction handles GET /api/v1/transactions/{id}
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.transactions.GetByID(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, billing.ErrTransactionNotFound)
		return
	}
	respondJSON(w, http.StatusOK, tx)
}

// DeleteTransaction handles DELETE /api/v1/transactions/{id}
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	err := h.transactions.Delete(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, billing.ErrTransactionNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTransactions handles GET /api/v1/transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	q := r.URL.Query()
	f := billing.TransactionFilter{
		ClientID:  q.Get("client_id"),
		ProjectID: q.Get("project_id"),
		Kind:      q.Get("kind"),
		Category:  q.Get("category"),
		Page:      page,
		Limit:     limit,
	}
	if from, err := time.Parse(time.RFC3339, q.Get("from")); err == nil {
		f.From = &from
	}
	if to, err := time.Parse(time.RFC3339, q.Get("to")); err == nil {
		f.To = &to
	}

	items, total, err := h.transactions.List(r.Context(), GetTenantID(r.Context()), f)
	if err != nil {
		respondStoreError(w, r, err, billing.ErrTransactionNotFound)
		return
	}
	respondJSON(w, http.StatusOK, listResponse{Items: items, Total: total, Page: page, Limit: limit})
}

// InvoiceRequest carries the writable invoice fields.
type InvoiceRequest struct {
	ClientID  string     `json:"client_id"`
	ProjectID string     `json:"project_id"`
	Number    string     `json:"number"`
	Amount    float64    `json:"amount"`
	Currency  string     `json:"currency"`
	Status    string     `json:"status"`
	IssuedAt  *time.Time `json:"issued_at"`
	DueAt     *time.Time `json:"due_at"`
	PaidAt    *time.Time `json:"paid_at"`
}

// CreateInvoice handles POST /api/v1/invoices
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req InvoiceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Number == "" {
		respondError(w, http.StatusBadRequest, "number is required")
		return
	}
	if req.Amount <= 0 {
		respondError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	inv := &billing.Invoice{
		ClientID:  req.ClientID,
		ProjectID: req.ProjectID,
		Number:    req.Number,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Status:    req.Status,
		IssuedAt:  req.IssuedAt,
		DueAt:     req.DueAt,
		PaidAt:    req.PaidAt,
	}
	if err := h.invoices.CreateInvoice(r.Context(), GetTenantID(r.Context()), inv); err != nil {
		respondStoreError(w, r, err, billing.ErrInvoiceNotFound)
		return
	}
	respondJSON(w, http.StatusCreated, inv)
}

// GetInvoice handles GET /api/v1/invoices/{id}
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.invoices.GetInvoiceByID(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, billing.ErrInvoiceNotFound)
		return
	}
	respondJSON(w, http.StatusOK, inv)
}

// UpdateInvoice handles PUT /api/v1/invoices/{id}
func (h *Handler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	tenantID := GetTenantID(r.Context())
	inv, err := h.invoices.GetInvoiceByID(r.Context(), tenantID, chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, billing.ErrInvoiceNotFound)
		return
	}

	var req InvoiceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Number == "" {
		respondError(w, http.StatusBadRequest, "number is required")
		return
	}

	inv.ClientID = req.ClientID
	inv.ProjectID = req.ProjectID
	inv.Number = req.Number
	inv.Amount = req.Amount
	inv.Currency = req.Currency
	if req.Status != "" {
		inv.Status = req.Status
	}
	inv.IssuedAt = req.IssuedAt
	inv.DueAt = req.DueAt
	inv.PaidAt = req.PaidAt

	if err := h.invoices.UpdateInvoice(r.Context(), tenantID, inv); err != nil {
		respondStoreError(w, r, err, billing.ErrInvoiceNotFound)
		return
	}
	respondJSON(w, http.StatusOK, inv)
}

// DeleteInvoice handles DELETE /api/v1/invoices/{id}
func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	err := h.invoices.DeleteInvoice(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, billing.ErrInvoiceNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListInvoices handles GET /api/v1/invoices
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	q := r.URL.Query()
	f := billing.InvoiceFilter{
		ClientID: q.Get("client_id"),
		Status:   q.Get("status"),
		Search:   q.Get("search"),
		Page:     page,
		Limit:    limit,
	}

	items, total, err := h.invoices.ListInvoices(r.Context(), GetTenantID(r.Context()), f)
	if err != nil {
		respondStoreError(w, r, err, billing.ErrInvoiceNotFound)
		return
	}
	respondJSON(w, http.StatusOK, listResponse{Items: items, Total: total, Page: page, Limit: limit})
}
