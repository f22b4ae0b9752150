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
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/casefolio/casefolio/internal/audit"
	"github.com/casefolio/casefolio/internal/billing"
	"github.com/casefolio/casefolio/internal/clients"
	"github.com/casefolio/casefolio/internal/dashboard"
	"github.com/casefolio/casefolio/internal/notifications"
	"github.com/casefolio/casefolio/internal/observability/logger"
	"github.com/casefolio/casefolio/internal/projects"
	"github.com/casefolio/casefolio/internal/publications"
	"github.com/casefolio/casefolio/internal/regkey"
	"github.com/casefolio/casefolio/internal/schema"
	"github.com/casefolio/casefolio/internal/tasks"
	"github.com/casefolio/casefolio/internal/tenant"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	tenantService    *tenant.Service
	regkeyService    *regkey.Service
	dashboardService *dashboard.Service

	clients       clients.Repository
	projects      projects.Repository
	tasks         tasks.Repository
	transactions  billing.TransactionRepository
	invoices      billing.InvoiceRepository
	publications  publications.Repository
	notifications notifications.Repository

	auditLogger audit.Logger
	jwtSecret   []byte
	jwtIssuer   string
}

// Deps bundles the handler dependencies; everything is required except
// where noted on the field.
type Deps struct {
	TenantService    *tenant.Service
	RegKeyService    *regkey.Service
	DashboardService *dashboard.Service

	Clients       clients.Repository
	Projects      projects.Repository
	Tasks         tasks.Repository
	Transactions  billing.TransactionRepository
	Invoices      billing.InvoiceRepository
	Publications  publications.Repository
	Notifications notifications.Repository

	AuditLogger audit.Logger
	JWTSecret   []byte
	JWTIssuer   string
}

// NewHandler creates a new HTTP handler
func NewHandler(d Deps) *Handler {
	return &Handler{
		tenantService:    d.TenantService,
		regkeyService:    d.RegKeyService,
		dashboardService: d.DashboardService,
		clients:          d.Clients,
		projects:         d.Projects,
		tasks:            d.Tasks,
		transactions:     d.Transactions,
		invoices:         d.Invoices,
		publications:     d.Publications,
		notifications:    d.Notifications,
		auditLogger:      d.AuditLogger,
		jwtSecret:        d.JWTSecret,
		jwtIssuer:        d.JWTIssuer,
	}
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		// Public: account creation via registration key
		r.Post("/register", h.RegisterAccount)

		// Tenant-scoped surface. Fail-closed: every route below
		// requires a tenant-bearing token.
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)
			r.Use(RequireTenant)

			r.Get("/dashboard", h.GetDashboard)

			r.Route("/clients", func(r chi.Router) {
				r.Post("/", h.CreateClient)
				r.Get("/", h.ListClients)
				r.Get("/{id}", h.GetClient)
				r.Put("/{id}", h.UpdateClient)
				r.Delete("/{id}", h.DeleteClient)
			})

			r.Route("/projects", func(r chi.Router) {
				r.Post("/", h.CreateProject)
				r.Get("/", h.ListProjects)
				r.Get("/{id}", h.GetProject)
				r.Put("/{id}", h.UpdateProject)
				r.Delete("/{id}", h.DeleteProject)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", h.CreateTask)
				r.Get("/", h.ListTasks)
				r.Get("/{id}", h.GetTask)
				r.Put("/{id}", h.UpdateTask)
				r.Delete("/{id}", h.DeleteTask)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Post("/", h.CreateTransaction)
				r.Get("/", h.ListTransactions)
				r.Get("/{id}", h.GetTransaction)
				r.Delete("/{id}", h.DeleteTransaction)
			})

			r.Route("/invoices", func(r chi.Router) {
				r.Post("/", h.CreateInvoice)
				r.Get("/", h.ListInvoices)
				r.Get("/{id}", h.GetInvoice)
				r.Put("/{id}", h.UpdateInvoice)
				r.Delete("/{id}", h.DeleteInvoice)
			})

			r.Route("/publications", func(r chi.Router) {
				r.Post("/", h.CreatePublication)
				r.Get("/", h.ListPublications)
				r.Get("/{id}", h.GetPublication)
				r.Put("/{id}", h.UpdatePublication)
				r.Delete("/{id}", h.DeletePublication)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.ListNotifications)
				r.Post("/read-all", h.MarkAllNotificationsRead)
				r.Post("/{id}/read", h.MarkNotificationRead)
				r.Delete("/{id}", h.DeleteNotification)
			})
		})

		// Platform operator surface: tenant lifecycle and key issuance.
		r.Route("/admin", func(r chi.Router) {
			r.Use(h.RequireOperator)

			r.Route("/tenants", func(r chi.Router) {
				r.Post("/", h.CreateTenant)
				r.Get("/", h.ListTenants)
				r.Get("/{id}", h.GetTenant)
				r.Put("/{id}/plan", h.UpdateTenantPlan)
				r.Post("/{id}/deactivate", h.DeactivateTenant)
				r.Delete("/{id}", h.DeleteTenant)
			})

			r.Route("/registration-keys", func(r chi.Router) {
				r.Post("/", h.CreateRegistrationKey)
				r.Delete("/{id}", h.DeleteRegistrationKey)
			})
		})
	})

	return r
}

// HealthCheck returns the health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "casefolio",
	})
}

// listResponse is the envelope for paginated collections.
type listResponse struct {
	Items any `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondStoreError maps domain and tenancy errors onto HTTP statuses.
// notFound carries the module's own not-found sentinel.
func respondStoreError(w http.ResponseWriter, r *http.Request, err error, notFound error) {
	switch {
	case errors.Is(err, notFound):
		respondError(w, http.StatusNotFound, notFound.Error())
	case errors.Is(err, schema.ErrTenantNotInitialized):
		respondError(w, http.StatusConflict, "tenant workspace is not initialized")
	case errors.Is(err, schema.ErrTenantUnknown):
		respondError(w, http.StatusNotFound, "tenant not found")
	case errors.Is(err, schema.ErrInvalidIdentifier):
		respondError(w, http.StatusBadRequest, "invalid tenant identifier")
	default:
		slog.ErrorContext(r.Context(), "request failed",
			logger.Path(r.URL.Path),
			logger.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// pageParams reads page/limit query parameters, normalized to the same
// window the stores apply so the response envelope echoes reality.
func pageParams(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
