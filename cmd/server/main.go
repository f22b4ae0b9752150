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

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/casefolio/casefolio/internal/audit"
	"github.com/casefolio/casefolio/internal/cache"
	"github.com/casefolio/casefolio/internal/config"
	"github.com/casefolio/casefolio/internal/dashboard"
	"github.com/casefolio/casefolio/internal/observability/logger"
	"github.com/casefolio/casefolio/internal/observability/metrics"
	"github.com/casefolio/casefolio/internal/observability/tracing"
	"github.com/casefolio/casefolio/internal/regkey"
	"github.com/casefolio/casefolio/internal/schema"
	"github.com/casefolio/casefolio/internal/store/postgres"
	"github.com/casefolio/casefolio/internal/store/tenantpg"
	"github.com/casefolio/casefolio/internal/tenant"
	transportHTTP "github.com/casefolio/casefolio/internal/transport/http"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.InitLogger(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})
	slog.Info("starting casefolio")

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(cfg); err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	ctx := context.Background()

	// Initialize tracer
	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		SamplingRate:   1.0,
	})
	if err != nil {
		slog.Error("failed to initialize tracer", logger.Error(err))
	}
	defer tracer.Shutdown(ctx)

	// Initialize meter
	_, err = metrics.New(ctx, metrics.Config{
		Enabled: cfg.Observability.OTELEnabled,
	}, cfg.Observability.ServiceName)
	if err != nil {
		slog.Error("failed to initialize meter", logger.Error(err))
	}

	// Initialize database
	db, err := postgres.New(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		slog.Error("failed to connect to database", logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to database")

	// Shared-schema repositories
	tenantRepo := postgres.NewTenantRepository(db)
	regkeyRepo := postgres.NewRegKeyRepository(db)

	// Tenancy layer: registry resolves tenant -> schema, provisioner
	// creates workspaces, executor routes every tenant-scoped query.
	registry := schema.NewRegistry(tenantRepo, db)
	provisioner := schema.NewProvisioner(db, registry)

	policy := schema.FailUnprovisioned
	if cfg.Tenancy.AutoProvision {
		policy = schema.AutoProvision
	}
	executor := schema.NewExecutor(db, registry, provisioner, policy)

	// Tenant-scoped repositories
	clientRepo := tenantpg.NewClientRepository(executor)
	projectRepo := tenantpg.NewProjectRepository(executor)
	taskRepo := tenantpg.NewTaskRepository(executor)
	billingRepo := tenantpg.NewBillingRepository(executor)
	publicationRepo := tenantpg.NewPublicationRepository(executor)
	notificationRepo := tenantpg.NewNotificationRepository(executor)

	// Optional Redis cache for dashboard stats
	var statsCache dashboard.Cache
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Error("failed to connect to redis, stats cache disabled", logger.Error(err))
		} else {
			defer redisClient.Close()
			statsCache = cache.NewStatsCache(redisClient, cfg.Redis.StatsTTL)
			slog.Info("connected to redis")
		}
	}

	// Services
	auditLogger := audit.NewSlogLogger()
	tenantService := tenant.NewService(tenantRepo, provisioner, auditLogger)
	regkeyService := regkey.NewService(regkeyRepo, regkey.NewHasher(), auditLogger)
	dashboardService := dashboard.NewService(clientRepo, projectRepo, taskRepo, billingRepo, statsCache)

	// Rate limiter
	rateLimiter := transportHTTP.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	// HTTP handler
	handler := transportHTTP.NewHandler(transportHTTP.Deps{
		TenantService:    tenantService,
		RegKeyService:    regkeyService,
		DashboardService: dashboardService,
		Clients:          clientRepo,
		Projects:         projectRepo,
		Tasks:            taskRepo,
		Transactions:     billingRepo,
		Invoices:         billingRepo,
		Publications:     publicationRepo,
		Notifications:    notificationRepo,
		AuditLogger:      auditLogger,
		JWTSecret:        []byte(cfg.Auth.JWTSecret),
		JWTIssuer:        cfg.Auth.Issuer,
	})

	router := transportHTTP.NewRouter(handler, rateLimiter, cfg.CORS.AllowedOrigins)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server
	go func() {
		slog.Info("starting http server", logger.Component("server"), logger.Operation("listen"))
		slog.Info(fmt.Sprintf("listening on %s", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", logger.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", logger.Error(err))
	}

	slog.Info("server stopped")
}

// runMigrate applies the shared schema and re-provisions every known
// tenant workspace. Provisioning is idempotent, so a rerun after a new
// table lands brings all workspaces up to date.
func runMigrate(cfg *config.Config) error {
	ctx := context.Background()
	db, err := postgres.New(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Println("Applying shared schema...")
	if err := db.Migrate(ctx, postgres.SharedSchema); err != nil {
		return err
	}

	tenantRepo := postgres.NewTenantRepository(db)
	registry := schema.NewRegistry(tenantRepo, db)
	provisioner := schema.NewProvisioner(db, registry)

	names, err := tenantRepo.ListSchemaNames(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := provisioner.ProvisionSchema(ctx, name); err != nil {
			return fmt.Errorf("re-provision %s: %w", name, err)
		}
	}
	fmt.Printf("Migration successful, %d tenant workspaces up to date.\n", len(names))
	return nil
}
