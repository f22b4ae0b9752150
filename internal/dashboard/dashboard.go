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

// Package dashboard aggregates per-module statistics into a single
// tenant snapshot. Each module is queried concurrently and fails
// independently: a broken module yields zeroed numbers and a warning.
// Tenancy errors are the exception: an unknown or unprovisioned tenant
// fails the whole snapshot rather than masquerading as an empty one.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/casefolio/casefolio/internal/billing"
	"github.com/casefolio/casefolio/internal/cache"
	"github.com/casefolio/casefolio/internal/clients"
	"github.com/casefolio/casefolio/internal/projects"
	"github.com/casefolio/casefolio/internal/schema"
	"github.com/casefolio/casefolio/internal/tasks"
	"github.com/casefolio/casefolio/internal/tenant"
)

// Snapshot is the aggregated dashboard payload for one tenant. Finance
// is nil for basic-tier tenants.
type Snapshot struct {
	Clients     clients.Stats         `json:"clients"`
	Projects    projects.Stats        `json:"projects"`
	Tasks       tasks.Stats           `json:"tasks"`
	Finance     *billing.FinanceStats `json:"finance,omitempty"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// Cache is the optional snapshot cache. Both methods may fail without
// affecting correctness.
type Cache interface {
	Get(ctx context.Context, tenantID string, dst any) error
	Set(ctx context.Context, tenantID string, v any) error
}

// Service computes dashboard snapshots.
type Service struct {
	clients  clients.Repository
	projects projects.Repository
	tasks    tasks.Repository
	finance  billing.StatsRepository
	cache    Cache // nil disables caching
}

// NewService creates a new dashboard service. Pass a nil cache to
// compute every snapshot from the database.
func NewService(c clients.Repository, p projects.Repository, t tasks.Repository, f billing.StatsRepository, cch Cache) *Service {
	return &Service{
		clients:  c,
		projects: p,
		tasks:    t,
		finance:  f,
		cache:    cch,
	}
}

// Stats returns the dashboard snapshot for a tenant. The tier gates the
// finance block: basic-tier tenants never pay for the finance queries.
func (s *Service) Stats(ctx context.Context, tenantID, tier string) (*Snapshot, error) {
	if s.cache != nil {
		var cached Snapshot
		err := s.cache.Get(ctx, tenantID, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			slog.WarnContext(ctx, "stats cache read failed, computing directly",
				slog.String("tenant_id", tenantID), slog.String("error", err.Error()))
		}
	}

	snap := &Snapshot{GeneratedAt: time.Now()}

	// One error slot per module; tenancy errors are checked after the
	// join so an uninitialized tenant fails the snapshot instead of
	// being zeroed away.
	errs := make([]error, 4)

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		st, err := s.clients.Stats(ctx, tenantID)
		if err != nil {
			errs[0] = err
			s.warn(ctx, tenantID, "clients", err)
			return
		}
		snap.Clients = *st
	}()

	go func() {
		defer wg.Done()
		st, err := s.projects.Stats(ctx, tenantID)
		if err != nil {
			errs[1] = err
			s.warn(ctx, tenantID, "projects", err)
			return
		}
		snap.Projects = *st
	}()

	go func() {
		defer wg.Done()
		st, err := s.tasks.Stats(ctx, tenantID)
		if err != nil {
			errs[2] = err
			s.warn(ctx, tenantID, "tasks", err)
			return
		}
		snap.Tasks = *st
	}()

	if tier == tenant.TierPro {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st, err := s.finance.FinanceStats(ctx, tenantID)
			if err != nil {
				errs[3] = err
				s.warn(ctx, tenantID, "finance", err)
				snap.Finance = &billing.FinanceStats{}
				return
			}
			snap.Finance = st
		}()
	}

	wg.Wait()

	for _, err := range errs {
		if errors.Is(err, schema.ErrTenantNotInitialized) || errors.Is(err, schema.ErrTenantUnknown) {
			return nil, err
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, tenantID, snap); err != nil {
			slog.WarnContext(ctx, "stats cache write failed",
				slog.String("tenant_id", tenantID), slog.String("error", err.Error()))
		}
	}
	return snap, nil
}

func (s *Service) warn(ctx context.Context, tenantID, module string, err error) {
	slog.WarnContext(ctx, "dashboard module stats failed, returning zeroes",
		slog.String("tenant_id", tenantID),
		slog.String("module", module),
		slog.String("error", err.Error()))
}
