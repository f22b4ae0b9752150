package dashboard

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casefolio/casefolio/internal/billing"
	"github.com/casefolio/casefolio/internal/cache"
	"github.com/casefolio/casefolio/internal/clients"
	"github.com/casefolio/casefolio/internal/projects"
	"github.com/casefolio/casefolio/internal/schema"
	"github.com/casefolio/casefolio/internal/tasks"
	"github.com/casefolio/casefolio/internal/tenant"
)

type fakeClients struct {
	clients.Repository
	stats *clients.Stats
	err   error
}

func (f *fakeClients) Stats(ctx context.Context, tenantID string) (*clients.Stats, error) {
	return f.stats, f.err
}

type fakeProjects struct {
	projects.Repository
	stats *projects.Stats
	err   error
}

func (f *fakeProjects) Stats(ctx context.Context, tenantID string) (*projects.Stats, error) {
	return f.stats, f.err
}

type fakeTasks struct {
	tasks.Repository
	stats *tasks.Stats
	err   error
}

func (f *fakeTasks) Stats(ctx context.Context, tenantID string) (*tasks.Stats, error) {
	return f.stats, f.err
}

type fakeFinance struct {
	stats *billing.FinanceStats
	err   error
	calls int
}

func (f *fakeFinance) FinanceStats(ctx context.Context, tenantID string) (*billing.FinanceStats, error) {
	f.calls++
	return f.stats, f.err
}

// memCache is an in-process stand-in for the Redis stats cache.
type memCache struct {
	snaps map[string]Snapshot
	gets  int
}

func (c *memCache) Get(ctx context.Context, tenantID string, dst any) error {
	c.gets++
	snap, ok := c.snaps[tenantID]
	if !ok {
		return cache.ErrMiss
	}
	*dst.(*Snapshot) = snap
	return nil
}

func (c *memCache) Set(ctx context.Context, tenantID string, v any) error {
	if c.snaps == nil {
		c.snaps = make(map[string]Snapshot)
	}
	c.snaps[tenantID] = *v.(*Snapshot)
	return nil
}

// TestPurpose: Validates dashboard aggregation with tier gating of the finance block.
// Scope: Unit Test
// Expected: Basic-tier snapshots omit finance and never query it; pro-tier snapshots include it.
// Test Case ID: DSH-01
func TestDashboard_Service_TierGating(t *testing.T) {
	fin := &fakeFinance{stats: &billing.FinanceStats{Income: 1200}}
	s := NewService(
		&fakeClients{stats: &clients.Stats{Total: 4}},
		&fakeProjects{stats: &projects.Stats{Total: 2, Open: 1}},
		&fakeTasks{stats: &tasks.Stats{Total: 9, Overdue: 3}},
		fin,
		nil,
	)

	ctx := context.Background()

	snap, err := s.Stats(ctx, "t1", tenant.TierBasic)
	require.NoError(t, err)
	assert.Equal(t, 4, snap.Clients.Total)
	assert.Equal(t, 3, snap.Tasks.Overdue)
	assert.Nil(t, snap.Finance, "basic tier must not expose finance")
	assert.Equal(t, 0, fin.calls, "basic tier must not query finance")

	snap, err = s.Stats(ctx, "t1", tenant.TierPro)
	require.NoError(t, err)
	require.NotNil(t, snap.Finance)
	assert.Equal(t, float64(1200), snap.Finance.Income)
	assert.Equal(t, 1, fin.calls)
}

// TestPurpose: Validates partial-failure tolerance: one broken module zeroes its block, the dashboard still renders.
// Scope: Unit Test
// Expected: A failing module yields zero values; healthy modules report normally; no error surfaces.
// Test Case ID: DSH-02
func TestDashboard_Service_PartialFailure(t *testing.T) {
	s := NewService(
		&fakeClients{err: errors.New("connection reset")},
		&fakeProjects{stats: &projects.Stats{Total: 5}},
		&fakeTasks{err: errors.New("timeout")},
		&fakeFinance{err: errors.New("bad relation")},
		nil,
	)

	snap, err := s.Stats(context.Background(), "t1", tenant.TierPro)
	require.NoError(t, err)
	assert.Zero(t, snap.Clients.Total)
	assert.Equal(t, 5, snap.Projects.Total)
	assert.Zero(t, snap.Tasks.Total)
	require.NotNil(t, snap.Finance, "pro tier gets a zeroed finance block on failure")
	assert.Zero(t, snap.Finance.Income)
}

// TestPurpose: Validates that an unprovisioned or unknown tenant fails the snapshot instead of rendering zeroes.
// Scope: Unit Test
// Expected: Tenancy errors from any module propagate; ordinary module failures still degrade to zero values.
// Test Case ID: DSH-04
func TestDashboard_Service_UninitializedTenant(t *testing.T) {
	ctx := context.Background()

	s := NewService(
		&fakeClients{err: fmt.Errorf("clients stats: %w", schema.ErrTenantNotInitialized)},
		&fakeProjects{stats: &projects.Stats{Total: 5}},
		&fakeTasks{stats: &tasks.Stats{}},
		&fakeFinance{},
		nil,
	)
	snap, err := s.Stats(ctx, "t1", tenant.TierBasic)
	require.ErrorIs(t, err, schema.ErrTenantNotInitialized)
	assert.Nil(t, snap, "no snapshot for an uninitialized tenant")

	s = NewService(
		&fakeClients{stats: &clients.Stats{Total: 1}},
		&fakeProjects{stats: &projects.Stats{}},
		&fakeTasks{err: fmt.Errorf("tasks stats: %w", schema.ErrTenantUnknown)},
		&fakeFinance{},
		nil,
	)
	snap, err = s.Stats(ctx, "ghost", tenant.TierBasic)
	require.ErrorIs(t, err, schema.ErrTenantUnknown)
	assert.Nil(t, snap)
}

// TestPurpose: Validates cache interaction: hits skip computation, misses compute and populate.
// Scope: Unit Test
// Expected: The second request for a tenant is served from the cache without touching the repositories.
// Test Case ID: DSH-03
func TestDashboard_Service_Cache(t *testing.T) {
	fin := &fakeFinance{stats: &billing.FinanceStats{Income: 10}}
	c := &memCache{}
	s := NewService(
		&fakeClients{stats: &clients.Stats{Total: 1}},
		&fakeProjects{stats: &projects.Stats{}},
		&fakeTasks{stats: &tasks.Stats{}},
		fin,
		c,
	)

	ctx := context.Background()
	_, err := s.Stats(ctx, "t1", tenant.TierPro)
	require.NoError(t, err)
	assert.Equal(t, 1, fin.calls)

	snap, err := s.Stats(ctx, "t1", tenant.TierPro)
	require.NoError(t, err)
	assert.Equal(t, 1, fin.calls, "cache hit must not recompute")
	assert.Equal(t, 1, snap.Clients.Total)
}
