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

// Package cache provides a Redis-backed cache for per-tenant dashboard
// metrics. The cache is strictly an accelerator: every failure path
// degrades to recomputing from the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when a key is absent or the cached payload cannot
// be decoded.
var ErrMiss = errors.New("cache miss")

// StatsCache stores JSON-encoded dashboard snapshots keyed by tenant.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache creates a stats cache around an existing Redis client.
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

// NewClient dials Redis and verifies connectivity before returning.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func statsKey(tenantID string) string {
	return "casefolio:stats:" + tenantID
}

// Get loads the cached snapshot for a tenant into dst. A decode error is
// treated as a miss so a stale or corrupt entry never poisons responses.
func (c *StatsCache) Get(ctx context.Context, tenantID string, dst any) error {
	raw, err := c.client.Get(ctx, statsKey(tenantID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return fmt.Errorf("failed to read stats cache: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		slog.WarnContext(ctx, "discarding undecodable stats cache entry",
			slog.String("tenant_id", tenantID), slog.String("error", err.Error()))
		return ErrMiss
	}
	return nil
}

// Set stores a snapshot for a tenant with the configured TTL.
func (c *StatsCache) Set(ctx context.Context, tenantID string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode stats snapshot: %w", err)
	}
	if err := c.client.Set(ctx, statsKey(tenantID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write stats cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached snapshot for a tenant.
func (c *StatsCache) Invalidate(ctx context.Context, tenantID string) error {
	if err := c.client.Del(ctx, statsKey(tenantID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate stats cache: %w", err)
	}
	return nil
}
