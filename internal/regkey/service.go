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

package regkey

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/casefolio/casefolio/internal/audit"
)

// keyPrefix marks Casefolio registration keys. The presented form is
// ck_<id>_<secret>; the ID segment drives the lookup, only the secret
// segment is hashed.
const keyPrefix = "ck"

// Service provides registration key issuance and consumption.
type Service struct {
	repo        Repository
	hasher      *Hasher
	auditLogger audit.Logger
}

// NewService creates a new registration key service
func NewService(repo Repository, hasher *Hasher, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		hasher:      hasher,
		auditLogger: auditLogger,
	}
}

// CreateKey issues a new key and returns the record together with the
// plaintext, which is never stored or logged.
func (s *Service) CreateKey(ctx context.Context, uses int, tier string, tenantID *string, expiresAt *time.Time) (*Key, string, error) {
	if uses <= 0 {
		uses = 1
	}
	if tier == "" {
		tier = "basic"
	}

	secretBytes := make([]byte, 24)
	if _, err := rand.Read(secretBytes); err != nil {
		return nil, "", fmt.Errorf("failed to generate key secret: %w", err)
	}
	secret := base64.RawURLEncoding.EncodeToString(secretBytes)

	hash, err := s.hasher.Hash(secret)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash key secret: %w", err)
	}

	key := &Key{
		ID:            uuid.Must(uuid.NewV7()).String(),
		SecretHash:    hash,
		UsesRemaining: uses,
		Tier:          tier,
		TenantID:      tenantID,
		ExpiresAt:     expiresAt,
		CreatedAt:     time.Now(),
	}

	if err := s.repo.Create(ctx, key); err != nil {
		return nil, "", fmt.Errorf("failed to store registration key: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRegKeyCreated,
		Resource: key.ID,
		Metadata: map[string]any{"uses": uses, "tier": tier},
	})

	plaintext := fmt.Sprintf("%s_%s_%s", keyPrefix, key.ID, secret)
	return key, plaintext, nil
}

// Consume validates a presented key and burns one use atomically. On
// success it returns the key record so the caller can read the preset
// tier and optional tenant binding.
func (s *Service) Consume(ctx context.Context, presented string) (*Key, error) {
	id, secret, err := splitKey(presented)
	if err != nil {
		return nil, err
	}

	key, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ok, err := s.hasher.Verify(secret, key.SecretHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify registration key: %w", err)
	}
	if !ok {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeRegKeyRejected,
			Resource: id,
			Metadata: map[string]any{"reason": "secret mismatch"},
		})
		return nil, ErrKeyInvalid
	}

	if key.ExpiresAt != nil && time.Now().After(*key.ExpiresAt) {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeRegKeyRejected,
			Resource: id,
			Metadata: map[string]any{"reason": "expired"},
		})
		return nil, ErrKeyExpired
	}

	consumed, err := s.repo.ConsumeUse(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to consume registration key: %w", err)
	}
	if !consumed {
		return nil, ErrKeyExhausted
	}
	key.UsesRemaining--

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRegKeyConsumed,
		Resource: id,
		Metadata: map[string]any{"uses_remaining": key.UsesRemaining},
	})
	return key, nil
}

// Refund returns a use burned by Consume. Callers invoke it when the
// work the key paid for (tenant creation) fails, so a transient failure
// does not spend the key.
func (s *Service) Refund(ctx context.Context, keyID string) error {
	if err := s.repo.RestoreUse(ctx, keyID); err != nil {
		return fmt.Errorf("failed to refund registration key use: %w", err)
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRegKeyRefunded,
		Resource: keyID,
	})
	return nil
}

// DeleteKey revokes a key by ID.
func (s *Service) DeleteKey(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// splitKey parses the ck_<id>_<secret> form. The ID is a UUID and
// contains no underscores, so the first two separators are unambiguous.
func splitKey(presented string) (id, secret string, err error) {
	parts := strings.SplitN(presented, "_", 3)
	if len(parts) != 3 || parts[0] != keyPrefix || parts[1] == "" || parts[2] == "" {
		return "", "", ErrKeyInvalid
	}
	return parts[1], parts[2], nil
}
