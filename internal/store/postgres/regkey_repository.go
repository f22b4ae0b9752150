package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/casefolio/casefolio/internal/regkey"
)

// RegKeyRepository implements regkey.Repository against the shared schema.
type RegKeyRepository struct {
	db *DB
}

// NewRegKeyRepository creates a new registration key repository
func NewRegKeyRepository(db *DB) *RegKeyRepository {
	return &RegKeyRepository{db: db}
}

// Create inserts a new registration key
func (r *RegKeyRepository) Create(ctx context.Context, k *regkey.Key) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO registration_keys (id, secret_hash, uses_remaining, tier, tenant_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, k.ID, k.SecretHash, k.UsesRemaining, k.Tier, k.TenantID, k.ExpiresAt, k.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert registration key: %w", err)
	}
	return nil
}

// GetByID retrieves a registration key by ID
func (r *RegKeyRepository) GetByID(ctx context.Context, id string) (*regkey.Key, error) {
	var k regkey.Key
	err := r.db.pool.QueryRow(ctx, `
		SELECT id, secret_hash, uses_remaining, tier, tenant_id, expires_at, created_at
		FROM registration_keys
		WHERE id = $1
	`, id).Scan(&k.ID, &k.SecretHash, &k.UsesRemaining, &k.Tier, &k.TenantID, &k.ExpiresAt, &k.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, regkey.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get registration key: %w", err)
	}
	return &k, nil
}

// ConsumeUse atomically decrements the remaining use count. The guard on
// uses_remaining makes concurrent consumers race safely: only one UPDATE
// wins the last use.
func (r *RegKeyRepository) ConsumeUse(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE registration_keys
		SET uses_remaining = uses_remaining - 1
		WHERE id = $1 AND uses_remaining > 0
	`, id)
	if err != nil {
		return false, fmt.Errorf("failed to consume registration key use: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// RestoreUse credits one use back after a failed registration.
func (r *RegKeyRepository) RestoreUse(ctx context.Context, id string) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE registration_keys
		SET uses_remaining = uses_remaining + 1
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to restore registration key use: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return regkey.ErrKeyNotFound
	}
	return nil
}

// Delete removes a registration key
func (r *RegKeyRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.pool.Exec(ctx, `DELETE FROM registration_keys WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete registration key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return regkey.ErrKeyNotFound
	}
	return nil
}
