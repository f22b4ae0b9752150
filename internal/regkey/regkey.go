package regkey

import (
	"context"
	"errors"
	"time"
)

// Key is a single- or limited-use secret that grants account creation
// with a preset tier. Only the argon2id hash of the secret is stored;
// the plaintext is shown once at creation.
type Key struct {
	ID            string     `json:"id"`
	SecretHash    string     `json:"-"`
	UsesRemaining int        `json:"uses_remaining"`
	Tier          string     `json:"tier"`
	TenantID      *string    `json:"tenant_id,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

var (
	ErrKeyNotFound  = errors.New("registration key not found")
	ErrKeyExhausted = errors.New("registration key has no uses remaining")
	ErrKeyExpired   = errors.New("registration key expired")
	ErrKeyInvalid   = errors.New("registration key invalid")
)

// Repository defines the interface for registration key storage.
type Repository interface {
	Create(ctx context.Context, key *Key) error
	GetByID(ctx context.Context, id string) (*Key, error)
	// ConsumeUse decrements uses_remaining atomically and reports whether
	// a use was available. The decrement and the check are one statement;
	// two concurrent consumers can never both succeed on a single-use key.
	ConsumeUse(ctx context.Context, id string) (bool, error)
	// RestoreUse gives a burned use back. It compensates a consume whose
	// follow-up work (account creation) failed.
	RestoreUse(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
