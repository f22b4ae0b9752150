package tenant

import (
	"time"
)

// Tenant represents an isolated customer organization. Each tenant owns
// exactly one database schema; SchemaName is derived from the ID at
// creation and immutable afterwards.
type Tenant struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	SchemaName   string    `json:"schema_name"`
	MaxUsers     int       `json:"max_users"`
	MaxStorageMB int       `json:"max_storage_mb"`
	Tier         string    `json:"tier"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Status constants. Deactivation is soft (rows and schema stay); only a
// hard delete drops the schema.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusDeleted  = "deleted"
)

// Account tiers. Financial modules (transactions, invoices) are gated
// behind TierPro.
const (
	TierBasic = "basic"
	TierPro   = "pro"
)

// Plan defaults applied when a registration key carries no overrides.
const (
	DefaultMaxUsers     = 5
	DefaultMaxStorageMB = 1024
)
