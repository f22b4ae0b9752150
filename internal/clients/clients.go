package clients

import (
	"context"
	"errors"
	"time"
)

// Client is a person or organization the practice works for.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Company   string    `json:"company"`
	Address   string    `json:"address"`
	Notes     string    `json:"notes"`
	Tags      []string  `json:"tags"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var ErrClientNotFound = errors.New("client not found")

// Filter narrows List results. Zero values mean "no constraint"; set
// fields combine with AND.
type Filter struct {
	Search string // matches name, email or company
	Tag    string
	Page   int
	Limit  int
}

// Stats feeds the dashboard.
type Stats struct {
	Total       int `json:"total"`
	AddedLast30 int `json:"added_last_30_days"`
}

// Repository is the tenant-scoped client store. Every call carries the
// tenant identifier; implementations route it into the tenant's schema.
type Repository interface {
	Create(ctx context.Context, tenantID string, client *Client) error
	GetByID(ctx context.Context, tenantID, id string) (*Client, error)
	Update(ctx context.Context, tenantID string, client *Client) error
	// Delete is soft: it clears the active flag, the row stays.
	Delete(ctx context.Context, tenantID, id string) error
	List(ctx context.Context, tenantID string, f Filter) ([]*Client, int, error)
	Stats(ctx context.Context, tenantID string) (*Stats, error)
}
