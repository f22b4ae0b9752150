package publications

import (
	"context"
	"errors"
	"time"
)

// Publication is an article or announcement authored by the practice.
type Publication struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Status      string     `json:"status"`
	Tags        []string   `json:"tags"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Status values
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

var ErrPublicationNotFound = errors.New("publication not found")

// Filter narrows List results; set fields combine with AND.
type Filter struct {
	Status string
	Search string // matches title or body
	Tag    string
	Page   int
	Limit  int
}

// Repository is the tenant-scoped publication store.
type Repository interface {
	Create(ctx context.Context, tenantID string, pub *Publication) error
	GetByID(ctx context.Context, tenantID, id string) (*Publication, error)
	Update(ctx context.Context, tenantID string, pub *Publication) error
	Delete(ctx context.Context, tenantID, id string) error
	List(ctx context.Context, tenantID string, f Filter) ([]*Publication, int, error)
}
