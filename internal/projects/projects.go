package projects

import (
	"context"
	"errors"
	"time"
)

// Project is a legal matter tracked for a client.
type Project struct {
	ID          string     `json:"id"`
	ClientID    string     `json:"client_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Tags        []string   `json:"tags"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Status values
const (
	StatusOpen   = "open"
	StatusOnHold = "on_hold"
	StatusClosed = "closed"
)

var ErrProjectNotFound = errors.New("project not found")

// Filter narrows List results; set fields combine with AND.
type Filter struct {
	ClientID string
	Status   string
	Priority string
	Search   string // matches title or description
	Tag      string
	Page     int
	Limit    int
}

// Stats feeds the dashboard.
type Stats struct {
	Total  int `json:"total"`
	Open   int `json:"open"`
	OnHold int `json:"on_hold"`
	Closed int `json:"closed"`
}

// Repository is the tenant-scoped project store.
type Repository interface {
	Create(ctx context.Context, tenantID string, project *Project) error
	GetByID(ctx context.Context, tenantID, id string) (*Project, error)
	Update(ctx context.Context, tenantID string, project *Project) error
	Delete(ctx context.Context, tenantID, id string) error
	List(ctx context.Context, tenantID string, f Filter) ([]*Project, int, error)
	Stats(ctx context.Context, tenantID string) (*Stats, error)
}
