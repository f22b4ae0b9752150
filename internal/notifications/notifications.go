package notifications

import (
	"context"
	"errors"
	"time"
)

// Notification is an in-app message for one of the tenant's users.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Kinds
const (
	KindInfo     = "info"
	KindDeadline = "deadline"
	KindBilling  = "billing"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Filter narrows List results; set fields combine with AND.
type Filter struct {
	UserID     string
	UnreadOnly bool
	Page       int
	Limit      int
}

// Repository is the tenant-scoped notification store.
type Repository interface {
	Create(ctx context.Context, tenantID string, n *Notification) error
	MarkRead(ctx context.Context, tenantID, id string) error
	MarkAllRead(ctx context.Context, tenantID, userID string) error
	Delete(ctx context.Context, tenantID, id string) error
	List(ctx context.Context, tenantID string, f Filter) ([]*Notification, int, error)
}
