package tasks

import (
	"context"
	"errors"
	"time"
)

// Task is a unit of work, usually under a project.
type Task struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Assignee    string     `json:"assignee"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Tags        []string   `json:"tags"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Status values
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// Priority values
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

var ErrTaskNotFound = errors.New("task not found")

// Filter narrows List results; set fields combine with AND.
type Filter struct {
	ProjectID string
	Status    string
	Priority  string
	Assignee  string
	Search    string
	Tag       string
	Page      int
	Limit     int
}

// Stats feeds the dashboard.
type Stats struct {
	Total      int `json:"total"`
	Todo       int `json:"todo"`
	InProgress int `json:"in_progress"`
	Done       int `json:"done"`
	Overdue    int `json:"overdue"`
}

// Repository is the tenant-scoped task store.
type Repository interface {
	Create(ctx context.Context, tenantID string, task *Task) error
	GetByID(ctx context.Context, tenantID, id string) (*Task, error)
	Update(ctx context.Context, tenantID string, task *Task) error
	Delete(ctx context.Context, tenantID, id string) error
	List(ctx context.Context, tenantID string, f Filter) ([]*Task, int, error)
	Stats(ctx context.Context, tenantID string) (*Stats, error)
}
