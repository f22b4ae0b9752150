package billing

import (
	"context"
	"errors"
	"time"
)

// Transaction is a single income or expense entry.
type Transaction struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id"`
	ProjectID   string    `json:"project_id"`
	Kind        string    `json:"kind"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurred_at"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Transaction kinds
const (
	KindIncome  = "income"
	KindExpense = "expense"
)

// Invoice is a bill issued to a client.
type Invoice struct {
	ID        string     `json:"id"`
	ClientID  string     `json:"client_id"`
	ProjectID string     `json:"project_id"`
	Number    string     `json:"number"`
	Amount    float64    `json:"amount"`
	Currency  string     `json:"currency"`
	Status    string     `json:"status"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
	DueAt     *time.Time `json:"due_at,omitempty"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Invoice status values
const (
	InvoiceDraft   = "draft"
	InvoiceSent    = "sent"
	InvoicePaid    = "paid"
	InvoiceOverdue = "overdue"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvoiceNotFound     = errors.New("invoice not found")
)

// TransactionFilter narrows transaction lists; set fields combine with AND.
type TransactionFilter struct {
	ClientID  string
	ProjectID string
	Kind      string
	Category  string
	From      *time.Time
	To        *time.Time
	Page      int
	Limit     int
}

// InvoiceFilter narrows invoice lists; set fields combine with AND.
type InvoiceFilter struct {
	ClientID string
	Status   string
	Search   string // matches invoice number
	Page     int
	Limit    int
}

// FinanceStats feeds the dashboard for pro-tier tenants.
type FinanceStats struct {
	Income         float64 `json:"income"`
	Expenses       float64 `json:"expenses"`
	OutstandingSum float64 `json:"outstanding_sum"`
	OverdueCount   int     `json:"overdue_count"`
}

// TransactionRepository is the tenant-scoped transaction store.
type TransactionRepository interface {
	Create(ctx context.Context, tenantID string, tx *Transaction) error
	GetByID(ctx context.Context, tenantID, id string) (*Transaction, error)
	Delete(ctx context.Context, tenantID, id string) error
	List(ctx context.Context, tenantID string, f TransactionFilter) ([]*Transaction, int, error)
}

// InvoiceRepository is the tenant-scoped invoice store. Method names
// carry the Invoice suffix so one store type can implement both finance
// repositories.
type InvoiceRepository interface {
	CreateInvoice(ctx context.Context, tenantID string, inv *Invoice) error
	GetInvoiceByID(ctx context.Context, tenantID, id string) (*Invoice, error)
	UpdateInvoice(ctx context.Context, tenantID string, inv *Invoice) error
	DeleteInvoice(ctx context.Context, tenantID, id string) error
	ListInvoices(ctx context.Context, tenantID string, f InvoiceFilter) ([]*Invoice, int, error)
}

// StatsRepository aggregates finance numbers across both tables.
type StatsRepository interface {
	FinanceStats(ctx context.Context, tenantID string) (*FinanceStats, error)
}
