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

package tenantpg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/casefolio/casefolio/internal/billing"
)

// BillingRepository implements billing.TransactionRepository,
// billing.InvoiceRepository and billing.StatsRepository over the two
// finance tables of the tenant schema.
type BillingRepository struct {
	exec Executor
}

// NewBillingRepository creates a new billing repository
func NewBillingRepository(exec Executor) *BillingRepository {
	return &BillingRepository{exec: exec}
}

const transactionColumns = `id, client_id, project_id, kind, amount, currency, category, description, occurred_at, active, created_at`
const invoiceColumns = `id, client_id, project_id, number, amount, currency, status, issued_at, due_at, paid_at, active, created_at, updated_at`

// Create inserts a new transaction.
func (r *BillingRepository) Create(ctx context.Context, tenantID string, tx *billing.Transaction) error {
	if tx.ID == "" {
		tx.ID = newID()
	}
	if tx.Kind != billing.KindIncome && tx.Kind != billing.KindExpense {
		return fmt.Errorf("invalid transaction kind: %s", tx.Kind)
	}
	if tx.Currency == "" {
		tx.Currency = "EUR"
	}
	if tx.OccurredAt.IsZero() {
		tx.OccurredAt = time.Now()
	}
	tx.Active = true
	tx.CreatedAt = time.Now()

	_, err := r.exec.Exec(ctx, tenantID, `
		INSERT INTO {{schema}}.transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		tx.ID, tx.ClientID, tx.ProjectID, tx.Kind, tx.Amount, tx.Currency,
		tx.Category, tx.Description, tx.OccurredAt, tx.Active, tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// GetByID retrieves an active transaction by ID
func (r *BillingRepository) GetByID(ctx context.Context, tenantID, id string) (*billing.Transaction, error) {
	row, err := r.exec.QueryRow(ctx, tenantID, `
		SELECT `+transactionColumns+`
		FROM {{schema}}.transactions
		WHERE id = $1 AND active
	`, id)
	if err != nil {
		return nil, err
	}
	return scanTransaction(row)
}

// Delete soft-deletes a transaction.
func (r *BillingRepository) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := r.exec.Exec(ctx, tenantID, `
		UPDATE {{schema}}.transactions SET active = FALSE WHERE id = $1 AND active
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return billing.ErrTransactionNotFound
	}
	return nil
}

// List returns one page of transactions plus the total count.
func (r *BillingRepository) List(ctx context.Context, tenantID string, f billing.TransactionFilter) ([]*billing.Transaction, int, error) {
	where := newWhere()
	if f.ClientID != "" {
		where.add("client_id = ?", f.ClientID)
	}
	if f.ProjectID != "" {
		where.add("project_id = ?", f.ProjectID)
	}
	if f.Kind != "" {
		where.add("kind = ?", f.Kind)
	}
	if f.Category != "" {
		where.add("category = ?", f.Category)
	}
	if f.From != nil {
		where.add("occurred_at >= ?", *f.From)
	}
	if f.To != nil {
		where.add("occurred_at < ?", *f.To)
	}

	var total int
	row, err := r.exec.QueryRow(ctx, tenantID,
		`SELECT COUNT(*) FROM {{schema}}.transactions`+where.String(), where.args...)
	if err != nil {
		return nil, 0, err
	}
	if err := row.Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	limit, offset := pageWindow(f.Page, f.Limit)
	args := append(where.args, limit, offset)
	rows, err := r.exec.Query(ctx, tenantID, fmt.Sprintf(`
		SELECT `+transactionColumns+`
		FROM {{schema}}.transactions
		%s
		ORDER BY occurred_at DESC
		LIMIT $%d OFFSET $%d
	`, where.String(), where.next(), where.next()+1), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*billing.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	return out, total, nil
}

// CreateInvoice inserts a new invoice.
func (r *BillingRepository) CreateInvoice(ctx context.Context, tenantID string, inv *billing.Invoice) error {
	if inv.ID == "" {
		inv.ID = newID()
	}
	if inv.Number == "" {
		return fmt.Errorf("invoice number is required")
	}
	if inv.Status == "" {
		inv.Status = billing.InvoiceDraft
	}
	if inv.Currency == "" {
		inv.Currency = "EUR"
	}
	now := time.Now()
	inv.Active = true
	inv.CreatedAt = now
	inv.UpdatedAt = now

	_, err := r.exec.Exec(ctx, tenantID, `
		INSERT INTO {{schema}}.invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		inv.ID, inv.ClientID, inv.ProjectID, inv.Number, inv.Amount, inv.Currency,
		inv.Status, inv.IssuedAt, inv.DueAt, inv.PaidAt, inv.Active, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}
	return nil
}

// GetInvoiceByID retrieves an active invoice by ID
func (r *BillingRepository) GetInvoiceByID(ctx context.Context, tenantID, id string) (*billing.Invoice, error) {
	row, err := r.exec.QueryRow(ctx, tenantID, `
		SELECT `+invoiceColumns+`
		FROM {{schema}}.invoices
		WHERE id = $1 AND active
	`, id)
	if err != nil {
		return nil, err
	}
	return scanInvoice(row)
}

// UpdateInvoice rewrites the mutable fields of an invoice.
func (r *BillingRepository) UpdateInvoice(ctx context.Context, tenantID string, inv *billing.Invoice) error {
	inv.UpdatedAt = time.Now()
	tag, err := r.exec.Exec(ctx, tenantID, `
		UPDATE {{schema}}.invoices
		SET client_id = $2, project_id = $3, number = $4, amount = $5, currency = $6,
		    status = $7, issued_at = $8, due_at = $9, paid_at = $10, updated_at = $11
		WHERE id = $1 AND active
	`, inv.ID, inv.ClientID, inv.ProjectID, inv.Number, inv.Amount, inv.Currency,
		inv.Status, inv.IssuedAt, inv.DueAt, inv.PaidAt, inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return billing.ErrInvoiceNotFound
	}
	return nil
}

// DeleteInvoice soft-deletes an invoice.
func (r *BillingRepository) DeleteInvoice(ctx context.Context, tenantID, id string) error {
	tag, err := r.exec.Exec(ctx, tenantID, `
		UPDATE {{schema}}.invoices SET active = FALSE, updated_at = $2 WHERE id = $1 AND active
	`, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return billing.ErrInvoiceNotFound
	}
	return nil
}

// ListInvoices returns one page of invoices plus the total count.
func (r *BillingRepository) ListInvoices(ctx context.Context, tenantID string, f billing.InvoiceFilter) ([]*billing.Invoice, int, error) {
	where := newWhere()
	if f.ClientID != "" {
		where.add("client_id = ?", f.ClientID)
	}
	if f.Status != "" {
		where.add("status = ?", f.Status)
	}
	if f.Search != "" {
		where.add("number ILIKE ?", "%"+f.Search+"%")
	}

	var total int
	row, err := r.exec.QueryRow(ctx, tenantID,
		`SELECT COUNT(*) FROM {{schema}}.invoices`+where.String(), where.args...)
	if err != nil {
		return nil, 0, err
	}
	if err := row.Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	limit, offset := pageWindow(f.Page, f.Limit)
	args := append(where.args, limit, offset)
	rows, err := r.exec.Query(ctx, tenantID, fmt.Sprintf(`
		SELECT `+invoiceColumns+`
		FROM {{schema}}.invoices
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where.String(), where.next(), where.next()+1), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*billing.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}
	return out, total, nil
}

// FinanceStats aggregates the finance numbers for the dashboard.
func (r *BillingRepository) FinanceStats(ctx context.Context, tenantID string) (*billing.FinanceStats, error) {
	var s billing.FinanceStats

	row, err := r.exec.QueryRow(ctx, tenantID, `
		SELECT COALESCE(SUM(amount) FILTER (WHERE kind = 'income'), 0),
		       COALESCE(SUM(amount) FILTER (WHERE kind = 'expense'), 0)
		FROM {{schema}}.transactions
		WHERE active
	`)
	if err != nil {
		return nil, err
	}
	if err := row.Scan(&s.Income, &s.Expenses); err != nil {
		return nil, fmt.Errorf("failed to collect transaction stats: %w", err)
	}

	row, err = r.exec.QueryRow(ctx, tenantID, `
		SELECT COALESCE(SUM(amount) FILTER (WHERE status IN ('sent', 'overdue')), 0),
		       COUNT(*) FILTER (WHERE status = 'overdue')
		FROM {{schema}}.invoices
		WHERE active
	`)
	if err != nil {
		return nil, err
	}
	if err := row.Scan(&s.OutstandingSum, &s.OverdueCount); err != nil {
		return nil, fmt.Errorf("failed to collect invoice stats: %w", err)
	}

	return &s, nil
}

func scanTransaction(row pgx.Row) (*billing.Transaction, error) {
	var tx billing.Transaction
	err := row.Scan(
		&tx.ID, &tx.ClientID, &tx.ProjectID, &tx.Kind, &tx.Amount, &tx.Currency,
		&tx.Category, &tx.Description, &tx.OccurredAt, &tx.Active, &tx.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, billing.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}
	return &tx, nil
}

func scanInvoice(row pgx.Row) (*billing.Invoice, error) {
	var inv billing.Invoice
	err := row.Scan(
		&inv.ID, &inv.ClientID, &inv.ProjectID, &inv.Number, &inv.Amount, &inv.Currency,
		&inv.Status, &inv.IssuedAt, &inv.DueAt, &inv.PaidAt, &inv.Active, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, billing.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to scan invoice: %w", err)
	}
	return &inv, nil
}
