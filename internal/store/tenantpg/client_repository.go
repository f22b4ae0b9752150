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

	"github.com/casefolio/casefolio/internal/clients"
)

// ClientRepository implements clients.Repository
type ClientRepository struct {
	exec Executor
}

// NewClientRepository creates a new client repository
func NewClientRepository(exec Executor) *ClientRepository {
	return &ClientRepository{exec: exec}
}

const clientColumns = `id, name, email, phone, company, address, notes, tags, active, created_at, updated_at`

// Create inserts a new client. The ID is generated here when the caller
// left it empty.
func (r *ClientRepository) Create(ctx context.Context, tenantID string, c *clients.Client) error {
	if c.ID == "" {
		c.ID = newID()
	}
	now := time.Now()
	c.Active = true
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Tags == nil {
		c.Tags = []string{}
	}

	_, err := r.exec.Exec(ctx, tenantID, `
		INSERT INTO {{schema}}.clients (`+clientColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		c.ID, c.Name, c.Email, c.Phone, c.Company, c.Address, c.Notes, c.Tags,
		c.Active, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert client: %w", err)
	}
	return nil
}

// GetByID retrieves an active client by ID
func (r *ClientRepository) GetByID(ctx context.Context, tenantID, id string) (*clients.Client, error) {
	row, err := r.exec.QueryRow(ctx, tenantID, `
		SELECT `+clientColumns+`
		FROM {{schema}}.clients
		WHERE id = $1 AND active
	`, id)
	if err != nil {
		return nil, err
	}
	return scanClient(row)
}

// Update rewrites the mutable fields of a client.
func (r *ClientRepository) Update(ctx context.Context, tenantID string, c *clients.Client) error {
	c.UpdatedAt = time.Now()
	tag, err := r.exec.Exec(ctx, tenantID, `
		UPDATE {{schema}}.clients
		SET name = $2, email = $3, phone = $4, company = $5, address = $6,
		    notes = $7, tags = $8, updated_at = $9
		WHERE id = $1 AND active
	`, c.ID, c.Name, c.Email, c.Phone, c.Company, c.Address, c.Notes, c.Tags, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return clients.ErrClientNotFound
	}
	return nil
}

// Delete soft-deletes a client by clearing the active flag.
func (r *ClientRepository) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := r.exec.Exec(ctx, tenantID, `
		UPDATE {{schema}}.clients SET active = FALSE, updated_at = $2 WHERE id = $1 AND active
	`, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return clients.ErrClientNotFound
	}
	return nil
}

// List returns one page of clients plus the total count for the filter.
func (r *ClientRepository) List(ctx context.Context, tenantID string, f clients.Filter) ([]*clients.Client, int, error) {
	where := newWhere()
	if f.Search != "" {
		where.add("(name ILIKE ? OR email ILIKE ? OR company ILIKE ?)",
			"%"+f.Search+"%", "%"+f.Search+"%", "%"+f.Search+"%")
	}
	if f.Tag != "" {
		where.add("? = ANY(tags)", f.Tag)
	}

	var total int
	row, err := r.exec.QueryRow(ctx, tenantID,
		`SELECT COUNT(*) FROM {{schema}}.clients`+where.String(), where.args...)
	if err != nil {
		return nil, 0, err
	}
	if err := row.Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}

	limit, offset := pageWindow(f.Page, f.Limit)
	args := append(where.args, limit, offset)
	rows, err := r.exec.Query(ctx, tenantID, fmt.Sprintf(`
		SELECT `+clientColumns+`
		FROM {{schema}}.clients
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where.String(), where.next(), where.next()+1), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*clients.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}
	return out, total, nil
}

// Stats returns client counts for the dashboard.
func (r *ClientRepository) Stats(ctx context.Context, tenantID string) (*clients.Stats, error) {
	row, err := r.exec.QueryRow(ctx, tenantID, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE created_at > now() - interval '30 days')
		FROM {{schema}}.clients
		WHERE active
	`)
	if err != nil {
		return nil, err
	}
	var s clients.Stats
	if err := row.Scan(&s.Total, &s.AddedLast30); err != nil {
		return nil, fmt.Errorf("failed to collect client stats: %w", err)
	}
	return &s, nil
}

func scanClient(row pgx.Row) (*clients.Client, error) {
	var c clients.Client
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Address, &c.Notes,
		&c.Tags, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, clients.ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to scan client: %w", err)
	}
	return &c, nil
}
