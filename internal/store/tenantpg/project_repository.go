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

	"github.com/casefolio/casefolio/internal/projects"
)

// ProjectRepository implements projects.Repository
type ProjectRepository struct {
	exec Executor
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(exec Executor) *ProjectRepository {
	return &ProjectRepository{exec: exec}
}

const projectColumns = `id, client_id, title, description, status, priority, start_date, due_date, tags, active, created_at, updated_at`

// Create inserts a new project.
func (r *ProjectRepository) Create(ctx context.Context, tenantID string, p *projects.Project) error {
	if p.ID == "" {
		p.ID = newID()
	}
	if p.Status == "" {
		p.Status = projects.StatusOpen
	}
	if p.Priority == "" {
		p.Priority = "medium"
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	now := time.Now()
	p.Active = true
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.exec.Exec(ctx, tenantID, `
		INSERT INTO {{schema}}.projects (`+projectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		p.ID, p.ClientID, p.Title, p.Description, p.Status, p.Priority,
		p.StartDate, p.DueDate, p.Tags, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

// GetByID retrieves an active project by ID
func (r *ProjectRepository) GetByID(ctx context.Context, tenantID, id string) (*projects.Project, error) {
	row, err := r.exec.QueryRow(ctx, tenantID, `
		SELECT `+projectColumns+`
		FROM {{schema}}.projects
		WHERE id = $1 AND active
	`, id)
	if err != nil {
		return nil, err
	}
	return scanProject(row)
}

// Update rewrites the mutable fields of a project.
func (r *ProjectRepository) Update(ctx context.Context, tenantID string, p *projects.Project) error {
	p.UpdatedAt = time.Now()
	tag, err := r.exec.Exec(ctx, tenantID, `
		UPDATE {{schema}}.projects
		SET client_id = $2, title = $3, description = $4, status = $5, priority = $6,
		    start_date = $7, due_date = $8, tags = $9, updated_at = $10
		WHERE id = $1 AND active
	`, p.ID, p.ClientID, p.Title, p.Description, p.Status, p.Priority,
		p.StartDate, p.DueDate, p.Tags, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return projects.ErrProjectNotFound
	}
	return nil
}

// Delete soft-deletes a project.
func (r *ProjectRepository) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := r.exec.Exec(ctx, tenantID, `
		UPDATE {{schema}}.projects SET active = FALSE, updated_at = $2 WHERE id = $1 AND active
	`, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return projects.ErrProjectNotFound
	}
	return nil
}

// List returns one page of projects plus the total count for the filter.
func (r *ProjectRepository) List(ctx context.Context, tenantID string, f projects.Filter) ([]*projects.Project, int, error) {
	where := newWhere()
	if f.ClientID != "" {
		where.add("client_id = ?", f.ClientID)
	}
	if f.Status != "" {
		where.add("status = ?", f.Status)
	}
	if f.Priority != "" {
		where.add("priority = ?", f.Priority)
	}
	if f.Search != "" {
		where.add("(title ILIKE ? OR description ILIKE ?)", "%"+f.Search+"%", "%"+f.Search+"%")
	}
	if f.Tag != "" {
		where.add("? = ANY(tags)", f.Tag)
	}

	var total int
	row, err := r.exec.QueryRow(ctx, tenantID,
		`SELECT COUNT(*) FROM {{schema}}.projects`+where.String(), where.args...)
	if err != nil {
		return nil, 0, err
	}
	if err := row.Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	limit, offset := pageWindow(f.Page, f.Limit)
	args := append(where.args, limit, offset)
	rows, err := r.exec.Query(ctx, tenantID, fmt.Sprintf(`
		SELECT `+projectColumns+`
		FROM {{schema}}.projects
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where.String(), where.next(), where.next()+1), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*projects.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return out, total, nil
}

// Stats returns project counts by status for the dashboard.
func (r *ProjectRepository) Stats(ctx context.Context, tenantID string) (*projects.Stats, error) {
	row, err := r.exec.QueryRow(ctx, tenantID, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'open'),
		       COUNT(*) FILTER (WHERE status = 'on_hold'),
		       COUNT(*) FILTER (WHERE status = 'closed')
		FROM {{schema}}.projects
		WHERE active
	`)
	if err != nil {
		return nil, err
	}
	var s projects.Stats
	if err := row.Scan(&s.Total, &s.Open, &s.OnHold, &s.Closed); err != nil {
		return nil, fmt.Errorf("failed to collect project stats: %w", err)
	}
	return &s, nil
}

func scanProject(row pgx.Row) (*projects.Project, error) {
	var p projects.Project
	err := row.Scan(
		&p.ID, &p.ClientID, &p.Title, &p.Description, &p.Status, &p.Priority,
		&p.StartDate, &p.DueDate, &p.Tags, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, projects.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}
	return &p, nil
}
