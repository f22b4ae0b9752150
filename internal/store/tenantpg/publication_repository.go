package tenantpg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/casefolio/casefolio/internal/publications"
)

// PublicationRepository implements publications.Repository
type PublicationRepository struct {
	exec Executor
}

// NewPublicationRepository creates a new publication repository
func NewPublicationRepository(exec Executor) *PublicationRepository {
	return &PublicationRepository{exec: exec}
}

const publicationColumns = `id, title, body, status, tags, published_at, active, created_at, updated_at`

// Create inserts a new publication.
func (r *PublicationRepository) Create(ctx context.Context, tenantID string, p *publications.Publication) error {
	if p.ID == "" {
		p.ID = newID()
	}
	if p.Status == "" {
		p.Status = publications.StatusDraft
	}
	if p.Status == publications.StatusPublished && p.PublishedAt == nil {
		now := time.Now()
		p.PublishedAt = &now
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	now := time.Now()
	p.Active = true
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.exec.Exec(ctx, tenantID, `
		INSERT INTO {{schema}}.publications (`+publicationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		p.ID, p.Title, p.Body, p.Status, p.Tags, p.PublishedAt, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert publication: %w", err)
	}
	return nil
}

// GetByID retrieves an active publication by ID
func (r *PublicationRepository) GetByID(ctx context.Context, tenantID, id string) (*publications.Publication, error) {
	row, err := r.exec.QueryRow(ctx, tenantID, `
		SELECT `+publicationColumns+`
		FROM {{schema}}.publications
		WHERE id = $1 AND active
	`, id)
	if err != nil {
		return nil, err
	}
	return scanPublication(row)
}

// Update rewrites the mutable fields of a publication. Moving to
// published sets the publication timestamp once.
func (r *PublicationRepository) Update(ctx context.Context, tenantID string, p *publications.Publication) error {
	if p.Status == publications.StatusPublished && p.PublishedAt == nil {
		now := time.Now()
		p.PublishedAt = &now
	}
	p.UpdatedAt = time.Now()
	tag, err := r.exec.Exec(ctx, tenantID, `
		UPDATE {{schema}}.publications
		SET title = $2, body = $3, status = $4, tags = $5, published_at = $6, updated_at = $7
		WHERE id = $1 AND active
	`, p.ID, p.Title, p.Body, p.Status, p.Tags, p.PublishedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update publication: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return publications.ErrPublicationNotFound
	}
	return nil
}

// Delete soft-deletes a publication.
func (r *PublicationRepository) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := r.exec.Exec(ctx, tenantID, `
		UPDATE {{schema}}.publications SET active = FALSE, updated_at = $2 WHERE id = $1 AND active
	`, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete publication: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return publications.ErrPublicationNotFound
	}
	return nil
}

// List returns one page of publications plus the total count.
func (r *PublicationRepository) List(ctx context.Context, tenantID string, f publications.Filter) ([]*publications.Publication, int, error) {
	where := newWhere()
	if f.Status != "" {
		where.add("status = ?", f.Status)
	}
	if f.Search != "" {
		where.add("(title ILIKE ? OR body ILIKE ?)", "%"+f.Search+"%", "%"+f.Search+"%")
	}
	if f.Tag != "" {
		where.add("? = ANY(tags)", f.Tag)
	}

	var total int
	row, err := r.exec.QueryRow(ctx, tenantID,
		`SELECT COUNT(*) FROM {{schema}}.publications`+where.String(), where.args...)
	if err != nil {
		return nil, 0, err
	}
	if err := row.Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count publications: %w", err)
	}

	limit, offset := pageWindow(f.Page, f.Limit)
	args := append(where.args, limit, offset)
	rows, err := r.exec.Query(ctx, tenantID, fmt.Sprintf(`
		SELECT `+publicationColumns+`
		FROM {{schema}}.publications
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where.String(), where.next(), where.next()+1), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*publications.Publication
	for rows.Next() {
		p, err := scanPublication(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list publications: %w", err)
	}
	return out, total, nil
}

func scanPublication(row pgx.Row) (*publications.Publication, error) {
	var p publications.Publication
	err := row.Scan(
		&p.ID, &p.Title, &p.Body, &p.Status, &p.Tags, &p.PublishedAt,
		&p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, publications.ErrPublicationNotFound
		}
		return nil, fmt.Errorf("failed to scan publication: %w", err)
	}
	return &p, nil
}
