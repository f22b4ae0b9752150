package tenantpg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/casefolio/casefolio/internal/tasks"
)

// TaskRepository implements tasks.Repository
type TaskRepository struct {
	exec Executor
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(exec Executor) *TaskRepository {
	return &TaskRepository{exec: exec}
}

const taskColumns = `id, project_id, title, description, status, priority, assignee, due_date, tags, active, created_at, updated_at`

// Create inserts a new task.
func (r *TaskRepository) Create(ctx context.Context, tenantID string, t *tasks.Task) error {
	if t.ID == "" {
		t.ID = newID()
	}
	if t.Status == "" {
		t.Status = tasks.StatusTodo
	}
	if t.Priority == "" {
		t.Priority = tasks.PriorityMedium
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	now := time.Now()
	t.Active = true
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := r.exec.Exec(ctx, tenantID, `
		INSERT INTO {{schema}}.tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		t.ID, t.ProjectID, t.Title, t.Description, t.Status, t.Priority,
		t.Assignee, t.DueDate, t.Tags, t.Active, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// GetByID retrieves an active task by ID
func (r *TaskRepository) GetByID(ctx context.Context, tenantID, id string) (*tasks.Task, error) {
	row, err := r.exec.QueryRow(ctx, tenantID, `
		SELECT `+taskColumns+`
		FROM {{schema}}.tasks
		WHERE id = $1 AND active
	`, id)
	if err != nil {
		return nil, err
	}
	return scanTask(row)
}

// Update rewrites the mutable fields of a task.
func (r *TaskRepository) Update(ctx context.Context, tenantID string, t *tasks.Task) error {
	t.UpdatedAt = time.Now()
	tag, err := r.exec.Exec(ctx, tenantID, `
		UPDATE {{schema}}.tasks
		SET project_id = $2, title = $3, description = $4, status = $5, priority = $6,
		    assignee = $7, due_date = $8, tags = $9, updated_at = $10
		WHERE id = $1 AND active
	`, t.ID, t.ProjectID, t.Title, t.Description, t.Status, t.Priority,
		t.Assignee, t.DueDate, t.Tags, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tasks.ErrTaskNotFound
	}
	return nil
}

// Delete soft-deletes a task.
func (r *TaskRepository) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := r.exec.Exec(ctx, tenantID, `
		UPDATE {{schema}}.tasks SET active = FALSE, updated_at = $2 WHERE id = $1 AND active
	`, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tasks.ErrTaskNotFound
	}
	return nil
}

// List returns one page of tasks plus the total count for the filter.
func (r *TaskRepository) List(ctx context.Context, tenantID string, f tasks.Filter) ([]*tasks.Task, int, error) {
	where := newWhere()
	if f.ProjectID != "" {
		where.add("project_id = ?", f.ProjectID)
	}
	if f.Status != "" {
		where.add("status = ?", f.Status)
	}
	if f.Priority != "" {
		where.add("priority = ?", f.Priority)
	}
	if f.Assignee != "" {
		where.add("assignee = ?", f.Assignee)
	}
	if f.Search != "" {
		where.add("(title ILIKE ? OR description ILIKE ?)", "%"+f.Search+"%", "%"+f.Search+"%")
	}
	if f.Tag != "" {
		where.add("? = ANY(tags)", f.Tag)
	}

	var total int
	row, err := r.exec.QueryRow(ctx, tenantID,
		`SELECT COUNT(*) FROM {{schema}}.tasks`+where.String(), where.args...)
	if err != nil {
		return nil, 0, err
	}
	if err := row.Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	limit, offset := pageWindow(f.Page, f.Limit)
	args := append(where.args, limit, offset)
	rows, err := r.exec.Query(ctx, tenantID, fmt.Sprintf(`
		SELECT `+taskColumns+`
		FROM {{schema}}.tasks
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where.String(), where.next(), where.next()+1), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*tasks.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return out, total, nil
}

// Stats returns task counts by status for the dashboard. Overdue counts
// open tasks whose due date has passed.
func (r *TaskRepository) Stats(ctx context.Context, tenantID string) (*tasks.Stats, error) {
	row, err := r.exec.QueryRow(ctx, tenantID, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'todo'),
		       COUNT(*) FILTER (WHERE status = 'in_progress'),
		       COUNT(*) FILTER (WHERE status = 'done'),
		       COUNT(*) FILTER (WHERE status <> 'done' AND due_date IS NOT NULL AND due_date < now())
		FROM {{schema}}.tasks
		WHERE active
	`)
	if err != nil {
		return nil, err
	}
	var s tasks.Stats
	if err := row.Scan(&s.Total, &s.Todo, &s.InProgress, &s.Done, &s.Overdue); err != nil {
		return nil, fmt.Errorf("failed to collect task stats: %w", err)
	}
	return &s, nil
}

func scanTask(row pgx.Row) (*tasks.Task, error) {
	var t tasks.Task
	err := row.Scan(
		&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.Assignee, &t.DueDate, &t.Tags, &t.Active, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tasks.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	return &t, nil
}
