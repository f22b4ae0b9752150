package tenantpg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/casefolio/casefolio/internal/notifications"
)

// NotificationRepository implements notifications.Repository
type NotificationRepository struct {
	exec Executor
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(exec Executor) *NotificationRepository {
	return &NotificationRepository{exec: exec}
}

const notificationColumns = `id, user_id, kind, title, body, read, active, created_at`

// Create inserts a new notification.
func (r *NotificationRepository) Create(ctx context.Context, tenantID string, n *notifications.Notification) error {
	if n.ID == "" {
		n.ID = newID()
	}
	if n.Kind == "" {
		n.Kind = notifications.KindInfo
	}
	n.Active = true
	n.CreatedAt = time.Now()

	_, err := r.exec.Exec(ctx, tenantID, `
		INSERT INTO {{schema}}.notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, n.ID, n.UserID, n.Kind, n.Title, n.Body, n.Read, n.Active, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// MarkRead flags one notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, tenantID, id string) error {
	tag, err := r.exec.Exec(ctx, tenantID, `
		UPDATE {{schema}}.notifications SET read = TRUE WHERE id = $1 AND active
	`, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notifications.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead flags every unread notification of a user as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, tenantID, userID string) error {
	_, err := r.exec.Exec(ctx, tenantID, `
		UPDATE {{schema}}.notifications SET read = TRUE WHERE user_id = $1 AND NOT read AND active
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

// Delete soft-deletes a notification.
func (r *NotificationRepository) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := r.exec.Exec(ctx, tenantID, `
		UPDATE {{schema}}.notifications SET active = FALSE WHERE id = $1 AND active
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notifications.ErrNotificationNotFound
	}
	return nil
}

// List returns one page of notifications plus the total count.
func (r *NotificationRepository) List(ctx context.Context, tenantID string, f notifications.Filter) ([]*notifications.Notification, int, error) {
	where := newWhere()
	if f.UserID != "" {
		where.add("user_id = ?", f.UserID)
	}
	if f.UnreadOnly {
		where.add("NOT read")
	}

	var total int
	row, err := r.exec.QueryRow(ctx, tenantID,
		`SELECT COUNT(*) FROM {{schema}}.notifications`+where.String(), where.args...)
	if err != nil {
		return nil, 0, err
	}
	if err := row.Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	limit, offset := pageWindow(f.Page, f.Limit)
	args := append(where.args, limit, offset)
	rows, err := r.exec.Query(ctx, tenantID, fmt.Sprintf(`
		SELECT `+notificationColumns+`
		FROM {{schema}}.notifications
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where.String(), where.next(), where.next()+1), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*notifications.Notification
	for rows.Next() {
		var n notifications.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Body, &n.Read, &n.Active, &n.CreatedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, 0, notifications.ErrNotificationNotFound
			}
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return out, total, nil
}
