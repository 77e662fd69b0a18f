package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/regioninvest/portal/internal/domain"
)

// NotificationRepository handles notification data access operations.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification row for one recipient.
func (r *NotificationRepository) Create(ctx context.Context, n domain.Notification) (*domain.Notification, error) {
	var result domain.Notification
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO notifications (user_id, task_id, completion_id, kind, message)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, user_id, task_id, completion_id, kind, message, read, created_at`,
		n.UserID, n.TaskID, n.CompletionID, n.Kind, n.Message,
	).StructScan(&result)
	if err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return &result, nil
}

// List retrieves a page of the user's notifications, newest first, with
// task and completion context joined. beforeID = 0 starts from the top;
// otherwise only rows with id < beforeID are returned.
func (r *NotificationRepository) List(ctx context.Context, userID, beforeID int64, limit int) ([]domain.NotificationItem, error) {
	query := `SELECT n.id, n.user_id, n.task_id, n.completion_id, n.kind, n.message, n.read, n.created_at,
	                 t.title AS task_title, c.status AS completion_status
	          FROM notifications n
	          JOIN tasks t ON t.id = n.task_id
	          LEFT JOIN completions c ON c.id = n.completion_id
	          WHERE n.user_id = $1`
	args := []any{userID}
	if beforeID > 0 {
		query += ` AND n.id < $2`
		args = append(args, beforeID)
	}
	query += fmt.Sprintf(` ORDER BY n.id DESC LIMIT %d`, limit)

	var items []domain.NotificationItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list notifications for user %d: %w", userID, err)
	}
	return items, nil
}

// MarkRead flags one notification as read. Only the recipient may do
// so; anyone else gets ErrForbidden.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, actingUserID int64) error {
	var recipientID int64
	err := r.db.GetContext(ctx, &recipientID, `SELECT user_id FROM notifications WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("find notification %d: %w", id, err)
	}
	if recipientID != actingUserID {
		return domain.ErrForbidden
	}

	if _, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("mark notification %d read: %w", id, err)
	}
	return nil
}

// MarkAllRead flags all of the user's notifications as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE user_id = $1 AND NOT read`, userID); err != nil {
		return fmt.Errorf("mark all notifications read for user %d: %w", userID, err)
	}
	return nil
}

// UnreadCount returns the number of unread notifications for the user.
func (r *NotificationRepository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT read`, userID)
	if err != nil {
		return 0, fmt.Errorf("unread count for user %d: %w", userID, err)
	}
	return count, nil
}

// OverdueExists reports whether a task_overdue notification for the
// (task, recipient) pair was already created on the given day. Backs
// the sweep's idempotency guard; the partial unique index in the schema
// covers the concurrent case.
func (r *NotificationRepository) OverdueExists(ctx context.Context, taskID, userID int64, day time.Time) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (
		    SELECT 1 FROM notifications
		    WHERE task_id = $1 AND user_id = $2 AND kind = $3
		      AND created_at >= $4 AND created_at < $5
		 )`,
		taskID, userID, domain.NotificationTaskOverdue, day, day.AddDate(0, 0, 1))
	if err != nil {
		return false, fmt.Errorf("check overdue notification for task %d user %d: %w", taskID, userID, err)
	}
	return exists, nil
}
