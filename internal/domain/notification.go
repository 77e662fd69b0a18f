package domain

import "time"

// NotificationKind represents the workflow event a notification records.
type NotificationKind string

const (
	NotificationTaskAssigned        NotificationKind = "task_assigned"
	NotificationTaskOverdue         NotificationKind = "task_overdue"
	NotificationCompletionSubmitted NotificationKind = "completion_submitted"
	NotificationCompletionApproved  NotificationKind = "completion_approved"
	NotificationCompletionRejected  NotificationKind = "completion_rejected"
)

// Notification represents an in-app notification for a user. Rows are
// created only by the fan-out engine and are recipient-scoped.
type Notification struct {
	ID           int64            `json:"id" db:"id"`
	UserID       int64            `json:"user_id" db:"user_id"`
	TaskID       int64            `json:"task_id" db:"task_id"`
	CompletionID *int64           `json:"completion_id,omitempty" db:"completion_id"`
	Kind         NotificationKind `json:"kind" db:"kind"`
	Message      string           `json:"message" db:"message"`
	Read         bool             `json:"read" db:"read"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
}

// NotificationItem is a notification joined with its task and
// completion context for list responses.
type NotificationItem struct {
	Notification
	TaskTitle        string            `json:"task_title" db:"task_title"`
	CompletionStatus *CompletionStatus `json:"completion_status,omitempty" db:"completion_status"`
}
