package domain

import "time"

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusNew        TaskStatus = "new"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusRejected   TaskStatus = "rejected"
)

// TaskEvent is a workflow event that moves a task between states.
type TaskEvent string

const (
	TaskEventSubmitted TaskEvent = "submitted"
	TaskEventApproved  TaskEvent = "approved"
	TaskEventRejected  TaskEvent = "rejected"
)

// Task represents a unit of work assigned to a user within a project.
type Task struct {
	ID          int64      `json:"id" db:"id"`
	ProjectID   int64      `json:"project_id" db:"project_id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description,omitempty" db:"description"`
	AssigneeID  *int64     `json:"assignee_id,omitempty" db:"assignee_id"`
	CreatorID   int64      `json:"creator_id" db:"creator_id"`
	Status      TaskStatus `json:"status" db:"status"`
	StartDate   *time.Time `json:"start_date,omitempty" db:"start_date"`
	DueDate     *time.Time `json:"due_date,omitempty" db:"due_date"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Open reports whether the task still accepts submissions.
func (t Task) Open() bool {
	return t.Status != TaskStatusDone
}
