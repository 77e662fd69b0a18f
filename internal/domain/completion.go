package domain

import "time"

// CompletionStatus represents the review state of a completion.
type CompletionStatus string

const (
	CompletionStatusPending  CompletionStatus = "pending"
	CompletionStatusApproved CompletionStatus = "approved"
	CompletionStatusRejected CompletionStatus = "rejected"
)

// FileKind distinguishes the two attachment categories.
type FileKind string

const (
	FileKindDocument FileKind = "document"
	FileKindPhoto    FileKind = "photo"
)

// Completion represents one evidence submission against a task.
// Re-submission after a rejection always inserts a new row; reviewed
// completions are never reused.
type Completion struct {
	ID            int64            `json:"id" db:"id"`
	TaskID        int64            `json:"task_id" db:"task_id"`
	SubmitterID   int64            `json:"submitter_id" db:"submitter_id"`
	Comment       *string          `json:"comment,omitempty" db:"comment"`
	Status        CompletionStatus `json:"status" db:"status"`
	ReviewerID    *int64           `json:"reviewer_id,omitempty" db:"reviewer_id"`
	ReviewComment *string          `json:"review_comment,omitempty" db:"review_comment"`
	ReviewedAt    *time.Time       `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
}

// Reviewed reports whether a reviewer decision has been recorded.
func (c Completion) Reviewed() bool {
	return c.Status != CompletionStatusPending
}

// CompletionFile is an attachment stored alongside a completion.
type CompletionFile struct {
	ID           int64    `json:"id" db:"id"`
	CompletionID int64    `json:"completion_id" db:"completion_id"`
	Path         string   `json:"path" db:"path"`
	OriginalName string   `json:"original_name" db:"original_name"`
	Kind         FileKind `json:"kind" db:"kind"`
}
