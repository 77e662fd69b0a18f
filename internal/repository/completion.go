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

// CompletionRepository handles completion and attachment data access.
type CompletionRepository struct {
	db *sqlx.DB
}

// NewCompletionRepository creates a new CompletionRepository.
func NewCompletionRepository(db *sqlx.DB) *CompletionRepository {
	return &CompletionRepository{db: db}
}

// Create inserts a completion together with its attachments in one
// transaction. Attachment rows are insert-only.
func (r *CompletionRepository) Create(ctx context.Context, completion domain.Completion, files []domain.CompletionFile) (*domain.Completion, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var result domain.Completion
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO completions (task_id, submitter_id, comment, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, task_id, submitter_id, comment, status, reviewer_id, review_comment, reviewed_at, created_at`,
		completion.TaskID, completion.SubmitterID, completion.Comment, domain.CompletionStatusPending,
	).StructScan(&result)
	if err != nil {
		return nil, fmt.Errorf("create completion: %w", err)
	}

	for _, f := range files {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO completion_files (completion_id, path, original_name, kind)
			 VALUES ($1, $2, $3, $4)`,
			result.ID, f.Path, f.OriginalName, f.Kind)
		if err != nil {
			return nil, fmt.Errorf("create completion file %q: %w", f.OriginalName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit completion: %w", err)
	}
	return &result, nil
}

// FindByID retrieves a completion by its ID.
func (r *CompletionRepository) FindByID(ctx context.Context, id int64) (*domain.Completion, error) {
	var completion domain.Completion
	err := r.db.GetContext(ctx, &completion,
		`SELECT id, task_id, submitter_id, comment, status, reviewer_id, review_comment, reviewed_at, created_at
		 FROM completions WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find completion by id %d: %w", id, err)
	}
	return &completion, nil
}

// ListByTask retrieves all completions of a task, newest first.
func (r *CompletionRepository) ListByTask(ctx context.Context, taskID int64) ([]domain.Completion, error) {
	var completions []domain.Completion
	err := r.db.SelectContext(ctx, &completions,
		`SELECT id, task_id, submitter_id, comment, status, reviewer_id, review_comment, reviewed_at, created_at
		 FROM completions WHERE task_id = $1 ORDER BY created_at DESC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list completions by task %d: %w", taskID, err)
	}
	return completions, nil
}

// ListFiles retrieves the attachments of a completion.
func (r *CompletionRepository) ListFiles(ctx context.Context, completionID int64) ([]domain.CompletionFile, error) {
	var files []domain.CompletionFile
	err := r.db.SelectContext(ctx, &files,
		`SELECT id, completion_id, path, original_name, kind
		 FROM completion_files WHERE completion_id = $1 ORDER BY id`, completionID)
	if err != nil {
		return nil, fmt.Errorf("list files of completion %d: %w", completionID, err)
	}
	return files, nil
}

// Review records a reviewer decision on a pending completion. The WHERE
// clause on status makes the decision single-shot: a second review of
// the same completion matches no rows.
func (r *CompletionRepository) Review(ctx context.Context, id int64, status domain.CompletionStatus, reviewerID int64, comment *string, reviewedAt time.Time) (*domain.Completion, error) {
	var result domain.Completion
	err := r.db.QueryRowxContext(ctx,
		`UPDATE completions
		 SET status = $1, reviewer_id = $2, review_comment = $3, reviewed_at = $4
		 WHERE id = $5 AND status = $6
		 RETURNING id, task_id, submitter_id, comment, status, reviewer_id, review_comment, reviewed_at, created_at`,
		status, reviewerID, comment, reviewedAt, id, domain.CompletionStatusPending,
	).StructScan(&result)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("review completion %d: %w", id, err)
	}
	return &result, nil
}
