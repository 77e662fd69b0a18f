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

// TaskRepository handles task data access operations.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task and returns it with generated fields.
func (r *TaskRepository) Create(ctx context.Context, task domain.Task) (*domain.Task, error) {
	var result domain.Task
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO tasks (project_id, title, description, assignee_id, creator_id, status, start_date, due_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, project_id, title, description, assignee_id, creator_id, status, start_date, due_date, created_at, updated_at`,
		task.ProjectID, task.Title, task.Description, task.AssigneeID,
		task.CreatorID, task.Status, task.StartDate, task.DueDate,
	).StructScan(&result)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &result, nil
}

// FindByID retrieves a task by its ID.
func (r *TaskRepository) FindByID(ctx context.Context, id int64) (*domain.Task, error) {
	var task domain.Task
	err := r.db.GetContext(ctx, &task,
		`SELECT id, project_id, title, description, assignee_id, creator_id, status, start_date, due_date, created_at, updated_at
		 FROM tasks WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find task by id %d: %w", id, err)
	}
	return &task, nil
}

// ListByProject retrieves all tasks of a project, newest first.
func (r *TaskRepository) ListByProject(ctx context.Context, projectID int64) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.SelectContext(ctx, &tasks,
		`SELECT id, project_id, title, description, assignee_id, creator_id, status, start_date, due_date, created_at, updated_at
		 FROM tasks WHERE project_id = $1 ORDER BY created_at DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks by project %d: %w", projectID, err)
	}
	return tasks, nil
}

// UpdateStatus sets a task's status.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id int64, status domain.TaskStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update task %d status: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListOverdue retrieves tasks whose due date is set and earlier than
// the given day boundary and that are not done yet.
func (r *TaskRepository) ListOverdue(ctx context.Context, before time.Time) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.SelectContext(ctx, &tasks,
		`SELECT id, project_id, title, description, assignee_id, creator_id, status, start_date, due_date, created_at, updated_at
		 FROM tasks
		 WHERE due_date IS NOT NULL AND due_date < $1 AND status <> $2
		 ORDER BY due_date`, before, domain.TaskStatusDone)
	if err != nil {
		return nil, fmt.Errorf("list overdue tasks: %w", err)
	}
	return tasks, nil
}
