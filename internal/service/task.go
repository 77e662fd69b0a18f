package service

import (
	"context"
	"fmt"
	"time"

	"github.com/regioninvest/portal/internal/domain"
)

// TaskStore defines the task data access interface consumed by the
// workflow services.
type TaskStore interface {
	Create(ctx context.Context, task domain.Task) (*domain.Task, error)
	FindByID(ctx context.Context, id int64) (*domain.Task, error)
	ListByProject(ctx context.Context, projectID int64) ([]domain.Task, error)
	UpdateStatus(ctx context.Context, id int64, status domain.TaskStatus) error
	ListOverdue(ctx context.Context, before time.Time) ([]domain.Task, error)
}

// taskTransitions is the lifecycle table: which states each workflow
// event may fire from, and the state it forces. A submission re-enters
// in_progress from new, in_progress or rejected; reviewer decisions
// only apply to a task with an active submission.
var taskTransitions = map[domain.TaskEvent]struct {
	from map[domain.TaskStatus]bool
	to   domain.TaskStatus
}{
	domain.TaskEventSubmitted: {
		from: map[domain.TaskStatus]bool{
			domain.TaskStatusNew:        true,
			domain.TaskStatusInProgress: true,
			domain.TaskStatusRejected:   true,
		},
		to: domain.TaskStatusInProgress,
	},
	domain.TaskEventApproved: {
		from: map[domain.TaskStatus]bool{domain.TaskStatusInProgress: true},
		to:   domain.TaskStatusDone,
	},
	domain.TaskEventRejected: {
		from: map[domain.TaskStatus]bool{domain.TaskStatusInProgress: true},
		to:   domain.TaskStatusRejected,
	},
}

// TaskService owns the task lifecycle.
type TaskService struct {
	tasks    TaskStore
	notifier *Notifier
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks TaskStore, notifier *Notifier) *TaskService {
	return &TaskService{tasks: tasks, notifier: notifier}
}

// CreateTaskInput holds the fields for creating a task.
type CreateTaskInput struct {
	ProjectID   int64
	Title       string
	Description *string
	AssigneeID  *int64
	CreatorID   int64
	StartDate   *time.Time
	DueDate     *time.Time
}

// Create validates and stores a new task. When the task is assigned to
// someone other than its creator, the assignee is notified.
func (s *TaskService) Create(ctx context.Context, in CreateTaskInput) (*domain.Task, error) {
	if in.StartDate != nil && in.DueDate != nil && in.DueDate.Before(*in.StartDate) {
		return nil, &domain.ValidationError{Field: "due_date", Message: "must not be before start_date"}
	}

	task, err := s.tasks.Create(ctx, domain.Task{
		ProjectID:   in.ProjectID,
		Title:       in.Title,
		Description: in.Description,
		AssigneeID:  in.AssigneeID,
		CreatorID:   in.CreatorID,
		Status:      domain.TaskStatusNew,
		StartDate:   in.StartDate,
		DueDate:     in.DueDate,
	})
	if err != nil {
		return nil, err
	}

	if task.AssigneeID != nil && *task.AssigneeID != task.CreatorID {
		err := s.notifier.Dispatch(ctx, Event{
			Kind:       domain.NotificationTaskAssigned,
			TaskID:     task.ID,
			Recipients: []int64{*task.AssigneeID},
			Message:    taskAssignedMessage(task),
		})
		if err != nil {
			return nil, fmt.Errorf("notify assignee of task %d: %w", task.ID, err)
		}
	}

	return task, nil
}

// Get retrieves a task by ID.
func (s *TaskService) Get(ctx context.Context, id int64) (*domain.Task, error) {
	return s.tasks.FindByID(ctx, id)
}

// ListByProject retrieves the tasks of a project.
func (s *TaskService) ListByProject(ctx context.Context, projectID int64) ([]domain.Task, error) {
	return s.tasks.ListByProject(ctx, projectID)
}

// CanTransition reports whether the event may legally fire from the
// task's current state. The workflow services call it before writing
// anything, so an illegal event fails with no partial state behind it.
func (s *TaskService) CanTransition(task *domain.Task, event domain.TaskEvent) error {
	tr, ok := taskTransitions[event]
	if !ok {
		return fmt.Errorf("%w: unknown task event %q", domain.ErrConflict, event)
	}
	if !tr.from[task.Status] {
		return fmt.Errorf("%w: event %q on task %d in state %q", domain.ErrConflict, event, task.ID, task.Status)
	}
	return nil
}

// Transition applies a workflow event to a task and persists the
// resulting status. The completion workflow is the sole caller; an
// event fired from a state outside the lifecycle table is a logic
// error and is rejected without mutation.
func (s *TaskService) Transition(ctx context.Context, task *domain.Task, event domain.TaskEvent) error {
	if err := s.CanTransition(task, event); err != nil {
		return err
	}

	tr := taskTransitions[event]
	if err := s.tasks.UpdateStatus(ctx, task.ID, tr.to); err != nil {
		return fmt.Errorf("transition task %d to %q: %w", task.ID, tr.to, err)
	}
	task.Status = tr.to
	return nil
}
