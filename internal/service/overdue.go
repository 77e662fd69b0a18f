package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/regioninvest/portal/internal/domain"
)

// ProjectDirectory is the project-lookup collaborator used for message
// rendering.
type ProjectDirectory interface {
	FindByID(ctx context.Context, id int64) (*domain.Project, error)
}

// OverdueService is the scheduled sweep that raises one task_overdue
// notification per (task, assignee, day).
type OverdueService struct {
	tasks         TaskStore
	projects      ProjectDirectory
	notifications NotificationStore
	notifier      *Notifier

	running atomic.Bool
	now     func() time.Time
}

// NewOverdueService creates a new OverdueService.
func NewOverdueService(tasks TaskStore, projects ProjectDirectory, notifications NotificationStore, notifier *Notifier) *OverdueService {
	return &OverdueService{
		tasks:         tasks,
		projects:      projects,
		notifications: notifications,
		notifier:      notifier,
		now:           time.Now,
	}
}

// SweepResult reports what one sweep run did.
type SweepResult struct {
	Created     int     `json:"created"`
	Skipped     int     `json:"skipped"`
	FailedTasks []int64 `json:"failed_tasks,omitempty"`
}

// Run scans open tasks past due and notifies each assignee once per
// day. Runs are single-flight: a second concurrent invocation returns
// ErrSweepRunning. A failure on one task is recorded and the sweep
// continues with the rest.
func (s *OverdueService) Run(ctx context.Context) (*SweepResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, domain.ErrSweepRunning
	}
	defer s.running.Store(false)

	now := s.now()
	today := startOfDay(now)

	tasks, err := s.tasks.ListOverdue(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("list overdue tasks: %w", err)
	}

	result := &SweepResult{}
	for _, task := range tasks {
		if task.AssigneeID == nil {
			continue
		}
		created, err := s.sweepTask(ctx, task, today)
		if err != nil {
			slog.Error("overdue sweep: task failed", "task_id", task.ID, "error", err)
			result.FailedTasks = append(result.FailedTasks, task.ID)
			continue
		}
		if created {
			result.Created++
		} else {
			result.Skipped++
		}
	}

	slog.Info("overdue sweep finished",
		"scanned", len(tasks),
		"created", result.Created,
		"skipped", result.Skipped,
		"failed", len(result.FailedTasks),
	)
	return result, nil
}

func (s *OverdueService) sweepTask(ctx context.Context, task domain.Task, today time.Time) (bool, error) {
	exists, err := s.notifications.OverdueExists(ctx, task.ID, *task.AssigneeID, today)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	project, err := s.projects.FindByID(ctx, task.ProjectID)
	if err != nil {
		return false, fmt.Errorf("load project %d: %w", task.ProjectID, err)
	}

	daysOverdue := daysBetween(*task.DueDate, today)
	err = s.notifier.Dispatch(ctx, Event{
		Kind:       domain.NotificationTaskOverdue,
		TaskID:     task.ID,
		Recipients: []int64{*task.AssigneeID},
		Message:    taskOverdueMessage(&task, project.Name, daysOverdue),
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts whole calendar days from one date to another.
// Each side is taken by its own calendar components, so a DATE column
// scanned as midnight UTC and a local-zone "now" never shift the count
// across zone offsets or DST.
func daysBetween(from, to time.Time) int {
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toDay.Sub(fromDay) / (24 * time.Hour))
}
