package service

import (
	"context"
	"fmt"
	"time"

	"github.com/regioninvest/portal/internal/domain"
)

// CompletionStore defines the completion data access interface.
type CompletionStore interface {
	Create(ctx context.Context, completion domain.Completion, files []domain.CompletionFile) (*domain.Completion, error)
	FindByID(ctx context.Context, id int64) (*domain.Completion, error)
	ListByTask(ctx context.Context, taskID int64) ([]domain.Completion, error)
	ListFiles(ctx context.Context, completionID int64) ([]domain.CompletionFile, error)
	Review(ctx context.Context, id int64, status domain.CompletionStatus, reviewerID int64, comment *string, reviewedAt time.Time) (*domain.Completion, error)
}

// UserDirectory is the user-lookup collaborator consumed by recipient
// resolution.
type UserDirectory interface {
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
}

// CompletionService orchestrates evidence submission and review.
type CompletionService struct {
	taskSvc     *TaskService
	completions CompletionStore
	users       UserDirectory
	notifier    *Notifier

	// requireEvidence rejects submissions carrying neither a comment
	// nor any attachment.
	requireEvidence bool

	now func() time.Time
}

// NewCompletionService creates a new CompletionService.
func NewCompletionService(taskSvc *TaskService, completions CompletionStore, users UserDirectory, notifier *Notifier, requireEvidence bool) *CompletionService {
	return &CompletionService{
		taskSvc:         taskSvc,
		completions:     completions,
		users:           users,
		notifier:        notifier,
		requireEvidence: requireEvidence,
		now:             time.Now,
	}
}

// SubmitInput holds the fields for submitting a completion. Files are
// already uploaded; only their stored paths and metadata arrive here.
type SubmitInput struct {
	TaskID      int64
	SubmitterID int64
	Comment     *string
	Files       []domain.CompletionFile
}

// Submit records a new pending completion against the task, moves the
// task to in_progress and notifies the task creator and all
// superadmins, excluding the submitter. A re-submission after a
// rejection goes through here as well and creates a fresh completion.
func (s *CompletionService) Submit(ctx context.Context, in SubmitInput) (*domain.Completion, error) {
	if s.requireEvidence && !hasEvidence(in) {
		return nil, &domain.ValidationError{Field: "comment", Message: "a comment or at least one attachment is required"}
	}

	task, err := s.taskSvc.Get(ctx, in.TaskID)
	if err != nil {
		return nil, err
	}
	if err := s.taskSvc.CanTransition(task, domain.TaskEventSubmitted); err != nil {
		return nil, err
	}

	completion, err := s.completions.Create(ctx, domain.Completion{
		TaskID:      task.ID,
		SubmitterID: in.SubmitterID,
		Comment:     in.Comment,
	}, in.Files)
	if err != nil {
		return nil, err
	}

	if err := s.taskSvc.Transition(ctx, task, domain.TaskEventSubmitted); err != nil {
		return nil, err
	}

	recipients := make([]int64, 0, 4)
	if task.CreatorID != in.SubmitterID {
		recipients = append(recipients, task.CreatorID)
	}
	admins, err := s.users.ListByRole(ctx, domain.RoleSuperadmin)
	if err != nil {
		return nil, fmt.Errorf("resolve superadmins: %w", err)
	}
	for _, admin := range admins {
		if admin.ID != in.SubmitterID {
			recipients = append(recipients, admin.ID)
		}
	}

	documents, photos := countByKind(in.Files)
	err = s.notifier.Dispatch(ctx, Event{
		Kind:         domain.NotificationCompletionSubmitted,
		TaskID:       task.ID,
		CompletionID: &completion.ID,
		Recipients:   recipients,
		Message:      completionSubmittedMessage(task, documents, photos),
	})
	if err != nil {
		return nil, err
	}

	return completion, nil
}

// ReviewInput holds the fields for a reviewer decision.
type ReviewInput struct {
	TaskID       int64
	CompletionID int64
	ReviewerID   int64
	Decision     domain.CompletionStatus
	Comment      *string
}

// Review records a single reviewer decision on a pending completion and
// moves the task to done or rejected accordingly. The submitter is
// notified unless they reviewed their own completion.
func (s *CompletionService) Review(ctx context.Context, in ReviewInput) (*domain.Completion, error) {
	if in.Decision != domain.CompletionStatusApproved && in.Decision != domain.CompletionStatusRejected {
		return nil, &domain.ValidationError{Field: "decision", Message: "must be approved or rejected"}
	}

	task, err := s.taskSvc.Get(ctx, in.TaskID)
	if err != nil {
		return nil, err
	}

	completion, err := s.completions.FindByID(ctx, in.CompletionID)
	if err != nil {
		return nil, err
	}
	if completion.TaskID != task.ID {
		return nil, domain.ErrNotFound
	}
	if completion.Reviewed() {
		return nil, domain.ErrAlreadyReviewed
	}

	event := domain.TaskEventApproved
	if in.Decision == domain.CompletionStatusRejected {
		event = domain.TaskEventRejected
	}
	if err := s.taskSvc.CanTransition(task, event); err != nil {
		return nil, err
	}

	reviewed, err := s.completions.Review(ctx, completion.ID, in.Decision, in.ReviewerID, in.Comment, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.taskSvc.Transition(ctx, task, event); err != nil {
		return nil, err
	}

	if reviewed.SubmitterID != in.ReviewerID {
		message := completionApprovedMessage(task)
		kind := domain.NotificationCompletionApproved
		if in.Decision == domain.CompletionStatusRejected {
			message = completionRejectedMessage(task, in.Comment)
			kind = domain.NotificationCompletionRejected
		}
		err := s.notifier.Dispatch(ctx, Event{
			Kind:         kind,
			TaskID:       task.ID,
			CompletionID: &reviewed.ID,
			Recipients:   []int64{reviewed.SubmitterID},
			Message:      message,
		})
		if err != nil {
			return nil, err
		}
	}

	return reviewed, nil
}

// ListByTask retrieves the completions of a task with their files.
func (s *CompletionService) ListByTask(ctx context.Context, taskID int64) ([]domain.Completion, error) {
	return s.completions.ListByTask(ctx, taskID)
}

func hasEvidence(in SubmitInput) bool {
	return (in.Comment != nil && *in.Comment != "") || len(in.Files) > 0
}

func countByKind(files []domain.CompletionFile) (documents, photos int) {
	for _, f := range files {
		switch f.Kind {
		case domain.FileKindDocument:
			documents++
		case domain.FileKindPhoto:
			photos++
		}
	}
	return documents, photos
}
