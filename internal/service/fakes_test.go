package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/regioninvest/portal/internal/domain"
)

type fakeTaskStore struct {
	nextID int64
	tasks  map[int64]*domain.Task
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[int64]*domain.Task)}
}

func (s *fakeTaskStore) Create(_ context.Context, task domain.Task) (*domain.Task, error) {
	s.nextID++
	task.ID = s.nextID
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	s.tasks[task.ID] = &task
	copy := task
	return &copy, nil
}

func (s *fakeTaskStore) FindByID(_ context.Context, id int64) (*domain.Task, error) {
	task, ok := s.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copy := *task
	return &copy, nil
}

func (s *fakeTaskStore) ListByProject(_ context.Context, projectID int64) ([]domain.Task, error) {
	var out []domain.Task
	for _, task := range s.tasks {
		if task.ProjectID == projectID {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (s *fakeTaskStore) UpdateStatus(_ context.Context, id int64, status domain.TaskStatus) error {
	task, ok := s.tasks[id]
	if !ok {
		return domain.ErrNotFound
	}
	task.Status = status
	return nil
}

func (s *fakeTaskStore) ListOverdue(_ context.Context, before time.Time) ([]domain.Task, error) {
	var out []domain.Task
	for _, task := range s.tasks {
		if task.DueDate != nil && task.DueDate.Before(before) && task.Status != domain.TaskStatusDone {
			out = append(out, *task)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeCompletionStore struct {
	nextID      int64
	completions map[int64]*domain.Completion
	files       map[int64][]domain.CompletionFile
}

func newFakeCompletionStore() *fakeCompletionStore {
	return &fakeCompletionStore{
		completions: make(map[int64]*domain.Completion),
		files:       make(map[int64][]domain.CompletionFile),
	}
}

func (s *fakeCompletionStore) Create(_ context.Context, completion domain.Completion, files []domain.CompletionFile) (*domain.Completion, error) {
	s.nextID++
	completion.ID = s.nextID
	completion.Status = domain.CompletionStatusPending
	completion.CreatedAt = time.Now()
	s.completions[completion.ID] = &completion
	s.files[completion.ID] = files
	copy := completion
	return &copy, nil
}

func (s *fakeCompletionStore) FindByID(_ context.Context, id int64) (*domain.Completion, error) {
	completion, ok := s.completions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copy := *completion
	return &copy, nil
}

func (s *fakeCompletionStore) ListByTask(_ context.Context, taskID int64) ([]domain.Completion, error) {
	var out []domain.Completion
	for _, completion := range s.completions {
		if completion.TaskID == taskID {
			out = append(out, *completion)
		}
	}
	return out, nil
}

func (s *fakeCompletionStore) ListFiles(_ context.Context, completionID int64) ([]domain.CompletionFile, error) {
	return s.files[completionID], nil
}

func (s *fakeCompletionStore) Review(_ context.Context, id int64, status domain.CompletionStatus, reviewerID int64, comment *string, reviewedAt time.Time) (*domain.Completion, error) {
	completion, ok := s.completions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if completion.Status != domain.CompletionStatusPending {
		return nil, domain.ErrAlreadyReviewed
	}
	completion.Status = status
	completion.ReviewerID = &reviewerID
	completion.ReviewComment = comment
	completion.ReviewedAt = &reviewedAt
	copy := *completion
	return &copy, nil
}

type fakeNotificationStore struct {
	nextID     int64
	rows       []domain.Notification
	failCreate error
	now        func() time.Time
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{now: time.Now}
}

func (s *fakeNotificationStore) Create(_ context.Context, n domain.Notification) (*domain.Notification, error) {
	if s.failCreate != nil {
		return nil, s.failCreate
	}
	s.nextID++
	n.ID = s.nextID
	n.CreatedAt = s.now()
	s.rows = append(s.rows, n)
	return &n, nil
}

func (s *fakeNotificationStore) List(_ context.Context, userID, beforeID int64, limit int) ([]domain.NotificationItem, error) {
	var out []domain.NotificationItem
	for i := len(s.rows) - 1; i >= 0; i-- {
		n := s.rows[i]
		if n.UserID != userID {
			continue
		}
		if beforeID > 0 && n.ID >= beforeID {
			continue
		}
		out = append(out, domain.NotificationItem{Notification: n})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeNotificationStore) MarkRead(_ context.Context, id, actingUserID int64) error {
	for i := range s.rows {
		if s.rows[i].ID == id {
			if s.rows[i].UserID != actingUserID {
				return domain.ErrForbidden
			}
			s.rows[i].Read = true
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *fakeNotificationStore) MarkAllRead(_ context.Context, userID int64) error {
	for i := range s.rows {
		if s.rows[i].UserID == userID {
			s.rows[i].Read = true
		}
	}
	return nil
}

func (s *fakeNotificationStore) UnreadCount(_ context.Context, userID int64) (int, error) {
	count := 0
	for _, n := range s.rows {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (s *fakeNotificationStore) OverdueExists(_ context.Context, taskID, userID int64, day time.Time) (bool, error) {
	end := day.AddDate(0, 0, 1)
	for _, n := range s.rows {
		if n.Kind == domain.NotificationTaskOverdue &&
			n.TaskID == taskID && n.UserID == userID &&
			!n.CreatedAt.Before(day) && n.CreatedAt.Before(end) {
			return true, nil
		}
	}
	return false, nil
}

// byKind returns the stored notifications of one kind.
func (s *fakeNotificationStore) byKind(kind domain.NotificationKind) []domain.Notification {
	var out []domain.Notification
	for _, n := range s.rows {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

type fakeUserDirectory struct {
	users []domain.User
}

func (d *fakeUserDirectory) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	var out []domain.User
	for _, u := range d.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeProjectDirectory struct {
	projects map[int64]*domain.Project
	failFor  map[int64]error
}

func newFakeProjectDirectory() *fakeProjectDirectory {
	return &fakeProjectDirectory{
		projects: make(map[int64]*domain.Project),
		failFor:  make(map[int64]error),
	}
}

func (d *fakeProjectDirectory) FindByID(_ context.Context, id int64) (*domain.Project, error) {
	if err, ok := d.failFor[id]; ok {
		return nil, err
	}
	project, ok := d.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return project, nil
}

type fakeDeliverer struct {
	delivered []string
	err       error
}

func (d *fakeDeliverer) Deliver(_ context.Context, _ int64, text string) error {
	if d.err != nil {
		return d.err
	}
	d.delivered = append(d.delivered, text)
	return nil
}

var errStoreDown = errors.New("store down")
