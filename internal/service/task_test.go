package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/regioninvest/portal/internal/domain"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func i64(v int64) *int64 { return &v }

func TestTaskCreate_DueBeforeStartRejected(t *testing.T) {
	tasks := newFakeTaskStore()
	svc := NewTaskService(tasks, NewNotifier(newFakeNotificationStore(), nil))

	_, err := svc.Create(context.Background(), CreateTaskInput{
		ProjectID: 1,
		Title:     "Prepare land lease documents",
		CreatorID: 3,
		StartDate: date(2024, 2, 10),
		DueDate:   date(2024, 2, 1),
	})

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "due_date", validationErr.Field)
	require.Empty(t, tasks.tasks)
}

func TestTaskCreate_NotifiesAssignee(t *testing.T) {
	notifications := newFakeNotificationStore()
	svc := NewTaskService(newFakeTaskStore(), NewNotifier(notifications, nil))

	task, err := svc.Create(context.Background(), CreateTaskInput{
		ProjectID:  1,
		Title:      "Inspect the industrial zone site",
		AssigneeID: i64(7),
		CreatorID:  3,
		DueDate:    date(2024, 3, 1),
	})
	require.NoError(t, err)
	require.Equal(t, domain.TaskStatusNew, task.Status)

	assigned := notifications.byKind(domain.NotificationTaskAssigned)
	require.Len(t, assigned, 1)
	require.Equal(t, int64(7), assigned[0].UserID)
	require.Equal(t, task.ID, assigned[0].TaskID)
	require.Contains(t, assigned[0].Message, "Inspect the industrial zone site")
}

func TestTaskCreate_SelfAssignmentNotNotified(t *testing.T) {
	notifications := newFakeNotificationStore()
	svc := NewTaskService(newFakeTaskStore(), NewNotifier(notifications, nil))

	_, err := svc.Create(context.Background(), CreateTaskInput{
		ProjectID:  1,
		Title:      "Update the registry",
		AssigneeID: i64(3),
		CreatorID:  3,
	})
	require.NoError(t, err)
	require.Empty(t, notifications.rows)
}

func TestTaskCreate_UnassignedNotNotified(t *testing.T) {
	notifications := newFakeNotificationStore()
	svc := NewTaskService(newFakeTaskStore(), NewNotifier(notifications, nil))

	_, err := svc.Create(context.Background(), CreateTaskInput{
		ProjectID: 1,
		Title:     "Backlog item",
		CreatorID: 3,
	})
	require.NoError(t, err)
	require.Empty(t, notifications.rows)
}

func TestTaskTransition_Lifecycle(t *testing.T) {
	cases := []struct {
		name    string
		from    domain.TaskStatus
		event   domain.TaskEvent
		want    domain.TaskStatus
		wantErr bool
	}{
		{name: "submit from new", from: domain.TaskStatusNew, event: domain.TaskEventSubmitted, want: domain.TaskStatusInProgress},
		{name: "resubmit in progress", from: domain.TaskStatusInProgress, event: domain.TaskEventSubmitted, want: domain.TaskStatusInProgress},
		{name: "resubmit after rejection", from: domain.TaskStatusRejected, event: domain.TaskEventSubmitted, want: domain.TaskStatusInProgress},
		{name: "approve in progress", from: domain.TaskStatusInProgress, event: domain.TaskEventApproved, want: domain.TaskStatusDone},
		{name: "reject in progress", from: domain.TaskStatusInProgress, event: domain.TaskEventRejected, want: domain.TaskStatusRejected},
		{name: "approve from new", from: domain.TaskStatusNew, event: domain.TaskEventApproved, wantErr: true},
		{name: "approve from rejected", from: domain.TaskStatusRejected, event: domain.TaskEventApproved, wantErr: true},
		{name: "reject from done", from: domain.TaskStatusDone, event: domain.TaskEventRejected, wantErr: true},
		{name: "submit to done task", from: domain.TaskStatusDone, event: domain.TaskEventSubmitted, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tasks := newFakeTaskStore()
			svc := NewTaskService(tasks, NewNotifier(newFakeNotificationStore(), nil))

			task, err := tasks.Create(context.Background(), domain.Task{
				ProjectID: 1, Title: "t", CreatorID: 1, Status: tc.from,
			})
			require.NoError(t, err)

			err = svc.Transition(context.Background(), task, tc.event)
			if tc.wantErr {
				require.ErrorIs(t, err, domain.ErrConflict)
				require.Equal(t, tc.from, tasks.tasks[task.ID].Status)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, task.Status)
			require.Equal(t, tc.want, tasks.tasks[task.ID].Status)
		})
	}
}

func TestTaskTransition_UnknownEvent(t *testing.T) {
	tasks := newFakeTaskStore()
	svc := NewTaskService(tasks, NewNotifier(newFakeNotificationStore(), nil))

	task, err := tasks.Create(context.Background(), domain.Task{
		ProjectID: 1, Title: "t", CreatorID: 1, Status: domain.TaskStatusNew,
	})
	require.NoError(t, err)

	err = svc.Transition(context.Background(), task, domain.TaskEvent("escalated"))
	require.ErrorIs(t, err, domain.ErrConflict)
}
