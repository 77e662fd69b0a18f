package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/regioninvest/portal/internal/domain"
)

func TestNotifierDispatch_DeduplicatesRecipients(t *testing.T) {
	store := newFakeNotificationStore()
	notifier := NewNotifier(store, nil)

	err := notifier.Dispatch(context.Background(), Event{
		Kind:       domain.NotificationCompletionSubmitted,
		TaskID:     1,
		Recipients: []int64{3, 9, 3, 9, 3},
		Message:    "msg",
	})
	require.NoError(t, err)
	require.Len(t, store.rows, 2)
}

func TestNotifierDispatch_DeliveryFailureIsNotFatal(t *testing.T) {
	store := newFakeNotificationStore()
	deliverer := &fakeDeliverer{err: errStoreDown}
	notifier := NewNotifier(store, deliverer)

	err := notifier.Dispatch(context.Background(), Event{
		Kind:       domain.NotificationTaskAssigned,
		TaskID:     1,
		Recipients: []int64{7},
		Message:    "msg",
	})
	require.NoError(t, err)
	require.Len(t, store.rows, 1, "store write is the durable record regardless of delivery")
}

func TestNotifierDispatch_StoreFailureIsFatal(t *testing.T) {
	store := newFakeNotificationStore()
	store.failCreate = errStoreDown
	deliverer := &fakeDeliverer{}
	notifier := NewNotifier(store, deliverer)

	err := notifier.Dispatch(context.Background(), Event{
		Kind:       domain.NotificationTaskAssigned,
		TaskID:     1,
		Recipients: []int64{7},
		Message:    "msg",
	})
	require.ErrorIs(t, err, errStoreDown)
	require.Empty(t, deliverer.delivered, "no delivery without a stored row")
}

func TestNotifierDispatch_DeliversAfterStore(t *testing.T) {
	store := newFakeNotificationStore()
	deliverer := &fakeDeliverer{}
	notifier := NewNotifier(store, deliverer)

	err := notifier.Dispatch(context.Background(), Event{
		Kind:       domain.NotificationTaskOverdue,
		TaskID:     1,
		Recipients: []int64{7, 8},
		Message:    "task overdue",
	})
	require.NoError(t, err)
	require.Len(t, store.rows, 2)
	require.Equal(t, []string{"task overdue", "task overdue"}, deliverer.delivered)
}

func TestNotificationService_Pagination(t *testing.T) {
	store := newFakeNotificationStore()
	svc := NewNotificationService(store)

	for i := 0; i < 5; i++ {
		_, err := store.Create(context.Background(), domain.Notification{
			UserID: 1, TaskID: 1, Kind: domain.NotificationTaskAssigned, Message: "m",
		})
		require.NoError(t, err)
	}

	page, cursor, err := svc.List(context.Background(), 1, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, int64(5), page[0].ID, "newest first")
	require.Equal(t, int64(4), cursor)

	page, cursor, err = svc.List(context.Background(), 1, cursor, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, int64(3), page[0].ID)
	require.Equal(t, int64(2), cursor)

	page, cursor, err = svc.List(context.Background(), 1, cursor, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Zero(t, cursor, "no further pages")
}

func TestNotificationStore_OwnershipAndCounts(t *testing.T) {
	store := newFakeNotificationStore()
	svc := NewNotificationService(store)
	ctx := context.Background()

	mine, err := store.Create(ctx, domain.Notification{UserID: 1, TaskID: 1, Kind: domain.NotificationTaskAssigned, Message: "m"})
	require.NoError(t, err)
	_, err = store.Create(ctx, domain.Notification{UserID: 2, TaskID: 1, Kind: domain.NotificationTaskAssigned, Message: "m"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.MarkRead(ctx, mine.ID, 2), domain.ErrForbidden)

	require.NoError(t, svc.MarkRead(ctx, mine.ID, 1))
	count, err := svc.UnreadCount(ctx, 1)
	require.NoError(t, err)
	require.Zero(t, count)

	count, err = svc.UnreadCount(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	require.NoError(t, svc.MarkAllRead(ctx, 2))
	count, err = svc.UnreadCount(ctx, 2)
	require.NoError(t, err)
	require.Zero(t, count)
}
