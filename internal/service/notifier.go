package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/regioninvest/portal/internal/domain"
)

// NotificationStore defines the notification data access interface
// consumed by the fan-out engine, the notification service and the
// overdue sweep.
type NotificationStore interface {
	Create(ctx context.Context, n domain.Notification) (*domain.Notification, error)
	List(ctx context.Context, userID, beforeID int64, limit int) ([]domain.NotificationItem, error)
	MarkRead(ctx context.Context, id, actingUserID int64) error
	MarkAllRead(ctx context.Context, userID int64) error
	UnreadCount(ctx context.Context, userID int64) (int, error)
	OverdueExists(ctx context.Context, taskID, userID int64, day time.Time) (bool, error)
}

// Deliverer pushes a notification text to a user's external channel.
// Implementations are expected to be fail-soft and non-blocking; a
// delivery error never affects the stored notification.
type Deliverer interface {
	Deliver(ctx context.Context, userID int64, text string) error
}

// Event is one workflow occurrence to fan out. Recipient resolution
// happens in the triggering workflow; the event carries the resolved
// list.
type Event struct {
	Kind         domain.NotificationKind
	TaskID       int64
	CompletionID *int64
	Recipients   []int64
	Message      string
}

// Notifier is the fan-out engine: it writes one notification row per
// recipient and hands the message to the delivery adapter. The store
// write is the durable record and must succeed; delivery failures are
// logged and dropped.
type Notifier struct {
	store     NotificationStore
	deliverer Deliverer
}

// NewNotifier creates a new Notifier. deliverer may be nil, in which
// case notifications are stored without external push.
func NewNotifier(store NotificationStore, deliverer Deliverer) *Notifier {
	return &Notifier{store: store, deliverer: deliverer}
}

// Dispatch fans the event out to each distinct recipient.
func (n *Notifier) Dispatch(ctx context.Context, ev Event) error {
	seen := make(map[int64]bool, len(ev.Recipients))
	for _, recipient := range ev.Recipients {
		if seen[recipient] {
			continue
		}
		seen[recipient] = true

		created, err := n.store.Create(ctx, domain.Notification{
			UserID:       recipient,
			TaskID:       ev.TaskID,
			CompletionID: ev.CompletionID,
			Kind:         ev.Kind,
			Message:      ev.Message,
		})
		if err != nil {
			return fmt.Errorf("store %s notification for user %d: %w", ev.Kind, recipient, err)
		}

		if n.deliverer == nil {
			continue
		}
		if err := n.deliverer.Deliver(ctx, recipient, ev.Message); err != nil {
			slog.Warn("push delivery failed",
				"notification_id", created.ID,
				"user_id", recipient,
				"kind", ev.Kind,
				"error", err,
			)
		}
	}
	return nil
}
