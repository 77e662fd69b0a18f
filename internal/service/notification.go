package service

import (
	"context"

	"github.com/regioninvest/portal/internal/domain"
)

// NotificationService exposes the per-user notification feed. Ownership
// checks live in the store; this layer only shapes pagination.
type NotificationService struct {
	store NotificationStore
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

// List returns one page of the user's notifications, newest first,
// plus a cursor for the next page when more rows remain.
func (s *NotificationService) List(ctx context.Context, userID, beforeID int64, limit int) ([]domain.NotificationItem, int64, error) {
	items, err := s.store.List(ctx, userID, beforeID, limit+1)
	if err != nil {
		return nil, 0, err
	}

	var nextCursor int64
	if len(items) > limit {
		items = items[:limit]
		nextCursor = items[len(items)-1].ID
	}
	return items, nextCursor, nil
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID int64) error {
	return s.store.MarkRead(ctx, id, userID)
}

// MarkAllRead flags all of the user's notifications as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) error {
	return s.store.MarkAllRead(ctx, userID)
}

// UnreadCount returns the user's unread notification count.
func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.store.UnreadCount(ctx, userID)
}
