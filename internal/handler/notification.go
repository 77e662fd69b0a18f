package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/regioninvest/portal/internal/domain"
	"github.com/regioninvest/portal/internal/service"
)

const defaultPageSize = 20

// NotificationHandler handles the per-user notification feed.
type NotificationHandler struct {
	notifications *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List returns a page of the caller's notifications, newest first.
func (h *NotificationHandler) List(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	var beforeID int64
	if cursor := c.QueryParam("cursor"); cursor != "" {
		v, err := strconv.ParseInt(cursor, 10, 64)
		if err != nil || v <= 0 {
			return fmt.Errorf("%w: invalid cursor", domain.ErrInvalidInput)
		}
		beforeID = v
	}

	limit := defaultPageSize
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			return fmt.Errorf("%w: invalid limit", domain.ErrInvalidInput)
		}
		limit = n
	}

	items, nextCursor, err := h.notifications.List(c.Request().Context(), userID, beforeID, limit)
	if err != nil {
		return err
	}

	meta := PaginationMeta{HasNext: nextCursor > 0}
	if meta.HasNext {
		meta.NextCursor = strconv.FormatInt(nextCursor, 10)
	}
	return JSONList(c, http.StatusOK, items, meta)
}

// UnreadCount returns the caller's unread notification count.
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	count, err := h.notifications.UnreadCount(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusOK, map[string]int{"unread": count})
}

// MarkRead flags one of the caller's notifications as read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.notifications.MarkRead(c.Request().Context(), id, userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead flags all of the caller's notifications as read.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := h.notifications.MarkAllRead(c.Request().Context(), userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
