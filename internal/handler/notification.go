package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-spot-reservation/internal/service"
)

// NotificationHandler serves the caller's notification inbox.
type NotificationHandler struct {
	Inbox *service.Inbox
}

func NewNotificationHandler(in *service.Inbox) *NotificationHandler {
	if in == nil {
		panic("nil inbox passed to NewNotificationHandler")
	}
	return &NotificationHandler{Inbox: in}
}

// List handles GET /v1/notifications.
func (h *NotificationHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	page, err := h.Inbox.List(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":  toNotifications(page.Items),
		"unread": page.Unread,
	})
}

// MarkRead handles PUT /v1/notifications/:id/read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notification id"})
	}
	n, err := h.Inbox.MarkRead(c.Request().Context(), id, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toNotification(n))
}

// MarkAllRead handles PUT /v1/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	n, err := h.Inbox.MarkAllRead(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": n})
}

// Delete handles DELETE /v1/notifications/:id.
func (h *NotificationHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notification id"})
	}
	if err := h.Inbox.Delete(c.Request().Context(), id, userID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
