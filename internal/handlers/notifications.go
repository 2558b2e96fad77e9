package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardfeed/backend/internal/dto"
	"github.com/cardfeed/backend/internal/notifications"
	"github.com/cardfeed/backend/internal/util"
)

// GetNotifications lists the inbox, newest first
// GET /api/v1/notifications
func (h *Handlers) GetNotifications(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	limit, offset := util.Pagination(c, notifications.DefaultPageSize, notifications.MaxPageSize)
	list, total, err := h.inbox.List(c.Request.Context(), user.ID, limit, offset)
	if util.HandleStoreError(c, err, "notification") {
		return
	}
	util.RespondPage(c, dto.ToNotificationResponses(list), total, limit, offset)
}

// GetUnreadCount returns the badge count
// GET /api/v1/notifications/unread-count
func (h *Handlers) GetUnreadCount(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	count, err := h.inbox.UnreadCount(c.Request.Context(), user.ID)
	if util.HandleStoreError(c, err, "notification") {
		return
	}
	c.JSON(http.StatusOK, dto.CountResponse{Count: count})
}

// MarkNotificationRead marks one notification read; changed is false when
// it already was
// POST /api/v1/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	changed, err := h.inbox.MarkRead(c.Request.Context(), c.Param("id"), user.ID)
	if util.HandleStoreError(c, err, "notification") {
		return
	}
	c.JSON(http.StatusOK, dto.ChangedResponse{Changed: changed})
}

// MarkAllNotificationsRead marks the whole inbox read
// POST /api/v1/notifications/read-all
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	count, err := h.inbox.MarkAllRead(c.Request.Context(), user.ID)
	if util.HandleStoreError(c, err, "notification") {
		return
	}
	c.JSON(http.StatusOK, dto.CountResponse{Count: count})
}

// DeleteNotification removes one notification from the inbox
// DELETE /api/v1/notifications/:id
func (h *Handlers) DeleteNotification(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	deleted, err := h.inbox.Delete(c.Request.Context(), c.Param("id"), user.ID)
	if util.HandleStoreError(c, err, "notification") {
		return
	}
	c.JSON(http.StatusOK, dto.ChangedResponse{Changed: deleted})
}

// ClearNotifications empties the inbox
// DELETE /api/v1/notifications
func (h *Handlers) ClearNotifications(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	count, err := h.inbox.DeleteAll(c.Request.Context(), user.ID)
	if util.HandleStoreError(c, err, "notification") {
		return
	}
	c.JSON(http.StatusOK, dto.CountResponse{Count: count})
}
