package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/codegram/codegram-live/internal/domain"
	"github.com/codegram/codegram-live/internal/validation"
	"github.com/codegram/codegram-live/pkg/middleware"
	"github.com/codegram/codegram-live/pkg/response"
)

// ListNotifications handles GET /api/notifications.
func (h *Handler) ListNotifications(c *gin.Context) {
	q := bindPage(c)
	list, err := h.notifications.List(c.Request.Context(), middleware.GetUserID(c), q.Page, q.Limit)
	if err != nil {
		writeError(c, err, "get notifications")
		return
	}
	response.Success(c, list)
}

// MarkRead handles POST /api/notifications/read. An empty body marks all.
func (h *Handler) MarkRead(c *gin.Context) {
	var req domain.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		writeError(c, err, "mark notifications read")
		return
	}

	updated, err := h.notifications.MarkRead(c.Request.Context(), middleware.GetUserID(c), req.IDs)
	if err != nil {
		writeError(c, err, "mark notifications read")
		return
	}
	response.Success(c, gin.H{"message": "Notifications marked as read", "updated": updated})
}

// UnreadCount handles GET /api/notifications/unread-count.
func (h *Handler) UnreadCount(c *gin.Context) {
	count, err := h.notifications.UnreadCount(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err, "get unread count")
		return
	}
	response.Success(c, gin.H{"count": count})
}
