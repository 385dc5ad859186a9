package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/codegram/codegram-live/internal/domain"
	"github.com/codegram/codegram-live/pkg/middleware"
	"github.com/codegram/codegram-live/pkg/response"
)

// CreateComment handles POST /api/comments.
func (h *Handler) CreateComment(c *gin.Context) {
	var req domain.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		writeError(c, err, "create comment")
		return
	}
	response.Created(c, comment)
}

// ListComments handles GET /api/comments.
func (h *Handler) ListComments(c *gin.Context) {
	var target domain.TargetRequest
	_ = c.ShouldBindQuery(&target)
	q := bindPage(c)

	page, err := h.comments.List(c.Request.Context(), target, q.Page, q.Limit)
	if err != nil {
		writeError(c, err, "list comments")
		return
	}
	response.Success(c, page)
}

// UpdateComment handles PUT /api/comments/:id.
func (h *Handler) UpdateComment(c *gin.Context) {
	var req domain.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	comment, err := h.comments.Update(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err, "update comment")
		return
	}
	response.Success(c, comment)
}

// DeleteComment handles DELETE /api/comments/:id.
func (h *Handler) DeleteComment(c *gin.Context) {
	err := h.comments.Delete(c.Request.Context(), middleware.GetUserID(c), middleware.GetRole(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "delete comment")
		return
	}
	response.Success(c, gin.H{"message": "Comment deleted successfully"})
}
