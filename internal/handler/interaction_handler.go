package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/codegram/codegram-live/internal/domain"
	"github.com/codegram/codegram-live/pkg/middleware"
	"github.com/codegram/codegram-live/pkg/response"
)

// ToggleLike handles POST /api/likes.
func (h *Handler) ToggleLike(c *gin.Context) {
	var req domain.TargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	res, err := h.interactions.ToggleLike(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		writeError(c, err, "toggle like")
		return
	}

	msg := "Unliked successfully"
	if res.Active {
		msg = "Liked successfully"
	}
	response.Success(c, gin.H{"liked": res.Active, "count": res.Count, "message": msg})
}

// CheckLike handles GET /api/likes/check.
func (h *Handler) CheckLike(c *gin.Context) {
	var req domain.TargetRequest
	_ = c.ShouldBindQuery(&req)

	res, err := h.interactions.LikeStatus(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		writeError(c, err, "check like")
		return
	}
	response.Success(c, gin.H{"liked": res.Active, "count": res.Count})
}

// ToggleBookmark handles POST /api/bookmarks.
func (h *Handler) ToggleBookmark(c *gin.Context) {
	var req domain.TargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	res, err := h.interactions.ToggleBookmark(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		writeError(c, err, "toggle bookmark")
		return
	}

	msg := "Bookmark removed successfully"
	if res.Active {
		msg = "Bookmarked successfully"
	}
	response.Success(c, gin.H{"bookmarked": res.Active, "count": res.Count, "message": msg})
}

// CheckBookmark handles GET /api/bookmarks/check.
func (h *Handler) CheckBookmark(c *gin.Context) {
	var req domain.TargetRequest
	_ = c.ShouldBindQuery(&req)

	res, err := h.interactions.BookmarkStatus(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		writeError(c, err, "check bookmark")
		return
	}
	response.Success(c, gin.H{"bookmarked": res.Active, "count": res.Count})
}
