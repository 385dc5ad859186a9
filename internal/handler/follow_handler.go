package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/codegram/codegram-live/pkg/middleware"
	"github.com/codegram/codegram-live/pkg/response"
)

// ToggleFollow handles POST /api/follows/:userId.
func (h *Handler) ToggleFollow(c *gin.Context) {
	res, err := h.follows.ToggleFollow(c.Request.Context(), middleware.GetUserID(c), c.Param("userId"))
	if err != nil {
		writeError(c, err, "toggle follow")
		return
	}

	msg := "Unfollowed successfully"
	if res.Active {
		msg = "Followed successfully"
	}
	response.Success(c, gin.H{"following": res.Active, "count": res.Count, "message": msg})
}

// CheckFollow handles GET /api/follows/check/:userId.
func (h *Handler) CheckFollow(c *gin.Context) {
	following, err := h.follows.IsFollowing(c.Request.Context(), middleware.GetUserID(c), c.Param("userId"))
	if err != nil {
		writeError(c, err, "check follow")
		return
	}
	response.Success(c, gin.H{"following": following})
}

// Followers handles GET /api/follows/:userId/followers.
func (h *Handler) Followers(c *gin.Context) {
	q := bindPage(c)
	page, err := h.follows.Followers(c.Request.Context(), c.Param("userId"), q.Page, q.Limit)
	if err != nil {
		writeError(c, err, "get followers")
		return
	}
	response.Success(c, page)
}

// Following handles GET /api/follows/:userId/following.
func (h *Handler) Following(c *gin.Context) {
	q := bindPage(c)
	page, err := h.follows.Following(c.Request.Context(), c.Param("userId"), q.Page, q.Limit)
	if err != nil {
		writeError(c, err, "get following")
		return
	}
	response.Success(c, page)
}

// FollowStats handles GET /api/follows/:userId/stats.
func (h *Handler) FollowStats(c *gin.Context) {
	stats, err := h.follows.Stats(c.Request.Context(), c.Param("userId"))
	if err != nil {
		writeError(c, err, "get follow stats")
		return
	}
	response.Success(c, stats)
}

// Suggestions handles GET /api/follows/suggestions.
func (h *Handler) Suggestions(c *gin.Context) {
	q := bindPage(c)
	users, err := h.follows.Suggestions(c.Request.Context(), middleware.GetUserID(c), q.Limit)
	if err != nil {
		writeError(c, err, "get suggestions")
		return
	}
	response.Success(c, users)
}

// ToggleBlock handles POST /api/blocks/:userId.
func (h *Handler) ToggleBlock(c *gin.Context) {
	blocked, err := h.follows.ToggleBlock(c.Request.Context(), middleware.GetUserID(c), c.Param("userId"))
	if err != nil {
		writeError(c, err, "toggle block")
		return
	}

	msg := "User unblocked successfully"
	if blocked {
		msg = "User blocked successfully"
	}
	response.Success(c, gin.H{"isBlocked": blocked, "message": msg})
}
