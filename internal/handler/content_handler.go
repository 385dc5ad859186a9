package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/codegram/codegram-live/internal/domain"
	"github.com/codegram/codegram-live/pkg/middleware"
	"github.com/codegram/codegram-live/pkg/response"
)

// CreateSnippet handles POST /api/snippets.
func (h *Handler) CreateSnippet(c *gin.Context) {
	var req domain.CreateSnippetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	content, err := h.contents.CreateSnippet(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		writeError(c, err, "create snippet")
		return
	}
	response.Created(c, content)
}

// CreateDoc handles POST /api/docs.
func (h *Handler) CreateDoc(c *gin.Context) {
	var req domain.CreateDocRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	content, err := h.contents.CreateDoc(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		writeError(c, err, "create doc")
		return
	}
	response.Created(c, content)
}

// CreateBug handles POST /api/bugs.
func (h *Handler) CreateBug(c *gin.Context) {
	var req domain.CreateBugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	content, err := h.contents.CreateBug(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		writeError(c, err, "create bug")
		return
	}
	response.Created(c, content)
}

// UpdateBugStatus handles PATCH /api/bugs/:id/status.
func (h *Handler) UpdateBugStatus(c *gin.Context) {
	var req domain.UpdateBugStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	bugID := c.Param("id")
	err := h.contents.UpdateBugStatus(c.Request.Context(), middleware.GetUserID(c), middleware.GetRole(c), bugID, req)
	if err != nil {
		writeError(c, err, "update bug status")
		return
	}
	response.Success(c, gin.H{"id": bugID, "status": req.Status})
}
