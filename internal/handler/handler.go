// Package handler exposes the interaction, follow, comment, notification and
// content operations over HTTP.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codegram/codegram-live/internal/service"
	"github.com/codegram/codegram-live/pkg/apperror"
	"github.com/codegram/codegram-live/pkg/log"
	"github.com/codegram/codegram-live/pkg/middleware"
	"github.com/codegram/codegram-live/pkg/response"
)

// Handler handles HTTP requests for the API.
type Handler struct {
	interactions   service.InteractionService
	follows        service.FollowService
	comments       service.CommentService
	notifications  service.NotificationService
	contents       service.ContentService
	authMiddleware *middleware.AuthMiddleware
}

// Services groups the services the handler routes to.
type Services struct {
	Interactions  service.InteractionService
	Follows       service.FollowService
	Comments      service.CommentService
	Notifications service.NotificationService
	Contents      service.ContentService
}

// NewHandler creates a new HTTP handler.
func NewHandler(svc Services, authMiddleware *middleware.AuthMiddleware) *Handler {
	return &Handler{
		interactions:   svc.Interactions,
		follows:        svc.Follows,
		comments:       svc.Comments,
		notifications:  svc.Notifications,
		contents:       svc.Contents,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.Health)

	auth := h.authMiddleware.RequireAuth()
	api := r.Group("/api")
	{
		likes := api.Group("/likes", auth)
		{
			likes.POST("", h.ToggleLike)
			likes.GET("/check", h.CheckLike)
		}

		bookmarks := api.Group("/bookmarks", auth)
		{
			bookmarks.POST("", h.ToggleBookmark)
			bookmarks.GET("/check", h.CheckBookmark)
		}

		follows := api.Group("/follows")
		{
			follows.GET("/suggestions", auth, h.Suggestions)
			follows.GET("/check/:userId", auth, h.CheckFollow)
			follows.POST("/:userId", auth, h.ToggleFollow)
			follows.GET("/:userId/followers", h.Followers)
			follows.GET("/:userId/following", h.Following)
			follows.GET("/:userId/stats", h.FollowStats)
		}

		api.POST("/blocks/:userId", auth, h.ToggleBlock)

		comments := api.Group("/comments")
		{
			comments.GET("", h.ListComments)
			comments.POST("", auth, h.CreateComment)
			comments.PUT("/:id", auth, h.UpdateComment)
			comments.DELETE("/:id", auth, h.DeleteComment)
		}

		notifications := api.Group("/notifications", auth)
		{
			notifications.GET("", h.ListNotifications)
			notifications.POST("/read", h.MarkRead)
			notifications.GET("/unread-count", h.UnreadCount)
		}

		api.POST("/snippets", auth, h.CreateSnippet)
		api.POST("/docs", auth, h.CreateDoc)
		api.POST("/bugs", auth, h.CreateBug)
		api.PATCH("/bugs/:id/status", auth, h.UpdateBugStatus)
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// pageQuery is the page/limit query shared by list endpoints. Zero values
// fall back to each service's defaults.
type pageQuery struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

func bindPage(c *gin.Context) pageQuery {
	var q pageQuery
	// Malformed numbers fall back to defaults.
	_ = c.ShouldBindQuery(&q)
	return q
}

// writeError maps service errors to response envelopes. Unclassified errors
// are logged and reported as 500 with a generic message.
func writeError(c *gin.Context, err error, action string) {
	msg, field, _ := apperror.Message(err)
	switch {
	case errors.Is(err, apperror.ErrValidation):
		if field != "" {
			response.FieldError(c, field, msg)
			return
		}
		response.BadRequest(c, msg)
	case errors.Is(err, apperror.ErrNotFound):
		response.NotFound(c, msg)
	case errors.Is(err, apperror.ErrGone):
		response.Gone(c, msg)
	case errors.Is(err, apperror.ErrForbidden):
		response.Forbidden(c, msg)
	case errors.Is(err, apperror.ErrConflict):
		response.Conflict(c, msg)
	default:
		l := log.Ctx(c.Request.Context())
		l.Error().Err(err).Str("action", action).Msg("request failed")
		response.InternalError(c, "failed to "+action)
	}
}
