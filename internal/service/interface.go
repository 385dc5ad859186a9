package service

import (
	"context"

	"github.com/codegram/codegram-live/internal/domain"
	"github.com/codegram/codegram-live/pkg/apperror"
)

var (
	ErrSelfFollow       = apperror.Validation("userId", "Cannot follow yourself")
	ErrSelfBlock        = apperror.Validation("userId", "Cannot block yourself")
	ErrUserNotFound     = apperror.NotFound("User")
	ErrCommentNotFound  = apperror.NotFound("Comment")
	ErrParentNotFound   = apperror.NotFound("Parent comment")
	ErrBugExpired       = apperror.Gone("Bug report has expired")
	ErrCommentForbidden = apperror.Forbidden("Access denied")
	ErrBugStatusDenied  = apperror.Forbidden("Access denied: Only the author can change the status.")
)

// NotificationService creates and serves notifications.
type NotificationService interface {
	// Create persists and pushes a notification. It returns nil without
	// error when recipient and sender are the same user.
	Create(ctx context.Context, in domain.NotificationInput) (*domain.Notification, error)
	List(ctx context.Context, userID string, page, limit int) (*domain.NotificationList, error)
	MarkRead(ctx context.Context, userID string, ids []string) (int64, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
}

// InteractionService toggles likes and bookmarks.
type InteractionService interface {
	ToggleLike(ctx context.Context, userID string, target domain.TargetRequest) (*domain.ToggleResult, error)
	ToggleBookmark(ctx context.Context, userID string, target domain.TargetRequest) (*domain.ToggleResult, error)
	LikeStatus(ctx context.Context, userID string, target domain.TargetRequest) (*domain.ToggleResult, error)
	BookmarkStatus(ctx context.Context, userID string, target domain.TargetRequest) (*domain.ToggleResult, error)
}

// FollowService toggles follows and blocks and reads the follow graph.
type FollowService interface {
	ToggleFollow(ctx context.Context, followerID, followingID string) (*domain.ToggleResult, error)
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	Followers(ctx context.Context, userID string, page, limit int) (*domain.Page[domain.UserSummary], error)
	Following(ctx context.Context, userID string, page, limit int) (*domain.Page[domain.UserSummary], error)
	Stats(ctx context.Context, userID string) (*domain.FollowStats, error)
	Suggestions(ctx context.Context, userID string, limit int) ([]domain.UserProfile, error)
	ToggleBlock(ctx context.Context, blockerID, blockedID string) (bool, error)
}

// CommentService manages comments and keeps content rooms in sync.
type CommentService interface {
	Create(ctx context.Context, authorID string, req domain.CreateCommentRequest) (*domain.Comment, error)
	Update(ctx context.Context, userID, commentID string, req domain.UpdateCommentRequest) (*domain.Comment, error)
	Delete(ctx context.Context, userID, role, commentID string) error
	List(ctx context.Context, target domain.TargetRequest, page, limit int) (*domain.Page[*domain.Comment], error)
}

// ContentService creates content and announces it to followers.
type ContentService interface {
	CreateSnippet(ctx context.Context, authorID string, req domain.CreateSnippetRequest) (*domain.Content, error)
	CreateDoc(ctx context.Context, authorID string, req domain.CreateDocRequest) (*domain.Content, error)
	CreateBug(ctx context.Context, authorID string, req domain.CreateBugRequest) (*domain.Content, error)
	UpdateBugStatus(ctx context.Context, userID, role, bugID string, req domain.UpdateBugStatusRequest) error
}

// FollowerFanout pushes an event to an author's followers.
type FollowerFanout interface {
	EmitToFollowers(ctx context.Context, authorID, event string, payload any)
}

func notFoundContent(kind domain.ContentKind) error {
	switch kind {
	case domain.ContentSnippet:
		return apperror.NotFound("Snippet")
	case domain.ContentDoc:
		return apperror.NotFound("Doc")
	case domain.ContentBug:
		return apperror.NotFound("Bug")
	}
	return apperror.NotFound("Content")
}

func clampPage(page, limit, def, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return page, limit
}
