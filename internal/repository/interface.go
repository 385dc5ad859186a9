package repository

import (
	"context"
	"errors"

	"github.com/codegram/codegram-live/internal/domain"
)

var ErrNotFound = errors.New("record not found")

// UserRepository reads user identities.
type UserRepository interface {
	Create(ctx context.Context, user *domain.UserModel) error
	GetByID(ctx context.Context, id string) (*domain.UserModel, error)
	GetByUsername(ctx context.Context, username string) (*domain.UserModel, error)
	Suggestions(ctx context.Context, userID string, limit int) ([]domain.UserProfile, error)
}

// ContentRepository persists snippets, docs and bugs and resolves any of
// them to a ContentRef.
type ContentRepository interface {
	GetRef(ctx context.Context, kind domain.ContentKind, id string) (*domain.ContentRef, error)
	CreateSnippet(ctx context.Context, m *domain.SnippetModel) error
	CreateDoc(ctx context.Context, m *domain.DocModel) error
	CreateBug(ctx context.Context, m *domain.BugModel) error
	UpdateBugStatus(ctx context.Context, id, status string) error
}

// ReactionRepository stores likes or bookmarks. Activate and Deactivate
// report whether a row was actually inserted or deleted.
type ReactionRepository interface {
	Activate(ctx context.Context, userID string, kind domain.ContentKind, targetID string) (bool, error)
	Deactivate(ctx context.Context, userID string, kind domain.ContentKind, targetID string) (bool, error)
	Exists(ctx context.Context, userID string, kind domain.ContentKind, targetID string) (bool, error)
	Count(ctx context.Context, kind domain.ContentKind, targetID string) (int64, error)
}

// FollowRepository persists follow relationships.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followingID string) (bool, error)
	Unfollow(ctx context.Context, followerID, followingID string) (bool, error)
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	FollowerIDs(ctx context.Context, userID string) ([]string, error)
	Followers(ctx context.Context, userID string, page, limit int) ([]domain.UserSummary, int64, error)
	Following(ctx context.Context, userID string, page, limit int) ([]domain.UserSummary, int64, error)
	FollowersCount(ctx context.Context, userID string) (int64, error)
	FollowingCount(ctx context.Context, userID string) (int64, error)
}

// BlockRepository persists blocks.
type BlockRepository interface {
	Block(ctx context.Context, blockerID, blockedID string) (bool, error)
	Unblock(ctx context.Context, blockerID, blockedID string) (bool, error)
}

// NotificationRepository persists notifications.
type NotificationRepository interface {
	Create(ctx context.Context, m *domain.NotificationModel) error
	List(ctx context.Context, recipientID string, page, limit int) ([]domain.NotificationModel, int64, error)
	MarkRead(ctx context.Context, recipientID string, ids []string) (int64, error)
	UnreadCount(ctx context.Context, recipientID string) (int64, error)
}

// CommentRepository persists comments.
type CommentRepository interface {
	Create(ctx context.Context, m *domain.CommentModel) error
	GetByID(ctx context.Context, id string) (*domain.CommentModel, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]domain.CommentModel, error)
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
	ListTopLevel(ctx context.Context, kind domain.ContentKind, targetID string, page, limit int) ([]domain.CommentModel, int64, error)
	ListReplies(ctx context.Context, parentIDs []string) ([]domain.CommentModel, error)
}

func offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
