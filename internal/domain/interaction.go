package domain

import "time"

// LikeModel is the GORM model for the likes table. The unique index is the
// only guard against duplicate activations.
type LikeModel struct {
	ID         string      `gorm:"type:varchar(36);primaryKey"`
	UserID     string      `gorm:"type:varchar(36);not null;uniqueIndex:uidx_likes_user_target,priority:1"`
	TargetKind ContentKind `gorm:"type:varchar(16);not null;uniqueIndex:uidx_likes_user_target,priority:2;index:idx_likes_target,priority:1"`
	TargetID   string      `gorm:"type:varchar(36);not null;uniqueIndex:uidx_likes_user_target,priority:3;index:idx_likes_target,priority:2"`
	CreatedAt  time.Time   `gorm:"autoCreateTime"`
}

func (LikeModel) TableName() string { return "likes" }

// BookmarkModel is the GORM model for the bookmarks table.
type BookmarkModel struct {
	ID         string      `gorm:"type:varchar(36);primaryKey"`
	UserID     string      `gorm:"type:varchar(36);not null;uniqueIndex:uidx_bookmarks_user_target,priority:1"`
	TargetKind ContentKind `gorm:"type:varchar(16);not null;uniqueIndex:uidx_bookmarks_user_target,priority:2;index:idx_bookmarks_target,priority:1"`
	TargetID   string      `gorm:"type:varchar(36);not null;uniqueIndex:uidx_bookmarks_user_target,priority:3;index:idx_bookmarks_target,priority:2"`
	CreatedAt  time.Time   `gorm:"autoCreateTime"`
}

func (BookmarkModel) TableName() string { return "bookmarks" }

// FollowModel is the GORM model for the follows table. Rows are hard deleted
// on unfollow.
type FollowModel struct {
	ID          string    `gorm:"type:varchar(36);primaryKey"`
	FollowerID  string    `gorm:"type:varchar(36);not null;uniqueIndex:uidx_follows_pair,priority:1;index:idx_follows_follower"`
	FollowingID string    `gorm:"type:varchar(36);not null;uniqueIndex:uidx_follows_pair,priority:2;index:idx_follows_following"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index"`
}

func (FollowModel) TableName() string { return "follows" }

// BlockModel is the GORM model for the blocks table.
type BlockModel struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	BlockerID string    `gorm:"type:varchar(36);not null;uniqueIndex:uidx_blocks_pair,priority:1"`
	BlockedID string    `gorm:"type:varchar(36);not null;uniqueIndex:uidx_blocks_pair,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (BlockModel) TableName() string { return "blocks" }

// TargetRequest names exactly one content item by kind-specific id. It is the
// body of POST /api/likes and POST /api/bookmarks and the query of the check
// and comment list endpoints.
type TargetRequest struct {
	SnippetID string `json:"snippetId" form:"snippetId" validate:"omitempty,max=50"`
	DocID     string `json:"docId" form:"docId" validate:"omitempty,max=50"`
	BugID     string `json:"bugId" form:"bugId" validate:"omitempty,max=50"`
}

// Target resolves the request to a kind and id. ok is false unless exactly
// one id is set.
func (r TargetRequest) Target() (ContentKind, string, bool) {
	var (
		kind ContentKind
		id   string
		n    int
	)
	if r.SnippetID != "" {
		kind, id = ContentSnippet, r.SnippetID
		n++
	}
	if r.DocID != "" {
		kind, id = ContentDoc, r.DocID
		n++
	}
	if r.BugID != "" {
		kind, id = ContentBug, r.BugID
		n++
	}
	if n != 1 {
		return "", "", false
	}
	return kind, id, true
}

// ToggleResult is the outcome of a like or bookmark toggle.
type ToggleResult struct {
	Active bool
	Count  int64
}

// FollowStats holds follower and following counts for a user.
type FollowStats struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

// Page is a generic paginated list response.
type Page[T any] struct {
	Items       []T   `json:"items"`
	Total       int64 `json:"total"`
	Pages       int   `json:"pages"`
	CurrentPage int   `json:"currentPage"`
}

// NewPage builds a Page, computing the page count from total and limit.
func NewPage[T any](items []T, total int64, page, limit int) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Page[T]{Items: items, Total: total, Pages: pages, CurrentPage: page}
}
