package domain

import "time"

// CommentModel is the GORM model for the comments table. Exactly one content
// target is set, and ParentID is non-nil for replies.
type CommentModel struct {
	ID         string      `gorm:"type:varchar(36);primaryKey"`
	AuthorID   string      `gorm:"type:varchar(36);not null;index"`
	TargetKind ContentKind `gorm:"type:varchar(16);not null;index:idx_comments_target,priority:1"`
	TargetID   string      `gorm:"type:varchar(36);not null;index:idx_comments_target,priority:2"`
	ParentID   *string     `gorm:"type:varchar(36);index"`
	Content    string      `gorm:"type:varchar(1000);not null"`
	CreatedAt  time.Time   `gorm:"autoCreateTime"`
	UpdatedAt  time.Time   `gorm:"autoUpdateTime"`

	Author UserModel `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

func (CommentModel) TableName() string { return "comments" }

// ToDomain converts the model, including its preloaded author.
func (m *CommentModel) ToDomain() *Comment {
	return &Comment{
		ID:         m.ID,
		Author:     m.Author.Summary(),
		TargetKind: m.TargetKind,
		TargetID:   m.TargetID,
		ParentID:   m.ParentID,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// Comment is the API and push representation of a comment.
type Comment struct {
	ID         string      `json:"id"`
	Author     UserSummary `json:"author"`
	TargetKind ContentKind `json:"targetKind"`
	TargetID   string      `json:"targetId"`
	ParentID   *string     `json:"parentId,omitempty"`
	Content    string      `json:"content"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
	Replies    []*Comment  `json:"replies,omitempty"`
}

// CommentSummary references a comment from a notification.
type CommentSummary struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// CommentDeleted is the payload of comment_deleted.
type CommentDeleted struct {
	CommentID string `json:"commentId"`
	ContentID string `json:"contentId"`
}

// CreateCommentRequest is the body of POST /api/comments.
type CreateCommentRequest struct {
	TargetRequest
	Content  string `json:"content" validate:"required,min=1,max=1000"`
	ParentID string `json:"parentId" validate:"omitempty,max=50"`
}

// UpdateCommentRequest is the body of PUT /api/comments/:id.
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}
