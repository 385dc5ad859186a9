package domain

import (
	"time"

	"github.com/codegram/codegram-live/pkg/database"
)

// ContentKind identifies one of the three content variants.
type ContentKind string

const (
	ContentSnippet ContentKind = "snippet"
	ContentDoc     ContentKind = "doc"
	ContentBug     ContentKind = "bug"
)

// BugTTL is how long a bug report stays actionable.
const BugTTL = 24 * time.Hour

// Bug statuses.
const (
	BugOpen       = "OPEN"
	BugInProgress = "IN_PROGRESS"
	BugResolved   = "RESOLVED"
	BugClosed     = "CLOSED"
)

// SnippetModel is the GORM model for the snippets table.
type SnippetModel struct {
	ID          string               `gorm:"type:varchar(36);primaryKey"`
	AuthorID    string               `gorm:"type:varchar(36);index;not null"`
	Title       string               `gorm:"type:varchar(200);not null"`
	Description string               `gorm:"type:text"`
	Content     string               `gorm:"type:text;not null"`
	Language    string               `gorm:"type:varchar(50)"`
	Tags        database.StringArray `gorm:"type:text"`
	IsPublic    bool                 `gorm:"not null"`
	CreatedAt   time.Time            `gorm:"autoCreateTime"`
	UpdatedAt   time.Time            `gorm:"autoUpdateTime"`
}

func (SnippetModel) TableName() string { return "snippets" }

// DocModel is the GORM model for the docs table.
type DocModel struct {
	ID        string               `gorm:"type:varchar(36);primaryKey"`
	AuthorID  string               `gorm:"type:varchar(36);index;not null"`
	Title     string               `gorm:"type:varchar(200);not null"`
	Content   string               `gorm:"type:text;not null"`
	Tags      database.StringArray `gorm:"type:text"`
	IsPublic  bool                 `gorm:"not null"`
	CreatedAt time.Time            `gorm:"autoCreateTime"`
	UpdatedAt time.Time            `gorm:"autoUpdateTime"`
}

func (DocModel) TableName() string { return "docs" }

// BugModel is the GORM model for the bugs table. Bugs are always public and
// stop being actionable at ExpiresAt.
type BugModel struct {
	ID          string               `gorm:"type:varchar(36);primaryKey"`
	AuthorID    string               `gorm:"type:varchar(36);index;not null"`
	Title       string               `gorm:"type:varchar(100);not null"`
	Description string               `gorm:"type:varchar(500)"`
	Content     string               `gorm:"type:text;not null"`
	Severity    string               `gorm:"type:varchar(20);not null;default:'MEDIUM'"`
	Status      string               `gorm:"type:varchar(20);not null;default:'OPEN'"`
	Tags        database.StringArray `gorm:"type:text"`
	ExpiresAt   time.Time            `gorm:"index;not null"`
	CreatedAt   time.Time            `gorm:"autoCreateTime"`
	UpdatedAt   time.Time            `gorm:"autoUpdateTime"`
}

func (BugModel) TableName() string { return "bugs" }

// ContentRef is the slice of a content item the interaction core needs:
// who owns it, whether others may act on it, and its display title.
type ContentRef struct {
	Kind      ContentKind
	ID        string
	AuthorID  string
	Title     string
	IsPublic  bool
	ExpiresAt *time.Time
}

// Expired reports whether a bug has passed its expiry at now.
func (r *ContentRef) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && r.ExpiresAt.Before(now)
}

// Content is the full content object pushed to followers and returned on create.
type Content struct {
	Kind        ContentKind `json:"kind"`
	ID          string      `json:"id"`
	Author      UserSummary `json:"author"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Content     string      `json:"content"`
	Language    string      `json:"language,omitempty"`
	Tags        []string    `json:"tags"`
	IsPublic    bool        `json:"isPublic"`
	Severity    string      `json:"severity,omitempty"`
	Status      string      `json:"status,omitempty"`
	ExpiresAt   *time.Time  `json:"expiresAt,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// ContentSummary references content from a notification.
type ContentSummary struct {
	Kind  ContentKind `json:"kind"`
	ID    string      `json:"id"`
	Title string      `json:"title"`
}

// CreateSnippetRequest is the body of POST /api/snippets.
type CreateSnippetRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=1000"`
	Content     string   `json:"content" validate:"required"`
	Language    string   `json:"language" validate:"max=50"`
	Tags        []string `json:"tags"`
	IsPublic    *bool    `json:"isPublic"`
}

// CreateDocRequest is the body of POST /api/docs.
type CreateDocRequest struct {
	Title    string   `json:"title" validate:"required,max=200"`
	Content  string   `json:"content" validate:"required"`
	Tags     []string `json:"tags"`
	IsPublic *bool    `json:"isPublic"`
}

// CreateBugRequest is the body of POST /api/bugs.
type CreateBugRequest struct {
	Title       string   `json:"title" validate:"required,max=100"`
	Description string   `json:"description" validate:"required,max=500"`
	Content     string   `json:"content" validate:"required"`
	Severity    string   `json:"severity" validate:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	Tags        []string `json:"tags"`
}

// UpdateBugStatusRequest is the body of PATCH /api/bugs/:id/status.
type UpdateBugStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=OPEN IN_PROGRESS RESOLVED CLOSED"`
}
