package domain

import "time"

// NotificationType enumerates what triggered a notification.
type NotificationType string

const (
	NotificationLike            NotificationType = "LIKE"
	NotificationComment         NotificationType = "COMMENT"
	NotificationReply           NotificationType = "REPLY"
	NotificationFollow          NotificationType = "FOLLOW"
	NotificationBookmark        NotificationType = "BOOKMARK"
	NotificationBugStatusUpdate NotificationType = "BUG_STATUS_UPDATE"
)

// NotificationModel is the GORM model for the notifications table. IDs are
// ULIDs so lexical order matches creation order.
type NotificationModel struct {
	ID          string           `gorm:"type:varchar(26);primaryKey"`
	RecipientID string           `gorm:"type:varchar(36);not null;index:idx_notifications_recipient,priority:1"`
	SenderID    string           `gorm:"type:varchar(36);not null"`
	Type        NotificationType `gorm:"type:varchar(32);not null"`
	ContentKind ContentKind      `gorm:"type:varchar(16)"`
	ContentID   *string          `gorm:"type:varchar(36)"`
	CommentID   *string          `gorm:"type:varchar(36)"`
	Read        bool             `gorm:"column:is_read;not null;default:false;index:idx_notifications_recipient,priority:2"`
	CreatedAt   time.Time        `gorm:"autoCreateTime"`

	Recipient UserModel `gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE"`
	Sender    UserModel `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE"`
}

func (NotificationModel) TableName() string { return "notifications" }

// Notification is the API and push representation of a notification.
type Notification struct {
	ID          string           `json:"id"`
	RecipientID string           `json:"recipientId"`
	Type        NotificationType `json:"type"`
	Read        bool             `json:"read"`
	CreatedAt   time.Time        `json:"createdAt"`
	Sender      UserSummary      `json:"sender"`
	Content     *ContentSummary  `json:"content,omitempty"`
	Comment     *CommentSummary  `json:"comment,omitempty"`
}

// NotificationInput describes a notification to create.
type NotificationInput struct {
	RecipientID string
	SenderID    string
	Type        NotificationType
	ContentKind ContentKind
	ContentID   string
	CommentID   string
}

// NotificationList is the response of GET /api/notifications.
type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	Total         int64          `json:"total"`
	Page          int            `json:"page"`
	Limit         int            `json:"limit"`
}

// MarkReadRequest is the body of POST /api/notifications/read. An empty
// list marks every notification as read.
type MarkReadRequest struct {
	IDs []string `json:"notificationIds" validate:"omitempty,max=100,dive,required,max=50"`
}
