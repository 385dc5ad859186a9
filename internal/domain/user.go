package domain

import "time"

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// UserModel is the GORM model for the users table. Rows are created by the
// external identity login flow; this service only reads them.
type UserModel struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	Username  string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	Name      string    `gorm:"type:varchar(100)"`
	Avatar    string    `gorm:"type:varchar(500)"`
	Bio       string    `gorm:"type:text"`
	Role      string    `gorm:"type:varchar(20);not null;default:'USER'"`
	IsBlocked bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for UserModel.
func (UserModel) TableName() string {
	return "users"
}

// Summary returns the public profile fields inlined into events.
func (m *UserModel) Summary() UserSummary {
	return UserSummary{
		ID:       m.ID,
		Username: m.Username,
		Name:     m.Name,
		Avatar:   m.Avatar,
	}
}

// UserSummary is the public profile shown next to notifications and comments.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// UserProfile adds follow-graph counters to a summary.
type UserProfile struct {
	UserSummary
	Bio            string `json:"bio,omitempty"`
	FollowerCount  int64  `json:"followerCount"`
	FollowingCount int64  `json:"followingCount"`
}
