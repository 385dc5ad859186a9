package repository

import (
	"gorm.io/gorm"

	"github.com/codegram/codegram-live/internal/domain"
	"github.com/codegram/codegram-live/pkg/database"
)

// Models lists every table the service owns, in dependency order.
func Models() []any {
	return []any{
		&domain.UserModel{},
		&domain.SnippetModel{},
		&domain.DocModel{},
		&domain.BugModel{},
		&domain.LikeModel{},
		&domain.BookmarkModel{},
		&domain.FollowModel{},
		&domain.BlockModel{},
		&domain.CommentModel{},
		&domain.NotificationModel{},
	}
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	return database.AutoMigrate(db, Models()...)
}
