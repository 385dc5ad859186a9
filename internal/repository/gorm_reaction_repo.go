package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codegram/codegram-live/internal/domain"
	"github.com/codegram/codegram-live/pkg/log"
)

// reactionRow mirrors the shared column layout of likes and bookmarks.
type reactionRow struct {
	ID         string
	UserID     string
	TargetKind domain.ContentKind
	TargetID   string
	CreatedAt  time.Time
}

// GormReactionRepository implements ReactionRepository over one of the
// likes or bookmarks tables.
type GormReactionRepository struct {
	db    *gorm.DB
	table string
}

// NewGormLikeRepository creates a reaction repository over the likes table.
func NewGormLikeRepository(db *gorm.DB) *GormReactionRepository {
	return &GormReactionRepository{db: db, table: domain.LikeModel{}.TableName()}
}

// NewGormBookmarkRepository creates a reaction repository over the bookmarks table.
func NewGormBookmarkRepository(db *gorm.DB) *GormReactionRepository {
	return &GormReactionRepository{db: db, table: domain.BookmarkModel{}.TableName()}
}

// Activate inserts the (user, target) row unless it already exists. The
// unique index decides concurrent activations; only one caller sees true.
func (r *GormReactionRepository) Activate(ctx context.Context, userID string, kind domain.ContentKind, targetID string) (bool, error) {
	row := reactionRow{
		ID:         uuid.NewString(),
		UserID:     userID,
		TargetKind: kind,
		TargetID:   targetID,
		CreatedAt:  time.Now().UTC(),
	}
	result := r.db.WithContext(ctx).Table(r.table).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row)
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str("table", r.table).Str(log.FieldUserID, userID).Msg("failed to insert reaction")
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Deactivate deletes the (user, target) row if present.
func (r *GormReactionRepository) Deactivate(ctx context.Context, userID string, kind domain.ContentKind, targetID string) (bool, error) {
	result := r.db.WithContext(ctx).Table(r.table).
		Where("user_id = ? AND target_kind = ? AND target_id = ?", userID, kind, targetID).
		Delete(&reactionRow{})
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str("table", r.table).Str(log.FieldUserID, userID).Msg("failed to delete reaction")
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Exists reports whether the user has an active row for the target.
func (r *GormReactionRepository) Exists(ctx context.Context, userID string, kind domain.ContentKind, targetID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table(r.table).
		Where("user_id = ? AND target_kind = ? AND target_id = ?", userID, kind, targetID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count returns the number of rows for the target.
func (r *GormReactionRepository) Count(ctx context.Context, kind domain.ContentKind, targetID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table(r.table).
		Where("target_kind = ? AND target_id = ?", kind, targetID).
		Count(&count).Error
	return count, err
}

var _ ReactionRepository = (*GormReactionRepository)(nil)
