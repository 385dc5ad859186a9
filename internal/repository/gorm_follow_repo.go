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

// GormFollowRepository implements FollowRepository using GORM.
type GormFollowRepository struct {
	db *gorm.DB
}

// NewGormFollowRepository creates a new GORM-backed follow repository.
func NewGormFollowRepository(db *gorm.DB) *GormFollowRepository {
	return &GormFollowRepository{db: db}
}

// Follow inserts the (follower, following) pair unless it exists and reports
// whether this call created it.
func (r *GormFollowRepository) Follow(ctx context.Context, followerID, followingID string) (bool, error) {
	model := domain.FollowModel{
		ID:          uuid.NewString(),
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   time.Now().UTC(),
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model)
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str(log.FieldUserID, followerID).Str("following_id", followingID).Msg("failed to create follow")
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Unfollow hard deletes the pair and reports whether a row existed.
func (r *GormFollowRepository) Unfollow(ctx context.Context, followerID, followingID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&domain.FollowModel{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IsFollowing checks if followerID follows followingID.
func (r *GormFollowRepository) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FollowerIDs returns the IDs of everyone following userID.
func (r *GormFollowRepository) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where("following_id = ?", userID).
		Pluck("follower_id", &ids).Error
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to load follower ids")
		return nil, err
	}
	return ids, nil
}

// Followers lists the users following userID, newest first.
func (r *GormFollowRepository) Followers(ctx context.Context, userID string, page, limit int) ([]domain.UserSummary, int64, error) {
	return r.listUsers(ctx, "following_id", "follower_id", userID, page, limit)
}

// Following lists the users userID follows, newest first.
func (r *GormFollowRepository) Following(ctx context.Context, userID string, page, limit int) ([]domain.UserSummary, int64, error) {
	return r.listUsers(ctx, "follower_id", "following_id", userID, page, limit)
}

func (r *GormFollowRepository) listUsers(ctx context.Context, matchCol, userCol, userID string, page, limit int) ([]domain.UserSummary, int64, error) {
	l := log.Ctx(ctx)
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&domain.FollowModel{}).Where(matchCol+" = ?", userID).Count(&total).Error; err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to count follows")
		return nil, 0, err
	}

	var users []domain.UserSummary
	err := db.Table("follows AS f").
		Select("u.id, u.username, u.name, u.avatar").
		Joins("JOIN users AS u ON u.id = f."+userCol).
		Where("f."+matchCol+" = ?", userID).
		Order("f.created_at DESC").
		Offset(offset(page, limit)).
		Limit(limit).
		Scan(&users).Error
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to list follows")
		return nil, 0, err
	}
	return users, total, nil
}

// FollowersCount returns the number of followers of userID.
func (r *GormFollowRepository) FollowersCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where("following_id = ?", userID).
		Count(&count).Error
	return count, err
}

// FollowingCount returns the number of users userID follows.
func (r *GormFollowRepository) FollowingCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where("follower_id = ?", userID).
		Count(&count).Error
	return count, err
}

var _ FollowRepository = (*GormFollowRepository)(nil)
