package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/codegram/codegram-live/internal/domain"
	"github.com/codegram/codegram-live/pkg/log"
)

// GormUserRepository implements UserRepository using GORM.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-backed user repository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts a user. Used by the seed command and tests.
func (r *GormUserRepository) Create(ctx context.Context, user *domain.UserModel) error {
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID retrieves a user by ID.
func (r *GormUserRepository) GetByID(ctx context.Context, id string) (*domain.UserModel, error) {
	var m domain.UserModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldUserID, id).Msg("failed to get user by id")
		return nil, err
	}
	return &m, nil
}

// GetByUsername retrieves a user by handle.
func (r *GormUserRepository) GetByUsername(ctx context.Context, username string) (*domain.UserModel, error) {
	var m domain.UserModel
	if err := r.db.WithContext(ctx).First(&m, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

type suggestionRow struct {
	ID            string
	Username      string
	Name          string
	Avatar        string
	Bio           string
	FollowerCount int64
}

// Suggestions returns users that userID does not follow, has not blocked and
// that are not blocked platform-wide, most followed first.
func (r *GormUserRepository) Suggestions(ctx context.Context, userID string, limit int) ([]domain.UserProfile, error) {
	db := r.db.WithContext(ctx)

	counts := db.Model(&domain.FollowModel{}).
		Select("following_id, COUNT(*) AS cnt").
		Group("following_id")
	followed := db.Model(&domain.FollowModel{}).
		Select("following_id").
		Where("follower_id = ?", userID)
	blocked := db.Model(&domain.BlockModel{}).
		Select("blocked_id").
		Where("blocker_id = ?", userID)

	var rows []suggestionRow
	err := db.Table("users AS u").
		Select("u.id, u.username, u.name, u.avatar, u.bio, COALESCE(fc.cnt, 0) AS follower_count").
		Joins("LEFT JOIN (?) AS fc ON fc.following_id = u.id", counts).
		Where("u.id <> ?", userID).
		Where("u.is_blocked = ?", false).
		Where("u.id NOT IN (?)", followed).
		Where("u.id NOT IN (?)", blocked).
		Order("follower_count DESC").
		Order("u.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to load follow suggestions")
		return nil, err
	}

	out := make([]domain.UserProfile, len(rows))
	for i, row := range rows {
		out[i] = domain.UserProfile{
			UserSummary: domain.UserSummary{
				ID:       row.ID,
				Username: row.Username,
				Name:     row.Name,
				Avatar:   row.Avatar,
			},
			Bio:           row.Bio,
			FollowerCount: row.FollowerCount,
		}
	}
	return out, nil
}

var _ UserRepository = (*GormUserRepository)(nil)
