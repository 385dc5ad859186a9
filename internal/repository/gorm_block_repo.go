package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codegram/codegram-live/internal/domain"
)

// GormBlockRepository implements BlockRepository using GORM.
type GormBlockRepository struct {
	db *gorm.DB
}

// NewGormBlockRepository creates a new GORM-backed block repository.
func NewGormBlockRepository(db *gorm.DB) *GormBlockRepository {
	return &GormBlockRepository{db: db}
}

// Block inserts the pair unless present.
func (r *GormBlockRepository) Block(ctx context.Context, blockerID, blockedID string) (bool, error) {
	model := domain.BlockModel{
		ID:        uuid.NewString(),
		BlockerID: blockerID,
		BlockedID: blockedID,
		CreatedAt: time.Now().UTC(),
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&model)
	return result.RowsAffected > 0, result.Error
}

// Unblock deletes the pair if present.
func (r *GormBlockRepository) Unblock(ctx context.Context, blockerID, blockedID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&domain.BlockModel{})
	return result.RowsAffected > 0, result.Error
}

var _ BlockRepository = (*GormBlockRepository)(nil)
