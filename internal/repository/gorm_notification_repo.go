package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codegram/codegram-live/internal/domain"
	"github.com/codegram/codegram-live/pkg/log"
)

// GormNotificationRepository implements NotificationRepository using GORM.
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GORM-backed notification repository.
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create inserts a notification. The caller assigns the ID.
func (r *GormNotificationRepository) Create(ctx context.Context, m *domain.NotificationModel) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldUserID, m.RecipientID).Msg("failed to create notification in db")
		return err
	}
	return nil
}

// List returns a page of the recipient's notifications, newest first, with
// the sender preloaded.
func (r *GormNotificationRepository) List(ctx context.Context, recipientID string, page, limit int) ([]domain.NotificationModel, int64, error) {
	l := log.Ctx(ctx)
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&domain.NotificationModel{}).Where("recipient_id = ?", recipientID)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		l.Error().Err(err).Str(log.FieldUserID, recipientID).Msg("failed to count notifications")
		return nil, 0, err
	}

	var models []domain.NotificationModel
	err := base().Preload("Sender").
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset(page, limit)).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, recipientID).Msg("failed to list notifications")
		return nil, 0, err
	}
	return models, total, nil
}

// MarkRead marks the recipient's unread notifications as read, restricted to
// ids when non-empty, and returns how many changed.
func (r *GormNotificationRepository) MarkRead(ctx context.Context, recipientID string, ids []string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.NotificationModel{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false)
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}
	result := query.Update("is_read", true)
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str(log.FieldUserID, recipientID).Msg("failed to mark notifications read")
	}
	return result.RowsAffected, result.Error
}

// UnreadCount counts the recipient's unread notifications.
func (r *GormNotificationRepository) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.NotificationModel{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

var _ NotificationRepository = (*GormNotificationRepository)(nil)
