package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codegram/codegram-live/internal/domain"
	"github.com/codegram/codegram-live/pkg/log"
)

// GormCommentRepository implements CommentRepository using GORM.
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GORM-backed comment repository.
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

// Create inserts a comment and loads its author.
func (r *GormCommentRepository) Create(ctx context.Context, m *domain.CommentModel) error {
	l := log.Ctx(ctx)
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(m).Error; err != nil {
		l.Error().Err(err).Str("content_id", m.TargetID).Msg("failed to create comment in db")
		return err
	}
	if err := db.First(&m.Author, "id = ?", m.AuthorID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

// GetByID retrieves a comment with its author.
func (r *GormCommentRepository) GetByID(ctx context.Context, id string) (*domain.CommentModel, error) {
	var m domain.CommentModel
	if err := r.db.WithContext(ctx).Preload("Author").First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// GetByIDs retrieves comments keyed by ID. Missing IDs are absent from the map.
func (r *GormCommentRepository) GetByIDs(ctx context.Context, ids []string) (map[string]domain.CommentModel, error) {
	out := make(map[string]domain.CommentModel, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var models []domain.CommentModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}
	for _, m := range models {
		out[m.ID] = m
	}
	return out, nil
}

// UpdateContent replaces a comment's text.
func (r *GormCommentRepository) UpdateContent(ctx context.Context, id, content string) error {
	result := r.db.WithContext(ctx).Model(&domain.CommentModel{}).
		Where("id = ?", id).
		Update("content", content)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a comment together with its replies.
func (r *GormCommentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", id).Delete(&domain.CommentModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&domain.CommentModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ListTopLevel returns a page of top-level comments on a target, newest first.
func (r *GormCommentRepository) ListTopLevel(ctx context.Context, kind domain.ContentKind, targetID string, page, limit int) ([]domain.CommentModel, int64, error) {
	l := log.Ctx(ctx)
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&domain.CommentModel{}).
			Where("target_kind = ? AND target_id = ? AND parent_id IS NULL", kind, targetID)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		l.Error().Err(err).Str("content_id", targetID).Msg("failed to count comments")
		return nil, 0, err
	}

	var models []domain.CommentModel
	err := base().Preload("Author").
		Order("created_at DESC").
		Offset(offset(page, limit)).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		l.Error().Err(err).Str("content_id", targetID).Msg("failed to list comments")
		return nil, 0, err
	}
	return models, total, nil
}

// ListReplies returns the replies to the given comments, oldest first.
func (r *GormCommentRepository) ListReplies(ctx context.Context, parentIDs []string) ([]domain.CommentModel, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var models []domain.CommentModel
	err := r.db.WithContext(ctx).Preload("Author").
		Where("parent_id IN ?", parentIDs).
		Order("created_at ASC").
		Find(&models).Error
	return models, err
}

var _ CommentRepository = (*GormCommentRepository)(nil)
