package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codegram/codegram-live/internal/domain"
	"github.com/codegram/codegram-live/pkg/log"
)

// GormContentRepository implements ContentRepository using GORM.
type GormContentRepository struct {
	db *gorm.DB
}

// NewGormContentRepository creates a new GORM-backed content repository.
func NewGormContentRepository(db *gorm.DB) *GormContentRepository {
	return &GormContentRepository{db: db}
}

// GetRef resolves a content item of any kind.
func (r *GormContentRepository) GetRef(ctx context.Context, kind domain.ContentKind, id string) (*domain.ContentRef, error) {
	db := r.db.WithContext(ctx)
	ref := &domain.ContentRef{Kind: kind, ID: id}

	var err error
	switch kind {
	case domain.ContentSnippet:
		var m domain.SnippetModel
		if err = db.Select("id", "author_id", "title", "is_public").First(&m, "id = ?", id).Error; err == nil {
			ref.AuthorID, ref.Title, ref.IsPublic = m.AuthorID, m.Title, m.IsPublic
		}
	case domain.ContentDoc:
		var m domain.DocModel
		if err = db.Select("id", "author_id", "title", "is_public").First(&m, "id = ?", id).Error; err == nil {
			ref.AuthorID, ref.Title, ref.IsPublic = m.AuthorID, m.Title, m.IsPublic
		}
	case domain.ContentBug:
		var m domain.BugModel
		if err = db.Select("id", "author_id", "title", "expires_at").First(&m, "id = ?", id).Error; err == nil {
			expires := m.ExpiresAt
			ref.AuthorID, ref.Title, ref.IsPublic, ref.ExpiresAt = m.AuthorID, m.Title, true, &expires
		}
	default:
		return nil, fmt.Errorf("unknown content kind %q", kind)
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Str("content_kind", string(kind)).Str("content_id", id).Msg("failed to resolve content")
		return nil, err
	}
	return ref, nil
}

// CreateSnippet inserts a snippet, assigning an ID when empty.
func (r *GormContentRepository) CreateSnippet(ctx context.Context, m *domain.SnippetModel) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return r.create(ctx, m, domain.ContentSnippet, m.ID)
}

// CreateDoc inserts a doc, assigning an ID when empty.
func (r *GormContentRepository) CreateDoc(ctx context.Context, m *domain.DocModel) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return r.create(ctx, m, domain.ContentDoc, m.ID)
}

// CreateBug inserts a bug, assigning an ID when empty.
func (r *GormContentRepository) CreateBug(ctx context.Context, m *domain.BugModel) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return r.create(ctx, m, domain.ContentBug, m.ID)
}

func (r *GormContentRepository) create(ctx context.Context, model any, kind domain.ContentKind, id string) error {
	l := log.Ctx(ctx)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		l.Error().Err(err).Str("content_kind", string(kind)).Msg("failed to create content in db")
		return err
	}
	l.Debug().Str("content_kind", string(kind)).Str("content_id", id).Msg("content created in db")
	return nil
}

// UpdateBugStatus sets a bug's status.
func (r *GormContentRepository) UpdateBugStatus(ctx context.Context, id, status string) error {
	result := r.db.WithContext(ctx).Model(&domain.BugModel{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str("content_id", id).Msg("failed to update bug status")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ ContentRepository = (*GormContentRepository)(nil)
