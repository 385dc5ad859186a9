package service

import (
	"context"
	"errors"
	"time"

	"github.com/codegram/codegram-live/internal/audit"
	"github.com/codegram/codegram-live/internal/domain"
	"github.com/codegram/codegram-live/internal/repository"
	"github.com/codegram/codegram-live/internal/validation"
	"github.com/codegram/codegram-live/pkg/log"
)

const defaultBugSeverity = "MEDIUM"

// contentService implements ContentService.
type contentService struct {
	contents      repository.ContentRepository
	users         repository.UserRepository
	notifications NotificationService
	fanout        FollowerFanout
	now           func() time.Time
}

// NewContentService creates a new ContentService.
func NewContentService(
	contents repository.ContentRepository,
	users repository.UserRepository,
	notifications NotificationService,
	fanout FollowerFanout,
) ContentService {
	return &contentService{
		contents:      contents,
		users:         users,
		notifications: notifications,
		fanout:        fanout,
		now:           time.Now,
	}
}

// CreateSnippet stores a snippet. Public snippets are announced to the
// author's followers; private ones stay quiet.
func (s *contentService) CreateSnippet(ctx context.Context, authorID string, req domain.CreateSnippetRequest) (*domain.Content, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	m := &domain.SnippetModel{
		AuthorID:    authorID,
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Language:    req.Language,
		Tags:        validation.CleanTags(req.Tags),
		IsPublic:    boolOr(req.IsPublic, true),
	}
	if err := s.contents.CreateSnippet(ctx, m); err != nil {
		return nil, err
	}

	c := &domain.Content{
		Kind:        domain.ContentSnippet,
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Content:     m.Content,
		Language:    m.Language,
		Tags:        m.Tags,
		IsPublic:    m.IsPublic,
		CreatedAt:   m.CreatedAt,
	}
	s.publish(ctx, authorID, c)
	return c, nil
}

// CreateDoc stores a doc, announcing it when public.
func (s *contentService) CreateDoc(ctx context.Context, authorID string, req domain.CreateDocRequest) (*domain.Content, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	m := &domain.DocModel{
		AuthorID: authorID,
		Title:    req.Title,
		Content:  req.Content,
		Tags:     validation.CleanTags(req.Tags),
		IsPublic: boolOr(req.IsPublic, true),
	}
	if err := s.contents.CreateDoc(ctx, m); err != nil {
		return nil, err
	}

	c := &domain.Content{
		Kind:      domain.ContentDoc,
		ID:        m.ID,
		Title:     m.Title,
		Content:   m.Content,
		Tags:      m.Tags,
		IsPublic:  m.IsPublic,
		CreatedAt: m.CreatedAt,
	}
	s.publish(ctx, authorID, c)
	return c, nil
}

// CreateBug stores a bug report that expires after BugTTL. Bugs are always
// public and always announced.
func (s *contentService) CreateBug(ctx context.Context, authorID string, req domain.CreateBugRequest) (*domain.Content, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	severity := req.Severity
	if severity == "" {
		severity = defaultBugSeverity
	}
	m := &domain.BugModel{
		AuthorID:    authorID,
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Severity:    severity,
		Status:      domain.BugOpen,
		Tags:        validation.CleanTags(req.Tags),
		ExpiresAt:   s.now().Add(domain.BugTTL),
	}
	if err := s.contents.CreateBug(ctx, m); err != nil {
		return nil, err
	}

	expiresAt := m.ExpiresAt
	c := &domain.Content{
		Kind:        domain.ContentBug,
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Content:     m.Content,
		Tags:        m.Tags,
		IsPublic:    true,
		Severity:    m.Severity,
		Status:      m.Status,
		ExpiresAt:   &expiresAt,
		CreatedAt:   m.CreatedAt,
	}
	s.publish(ctx, authorID, c)
	return c, nil
}

// publish fills the author and fans the new content out when it is public.
func (s *contentService) publish(ctx context.Context, authorID string, c *domain.Content) {
	if c.Tags == nil {
		c.Tags = []string{}
	}
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldUserID, authorID).Msg("failed to load content author")
		author = &domain.UserModel{ID: authorID}
	}
	c.Author = author.Summary()
	audit.LogWithDetail(ctx, audit.ActionContentCreate, authorID, c.ID, string(c.Kind), "content created")

	if !c.IsPublic {
		return
	}
	s.fanout.EmitToFollowers(ctx, authorID, domain.NewContentEvent(c.Kind), c)
}

// UpdateBugStatus changes a live bug's status. Only its author or an admin
// may do so; the author is notified when someone else made the change.
func (s *contentService) UpdateBugStatus(ctx context.Context, userID, role, bugID string, req domain.UpdateBugStatusRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}
	ref, err := s.contents.GetRef(ctx, domain.ContentBug, bugID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundContent(domain.ContentBug)
		}
		return err
	}
	if ref.Expired(s.now()) {
		return ErrBugExpired
	}
	if ref.AuthorID != userID && role != domain.RoleAdmin {
		return ErrBugStatusDenied
	}

	if err := s.contents.UpdateBugStatus(ctx, bugID, req.Status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundContent(domain.ContentBug)
		}
		return err
	}
	audit.LogWithDetail(ctx, audit.ActionBugStatusUpdate, userID, bugID, req.Status, "bug status updated")

	_, err = s.notifications.Create(ctx, domain.NotificationInput{
		RecipientID: ref.AuthorID,
		SenderID:    userID,
		Type:        domain.NotificationBugStatusUpdate,
		ContentKind: domain.ContentBug,
		ContentID:   bugID,
	})
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str("content_id", bugID).Msg("failed to create bug status notification")
	}
	return nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

var _ ContentService = (*contentService)(nil)
