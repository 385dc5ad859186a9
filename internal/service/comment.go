package service

import (
	"context"
	"errors"
	"time"

	"github.com/codegram/codegram-live/internal/audit"
	"github.com/codegram/codegram-live/internal/domain"
	"github.com/codegram/codegram-live/internal/realtime"
	"github.com/codegram/codegram-live/internal/repository"
	"github.com/codegram/codegram-live/internal/validation"
	"github.com/codegram/codegram-live/pkg/apperror"
	"github.com/codegram/codegram-live/pkg/log"
)

const (
	defaultCommentLimit = 10
	maxCommentLimit     = 50
)

// commentService implements CommentService.
type commentService struct {
	comments      repository.CommentRepository
	contents      repository.ContentRepository
	notifications NotificationService
	rt            realtime.Broadcaster
}

// NewCommentService creates a new CommentService.
func NewCommentService(
	comments repository.CommentRepository,
	contents repository.ContentRepository,
	notifications NotificationService,
	rt realtime.Broadcaster,
) CommentService {
	return &commentService{
		comments:      comments,
		contents:      contents,
		notifications: notifications,
		rt:            rt,
	}
}

// Create stores a comment or reply, notifies the content author (and the
// parent comment's author for replies), and pushes new_comment to the
// content room.
func (s *commentService) Create(ctx context.Context, authorID string, req domain.CreateCommentRequest) (*domain.Comment, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	kind, id, err := validation.Target(req.TargetRequest)
	if err != nil {
		return nil, err
	}

	ref, err := s.contents.GetRef(ctx, kind, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundContent(kind)
		}
		return nil, err
	}
	if ref.Expired(time.Now()) {
		return nil, ErrBugExpired
	}
	if !ref.IsPublic && ref.AuthorID != authorID {
		return nil, apperror.Forbidden("Cannot comment on private " + string(kind))
	}

	var parent *domain.CommentModel
	if req.ParentID != "" {
		parent, err = s.comments.GetByID(ctx, req.ParentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		if parent.TargetKind != kind || parent.TargetID != id {
			return nil, ErrParentNotFound
		}
	}

	model := &domain.CommentModel{
		AuthorID:   authorID,
		TargetKind: kind,
		TargetID:   id,
		ParentID:   optional(req.ParentID),
		Content:    req.Content,
	}
	if err := s.comments.Create(ctx, model); err != nil {
		return nil, err
	}
	comment := model.ToDomain()
	audit.Log(ctx, audit.ActionCommentCreate, authorID, comment.ID, "comment created")

	notificationType := domain.NotificationComment
	if parent != nil {
		notificationType = domain.NotificationReply
	}
	s.notify(ctx, ref, comment.ID, authorID, ref.AuthorID, notificationType)
	if parent != nil && parent.AuthorID != ref.AuthorID {
		s.notify(ctx, ref, comment.ID, authorID, parent.AuthorID, domain.NotificationReply)
	}

	s.emit(ctx, id, domain.EventNewComment, comment)
	return comment, nil
}

func (s *commentService) notify(ctx context.Context, ref *domain.ContentRef, commentID, senderID, recipientID string, t domain.NotificationType) {
	_, err := s.notifications.Create(ctx, domain.NotificationInput{
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        t,
		ContentKind: ref.Kind,
		ContentID:   ref.ID,
		CommentID:   commentID,
	})
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str("comment_id", commentID).Msg("failed to create comment notification")
	}
}

func (s *commentService) emit(ctx context.Context, contentID, event string, payload any) {
	if err := s.rt.EmitToRoom(ctx, realtime.ContentRoom(contentID), event, payload); err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str("content_id", contentID).Str(log.FieldEvent, event).Msg("failed to push comment event")
	}
}

// Update replaces the text of the caller's own comment.
func (s *commentService) Update(ctx context.Context, userID, commentID string, req domain.UpdateCommentRequest) (*domain.Comment, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	existing, err := s.load(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if existing.AuthorID != userID {
		return nil, ErrCommentForbidden
	}

	if existing.Content != req.Content {
		if err := s.comments.UpdateContent(ctx, commentID, req.Content); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrCommentNotFound
			}
			return nil, err
		}
		if existing, err = s.load(ctx, commentID); err != nil {
			return nil, err
		}
	}
	comment := existing.ToDomain()
	audit.Log(ctx, audit.ActionCommentUpdate, userID, commentID, "comment updated")

	s.emit(ctx, comment.TargetID, domain.EventCommentUpdated, comment)
	return comment, nil
}

// Delete removes a comment and its replies. Only the author or an admin may
// delete.
func (s *commentService) Delete(ctx context.Context, userID, role, commentID string) error {
	existing, err := s.load(ctx, commentID)
	if err != nil {
		return err
	}
	if existing.AuthorID != userID && role != domain.RoleAdmin {
		return ErrCommentForbidden
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	audit.Log(ctx, audit.ActionCommentDelete, userID, commentID, "comment deleted")

	s.emit(ctx, existing.TargetID, domain.EventCommentDeleted, domain.CommentDeleted{
		CommentID: commentID,
		ContentID: existing.TargetID,
	})
	return nil
}

// List returns top-level comments newest first, each with its replies
// oldest first.
func (s *commentService) List(ctx context.Context, target domain.TargetRequest, page, limit int) (*domain.Page[*domain.Comment], error) {
	kind, id, err := validation.Target(target)
	if err != nil {
		return nil, err
	}
	page, limit = clampPage(page, limit, defaultCommentLimit, maxCommentLimit)

	models, total, err := s.comments.ListTopLevel(ctx, kind, id, page, limit)
	if err != nil {
		return nil, err
	}

	items := make([]*domain.Comment, len(models))
	byID := make(map[string]*domain.Comment, len(models))
	ids := make([]string, len(models))
	for i := range models {
		items[i] = models[i].ToDomain()
		byID[items[i].ID] = items[i]
		ids[i] = items[i].ID
	}

	replies, err := s.comments.ListReplies(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range replies {
		if parent, ok := byID[*replies[i].ParentID]; ok {
			parent.Replies = append(parent.Replies, replies[i].ToDomain())
		}
	}

	p := domain.NewPage(items, total, page, limit)
	return &p, nil
}

func (s *commentService) load(ctx context.Context, id string) (*domain.CommentModel, error) {
	m, err := s.comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return m, nil
}

var _ CommentService = (*commentService)(nil)
