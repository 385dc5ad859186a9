package service

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/codegram/codegram-live/internal/domain"
	"github.com/codegram/codegram-live/internal/realtime"
	"github.com/codegram/codegram-live/internal/repository"
	"github.com/codegram/codegram-live/pkg/log"
)

const (
	defaultNotificationLimit = 10
	maxNotificationLimit     = 50
)

// notificationService implements NotificationService.
type notificationService struct {
	repo     repository.NotificationRepository
	users    repository.UserRepository
	contents repository.ContentRepository
	comments repository.CommentRepository
	counters *Counters
	rt       realtime.Broadcaster
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(
	repo repository.NotificationRepository,
	users repository.UserRepository,
	contents repository.ContentRepository,
	comments repository.CommentRepository,
	counters *Counters,
	rt realtime.Broadcaster,
) NotificationService {
	return &notificationService{
		repo:     repo,
		users:    users,
		contents: contents,
		comments: comments,
		counters: counters,
		rt:       rt,
	}
}

// Create persists the notification, then pushes it to the recipient's room.
// The push is best effort; the stored row is the source of truth.
func (s *notificationService) Create(ctx context.Context, in domain.NotificationInput) (*domain.Notification, error) {
	if in.RecipientID == in.SenderID {
		return nil, nil
	}
	l := log.Ctx(ctx)

	model := &domain.NotificationModel{
		ID:          ulid.Make().String(),
		RecipientID: in.RecipientID,
		SenderID:    in.SenderID,
		Type:        in.Type,
		ContentKind: in.ContentKind,
		ContentID:   optional(in.ContentID),
		CommentID:   optional(in.CommentID),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, model); err != nil {
		return nil, err
	}
	s.counters.Incr(ctx, unreadKey(in.RecipientID))

	sender, err := s.users.GetByID(ctx, in.SenderID)
	if err != nil {
		l.Warn().Err(err).Str(log.FieldUserID, in.SenderID).Msg("failed to load notification sender")
		sender = &domain.UserModel{ID: in.SenderID}
	}
	model.Sender = *sender

	n := s.toDomain(ctx, model, nil, nil)
	if err := s.rt.EmitToRoom(ctx, realtime.UserRoom(in.RecipientID), domain.EventNewNotification, n); err != nil {
		l.Error().Err(err).
			Str(log.FieldUserID, in.RecipientID).
			Str("notification_id", model.ID).
			Msg("failed to push notification")
	}
	return n, nil
}

// List returns a page of notifications, newest first, each with sender,
// content and comment references resolved.
func (s *notificationService) List(ctx context.Context, userID string, page, limit int) (*domain.NotificationList, error) {
	page, limit = clampPage(page, limit, defaultNotificationLimit, maxNotificationLimit)

	models, total, err := s.repo.List(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}

	var commentIDs []string
	for _, m := range models {
		if m.CommentID != nil {
			commentIDs = append(commentIDs, *m.CommentID)
		}
	}
	comments, err := s.comments.GetByIDs(ctx, commentIDs)
	if err != nil {
		return nil, err
	}

	titles := make(map[string]*domain.ContentRef)
	out := make([]domain.Notification, len(models))
	for i := range models {
		out[i] = *s.toDomain(ctx, &models[i], titles, comments)
	}

	return &domain.NotificationList{
		Notifications: out,
		Total:         total,
		Page:          page,
		Limit:         limit,
	}, nil
}

// MarkRead marks all of the user's notifications as read, or only ids when given.
func (s *notificationService) MarkRead(ctx context.Context, userID string, ids []string) (int64, error) {
	n, err := s.repo.MarkRead(ctx, userID, ids)
	if err != nil {
		return 0, err
	}
	s.counters.Invalidate(ctx, unreadKey(userID))
	return n, nil
}

// UnreadCount returns the user's unread badge count.
func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.counters.Get(ctx, unreadKey(userID))
}

// toDomain converts a model. refs memoizes content lookups across a page and
// may be nil; comments supplies preloaded comment text and may be nil.
func (s *notificationService) toDomain(ctx context.Context, m *domain.NotificationModel, refs map[string]*domain.ContentRef, comments map[string]domain.CommentModel) *domain.Notification {
	n := &domain.Notification{
		ID:          m.ID,
		RecipientID: m.RecipientID,
		Type:        m.Type,
		Read:        m.Read,
		CreatedAt:   m.CreatedAt,
		Sender:      m.Sender.Summary(),
	}

	if m.ContentID != nil && m.ContentKind != "" {
		if ref := s.contentRef(ctx, m.ContentKind, *m.ContentID, refs); ref != nil {
			n.Content = &domain.ContentSummary{Kind: ref.Kind, ID: ref.ID, Title: ref.Title}
		}
	}

	if m.CommentID != nil {
		if c, ok := comments[*m.CommentID]; ok {
			n.Comment = &domain.CommentSummary{ID: c.ID, Content: c.Content}
		} else if comments == nil {
			if c, err := s.comments.GetByID(ctx, *m.CommentID); err == nil {
				n.Comment = &domain.CommentSummary{ID: c.ID, Content: c.Content}
			}
		}
	}
	return n
}

func (s *notificationService) contentRef(ctx context.Context, kind domain.ContentKind, id string, refs map[string]*domain.ContentRef) *domain.ContentRef {
	key := string(kind) + ":" + id
	if ref, ok := refs[key]; ok {
		return ref
	}
	ref, err := s.contents.GetRef(ctx, kind, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str("content_id", id).Msg("failed to resolve notification content")
	}
	if refs != nil {
		refs[key] = ref
	}
	return ref
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var _ NotificationService = (*notificationService)(nil)
