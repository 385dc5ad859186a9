package service

import (
	"context"
	"errors"
	"time"

	"github.com/codegram/codegram-live/internal/audit"
	"github.com/codegram/codegram-live/internal/domain"
	"github.com/codegram/codegram-live/internal/repository"
	"github.com/codegram/codegram-live/internal/store"
	"github.com/codegram/codegram-live/internal/validation"
	"github.com/codegram/codegram-live/pkg/log"
)

// reaction describes one toggle family sharing the like/bookmark shape.
type reaction struct {
	repo         repository.ReactionRepository
	counter      store.CounterKind
	notification domain.NotificationType
	action       string
}

// interactionService implements InteractionService.
type interactionService struct {
	contents      repository.ContentRepository
	notifications NotificationService
	counters      *Counters
	like          reaction
	bookmark      reaction
}

// NewInteractionService creates a new InteractionService.
func NewInteractionService(
	contents repository.ContentRepository,
	likes repository.ReactionRepository,
	bookmarks repository.ReactionRepository,
	notifications NotificationService,
	counters *Counters,
) InteractionService {
	return &interactionService{
		contents:      contents,
		notifications: notifications,
		counters:      counters,
		like: reaction{
			repo:         likes,
			counter:      store.CounterLikes,
			notification: domain.NotificationLike,
			action:       audit.ActionLike,
		},
		bookmark: reaction{
			repo:         bookmarks,
			counter:      store.CounterBookmarks,
			notification: domain.NotificationBookmark,
			action:       audit.ActionBookmark,
		},
	}
}

func (s *interactionService) ToggleLike(ctx context.Context, userID string, target domain.TargetRequest) (*domain.ToggleResult, error) {
	return s.toggle(ctx, s.like, userID, target)
}

func (s *interactionService) ToggleBookmark(ctx context.Context, userID string, target domain.TargetRequest) (*domain.ToggleResult, error) {
	return s.toggle(ctx, s.bookmark, userID, target)
}

func (s *interactionService) LikeStatus(ctx context.Context, userID string, target domain.TargetRequest) (*domain.ToggleResult, error) {
	return s.status(ctx, s.like, userID, target)
}

func (s *interactionService) BookmarkStatus(ctx context.Context, userID string, target domain.TargetRequest) (*domain.ToggleResult, error) {
	return s.status(ctx, s.bookmark, userID, target)
}

// resolveTarget validates the target and loads it. Expired bugs are gone,
// which is distinct from missing.
func (s *interactionService) resolveTarget(ctx context.Context, target domain.TargetRequest) (*domain.ContentRef, error) {
	kind, id, err := validation.Target(target)
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
	return ref, nil
}

// toggle deletes the row if present, otherwise inserts it. Only the call
// whose insert actually created the row notifies the author.
func (s *interactionService) toggle(ctx context.Context, r reaction, userID string, target domain.TargetRequest) (*domain.ToggleResult, error) {
	ref, err := s.resolveTarget(ctx, target)
	if err != nil {
		return nil, err
	}
	key := contentKey(r.counter, ref.Kind, ref.ID)
	l := log.Ctx(ctx)

	removed, err := r.repo.Deactivate(ctx, userID, ref.Kind, ref.ID)
	if err != nil {
		return nil, err
	}

	active := false
	if removed {
		s.counters.Decr(ctx, key)
	} else {
		created, err := r.repo.Activate(ctx, userID, ref.Kind, ref.ID)
		if err != nil {
			return nil, err
		}
		active = true
		if created {
			s.counters.Incr(ctx, key)
			s.notify(ctx, r, userID, ref)
		}
	}
	audit.LogToggle(ctx, r.action, userID, key.ID, active)

	count, err := s.counters.Get(ctx, key)
	if err != nil {
		l.Warn().Err(err).Str("counter", key.String()).Msg("failed to read count after toggle")
	}
	return &domain.ToggleResult{Active: active, Count: count}, nil
}

func (s *interactionService) notify(ctx context.Context, r reaction, userID string, ref *domain.ContentRef) {
	_, err := s.notifications.Create(ctx, domain.NotificationInput{
		RecipientID: ref.AuthorID,
		SenderID:    userID,
		Type:        r.notification,
		ContentKind: ref.Kind,
		ContentID:   ref.ID,
	})
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).
			Str(log.FieldUserID, userID).
			Str("content_id", ref.ID).
			Str("type", string(r.notification)).
			Msg("failed to create notification")
	}
}

func (s *interactionService) status(ctx context.Context, r reaction, userID string, target domain.TargetRequest) (*domain.ToggleResult, error) {
	kind, id, err := validation.Target(target)
	if err != nil {
		return nil, err
	}
	active, err := r.repo.Exists(ctx, userID, kind, id)
	if err != nil {
		return nil, err
	}
	count, err := s.counters.Get(ctx, contentKey(r.counter, kind, id))
	if err != nil {
		return nil, err
	}
	return &domain.ToggleResult{Active: active, Count: count}, nil
}

var _ InteractionService = (*interactionService)(nil)
