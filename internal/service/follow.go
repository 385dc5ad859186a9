package service

import (
	"context"
	"errors"

	"github.com/codegram/codegram-live/internal/audit"
	"github.com/codegram/codegram-live/internal/domain"
	"github.com/codegram/codegram-live/internal/realtime"
	"github.com/codegram/codegram-live/internal/repository"
	"github.com/codegram/codegram-live/pkg/log"
)

const (
	defaultFollowLimit     = 20
	maxFollowLimit         = 100
	defaultSuggestionLimit = 10
)

// followService implements FollowService.
type followService struct {
	follows       repository.FollowRepository
	blocks        repository.BlockRepository
	users         repository.UserRepository
	notifications NotificationService
	counters      *Counters
	rt            realtime.Broadcaster
}

// NewFollowService creates a new FollowService.
func NewFollowService(
	follows repository.FollowRepository,
	blocks repository.BlockRepository,
	users repository.UserRepository,
	notifications NotificationService,
	counters *Counters,
	rt realtime.Broadcaster,
) FollowService {
	return &followService{
		follows:       follows,
		blocks:        blocks,
		users:         users,
		notifications: notifications,
		counters:      counters,
		rt:            rt,
	}
}

// ToggleFollow follows or unfollows followingID. Following notifies the
// followee and pushes new-follower to their room.
func (s *followService) ToggleFollow(ctx context.Context, followerID, followingID string) (*domain.ToggleResult, error) {
	if followerID == followingID {
		return nil, ErrSelfFollow
	}
	if _, err := s.requireUser(ctx, followingID); err != nil {
		return nil, err
	}
	l := log.Ctx(ctx)
	key := followersKey(followingID)

	removed, err := s.follows.Unfollow(ctx, followerID, followingID)
	if err != nil {
		l.Error().Err(err).Str("follower_id", followerID).Str("following_id", followingID).Msg("failed to unfollow user")
		return nil, err
	}

	active := false
	if removed {
		s.counters.Decr(ctx, key)
	} else {
		created, err := s.follows.Follow(ctx, followerID, followingID)
		if err != nil {
			return nil, err
		}
		active = true
		if created {
			s.counters.Incr(ctx, key)
			s.announceFollow(ctx, followerID, followingID)
		}
	}
	audit.LogToggle(ctx, audit.ActionFollow, followerID, followingID, active)

	count, err := s.counters.Get(ctx, key)
	if err != nil {
		l.Warn().Err(err).Str(log.FieldUserID, followingID).Msg("failed to read follower count after toggle")
	}
	return &domain.ToggleResult{Active: active, Count: count}, nil
}

func (s *followService) announceFollow(ctx context.Context, followerID, followingID string) {
	l := log.Ctx(ctx)

	_, err := s.notifications.Create(ctx, domain.NotificationInput{
		RecipientID: followingID,
		SenderID:    followerID,
		Type:        domain.NotificationFollow,
	})
	if err != nil {
		l.Error().Err(err).Str("following_id", followingID).Msg("failed to create follow notification")
	}

	follower, err := s.users.GetByID(ctx, followerID)
	if err != nil {
		l.Warn().Err(err).Str("follower_id", followerID).Msg("failed to load follower for push")
		return
	}
	if err := s.rt.EmitToRoom(ctx, realtime.UserRoom(followingID), domain.EventNewFollower, follower.Summary()); err != nil {
		l.Error().Err(err).Str("following_id", followingID).Msg("failed to push new follower")
	}
}

func (s *followService) requireUser(ctx context.Context, userID string) (*domain.UserModel, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *followService) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	return s.follows.IsFollowing(ctx, followerID, followingID)
}

func (s *followService) Followers(ctx context.Context, userID string, page, limit int) (*domain.Page[domain.UserSummary], error) {
	page, limit = clampPage(page, limit, defaultFollowLimit, maxFollowLimit)
	users, total, err := s.follows.Followers(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}
	p := domain.NewPage(users, total, page, limit)
	return &p, nil
}

func (s *followService) Following(ctx context.Context, userID string, page, limit int) (*domain.Page[domain.UserSummary], error) {
	page, limit = clampPage(page, limit, defaultFollowLimit, maxFollowLimit)
	users, total, err := s.follows.Following(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}
	p := domain.NewPage(users, total, page, limit)
	return &p, nil
}

// Stats returns follower and following counts; the follower count is cached.
func (s *followService) Stats(ctx context.Context, userID string) (*domain.FollowStats, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	followers, err := s.counters.Get(ctx, followersKey(userID))
	if err != nil {
		return nil, err
	}
	following, err := s.follows.FollowingCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.FollowStats{Followers: followers, Following: following}, nil
}

func (s *followService) Suggestions(ctx context.Context, userID string, limit int) ([]domain.UserProfile, error) {
	_, limit = clampPage(1, limit, defaultSuggestionLimit, maxFollowLimit)
	return s.users.Suggestions(ctx, userID, limit)
}

// ToggleBlock blocks or unblocks blockedID and returns the new state.
// Blocks only affect suggestions.
func (s *followService) ToggleBlock(ctx context.Context, blockerID, blockedID string) (bool, error) {
	if blockerID == blockedID {
		return false, ErrSelfBlock
	}
	if _, err := s.requireUser(ctx, blockedID); err != nil {
		return false, err
	}

	removed, err := s.blocks.Unblock(ctx, blockerID, blockedID)
	if err != nil {
		return false, err
	}
	active := !removed
	if active {
		if _, err := s.blocks.Block(ctx, blockerID, blockedID); err != nil {
			return false, err
		}
	}
	audit.LogToggle(ctx, audit.ActionBlock, blockerID, blockedID, active)
	return active, nil
}

var _ FollowService = (*followService)(nil)
