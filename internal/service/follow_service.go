package service

import (
	"context"

	"go.uber.org/zap"

	"yatube/internal/repository"
	"yatube/pkg/logging"
)

type FollowService struct {
	follows repository.FollowRepository
	users   repository.UserRepository
	log     *zap.Logger
}

func NewFollowService(follows repository.FollowRepository, users repository.UserRepository) *FollowService {
	return &FollowService{follows: follows, users: users, log: logging.WithComponent("follow_service")}
}

// Follow subscribes userID to username's posts. Self-follow and repeats are no-ops.
func (s *FollowService) Follow(ctx context.Context, userID uint64, username string) error {
	author, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if author.ID == userID {
		return nil
	}
	changed, err := s.follows.Follow(ctx, userID, author.ID)
	if err != nil {
		return err
	}
	if changed {
		s.log.Info("follow", zap.Uint64("user_id", userID), zap.Uint64("author_id", author.ID))
	}
	return nil
}

// Unfollow removes the subscription if there is one
func (s *FollowService) Unfollow(ctx context.Context, userID uint64, username string) error {
	author, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	changed, err := s.follows.Unfollow(ctx, userID, author.ID)
	if err != nil {
		return err
	}
	if changed {
		s.log.Info("unfollow", zap.Uint64("user_id", userID), zap.Uint64("author_id", author.ID))
	}
	return nil
}
