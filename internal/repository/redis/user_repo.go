package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"yatube/internal/repository"
)

var (
	ErrRedisUnavailable = errors.New("redis unavailable")
	ErrExtendFailed     = errors.New("token extend failed")
	ErrTokenDeleted     = errors.New("token delete failed")
)

const UserTokenPrefix = "login:user:token"

// SessionStore keeps one login token per user
type SessionStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func (r *SessionStore) key(userID uint64) string {
	return fmt.Sprintf("%s:%d", UserTokenPrefix, userID)
}

func (r *SessionStore) AddUserToken(ctx context.Context, userID uint64, token string) error {
	if err := r.Client.Set(ctx, r.key(userID), token, r.TTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (r *SessionStore) GetUserToken(ctx context.Context, userID uint64) (string, error) {
	token, err := r.Client.Get(ctx, r.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", repository.ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return token, nil
}

func (r *SessionStore) ExtendUserToken(ctx context.Context, userID uint64) error {
	ok, err := r.Client.Expire(ctx, r.key(userID), r.TTL).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExtendFailed, err)
	}
	if !ok {
		return repository.ErrTokenNotFound
	}
	return nil
}

func (r *SessionStore) DeleteUserToken(ctx context.Context, userID uint64) error {
	if err := r.Client.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrTokenDeleted, err)
	}
	return nil
}
