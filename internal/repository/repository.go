package repository

import (
	"context"
	"errors"
	"time"

	"yatube/internal/model"
)

var ErrTokenNotFound = errors.New("token not found")

// PostFilter narrows a feed. Zero fields are ignored.
type PostFilter struct {
	GroupID    uint64
	AuthorID   uint64
	FollowerID uint64 // posts by authors this user follows
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	Update(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id uint64) (*model.Post, error)
	Count(ctx context.Context, f PostFilter) (int64, error)
	// List returns posts newest first with Author and Group loaded
	List(ctx context.Context, f PostFilter, offset, limit int) ([]model.Post, error)
}

type CommentRepository interface {
	// Create stores the comment and a comment event for the post author
	Create(ctx context.Context, c *model.Comment) error
	ListByPost(ctx context.Context, postID uint64) ([]model.Comment, error)
}

type FollowRepository interface {
	// Follow reports whether a new edge was created
	Follow(ctx context.Context, userID, authorID uint64) (bool, error)
	// Unfollow reports whether an edge was removed
	Unfollow(ctx context.Context, userID, authorID uint64) (bool, error)
	IsFollowing(ctx context.Context, userID, authorID uint64) (bool, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint64) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

type GroupRepository interface {
	Create(ctx context.Context, g *model.Group) error
	FindByID(ctx context.Context, id uint64) (*model.Group, error)
	FindBySlug(ctx context.Context, slug string) (*model.Group, error)
	List(ctx context.Context) ([]model.Group, error)
	// Delete removes the group; its posts keep existing without a group
	Delete(ctx context.Context, id uint64) error
}

type OutboxRepository interface {
	List(ctx context.Context, batchSize int) ([]model.SocialOutbox, error)
	RetryUpdate(ctx context.Context, id uint64) error
	SuccessUpdate(ctx context.Context, id uint64) error
}

// PageCache stores rendered responses by key
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
	Clear(ctx context.Context) error
}

// SessionStore keeps one live token per user
type SessionStore interface {
	AddUserToken(ctx context.Context, userID uint64, token string) error
	GetUserToken(ctx context.Context, userID uint64) (string, error)
	ExtendUserToken(ctx context.Context, userID uint64) error
	DeleteUserToken(ctx context.Context, userID uint64) error
}
