package rdb

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yatube/internal/model"
	"yatube/internal/repository"
)

type PostRepository struct {
	DB *gorm.DB
}

func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(post).Error
}

// Update writes the editable fields only; author and created_at never change
func (r *PostRepository) Update(ctx context.Context, post *model.Post) error {
	return r.DB.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]any{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		}).Error
}

func (r *PostRepository) FindByID(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := r.DB.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&post, id).Error
	return &post, notFound(err)
}

func (r *PostRepository) Count(ctx context.Context, f repository.PostFilter) (int64, error) {
	var n int64
	err := r.filtered(ctx, f).Model(&model.Post{}).Count(&n).Error
	return n, err
}

// List returns one page of the filtered feed
func (r *PostRepository) List(ctx context.Context, f repository.PostFilter, offset, limit int) ([]model.Post, error) {
	var list []model.Post
	err := r.filtered(ctx, f).
		Preload("Author").
		Preload("Group").
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *PostRepository) filtered(ctx context.Context, f repository.PostFilter) *gorm.DB {
	q := r.DB.WithContext(ctx)
	if f.GroupID > 0 {
		q = q.Where("group_id = ?", f.GroupID)
	}
	if f.AuthorID > 0 {
		q = q.Where("author_id = ?", f.AuthorID)
	}
	if f.FollowerID > 0 {
		q = q.Where("author_id IN (?)", followedAuthors(q, f.FollowerID))
	}
	return q
}

// followedAuthors selects the authors followerID follows, on q's context
func followedAuthors(q *gorm.DB, followerID uint64) *gorm.DB {
	return q.Session(&gorm.Session{NewDB: true}).
		Model(&model.Follow{}).
		Select("author_id").
		Where("user_id = ?", followerID)
}
