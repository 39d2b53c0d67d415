package rdb

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yatube/internal/model"
)

type CommentRepository struct {
	DB *gorm.DB
}

// Create stores the comment and its outbox event in one transaction
func (r *CommentRepository) Create(ctx context.Context, c *model.Comment) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var authorID uint64
		if err := tx.Model(&model.Post{}).Select("author_id").
			Where("id = ?", c.PostID).Scan(&authorID).Error; err != nil {
			return err
		}
		if authorID == 0 {
			return model.ErrNotFound
		}
		if err := tx.Omit(clause.Associations).Create(c).Error; err != nil {
			return err
		}
		return insertOutbox(tx, model.EventComment, c.AuthorID, authorID, c.PostID)
	})
}

func (r *CommentRepository) ListByPost(ctx context.Context, postID uint64) ([]model.Comment, error) {
	var list []model.Comment
	err := r.DB.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&list).Error
	return list, err
}
