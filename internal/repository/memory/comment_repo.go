package memory

import (
	"context"
	"sort"

	"yatube/internal/model"
)

type CommentRepository struct {
	s *Store
}

func (r *CommentRepository) Create(_ context.Context, c *model.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	post, ok := r.s.posts[c.PostID]
	if !ok {
		return model.ErrNotFound
	}
	c.ID = r.s.nextID()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.s.now()
	}
	stored := *c
	stored.Author = model.User{}
	stored.Post = nil
	r.s.comments[c.ID] = stored
	r.s.insertOutbox(model.EventComment, c.AuthorID, post.AuthorID, c.PostID)
	return nil
}

func (r *CommentRepository) ListByPost(_ context.Context, postID uint64) ([]model.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var list []model.Comment
	for _, c := range r.s.comments {
		if c.PostID == postID {
			c.Author = r.s.users[c.AuthorID]
			list = append(list, c)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}
