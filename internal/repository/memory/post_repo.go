package memory

import (
	"context"

	"yatube/internal/model"
	"yatube/internal/repository"
)

type PostRepository struct {
	s *Store
}

func (r *PostRepository) Create(_ context.Context, post *model.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	post.ID = r.s.nextID()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = r.s.now()
	}
	stored := *post
	stored.Author = model.User{}
	stored.Group = nil
	r.s.posts[post.ID] = stored
	return nil
}

func (r *PostRepository) Update(_ context.Context, post *model.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.posts[post.ID]
	if !ok {
		return model.ErrNotFound
	}
	stored.Text = post.Text
	stored.GroupID = post.GroupID
	stored.Image = post.Image
	r.s.posts[post.ID] = stored
	return nil
}

func (r *PostRepository) FindByID(_ context.Context, id uint64) (*model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	p = r.s.hydrate(p)
	return &p, nil
}

func (r *PostRepository) Count(_ context.Context, f repository.PostFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, p := range r.s.posts {
		if r.s.match(p, f) {
			n++
		}
	}
	return n, nil
}

func (r *PostRepository) List(_ context.Context, f repository.PostFilter, offset, limit int) ([]model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := r.s.filtered(f)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	page := make([]model.Post, 0, end-offset)
	for _, p := range all[offset:end] {
		page = append(page, r.s.hydrate(p))
	}
	return page, nil
}
