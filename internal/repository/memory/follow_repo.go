package memory

import (
	"context"

	"yatube/internal/model"
)

type FollowRepository struct {
	s *Store
}

type OutboxRepository struct {
	s *Store
}

func (r *FollowRepository) Follow(_ context.Context, userID, authorID uint64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := followKey{user: userID, author: authorID}
	if _, ok := r.s.follows[key]; ok {
		return false, nil
	}
	r.s.follows[key] = model.Follow{
		ID:        r.s.nextID(),
		UserID:    userID,
		AuthorID:  authorID,
		CreatedAt: r.s.now(),
	}
	r.s.insertOutbox(model.EventFollow, userID, authorID, 0)
	return true, nil
}

func (r *FollowRepository) Unfollow(_ context.Context, userID, authorID uint64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := followKey{user: userID, author: authorID}
	if _, ok := r.s.follows[key]; !ok {
		return false, nil
	}
	delete(r.s.follows, key)
	r.s.insertOutbox(model.EventUnfollow, userID, authorID, 0)
	return true, nil
}

func (r *FollowRepository) IsFollowing(_ context.Context, userID, authorID uint64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.follows[followKey{user: userID, author: authorID}]
	return ok, nil
}

// Count returns the number of follow edges
func (r *FollowRepository) Count() int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.follows)
}

func (r *OutboxRepository) List(_ context.Context, batchSize int) ([]model.SocialOutbox, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var list []model.SocialOutbox
	for _, ob := range r.s.outbox {
		if len(list) >= batchSize {
			break
		}
		if ob.Status == model.OutboxPending || (ob.Status == model.OutboxFailed && ob.Retry < model.OutboxMaxRetry) {
			list = append(list, ob)
		}
	}
	return list, nil
}

func (r *OutboxRepository) RetryUpdate(_ context.Context, id uint64) error {
	return r.update(id, func(ob *model.SocialOutbox) {
		ob.Status = model.OutboxFailed
		ob.Retry++
	})
}

func (r *OutboxRepository) SuccessUpdate(_ context.Context, id uint64) error {
	return r.update(id, func(ob *model.SocialOutbox) { ob.Status = model.OutboxSent })
}

func (r *OutboxRepository) update(id uint64, fn func(ob *model.SocialOutbox)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.outbox {
		if r.s.outbox[i].ID == id {
			fn(&r.s.outbox[i])
			r.s.outbox[i].UpdatedAt = r.s.now()
			return nil
		}
	}
	return model.ErrNotFound
}
