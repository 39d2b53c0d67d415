package memory

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"yatube/internal/model"
	"yatube/internal/repository"
)

type followKey struct {
	user, author uint64
}

// Store is an in-process database shared by the memory repositories
type Store struct {
	mu       sync.RWMutex
	seq      uint64
	users    map[uint64]model.User
	groups   map[uint64]model.Group
	posts    map[uint64]model.Post
	comments map[uint64]model.Comment
	follows  map[followKey]model.Follow
	outbox   []model.SocialOutbox
	now      func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:    make(map[uint64]model.User),
		groups:   make(map[uint64]model.Group),
		posts:    make(map[uint64]model.Post),
		comments: make(map[uint64]model.Comment),
		follows:  make(map[followKey]model.Follow),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) nextID() uint64 {
	s.seq++
	return s.seq
}

// Repositories returns every repository backed by this store
func (s *Store) Repositories() (*UserRepository, *GroupRepository, *PostRepository, *CommentRepository, *FollowRepository, *OutboxRepository) {
	return &UserRepository{s: s}, &GroupRepository{s: s}, &PostRepository{s: s},
		&CommentRepository{s: s}, &FollowRepository{s: s}, &OutboxRepository{s: s}
}

func (s *Store) insertOutbox(event string, actor, target, postID uint64) {
	now := s.now()
	payload, _ := json.Marshal(model.EventPayload{
		EventTime: now.Format(time.RFC3339Nano),
		Event:     event,
		Actor:     actor,
		Target:    target,
		PostID:    postID,
	})
	s.outbox = append(s.outbox, model.SocialOutbox{
		ID:        s.nextID(),
		EventType: event,
		ActorID:   actor,
		TargetID:  target,
		PostID:    postID,
		Payload:   string(payload),
		Status:    model.OutboxPending,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// hydrate fills Author and Group. Caller holds the lock.
func (s *Store) hydrate(p model.Post) model.Post {
	p.Author = s.users[p.AuthorID]
	p.Group = nil
	if p.GroupID != nil {
		if g, ok := s.groups[*p.GroupID]; ok {
			p.Group = &g
		}
	}
	return p
}

func (s *Store) match(p model.Post, f repository.PostFilter) bool {
	if f.GroupID > 0 && (p.GroupID == nil || *p.GroupID != f.GroupID) {
		return false
	}
	if f.AuthorID > 0 && p.AuthorID != f.AuthorID {
		return false
	}
	if f.FollowerID > 0 {
		if _, ok := s.follows[followKey{user: f.FollowerID, author: p.AuthorID}]; !ok {
			return false
		}
	}
	return true
}

func (s *Store) filtered(f repository.PostFilter) []model.Post {
	var out []model.Post
	for _, p := range s.posts {
		if s.match(p, f) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}
