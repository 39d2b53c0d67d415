package memory

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"yatube/internal/repository"
)

type cachedPage struct {
	body    []byte
	expires time.Time
}

// PageCache is an in-process LRU page cache. maxTTL bounds every entry.
type PageCache struct {
	lru *expirable.LRU[string, cachedPage]
}

func NewPageCache(size int, maxTTL time.Duration) *PageCache {
	return &PageCache{lru: expirable.NewLRU[string, cachedPage](size, nil, maxTTL)}
}

func (c *PageCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	page, ok := c.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(page.expires) {
		c.lru.Remove(key)
		return nil, false, nil
	}
	return page.body, true, nil
}

func (c *PageCache) Set(_ context.Context, key string, body []byte, ttl time.Duration) error {
	buf := make([]byte, len(body))
	copy(buf, body)
	c.lru.Add(key, cachedPage{body: buf, expires: time.Now().Add(ttl)})
	return nil
}

func (c *PageCache) Clear(_ context.Context) error {
	c.lru.Purge()
	return nil
}

// SessionStore keeps session tokens in process with a sliding TTL
type SessionStore struct {
	lru *expirable.LRU[uint64, string]
}

// NewSessionStore keeps at most size live sessions; size 0 means no limit
func NewSessionStore(size int, ttl time.Duration) *SessionStore {
	return &SessionStore{lru: expirable.NewLRU[uint64, string](size, nil, ttl)}
}

func (s *SessionStore) AddUserToken(_ context.Context, userID uint64, token string) error {
	s.lru.Add(userID, token)
	return nil
}

func (s *SessionStore) GetUserToken(_ context.Context, userID uint64) (string, error) {
	token, ok := s.lru.Get(userID)
	if !ok {
		return "", repository.ErrTokenNotFound
	}
	return token, nil
}

// ExtendUserToken re-adds the token, which resets its expiry
func (s *SessionStore) ExtendUserToken(_ context.Context, userID uint64) error {
	token, ok := s.lru.Get(userID)
	if !ok {
		return repository.ErrTokenNotFound
	}
	s.lru.Add(userID, token)
	return nil
}

func (s *SessionStore) DeleteUserToken(_ context.Context, userID uint64) error {
	s.lru.Remove(userID)
	return nil
}
