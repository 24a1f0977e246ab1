package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	sess      Session
	expiresAt time.Time
}

// MemoryStore is an in-memory Store for development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Save(ctx context.Context, id string, sess Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := memoryEntry{sess: sess}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	s.sessions[id] = entry
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Session, error) {
	s.mu.RLock()
	entry, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return Session{}, ErrNotFound
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return Session{}, ErrNotFound
	}
	return entry.sess, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// MemoryCache is an in-memory Cache for development and tests.
type MemoryCache struct {
	mu    sync.RWMutex
	pages map[string]memoryPage
}

type memoryPage struct {
	data      []byte
	expiresAt time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{pages: make(map[string]memoryPage)}
}

func (c *MemoryCache) PutPage(ctx context.Context, sessionID, view string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	page := memoryPage{data: append([]byte(nil), data...)}
	if ttl > 0 {
		page.expiresAt = time.Now().Add(ttl)
	}
	c.pages[cacheKey(sessionID, view)] = page
	return nil
}

func (c *MemoryCache) GetPage(ctx context.Context, sessionID, view string) ([]byte, error) {
	c.mu.RLock()
	page, ok := c.pages[cacheKey(sessionID, view)]
	c.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if !page.expiresAt.IsZero() && time.Now().After(page.expiresAt) {
		c.mu.Lock()
		delete(c.pages, cacheKey(sessionID, view))
		c.mu.Unlock()
		return nil, ErrNotFound
	}
	return page.data, nil
}

func (c *MemoryCache) DropPage(ctx context.Context, sessionID, view string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pages, cacheKey(sessionID, view))
	return nil
}
