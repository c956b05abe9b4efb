// Package memory implements the passive short-term result cache: a bounded,
// per-project TTL/LRU store used to avoid recomputing identical vector-store
// queries. All state is volatile and process-local.
package memory

import (
	"container/list"
	"sync"
	"time"

	"memgate/pkg/keycodec"
)

const (
	// DefaultMaxSize bounds the number of live entries per project store.
	DefaultMaxSize = 1000
	// DefaultTTL applies when a caller omits a TTL or supplies a
	// non-positive one.
	DefaultTTL = time.Hour
)

// Stats is a read-only snapshot of one project store. Taking a snapshot
// never mutates the store; expired entries are counted, not removed.
type Stats struct {
	TotalEntries  int           `json:"total_entries"`
	ExpiredCount  int           `json:"expired_count"`
	ActiveEntries int           `json:"active_entries"`
	TotalAccesses int64         `json:"total_accesses"`
	MaxSize       int           `json:"max_size"`
	DefaultTTL    time.Duration `json:"default_ttl"`
}

// store is the cache for a single project scope. The list orders entries by
// recency: front is least recently touched, back is most recent. Every
// element holds a *storeItem.
type store struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List
}

type storeItem struct {
	key   string
	entry *Entry
}

func newStore() *store {
	return &store{
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Cache is the per-project TTL/LRU cache. The zero project name denotes the
// global, project-less scope; project scopes are created lazily on first use
// and are fully isolated from one another.
type Cache struct {
	maxSize    int
	defaultTTL time.Duration
	now        func() time.Time

	mu       sync.RWMutex
	global   *store
	projects map[string]*store
}

// NewCache creates a cache. Non-positive bounds fall back to the defaults.
func NewCache(maxSize int, defaultTTL time.Duration) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Cache{
		maxSize:    maxSize,
		defaultTTL: defaultTTL,
		now:        time.Now,
		global:     newStore(),
		projects:   make(map[string]*store),
	}
}

// scope returns the store for a project, creating it on first use.
func (c *Cache) scope(project string) *store {
	if project == "" {
		return c.global
	}

	c.mu.RLock()
	s, ok := c.projects[project]
	c.mu.RUnlock()
	if ok {
		return s
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.projects[project]; ok {
		return s
	}
	s = newStore()
	c.projects[project] = s
	return s
}

// Set writes an entry under key in the given project scope and returns the
// key. Expired entries are swept and the least recently touched entries are
// evicted before insertion so the store never exceeds its bound. A
// non-positive ttl is clamped to the configured default.
func (c *Cache) Set(key string, data interface{}, ttl time.Duration, project string) string {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	now := c.now()
	s := c.scope(project)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepExpired(now)

	// Overwrite in place keeps the key count stable; only net-new keys can
	// push the store over its bound.
	if elem, ok := s.entries[key]; ok {
		elem.Value.(*storeItem).entry = newEntry(data, ttl, now)
		s.order.MoveToBack(elem)
		return key
	}

	for len(s.entries) >= c.maxSize {
		s.evictOldest()
	}

	s.entries[key] = s.order.PushBack(&storeItem{key: key, entry: newEntry(data, ttl, now)})
	return key
}

// Get returns the payload stored under key, or a miss. Reading an expired
// entry deletes it. A hit updates the entry's access bookkeeping and moves
// it to the most-recently-used position.
func (c *Cache) Get(key string, project string) (interface{}, bool) {
	now := c.now()
	s := c.scope(project)

	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.entries[key]
	if !ok {
		return nil, false
	}

	item := elem.Value.(*storeItem)
	if item.entry.Expired(now) {
		s.order.Remove(elem)
		delete(s.entries, key)
		return nil, false
	}

	s.order.MoveToBack(elem)
	return item.entry.access(now), true
}

// CacheQueryResult stores a query result under the deterministic key derived
// from the (query, collection, project) triple.
func (c *Cache) CacheQueryResult(query string, result interface{}, collection, project string, ttl time.Duration) string {
	key := keycodec.QueryKey(query, collection, project)
	return c.Set(key, result, ttl, project)
}

// GetQueryResult looks up a previously cached query result by the same
// derived key CacheQueryResult writes under.
func (c *Cache) GetQueryResult(query, collection, project string) (interface{}, bool) {
	key := keycodec.QueryKey(query, collection, project)
	return c.Get(key, project)
}

// Stats returns a snapshot of the given project scope without touching any
// entry: expired entries stay in place until a Get or Set sweeps them.
func (c *Cache) Stats(project string) Stats {
	now := c.now()
	s := c.scope(project)

	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{
		TotalEntries: len(s.entries),
		MaxSize:      c.maxSize,
		DefaultTTL:   c.defaultTTL,
	}
	for _, elem := range s.entries {
		item := elem.Value.(*storeItem)
		if item.entry.Expired(now) {
			stats.ExpiredCount++
		}
		stats.TotalAccesses += item.entry.AccessCount
	}
	stats.ActiveEntries = stats.TotalEntries - stats.ExpiredCount
	return stats
}

// Clear removes every entry in one project scope. An empty project clears
// the global scope.
func (c *Cache) Clear(project string) {
	s := c.scope(project)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*list.Element)
	s.order.Init()
}

// ClearAllProjects drops every project-scoped store. The global scope is
// deliberately untouched.
func (c *Cache) ClearAllProjects() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projects = make(map[string]*store)
}

// PurgeExpired sweeps every scope and removes expired entries,
// returning how many were dropped.
func (c *Cache) PurgeExpired() int {
	now := c.now()

	c.mu.RLock()
	scopes := make([]*store, 0, len(c.projects)+1)
	scopes = append(scopes, c.global)
	for _, s := range c.projects {
		scopes = append(scopes, s)
	}
	c.mu.RUnlock()

	removed := 0
	for _, s := range scopes {
		s.mu.Lock()
		removed += s.sweepExpired(now)
		s.mu.Unlock()
	}
	return removed
}

// sweepExpired removes every expired entry and reports how many were
// dropped. Callers hold s.mu.
func (s *store) sweepExpired(now time.Time) int {
	removed := 0
	for elem := s.order.Front(); elem != nil; {
		next := elem.Next()
		item := elem.Value.(*storeItem)
		if item.entry.Expired(now) {
			s.order.Remove(elem)
			delete(s.entries, item.key)
			removed++
		}
		elem = next
	}
	return removed
}

// evictOldest drops the least recently touched entry. Callers hold s.mu.
func (s *store) evictOldest() {
	front := s.order.Front()
	if front == nil {
		return
	}
	item := front.Value.(*storeItem)
	s.order.Remove(front)
	delete(s.entries, item.key)
}
