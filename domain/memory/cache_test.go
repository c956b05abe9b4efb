package memory

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests advance time without sleeping.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time          { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestCache(maxSize int, ttl time.Duration) (*Cache, *fakeClock) {
	clock := newFakeClock()
	c := NewCache(maxSize, ttl)
	c.now = clock.Now
	return c, clock
}

func TestCache_SetGet(t *testing.T) {
	c, _ := newTestCache(10, time.Hour)

	key := c.Set("k", "v", 0, "")
	assert.Equal(t, "k", key)

	got, ok := c.Get("k", "")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	_, ok = c.Get("absent", "")
	assert.False(t, ok)
}

func TestCache_TTLExpiry(t *testing.T) {
	c, clock := newTestCache(10, time.Hour)

	c.Set("k", "v", time.Second, "")

	// Retrievable strictly before the deadline.
	clock.Advance(999 * time.Millisecond)
	got, ok := c.Get("k", "")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	// Miss at exactly the deadline, and the entry is removed as a side
	// effect of the read.
	clock.Advance(time.Millisecond)
	_, ok = c.Get("k", "")
	assert.False(t, ok)

	_, ok = c.Get("k", "")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Stats("").TotalEntries)
}

func TestCache_LRUBound(t *testing.T) {
	c, _ := newTestCache(3, time.Hour)

	for i := 0; i < 10; i++ {
		c.Set(fmt.Sprintf("k%d", i), i, 0, "")
		assert.LessOrEqual(t, c.Stats("").TotalEntries, 3)
	}

	// Only the three most recently written keys survive.
	for i := 0; i < 7; i++ {
		_, ok := c.Get(fmt.Sprintf("k%d", i), "")
		assert.False(t, ok, "k%d should have been evicted", i)
	}
	for i := 7; i < 10; i++ {
		_, ok := c.Get(fmt.Sprintf("k%d", i), "")
		assert.True(t, ok, "k%d should still be live", i)
	}
}

func TestCache_GetRefreshesRecency(t *testing.T) {
	c, _ := newTestCache(3, time.Hour)

	c.Set("a", 1, 0, "")
	c.Set("b", 2, 0, "")
	c.Set("c", 3, 0, "")

	// Touch the oldest entry, then overflow: "b" is now the least recently
	// touched and must be the one evicted.
	_, ok := c.Get("a", "")
	require.True(t, ok)

	c.Set("d", 4, 0, "")

	_, ok = c.Get("b", "")
	assert.False(t, ok)
	_, ok = c.Get("a", "")
	assert.True(t, ok)
	_, ok = c.Get("c", "")
	assert.True(t, ok)
	_, ok = c.Get("d", "")
	assert.True(t, ok)
}

func TestCache_OverwriteDoesNotEvict(t *testing.T) {
	c, _ := newTestCache(2, time.Hour)

	c.Set("a", 1, 0, "")
	c.Set("b", 2, 0, "")
	c.Set("a", 10, 0, "")

	got, ok := c.Get("a", "")
	require.True(t, ok)
	assert.Equal(t, 10, got)
	_, ok = c.Get("b", "")
	assert.True(t, ok)
}

func TestCache_SetSweepsExpiredBeforeEvicting(t *testing.T) {
	c, clock := newTestCache(2, time.Hour)

	c.Set("short", 1, time.Second, "")
	c.Set("long", 2, time.Hour, "")
	clock.Advance(2 * time.Second)

	// The expired entry is swept, so the live one survives the insert.
	c.Set("new", 3, time.Hour, "")

	_, ok := c.Get("short", "")
	assert.False(t, ok)
	_, ok = c.Get("long", "")
	assert.True(t, ok)
	_, ok = c.Get("new", "")
	assert.True(t, ok)
}

func TestCache_PurgeExpired(t *testing.T) {
	c, clock := newTestCache(10, time.Hour)

	c.Set("global-short", 1, time.Minute, "")
	c.Set("global-long", 2, time.Hour, "")
	c.Set("proj-short", 3, time.Minute, "proj-1")
	clock.Advance(5 * time.Minute)

	removed := c.PurgeExpired()
	assert.Equal(t, 2, removed)

	stats := c.Stats("")
	assert.Equal(t, 1, stats.TotalEntries)
	assert.Equal(t, 0, c.Stats("proj-1").TotalEntries)
}

func TestCache_QueryResultRoundTrip(t *testing.T) {
	c, _ := newTestCache(10, time.Hour)

	result := map[string]interface{}{"documents": []string{"d1", "d2"}}
	c.CacheQueryResult("find docs", result, "papers", "proj-1", 0)

	got, ok := c.GetQueryResult("find docs", "papers", "proj-1")
	require.True(t, ok)
	assert.Equal(t, result, got)

	// Other scopes and collections do not see it.
	_, ok = c.GetQueryResult("find docs", "papers", "proj-2")
	assert.False(t, ok)
	_, ok = c.GetQueryResult("find docs", "other", "proj-1")
	assert.False(t, ok)
}

func TestCache_ProjectIsolation(t *testing.T) {
	c, _ := newTestCache(10, time.Hour)

	c.Set("k", "global", 0, "")
	c.Set("k", "one", 0, "p1")
	c.Set("k", "two", 0, "p2")

	got, _ := c.Get("k", "p1")
	assert.Equal(t, "one", got)
	got, _ = c.Get("k", "p2")
	assert.Equal(t, "two", got)
	got, _ = c.Get("k", "")
	assert.Equal(t, "global", got)

	c.Clear("p1")
	_, ok := c.Get("k", "p1")
	assert.False(t, ok)
	_, ok = c.Get("k", "p2")
	assert.True(t, ok)

	// ClearAllProjects leaves the global scope alone.
	c.ClearAllProjects()
	_, ok = c.Get("k", "p2")
	assert.False(t, ok)
	got, ok = c.Get("k", "")
	require.True(t, ok)
	assert.Equal(t, "global", got)
}

func TestCache_StatsDoesNotMutate(t *testing.T) {
	c, clock := newTestCache(10, time.Hour)

	c.Set("live", 1, time.Hour, "")
	c.Set("dead", 2, time.Second, "")
	c.Get("live", "")
	c.Get("live", "")
	clock.Advance(2 * time.Second)

	stats := c.Stats("")
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 1, stats.ExpiredCount)
	assert.Equal(t, 1, stats.ActiveEntries)
	assert.Equal(t, int64(2), stats.TotalAccesses)
	assert.Equal(t, 10, stats.MaxSize)
	assert.Equal(t, time.Hour, stats.DefaultTTL)

	// Stats is read-only: the expired entry is still present afterward.
	assert.Equal(t, 2, c.Stats("").TotalEntries)
}

func TestCache_EndToEndScenario(t *testing.T) {
	c, clock := newTestCache(DefaultMaxSize, DefaultTTL)

	c.Set("k", "v", time.Second, "")
	got, ok := c.Get("k", "")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	clock.Advance(1100 * time.Millisecond)
	_, ok = c.Get("k", "")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Stats("").TotalEntries)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := NewCache(100, time.Hour)

	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			project := fmt.Sprintf("p%d", g%2)
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("k%d", i%150)
				c.Set(key, i, 0, project)
				c.Get(key, project)
				c.Stats(project)
			}
		}(g)
	}
	for g := 0; g < 8; g++ {
		<-done
	}

	assert.LessOrEqual(t, c.Stats("p0").TotalEntries, 100)
	assert.LessOrEqual(t, c.Stats("p1").TotalEntries, 100)
}
