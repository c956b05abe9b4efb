package swarm

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time          { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestTracker(rate float64) (*Tracker, *fakeClock) {
	clock := newFakeClock()
	tr := NewTracker(rate)
	tr.now = clock.Now
	return tr, clock
}

func TestTrack_CreatesAtFullStrength(t *testing.T) {
	tr, _ := newTestTracker(0)

	id := tr.Track("query", "docs", "recent errors")
	assert.Len(t, id, 16)

	hot := tr.GetHotTrails(0, 10)
	require.Len(t, hot, 1)
	assert.Equal(t, id, hot[0].TrailID)
	assert.Equal(t, 1.0, hot[0].Strength)
	assert.Equal(t, int64(1), hot[0].AccessCount)
	assert.Equal(t, "query", hot[0].Metadata.OperationType)
	assert.Equal(t, "docs", hot[0].Metadata.Collection)
	assert.Equal(t, "recent errors", hot[0].Metadata.Query)
}

func TestTrack_SameTripleSameTrail(t *testing.T) {
	tr, _ := newTestTracker(0)

	id1 := tr.Track("query", "docs", "q")
	id2 := tr.Track("query", "docs", "q")
	assert.Equal(t, id1, id2)

	assert.NotEqual(t, id1, tr.Track("insert", "docs", "q"))
	assert.NotEqual(t, id1, tr.Track("query", "other", "q"))
	assert.NotEqual(t, id1, tr.Track("query", "docs", ""))
}

func TestTrack_ReinforcementCapsAtOne(t *testing.T) {
	tr, clock := newTestTracker(DefaultEvaporationRate)

	id := tr.Track("query", "docs", "q")

	// Let the trail decay, then reinforce it twice: two tracks recover more
	// strength than one, bounded by 1.0.
	clock.Advance(30 * time.Minute)
	decayed := tr.GetHotTrails(0, 10)[0].Strength
	require.InDelta(t, 0.7, decayed, 1e-9)

	tr.Track("query", "docs", "q")
	once := tr.GetHotTrails(0, 10)[0].Strength
	tr.Track("query", "docs", "q")
	twice := tr.GetHotTrails(0, 10)[0].Strength

	assert.Greater(t, once, decayed)
	assert.Greater(t, twice, once)
	assert.LessOrEqual(t, twice, 1.0)

	// Many more never push past the cap.
	for i := 0; i < 10; i++ {
		tr.Track("query", "docs", "q")
	}
	assert.Equal(t, 1.0, tr.GetHotTrails(0, 10)[0].Strength)
	assert.Equal(t, id, tr.GetHotTrails(0, 10)[0].TrailID)
}

func TestGetHotTrails_EvaporationFloorsAtZero(t *testing.T) {
	tr, clock := newTestTracker(DefaultEvaporationRate)

	tr.Track("query", "docs", "q")

	clock.Advance(10 * time.Minute)
	first := tr.GetHotTrails(0, 10)[0].Strength
	assert.InDelta(t, 0.9, first, 1e-9)

	// Evaporation is relative to the trail's own last update, so an
	// immediate second read sees no further decay.
	again := tr.GetHotTrails(0, 10)[0].Strength
	assert.InDelta(t, first, again, 1e-9)

	// Far past total evaporation the trail persists at strength zero.
	clock.Advance(48 * time.Hour)
	hot := tr.GetHotTrails(0, 10)
	require.Len(t, hot, 1)
	assert.Equal(t, 0.0, hot[0].Strength)
}

func TestGetHotTrails_FilterSortLimit(t *testing.T) {
	tr, clock := newTestTracker(DefaultEvaporationRate)

	tr.Track("query", "docs", "old")
	clock.Advance(40 * time.Minute)
	tr.Track("query", "docs", "mid")
	clock.Advance(20 * time.Minute)
	tr.Track("query", "docs", "fresh")

	hot := tr.GetHotTrails(0, 10)
	require.Len(t, hot, 3)
	assert.Equal(t, "fresh", hot[0].Metadata.Query)
	assert.Equal(t, "mid", hot[1].Metadata.Query)
	assert.Equal(t, "old", hot[2].Metadata.Query)

	// Threshold filters the decayed one out.
	strong := tr.GetHotTrails(0.5, 10)
	require.Len(t, strong, 2)

	// Limit truncates after sorting; a negative limit clamps to none.
	assert.Len(t, tr.GetHotTrails(0, 1), 1)
	assert.Empty(t, tr.GetHotTrails(0, -3))
}

func TestGetCollectionPatterns(t *testing.T) {
	tr, clock := newTestTracker(0)

	for i := 0; i < 3; i++ {
		tr.Track("query", "docs", fmt.Sprintf("q%d", i))
	}
	tr.Track("insert", "docs", "")
	clock.Advance(2 * time.Hour)
	tr.Track("query", "docs", "late")

	summary := tr.GetCollectionPatterns("docs")
	assert.Equal(t, "docs", summary.Collection)
	assert.Equal(t, int64(5), summary.TotalOperations)
	assert.Equal(t, map[string]int{"query": 4, "insert": 1}, summary.OperationCounts)
	// Only the post-advance record is within the last hour.
	assert.Equal(t, 1, summary.RecentOperations)
	assert.Len(t, summary.Patterns, 5)

	empty := tr.GetCollectionPatterns("unknown")
	assert.Equal(t, int64(0), empty.TotalOperations)
	assert.Empty(t, empty.Patterns)
}

func TestGetCollectionPatterns_WindowBounded(t *testing.T) {
	tr, _ := newTestTracker(0)

	for i := 0; i < 250; i++ {
		tr.Track("query", "docs", fmt.Sprintf("q%d", i))
	}

	summary := tr.GetCollectionPatterns("docs")
	assert.Equal(t, int64(250), summary.TotalOperations)

	// The retained window is bounded; counts reflect the window, the
	// echoed records only the newest few.
	total := 0
	for _, n := range summary.OperationCounts {
		total += n
	}
	assert.Equal(t, 100, total)
	assert.Len(t, summary.Patterns, 10)
	assert.Equal(t, "query", summary.Patterns[9].Operation)
}

func TestTracker_ConcurrentUse(t *testing.T) {
	tr := NewTracker(DefaultEvaporationRate)

	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 300; i++ {
				tr.Track("query", fmt.Sprintf("c%d", g%3), fmt.Sprintf("q%d", i%20))
				if i%50 == 0 {
					tr.GetHotTrails(0.1, 5)
					tr.GetCollectionPatterns(fmt.Sprintf("c%d", g%3))
				}
			}
		}(g)
	}
	for g := 0; g < 8; g++ {
		<-done
	}

	assert.NotEmpty(t, tr.GetHotTrails(0, 100))
}
