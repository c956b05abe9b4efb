// Package swarm tracks pheromone trails over the operations flowing through
// the adapter: each distinct (operation, collection, query) pattern carries
// a strength that is reinforced on every occurrence and evaporates with
// time, so ranking trails by strength surfaces the currently hot patterns.
package swarm

import (
	"sort"
	"sync"
	"time"

	"memgate/pkg/keycodec"
)

const (
	// DefaultEvaporationRate is the strength lost per minute of idleness.
	DefaultEvaporationRate = 0.01
	// reinforcementAmount is the strength gained per tracked occurrence.
	reinforcementAmount = 0.1
	// patternWindow bounds the per-collection operation log.
	patternWindow = 100
	// recentPatterns is how many records a pattern summary echoes back.
	recentPatterns = 10
	// recentActivityAge is the cutoff for the recent-operations count.
	recentActivityAge = time.Hour
)

// PatternRecord is one entry of a collection's operation log.
type PatternRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Operation string    `json:"operation"`
	TrailID   string    `json:"trail_id"`
}

// HotTrail is one ranked entry returned by GetHotTrails.
type HotTrail struct {
	TrailID     string   `json:"trail_id"`
	Strength    float64  `json:"strength"`
	AccessCount int64    `json:"access_count"`
	Metadata    Metadata `json:"metadata"`
}

// PatternSummary aggregates a collection's operation log.
type PatternSummary struct {
	Collection       string          `json:"collection"`
	TotalOperations  int64           `json:"total_operations"`
	OperationCounts  map[string]int  `json:"operation_counts,omitempty"`
	RecentOperations int             `json:"recent_operations"`
	Patterns         []PatternRecord `json:"patterns"`
}

// Tracker owns every trail and the per-collection operation logs. A single
// mutex serializes all access; evaporation mutates trail state, so even the
// ranked read path takes the write side.
type Tracker struct {
	evaporationRate float64
	now             func() time.Time

	mu       sync.Mutex
	trails   map[string]*Trail
	patterns map[string][]PatternRecord
	totals   map[string]int64
}

// NewTracker creates a tracker. A non-positive rate falls back to the
// default.
func NewTracker(evaporationRate float64) *Tracker {
	if evaporationRate <= 0 {
		evaporationRate = DefaultEvaporationRate
	}
	return &Tracker{
		evaporationRate: evaporationRate,
		now:             time.Now,
		trails:          make(map[string]*Trail),
		patterns:        make(map[string][]PatternRecord),
		totals:          make(map[string]int64),
	}
}

// Track records one occurrence of an operation pattern and returns its
// trail id. The first occurrence creates the trail at full strength with
// its first-seen metadata; later occurrences reinforce it. The collection's
// operation log keeps the most recent records only.
func (t *Tracker) Track(operationType, collection, query string) string {
	trailID := keycodec.TrailID(operationType, collection, query)
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	trail, ok := t.trails[trailID]
	if !ok {
		trail = &Trail{
			ID:         trailID,
			LastUpdate: now,
			Metadata: Metadata{
				OperationType: operationType,
				Collection:    collection,
				Query:         query,
				FirstSeen:     now,
			},
		}
		trail.Strength = 1.0
		t.trails[trailID] = trail
	}
	// Every occurrence reinforces, the first one included; the cap makes
	// that first reinforcement a no-op on strength but it still counts the
	// access.
	trail.reinforce(reinforcementAmount, now)

	log := append(t.patterns[collection], PatternRecord{
		Timestamp: now,
		Operation: operationType,
		TrailID:   trailID,
	})
	if len(log) > patternWindow {
		log = log[len(log)-patternWindow:]
	}
	t.patterns[collection] = log
	t.totals[collection]++

	return trailID
}

// GetHotTrails evaporates every trail by its own idle time, then returns at
// most limit trails with strength >= minStrength, strongest first. A
// negative limit yields no results.
func (t *Tracker) GetHotTrails(minStrength float64, limit int) []HotTrail {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	hot := make([]HotTrail, 0, len(t.trails))
	for _, trail := range t.trails {
		trail.evaporate(t.evaporationRate, now)
		if trail.Strength >= minStrength {
			hot = append(hot, HotTrail{
				TrailID:     trail.ID,
				Strength:    trail.Strength,
				AccessCount: trail.AccessCount,
				Metadata:    trail.Metadata,
			})
		}
	}

	sort.SliceStable(hot, func(i, j int) bool {
		return hot[i].Strength > hot[j].Strength
	})
	if limit < 0 {
		limit = 0
	}
	if len(hot) > limit {
		hot = hot[:limit]
	}
	return hot
}

// Count reports how many trails are currently tracked.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.trails)
}

// GetCollectionPatterns summarizes a collection's operation log: counts by
// operation type over the retained window, activity within the last hour,
// and the last few raw records.
func (t *Tracker) GetCollectionPatterns(collection string) PatternSummary {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	summary := PatternSummary{
		Collection:      collection,
		TotalOperations: t.totals[collection],
		Patterns:        []PatternRecord{},
	}
	log := t.patterns[collection]
	if len(log) == 0 {
		return summary
	}

	summary.OperationCounts = make(map[string]int)
	for _, record := range log {
		summary.OperationCounts[record.Operation]++
		if now.Sub(record.Timestamp) < recentActivityAge {
			summary.RecentOperations++
		}
	}

	tail := log
	if len(tail) > recentPatterns {
		tail = tail[len(tail)-recentPatterns:]
	}
	summary.Patterns = append(summary.Patterns, tail...)
	return summary
}
