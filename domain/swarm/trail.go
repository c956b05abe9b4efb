package swarm

import "time"

// Metadata carries the descriptive fields captured when a trail is first
// seen. It is immutable after creation.
type Metadata struct {
	OperationType string    `json:"operation_type"`
	Collection    string    `json:"collection"`
	Query         string    `json:"query"`
	FirstSeen     time.Time `json:"first_seen"`
}

// Trail is a decaying-reinforcement score for one recurring operation
// pattern. Strength stays within [0, 1]; trails are never deleted, a fully
// evaporated trail idles at zero until reinforced again.
type Trail struct {
	ID          string
	Strength    float64
	AccessCount int64
	LastUpdate  time.Time
	Metadata    Metadata
}

// reinforce bumps the strength by amount, capped at 1.0.
func (t *Trail) reinforce(amount float64, now time.Time) {
	t.Strength = min(1.0, t.Strength+amount)
	t.LastUpdate = now
	t.AccessCount++
}

// evaporate applies time-proportional decay since the trail's own last
// update, floored at zero. The update timestamp advances so repeated reads
// do not compound the same elapsed interval.
func (t *Trail) evaporate(ratePerMinute float64, now time.Time) {
	elapsed := now.Sub(t.LastUpdate).Minutes()
	if elapsed <= 0 {
		return
	}
	t.Strength = max(0.0, t.Strength-ratePerMinute*elapsed)
	t.LastUpdate = now
}
