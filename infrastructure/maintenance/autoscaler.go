package maintenance

import (
	"sync"
	"time"
)

// metricsHistorySize bounds the retained samples.
const metricsHistorySize = 100

// Sample is one observation of system load.
type Sample struct {
	Timestamp     time.Time `json:"timestamp"`
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryPercent float64   `json:"memory_percent"`
}

// Recommendation is the scaling advice derived from recent samples.
type Recommendation struct {
	ScaleUp         bool   `json:"scale_up"`
	ScaleDown       bool   `json:"scale_down"`
	Reason          string `json:"reason,omitempty"`
	SuggestedAction string `json:"suggested_action,omitempty"`
}

// AutoScaler keeps a bounded history of load samples and recommends
// scaling actions from them.
type AutoScaler struct {
	now func() time.Time

	mu      sync.Mutex
	history []Sample
}

// NewAutoScaler creates an AutoScaler with empty history.
func NewAutoScaler() *AutoScaler {
	return &AutoScaler{now: time.Now}
}

// Analyze records a sample and returns a recommendation. High CPU or
// memory suggests scaling up; a sustained stretch of low CPU suggests
// scaling down.
func (a *AutoScaler) Analyze(cpuPercent, memoryPercent float64) Recommendation {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.history = append(a.history, Sample{
		Timestamp:     a.now(),
		CPUPercent:    cpuPercent,
		MemoryPercent: memoryPercent,
	})
	if len(a.history) > metricsHistorySize {
		a.history = a.history[len(a.history)-metricsHistorySize:]
	}

	var rec Recommendation

	if cpuPercent > 80 {
		rec.ScaleUp = true
		rec.Reason = "High CPU usage detected"
		rec.SuggestedAction = "increase_workers"
	} else if cpuPercent < 20 && len(a.history) > 10 {
		recent := a.history[len(a.history)-10:]
		sustained := true
		for _, s := range recent {
			if s.CPUPercent >= 30 {
				sustained = false
				break
			}
		}
		if sustained {
			rec.ScaleDown = true
			rec.Reason = "Consistently low CPU usage"
			rec.SuggestedAction = "decrease_workers"
		}
	}

	if memoryPercent > 85 {
		rec.ScaleUp = true
		rec.ScaleDown = false
		rec.Reason = "High memory usage detected"
		rec.SuggestedAction = "increase_memory_limit"
	}

	return rec
}

// History returns a copy of the retained samples.
func (a *AutoScaler) History() []Sample {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Sample, len(a.history))
	copy(out, a.history)
	return out
}
