// Package health tracks request outcomes and reports service health
// based on the observed error rate.
package health

import (
	"fmt"
	"sync"
	"time"
)

// Status is the coarse health classification of the service.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Error rate thresholds separating the status bands.
const (
	degradedThreshold  = 0.05
	unhealthyThreshold = 0.20
)

// Report is a point-in-time summary of service health.
type Report struct {
	Status     Status  `json:"status"`
	Uptime     string  `json:"uptime"`
	Queries    int64   `json:"queries"`
	Inserts    int64   `json:"inserts"`
	Errors     int64   `json:"errors"`
	ErrorRate  float64 `json:"error_rate"`
	StoreAlive bool    `json:"store_alive"`
}

// Monitor accumulates operation counters and derives a health status.
type Monitor struct {
	now func() time.Time

	mu         sync.Mutex
	startedAt  time.Time
	queries    int64
	inserts    int64
	errors     int64
	storeAlive bool
}

// NewMonitor creates a Monitor with its uptime clock started.
func NewMonitor() *Monitor {
	m := &Monitor{
		now:        time.Now,
		storeAlive: true,
	}
	m.startedAt = m.now()
	return m
}

// RecordQuery counts a completed read operation.
func (m *Monitor) RecordQuery() {
	m.mu.Lock()
	m.queries++
	m.mu.Unlock()
}

// RecordInsert counts a completed write operation.
func (m *Monitor) RecordInsert() {
	m.mu.Lock()
	m.inserts++
	m.mu.Unlock()
}

// RecordError counts a failed operation.
func (m *Monitor) RecordError() {
	m.mu.Lock()
	m.errors++
	m.mu.Unlock()
}

// SetStoreAlive records the result of the latest store connectivity check.
func (m *Monitor) SetStoreAlive(alive bool) {
	m.mu.Lock()
	m.storeAlive = alive
	m.mu.Unlock()
}

// Report returns the current health summary.
func (m *Monitor) Report() Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := m.queries + m.inserts + m.errors
	rate := 0.0
	if total > 0 {
		rate = float64(m.errors) / float64(total)
	}

	status := StatusHealthy
	switch {
	case !m.storeAlive || rate >= unhealthyThreshold:
		status = StatusUnhealthy
	case rate >= degradedThreshold:
		status = StatusDegraded
	}

	return Report{
		Status:     status,
		Uptime:     formatUptime(m.now().Sub(m.startedAt)),
		Queries:    m.queries,
		Inserts:    m.inserts,
		Errors:     m.errors,
		ErrorRate:  rate,
		StoreAlive: m.storeAlive,
	}
}

// formatUptime renders a duration as "1d 2h 3m 4s" with leading zero
// units omitted.
func formatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)

	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	seconds := d - minutes*time.Minute

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds/time.Second)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds/time.Second)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds/time.Second)
	default:
		return fmt.Sprintf("%ds", seconds/time.Second)
	}
}
