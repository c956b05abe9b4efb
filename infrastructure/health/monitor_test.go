package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonitor_HealthyByDefault(t *testing.T) {
	m := NewMonitor()

	report := m.Report()

	assert.Equal(t, StatusHealthy, report.Status)
	assert.True(t, report.StoreAlive)
	assert.Equal(t, int64(0), report.Queries)
	assert.Equal(t, 0.0, report.ErrorRate)
}

func TestMonitor_CountsOperations(t *testing.T) {
	m := NewMonitor()

	m.RecordQuery()
	m.RecordQuery()
	m.RecordInsert()
	m.RecordError()

	report := m.Report()
	assert.Equal(t, int64(2), report.Queries)
	assert.Equal(t, int64(1), report.Inserts)
	assert.Equal(t, int64(1), report.Errors)
	assert.InDelta(t, 0.25, report.ErrorRate, 1e-9)
}

func TestMonitor_StatusBands(t *testing.T) {
	t.Run("degraded above five percent errors", func(t *testing.T) {
		m := NewMonitor()
		for i := 0; i < 90; i++ {
			m.RecordQuery()
		}
		for i := 0; i < 10; i++ {
			m.RecordError()
		}

		assert.Equal(t, StatusDegraded, m.Report().Status)
	})

	t.Run("unhealthy above twenty percent errors", func(t *testing.T) {
		m := NewMonitor()
		for i := 0; i < 70; i++ {
			m.RecordQuery()
		}
		for i := 0; i < 30; i++ {
			m.RecordError()
		}

		assert.Equal(t, StatusUnhealthy, m.Report().Status)
	})

	t.Run("unhealthy when store unreachable", func(t *testing.T) {
		m := NewMonitor()
		m.RecordQuery()
		m.SetStoreAlive(false)

		report := m.Report()
		assert.Equal(t, StatusUnhealthy, report.Status)
		assert.False(t, report.StoreAlive)
	})
}

func TestMonitor_UptimeFormatting(t *testing.T) {
	m := NewMonitor()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	m.startedAt = base

	cases := []struct {
		elapsed time.Duration
		want    string
	}{
		{42 * time.Second, "42s"},
		{3*time.Minute + 5*time.Second, "3m 5s"},
		{2*time.Hour + 3*time.Minute + 4*time.Second, "2h 3m 4s"},
		{26*time.Hour + 5*time.Minute, "1d 2h 5m 0s"},
	}

	for _, tc := range cases {
		m.now = func() time.Time { return base.Add(tc.elapsed) }
		assert.Equal(t, tc.want, m.Report().Uptime)
	}
}
