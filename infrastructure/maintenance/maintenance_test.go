package maintenance

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScheduler_RunsRegisteredTasks(t *testing.T) {
	s := NewScheduler(zap.NewNop())

	var runs atomic.Int64
	s.Register(Task{
		Name:     "tick",
		Interval: 10 * time.Millisecond,
		Run:      func(ctx context.Context) { runs.Add(1) },
	})

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return runs.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestScheduler_StopPreventsFurtherRuns(t *testing.T) {
	s := NewScheduler(zap.NewNop())

	var runs atomic.Int64
	s.Register(Task{
		Name:     "tick",
		Interval: 10 * time.Millisecond,
		Run:      func(ctx context.Context) { runs.Add(1) },
	})

	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, time.Second, 5*time.Millisecond)
	s.Stop()

	settled := runs.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, runs.Load())
}

func TestScheduler_JobsReportsTasks(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	s.Register(Task{Name: "cleanup", Interval: time.Hour, Run: func(ctx context.Context) {}})
	s.Register(Task{Name: "health", Interval: 5 * time.Minute, Run: func(ctx context.Context) {}})

	jobs := s.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "cleanup", jobs[0].Name)
	assert.Equal(t, "1h0m0s", jobs[0].Interval)
}

func TestAutoScaler_HighCPUScalesUp(t *testing.T) {
	a := NewAutoScaler()

	rec := a.Analyze(92, 40)

	assert.True(t, rec.ScaleUp)
	assert.False(t, rec.ScaleDown)
	assert.Equal(t, "increase_workers", rec.SuggestedAction)
}

func TestAutoScaler_HighMemoryScalesUp(t *testing.T) {
	a := NewAutoScaler()

	rec := a.Analyze(50, 90)

	assert.True(t, rec.ScaleUp)
	assert.Equal(t, "increase_memory_limit", rec.SuggestedAction)
}

func TestAutoScaler_SustainedLowCPUScalesDown(t *testing.T) {
	a := NewAutoScaler()

	var rec Recommendation
	for i := 0; i < 12; i++ {
		rec = a.Analyze(10, 40)
	}

	assert.True(t, rec.ScaleDown)
	assert.Equal(t, "decrease_workers", rec.SuggestedAction)
}

func TestAutoScaler_SpikyCPUDoesNotScaleDown(t *testing.T) {
	a := NewAutoScaler()

	for i := 0; i < 11; i++ {
		a.Analyze(50, 40)
	}
	rec := a.Analyze(10, 40)

	assert.False(t, rec.ScaleDown)
}

func TestAutoScaler_HistoryBounded(t *testing.T) {
	a := NewAutoScaler()

	for i := 0; i < 250; i++ {
		a.Analyze(50, 50)
	}

	assert.Len(t, a.History(), metricsHistorySize)
}

func TestWatchdog_DebouncesRepeatEvents(t *testing.T) {
	w := &Watchdog{
		logger: zap.NewNop(),
		now:    time.Now,
	}

	var fired atomic.Int64
	w.onChange = func(path string) { fired.Add(1) }

	w.handle("/data/file-1")
	w.handle("/data/file-2")
	w.handle("/data/file-3")

	assert.Equal(t, int64(1), fired.Load())
}

func TestWatchdog_FiresAgainAfterWindow(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	w := &Watchdog{
		logger: zap.NewNop(),
		now:    func() time.Time { return current },
	}

	var fired atomic.Int64
	w.onChange = func(path string) { fired.Add(1) }

	w.handle("/data/file")
	current = current.Add(debounceWindow + time.Second)
	w.handle("/data/file")

	assert.Equal(t, int64(2), fired.Load())
}
