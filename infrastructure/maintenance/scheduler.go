// Package maintenance runs background upkeep for the service:
// periodic tasks, a filesystem watchdog over the data path, and a
// load analyzer that recommends scaling actions.
package maintenance

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is a unit of periodic work.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context)
}

// JobInfo describes a scheduled task for introspection.
type JobInfo struct {
	Name     string    `json:"name"`
	Interval string    `json:"interval"`
	NextRun  time.Time `json:"next_run"`
}

// Scheduler runs registered tasks on their intervals until stopped.
type Scheduler struct {
	logger *zap.Logger

	mu      sync.Mutex
	tasks   []Task
	nextRun map[string]time.Time
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewScheduler creates an idle scheduler.
func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		logger:  logger,
		nextRun: make(map[string]time.Time),
	}
}

// Register adds a task. Tasks registered after Start are picked up on
// the next Start.
func (s *Scheduler) Register(task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task)
}

// Start launches one goroutine per registered task.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	for _, task := range s.tasks {
		s.nextRun[task.Name] = time.Now().Add(task.Interval)
		s.wg.Add(1)
		go s.runTask(ctx, task)
	}

	s.logger.Info("maintenance scheduler started", zap.Int("tasks", len(s.tasks)))
}

// Stop cancels all running tasks and waits for them to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	s.logger.Info("maintenance scheduler stopped")
}

// Jobs returns the registered tasks and their next run times.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]JobInfo, 0, len(s.tasks))
	for _, task := range s.tasks {
		jobs = append(jobs, JobInfo{
			Name:     task.Name,
			Interval: task.Interval.String(),
			NextRun:  s.nextRun[task.Name],
		})
	}
	return jobs
}

func (s *Scheduler) runTask(ctx context.Context, task Task) {
	defer s.wg.Done()

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			s.nextRun[task.Name] = time.Now().Add(task.Interval)
			s.mu.Unlock()

			task.Run(ctx)
		}
	}
}
