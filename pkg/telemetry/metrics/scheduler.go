package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSampleSchedule samples process memory every 15 seconds.
const DefaultSampleSchedule = "@every 15s"

// MemoryRecorder is the part of a Collector the scheduler drives.
type MemoryRecorder interface {
	RecordMemoryUsage()
}

// SamplingScheduler records memory usage on a cron schedule so the leak
// heuristics have a steady stream of readings.
//
// Accepted schedules are standard 5-field cron expressions and descriptors:
//   - "@every 15s"   - every 15 seconds
//   - "*/1 * * * *"  - every minute
//   - "@hourly"      - once an hour
type SamplingScheduler struct {
	recorder MemoryRecorder
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	stopRun context.CancelFunc
}

// NewSamplingScheduler creates a scheduler for the given recorder. An empty
// schedule disables sampling.
func NewSamplingScheduler(recorder MemoryRecorder, schedule string, logger *slog.Logger) *SamplingScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SamplingScheduler{
		recorder: recorder,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.With("component", "metrics.scheduler"),
	}
}

// Start validates the schedule and begins sampling. A first reading is taken
// immediately. The scheduler stops when ctx is cancelled or Stop is called.
func (s *SamplingScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("memory sample schedule not configured, skipping scheduler")
		return nil
	}
	if s.running {
		return fmt.Errorf("sampling scheduler already running")
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid sample schedule %q: %w", s.schedule, err)
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.schedule, s.recorder.RecordMemoryUsage); err != nil {
		return fmt.Errorf("failed to schedule memory sampling: %w", err)
	}

	s.recorder.RecordMemoryUsage()
	s.cron.Start()
	s.running = true

	// Stop cancels runCtx, which retires this run's watcher.
	runCtx, cancel := context.WithCancel(context.Background())
	s.stopRun = cancel

	s.logger.Info("memory sampling started", "schedule", s.schedule)

	go func() {
		select {
		case <-ctx.Done():
			s.stopIfCurrent(runCtx)
		case <-runCtx.Done():
		}
	}()

	return nil
}

// stopIfCurrent stops the scheduler when runCtx still belongs to the active run.
func (s *SamplingScheduler) stopIfCurrent(runCtx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || runCtx.Err() != nil {
		return
	}
	s.stopLocked()
}

// Stop stops the scheduler and waits for a running sample to finish.
func (s *SamplingScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.stopLocked()
}

func (s *SamplingScheduler) stopLocked() {
	if s.stopRun != nil {
		s.stopRun()
		s.stopRun = nil
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("memory sampling stopped")
}

// IsRunning returns true if the scheduler is running.
func (s *SamplingScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled sample time, or nil when not scheduled.
func (s *SamplingScheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
