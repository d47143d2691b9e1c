// Package scheduler runs periodic background jobs. Every job gets its own
// goroutine with a ticker; a failing or panicking run is logged and the
// next tick runs again. Jobs are registered before Start and stopped
// together by Stop.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/log"
)

// Job is a named periodic task.
type Job struct {
	Name string
	// Every is the interval between runs. It must be positive.
	Every time.Duration
	// RunOnStart runs the job once immediately when the scheduler starts.
	RunOnStart bool
	Run        func(ctx context.Context) error
}

// ErrRunning is returned when jobs are added to, or Start is called on, a
// running scheduler.
var ErrRunning = errors.New("scheduler already running")

// Scheduler owns the job goroutines.
type Scheduler struct {
	mu      sync.Mutex
	jobs    []Job
	cancel  context.CancelFunc
	stop    chan struct{}
	wg      sync.WaitGroup
	running bool
}

// New returns an idle scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// Add registers a job. It fails once the scheduler is running.
func (s *Scheduler) Add(job Job) error {
	if job.Run == nil || job.Every <= 0 {
		return fmt.Errorf("scheduler: job %q needs a run func and a positive interval", job.Name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrRunning
	}
	s.jobs = append(s.jobs, job)
	return nil
}

// Jobs returns the names of the registered jobs.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.jobs))
	for _, j := range s.jobs {
		names = append(names, j.Name)
	}
	return names
}

// Start launches every registered job. The jobs run until Stop is called
// or ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.stop = make(chan struct{})
	s.running = true
	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, job)
	}
	log.Info(ctx, "scheduler started", slog.Int("jobs", len(s.jobs)))
	return nil
}

// Stop signals every job to exit and waits for in-flight runs to finish.
// It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	s.cancel()
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	defer s.wg.Done()
	if job.RunOnStart {
		s.runOnce(ctx, job)
	}
	ticker := time.NewTicker(job.Every)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, job)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			log.Error(ctx, "scheduled job panicked",
				slog.String("job", job.Name), slog.Any("panic", r))
		}
	}()
	if ctx.Err() != nil {
		return
	}
	if err := job.Run(ctx); err != nil {
		log.Error(ctx, "scheduled job failed",
			slog.String("job", job.Name), log.Err("error", err))
	}
}
