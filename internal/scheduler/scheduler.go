package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// DefaultRetryInterval is how often pending saves are retried
const DefaultRetryInterval = 30 * time.Second

// Flusher has local changes that may not have reached the remote table yet
type Flusher interface {
	Pending() bool
	Flush(ctx context.Context) error
}

// Scheduler periodically retries saves that failed while the remote table was unavailable
type Scheduler struct {
	scheduler *gocron.Scheduler
	flusher   Flusher
	interval  time.Duration
	timeout   time.Duration

	mu       sync.Mutex
	attempts int
	lastErr  error
}

// New creates a new scheduler instance
func New(flusher Flusher, interval, timeout time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultRetryInterval
	}
	if timeout <= 0 {
		timeout = interval
	}
	s := gocron.NewScheduler(time.Local)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		flusher:   flusher,
		interval:  interval,
		timeout:   timeout,
	}
}

// Start begins retrying in the background
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.retryPending); err != nil {
		return fmt.Errorf("failed to schedule sync retry: %v", err)
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// RunNow performs one retry immediately and returns its outcome.
// It returns nil when nothing was pending.
func (s *Scheduler) RunNow(ctx context.Context) error {
	if !s.flusher.Pending() {
		return nil
	}

	err := s.flusher.Flush(ctx)

	s.mu.Lock()
	s.attempts++
	s.lastErr = err
	s.mu.Unlock()

	return err
}

// Attempts returns the number of retries performed so far and the last outcome
func (s *Scheduler) Attempts() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts, s.lastErr
}

func (s *Scheduler) retryPending() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if !s.flusher.Pending() {
		return
	}
	if err := s.RunNow(ctx); err != nil {
		log.Printf("Retrying pending save failed: %v", err)
		return
	}
	log.Printf("Pending changes saved to the remote table")
}
