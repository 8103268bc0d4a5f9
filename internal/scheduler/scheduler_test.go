package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeFlusher struct {
	mu      sync.Mutex
	pending bool
	fails   int
	flushes int
}

func (f *fakeFlusher) Pending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

func (f *fakeFlusher) Flush(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	if f.fails > 0 {
		f.fails--
		return errors.New("remote unavailable")
	}
	f.pending = false
	return nil
}

func (f *fakeFlusher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flushes
}

func TestRunNowSkipsWhenNothingPending(t *testing.T) {
	f := &fakeFlusher{}
	s := New(f, time.Minute, time.Second)
	if err := s.RunNow(context.Background()); err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	if f.count() != 0 {
		t.Fatalf("expected no flush, got %d", f.count())
	}
}

func TestRunNowRetriesUntilSaved(t *testing.T) {
	f := &fakeFlusher{pending: true, fails: 1}
	s := New(f, time.Minute, time.Second)

	if err := s.RunNow(context.Background()); err == nil {
		t.Fatal("expected first retry to fail")
	}
	if !f.Pending() {
		t.Fatal("changes must stay pending after a failed retry")
	}
	if err := s.RunNow(context.Background()); err != nil {
		t.Fatalf("second retry: %v", err)
	}
	if f.Pending() {
		t.Fatal("changes still pending after a successful retry")
	}
	if n, err := s.Attempts(); n != 2 || err != nil {
		t.Fatalf("Attempts = %d, %v", n, err)
	}
}

func TestScheduledRetry(t *testing.T) {
	f := &fakeFlusher{pending: true}
	s := New(f, 20*time.Millisecond, time.Second)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for f.Pending() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if f.Pending() {
		t.Fatal("scheduled retry never flushed pending changes")
	}
}
