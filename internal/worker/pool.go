package worker

import (
	"context"
	"errors"
	"sync"
)

// ErrPoolClosed is returned by Submit once the pool has been closed
var ErrPoolClosed = errors.New("worker pool closed")

// Job is one lookup or other unit of work. A non-nil error is kept for Errors.
type Job func(ctx context.Context) error

// Pool fans the dictionary and translation lookups of a batch add out over a
// few goroutines, since each lookup spends most of its time waiting on the network.
type Pool struct {
	size  int
	queue chan Job
	wg    sync.WaitGroup

	// mu guards closed and is held across the send in Submit, so failures
	// are recorded under their own lock.
	mu     sync.Mutex
	closed bool

	failMu sync.Mutex
	failed []error
}

// NewPool sizes the pool. A batch usually passes its token count as queue so
// Submit never blocks.
func NewPool(workers, queue int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queue < 1 {
		queue = workers * 2
	}
	return &Pool{size: workers, queue: make(chan Job, queue)}
}

// Start spawns the workers; they exit when ctx ends or the queue is drained after Close
func (p *Pool) Start(ctx context.Context) {
	p.wg.Add(p.size)
	for i := 0; i < p.size; i++ {
		go p.run(ctx)
	}
}

func (p *Pool) run(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.queue:
			if !ok {
				return
			}
			if err := job(ctx); err != nil {
				p.failMu.Lock()
				p.failed = append(p.failed, err)
				p.failMu.Unlock()
			}
		}
	}
}

// Submit queues job
func (p *Pool) Submit(job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	p.queue <- job
	return nil
}

// Close waits for queued jobs to finish. Safe to call twice.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// Errors returns what failed jobs returned, in completion order
func (p *Pool) Errors() []error {
	p.failMu.Lock()
	defer p.failMu.Unlock()
	return append([]error(nil), p.failed...)
}
