package handlers

import (
	"context"
	"errors"
	"sync"

	"github.com/candango/chainok"
)

// ErrQueueFull is returned by Pool.Submit when the queue cannot take
// more work.
var ErrQueueFull = errors.New("handlers: the pool queue is full")

// ErrPoolStopped is returned by Pool.Submit after the pool stopped.
var ErrPoolStopped = errors.New("handlers: the pool is stopped")

// Pool is a bounded worker pool for request processing. Its queue
// never blocks the submitter: when the queue is full Submit fails
// immediately, which a Scheduled handler converts into a scheduling
// failure.
type Pool struct {
	queue   chan func()
	workers int
	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
}

// NewPool creates a pool with the given number of workers and queue
// depth.
func NewPool(workers int, depth int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		queue:   make(chan func(), depth),
		workers: workers,
	}
}

// Start launches the pool workers.
func (p *Pool) Start(ctx context.Context) error {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for f := range p.queue {
				f()
			}
		}()
	}
	return nil
}

// Stop closes the queue and waits for the workers to drain it, or for
// the context to expire.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	close(p.queue)
	p.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit queues f for execution. It never blocks: a full queue or a
// stopped pool fail immediately.
func (p *Pool) Submit(f func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}
	select {
	case p.queue <- f:
		return nil
	default:
		return ErrQueueFull
	}
}

// Scheduled returns a handler that claims every request reaching it
// and runs fn on the pool, with ownership of the controller. When the
// work cannot be queued the handler reports ScheduleFailure and the
// dispatcher answers the request.
func Scheduled[Extra any](p *Pool,
	fn func(c *chainok.Controller[Extra])) chainok.Handler[Extra] {
	return func(c *chainok.Controller[Extra]) chainok.ScheduleResult {
		if err := p.Submit(func() { fn(c) }); err != nil {
			return chainok.ScheduleFailure
		}
		return chainok.ScheduleOk
	}
}
