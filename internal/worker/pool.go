package worker

import (
	"errors"
	"sync"
)

// ErrPoolStopped is returned by Submit after Stop.
var ErrPoolStopped = errors.New("worker pool stopped")

// Task represents a unit of work executed by the pool.
type Task func()

// Pool runs submitted tasks in the background. Submit never blocks the caller.
type Pool interface {
	Submit(Task) error
	Stop()
}

// NewPool creates a pool with n workers and a queue of queueSize tasks.
// n<=0 defaults to 1. The queue is bounded but overflow is not: when the
// queue is full each extra task runs on its own goroutine, so a burst larger
// than queueSize grows the goroutine count instead of blocking the caller.
func NewPool(n, queueSize int) Pool {
	if n <= 0 {
		n = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	p := &pool{jobs: make(chan Task, queueSize)}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				if job != nil {
					job()
				}
			}
		}()
	}
	return p
}

type pool struct {
	mu      sync.RWMutex
	stopped bool
	jobs    chan Task
	wg      sync.WaitGroup
}

func (p *pool) Submit(t Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}
	select {
	case p.jobs <- t:
	default:
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			if t != nil {
				t()
			}
		}()
	}
	return nil
}

// Stop rejects new tasks and waits for queued and spilled tasks to finish.
func (p *pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
