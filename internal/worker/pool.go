// Package worker runs fire-and-forget jobs on a fixed set of goroutines.
package worker

import (
	"log"
	"sync"
)

type task func()

type Pool struct {
	wg     sync.WaitGroup
	jobs   chan task
	mu     sync.RWMutex
	closed bool
}

// NewPool starts n workers reading from a queue of size queue.
func NewPool(n, queue int) *Pool {
	if n < 1 {
		n = 1
	}
	if queue < 1 {
		queue = 1024
	}
	p := &Pool{jobs: make(chan task, queue)}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				run(job)
			}
		}()
	}
	return p
}

func run(job task) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("worker: job panicked: %v", r)
		}
	}()
	job()
}

// Submit queues f. It returns false once the pool is stopped.
func (p *Pool) Submit(f func()) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	p.jobs <- f
	return true
}

// Pending returns the number of queued jobs.
func (p *Pool) Pending() int { return len(p.jobs) }

// Stop drains queued jobs and waits for the workers to exit.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
