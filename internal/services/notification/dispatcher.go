// Package notification delivers post-commit side effects: the in-app
// notification row, the email and the ledger event. Effects run after the
// database transaction has committed and never fail the request.
package notification

import (
	"context"
	"fmt"
	"log"
	"time"

	"fintrivox/internal/metrics"
	"fintrivox/internal/worker"
)

// Effect is one named side effect.
type Effect struct {
	Name string
	Run  func(ctx context.Context) error
}

const defaultEffectTimeout = 30 * time.Second

// Dispatcher runs ordered effect lists on a worker pool. Each effect runs
// even if an earlier one failed. Failures are logged and counted.
type Dispatcher struct {
	pool    *worker.Pool
	metrics metrics.Collector
	timeout time.Duration
}

// NewDispatcher returns a dispatcher. A nil pool runs effects inline, which
// is what tests use.
func NewDispatcher(pool *worker.Pool, m metrics.Collector) *Dispatcher {
	return &Dispatcher{
		pool:    pool,
		metrics: metrics.OrNoop(m),
		timeout: defaultEffectTimeout,
	}
}

func (d *Dispatcher) Dispatch(effects ...Effect) {
	if len(effects) == 0 {
		return
	}
	job := func() { d.run(effects) }
	if d.pool == nil {
		job()
		return
	}
	if !d.pool.Submit(job) {
		log.Printf("dispatch: pool stopped, running %d effects inline", len(effects))
		job()
	}
}

func (d *Dispatcher) run(effects []Effect) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	for _, e := range effects {
		if err := runEffect(ctx, e); err != nil {
			log.Printf("dispatch: %s failed: %v", e.Name, err)
			d.metrics.RecordDispatchFailure(e.Name)
		}
	}
}

func runEffect(ctx context.Context, e Effect) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return e.Run(ctx)
}
