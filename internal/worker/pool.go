// Package worker runs background tasks on a fixed-size pool fed by a bounded
// queue. A burst of submissions queues for a free worker instead of spawning
// unbounded goroutines.
package worker

import (
	"context"
	"log/slog"
	"sync"

	"postmortem-analysis/internal/telemetry"
)

// Task is one unit of background work.
type Task func(ctx context.Context)

// Pool executes tasks on a bounded number of workers.
type Pool struct {
	tasks chan Task
	size  int
	wg    sync.WaitGroup
	log   *slog.Logger
}

func NewPool(size, queueCapacity int, log *slog.Logger) *Pool {
	if size <= 0 {
		size = 1
	}
	if queueCapacity < 0 {
		queueCapacity = 0
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pool{
		tasks: make(chan Task, queueCapacity),
		size:  size,
		log:   log,
	}
}

// Start launches the workers. They drain until ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Submit enqueues a task. It blocks when the queue is full; that is the
// implicit backpressure, never surfaced to the submitter as an error.
func (p *Pool) Submit(task Task) {
	if task == nil {
		return
	}
	p.tasks <- task
}

// Wait blocks until all workers have exited after context cancellation.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-p.tasks:
			p.run(ctx, id, task)
		}
	}
}

// run executes one task and contains any panic so a single bad job cannot
// take down the pool or other in-flight jobs.
func (p *Pool) run(ctx context.Context, id int, task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("worker task panicked", "worker", id, "panic", r)
		}
	}()

	telemetry.InFlightGauge.Inc()
	defer telemetry.InFlightGauge.Dec()
	task(ctx)
}
