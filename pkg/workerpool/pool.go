// Package workerpool provides a bounded worker pool with configurable
// overflow behavior. Each long-running tool owns a private pool; pools are
// never shared across tools.
package workerpool

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// OverflowPolicy controls what happens when a task is submitted while the
// queue is full.
type OverflowPolicy int

const (
	// CallerRuns executes the task on the submitting goroutine. This degrades
	// to synchronous execution under load instead of queueing without bound
	// or dropping work.
	CallerRuns OverflowPolicy = iota
	// Block waits until queue space is available.
	Block
	// Drop discards the task.
	Drop
)

// Task is a unit of work executed by the pool.
type Task func()

// Metrics receives pool events for instrumentation. Implementations must be
// safe for concurrent use.
type Metrics interface {
	TaskSubmitted(pool string)
	TaskOverflowed(pool string)
}

// noopMetrics is used when no metrics sink is configured.
type noopMetrics struct{}

func (noopMetrics) TaskSubmitted(string)  {}
func (noopMetrics) TaskOverflowed(string) {}

// Options configures a pool.
type Options struct {
	Workers   int            // number of worker goroutines (default: 5)
	QueueSize int            // bounded queue capacity (default: 100)
	Overflow  OverflowPolicy // full-queue policy (default: CallerRuns)
	Metrics   Metrics        // optional event sink
}

// Stats is a point-in-time snapshot of pool state.
type Stats struct {
	Workers   int   `json:"workers"`
	Queued    int   `json:"queued"`
	Running   int   `json:"running"`
	Submitted int64 `json:"submitted"`
	Overflows int64 `json:"overflows"`
	Dropped   int64 `json:"dropped"`
}

// Pool is a fixed-size worker pool over a bounded queue.
type Pool struct {
	name      string
	options   Options
	tasks     chan Task
	workersWg sync.WaitGroup

	running   atomic.Int64
	submitted atomic.Int64
	overflows atomic.Int64
	dropped   atomic.Int64

	closed   bool
	closedMu sync.RWMutex
}

// New creates and starts a pool.
func New(name string, options Options) *Pool {
	if options.Workers <= 0 {
		options.Workers = 5
	}
	if options.QueueSize <= 0 {
		options.QueueSize = 100
	}
	if options.Metrics == nil {
		options.Metrics = noopMetrics{}
	}

	p := &Pool{
		name:    name,
		options: options,
		tasks:   make(chan Task, options.QueueSize),
	}

	for i := 0; i < options.Workers; i++ {
		p.workersWg.Add(1)
		go p.worker()
	}

	log.Info().
		Str("pool", name).
		Int("workers", options.Workers).
		Int("queueSize", options.QueueSize).
		Msg("Worker pool started")

	return p
}

// Submit hands a task to the pool. It returns false only if the task was not
// accepted (pool closed, or queue full under the Drop policy). Under the
// CallerRuns policy a full queue means the submitting goroutine runs the task
// itself before Submit returns.
func (p *Pool) Submit(task Task) bool {
	if task == nil {
		return false
	}

	p.closedMu.RLock()
	defer p.closedMu.RUnlock()

	if p.closed {
		log.Warn().Str("pool", p.name).Msg("Task submitted to closed pool, rejecting")
		p.dropped.Add(1)
		return false
	}

	p.submitted.Add(1)
	p.options.Metrics.TaskSubmitted(p.name)

	select {
	case p.tasks <- task:
		return true
	default:
	}

	p.overflows.Add(1)
	p.options.Metrics.TaskOverflowed(p.name)

	switch p.options.Overflow {
	case Block:
		p.tasks <- task
		return true
	case Drop:
		log.Warn().Str("pool", p.name).Msg("Queue full, dropping task")
		p.dropped.Add(1)
		return false
	default: // CallerRuns
		log.Warn().Str("pool", p.name).Msg("Queue full, executing task on submitting goroutine")
		p.run(task)
		return true
	}
}

// worker consumes tasks until the queue is closed and drained.
func (p *Pool) worker() {
	defer p.workersWg.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

// run executes a single task, containing panics.
func (p *Pool) run(task Task) {
	p.running.Add(1)
	defer p.running.Add(-1)

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("pool", p.name).
				Interface("panic", r).
				Msg("Panic in pool task")
		}
	}()

	task()
}

// Close stops accepting tasks and waits up to timeout for queued and running
// tasks to finish. It returns false if the timeout elapsed first.
func (p *Pool) Close(timeout time.Duration) bool {
	p.closedMu.Lock()
	if p.closed {
		p.closedMu.Unlock()
		return true
	}
	p.closed = true
	close(p.tasks)
	p.closedMu.Unlock()

	done := make(chan struct{})
	go func() {
		p.workersWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Str("pool", p.name).Msg("Worker pool drained")
		return true
	case <-time.After(timeout):
		log.Warn().Str("pool", p.name).Dur("timeout", timeout).Msg("Timeout draining worker pool")
		return false
	}
}

// Stats returns a snapshot of the pool state.
func (p *Pool) Stats() Stats {
	return Stats{
		Workers:   p.options.Workers,
		Queued:    len(p.tasks),
		Running:   int(p.running.Load()),
		Submitted: p.submitted.Load(),
		Overflows: p.overflows.Load(),
		Dropped:   p.dropped.Load(),
	}
}
