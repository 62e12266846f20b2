package workerpool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPoolExecutesTasks(t *testing.T) {
	pool := New("test", Options{Workers: 2, QueueSize: 10})

	var count atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		ok := pool.Submit(func() {
			defer wg.Done()
			count.Add(1)
		})
		assert.True(t, ok)
	}

	wg.Wait()
	assert.Equal(t, int64(20), count.Load())
	assert.True(t, pool.Close(time.Second))
}

func TestPoolCallerRunsOnFullQueue(t *testing.T) {
	pool := New("test", Options{Workers: 1, QueueSize: 1, Overflow: CallerRuns})
	defer pool.Close(time.Second)

	block := make(chan struct{})
	// Occupy the single worker.
	pool.Submit(func() { <-block })
	// Fill the queue.
	pool.Submit(func() {})

	// The queue is full: this task must run on the submitting goroutine
	// before Submit returns.
	ran := false
	ok := pool.Submit(func() { ran = true })

	assert.True(t, ok)
	assert.True(t, ran)
	assert.GreaterOrEqual(t, pool.Stats().Overflows, int64(1))

	close(block)
}

func TestPoolDropOnFullQueue(t *testing.T) {
	pool := New("test", Options{Workers: 1, QueueSize: 1, Overflow: Drop})
	defer pool.Close(time.Second)

	block := make(chan struct{})
	pool.Submit(func() { <-block })
	pool.Submit(func() {})

	ran := false
	ok := pool.Submit(func() { ran = true })

	assert.False(t, ok)
	assert.False(t, ran)
	assert.GreaterOrEqual(t, pool.Stats().Dropped, int64(1))

	close(block)
}

func TestPoolRejectsAfterClose(t *testing.T) {
	pool := New("test", Options{Workers: 1, QueueSize: 1})
	assert.True(t, pool.Close(time.Second))

	assert.False(t, pool.Submit(func() {}))
}

func TestPoolContainsPanics(t *testing.T) {
	pool := New("test", Options{Workers: 1, QueueSize: 1})

	done := make(chan struct{})
	pool.Submit(func() {
		defer close(done)
		panic("task blew up")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("panicking task never ran")
	}

	// The worker survives the panic and keeps processing.
	var ran atomic.Bool
	ranCh := make(chan struct{})
	pool.Submit(func() {
		ran.Store(true)
		close(ranCh)
	})

	select {
	case <-ranCh:
	case <-time.After(time.Second):
		t.Fatal("worker did not survive panic")
	}
	assert.True(t, ran.Load())
	assert.True(t, pool.Close(time.Second))
}

func TestPoolStats(t *testing.T) {
	pool := New("test", Options{Workers: 3, QueueSize: 5})
	defer pool.Close(time.Second)

	stats := pool.Stats()
	assert.Equal(t, 3, stats.Workers)
	assert.Equal(t, int64(0), stats.Submitted)

	var wg sync.WaitGroup
	wg.Add(1)
	pool.Submit(func() { wg.Done() })
	wg.Wait()

	assert.Equal(t, int64(1), pool.Stats().Submitted)
}

func TestPoolDefaults(t *testing.T) {
	pool := New("test", Options{})
	defer pool.Close(time.Second)

	assert.Equal(t, 5, pool.Stats().Workers)
}

type countingMetrics struct {
	mu         sync.Mutex
	submitted  map[string]int
	overflowed map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{
		submitted:  make(map[string]int),
		overflowed: make(map[string]int),
	}
}

func (m *countingMetrics) TaskSubmitted(pool string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitted[pool]++
}

func (m *countingMetrics) TaskOverflowed(pool string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overflowed[pool]++
}

func TestPoolReportsMetrics(t *testing.T) {
	sink := newCountingMetrics()
	pool := New("metered", Options{Workers: 1, QueueSize: 1, Overflow: CallerRuns, Metrics: sink})
	defer pool.Close(time.Second)

	block := make(chan struct{})
	pool.Submit(func() { <-block })
	pool.Submit(func() {})

	// Full queue: the third submit overflows into caller-runs.
	pool.Submit(func() {})
	close(block)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Equal(t, 3, sink.submitted["metered"])
	assert.Equal(t, 1, sink.overflowed["metered"])
}
