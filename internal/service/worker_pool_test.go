package service

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPoolRunsAllJobs(t *testing.T) {
	pool := NewWorkerPool(4)
	pool.Start()
	defer pool.Close()

	var completed int64
	for i := 0; i < 50; i++ {
		pool.Submit(func() {
			atomic.AddInt64(&completed, 1)
		})
	}
	pool.Wait()

	if completed != 50 {
		t.Errorf("completed = %d, want 50", completed)
	}
}

func TestWorkerPoolBoundsConcurrency(t *testing.T) {
	const workers = 2
	pool := NewWorkerPool(workers)
	pool.Start()
	defer pool.Close()

	var current, peak int64
	var mu sync.Mutex
	for i := 0; i < 20; i++ {
		pool.Submit(func() {
			running := atomic.AddInt64(&current, 1)
			mu.Lock()
			if running > peak {
				peak = running
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt64(&current, -1)
		})
	}
	pool.Wait()

	if peak > workers {
		t.Errorf("peak concurrency = %d, exceeds worker count %d", peak, workers)
	}
	if peak == 0 {
		t.Error("no jobs observed running")
	}
}

func TestWorkerPoolWaitBetweenBatches(t *testing.T) {
	pool := NewWorkerPool(3)
	pool.Start()
	defer pool.Close()

	var first, second int64
	for i := 0; i < 10; i++ {
		pool.Submit(func() { atomic.AddInt64(&first, 1) })
	}
	pool.Wait()
	if first != 10 {
		t.Fatalf("first batch completed = %d, want 10", first)
	}

	for i := 0; i < 5; i++ {
		pool.Submit(func() { atomic.AddInt64(&second, 1) })
	}
	pool.Wait()
	if second != 5 {
		t.Errorf("second batch completed = %d, want 5", second)
	}
}

func TestWorkerPoolDefaultsWorkerCount(t *testing.T) {
	pool := NewWorkerPool(0)
	if pool.workers <= 0 {
		t.Errorf("workers = %d, want a positive default", pool.workers)
	}
}

func TestWorkerPoolStartIdempotent(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()
	pool.Start()
	defer pool.Close()

	var completed int64
	pool.Submit(func() { atomic.AddInt64(&completed, 1) })
	pool.Wait()

	if completed != 1 {
		t.Errorf("completed = %d, want 1", completed)
	}
}
