package service

import (
	"runtime"
	"sync"
)

// WorkerPool bounds how many deck pages run concurrently. Pages are
// independent invocations with no shared mutable state, so the pool only
// limits parallelism.
type WorkerPool struct {
	workers  int
	jobQueue chan func()
	wg       sync.WaitGroup
	once     sync.Once
}

// NewWorkerPool creates a pool with the specified number of workers.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &WorkerPool{
		workers:  workers,
		jobQueue: make(chan func(), workers*2),
	}
}

// Start launches the workers. Safe to call more than once.
func (wp *WorkerPool) Start() {
	wp.once.Do(func() {
		for i := 0; i < wp.workers; i++ {
			go wp.worker()
		}
	})
}

func (wp *WorkerPool) worker() {
	for job := range wp.jobQueue {
		job()
		wp.wg.Done()
	}
}

// Submit queues a job.
func (wp *WorkerPool) Submit(job func()) {
	wp.wg.Add(1)
	wp.jobQueue <- job
}

// Wait blocks until all submitted jobs have finished.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// Close shuts down the pool once no more jobs will be submitted.
func (wp *WorkerPool) Close() {
	close(wp.jobQueue)
}
