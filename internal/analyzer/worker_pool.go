package analyzer

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool runs classification jobs on a fixed number of goroutines.
type WorkerPool struct {
	workers  int
	jobQueue chan func()
	wg       sync.WaitGroup
	once     sync.Once
	// senders counts Submit calls between the closed check and the send.
	senders sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	totalJobs     atomic.Int64
	completedJobs atomic.Int64
	activeWorkers atomic.Int64
}

// PoolStats is a snapshot of pool counters.
type PoolStats struct {
	Workers       int   `json:"workers"`
	TotalJobs     int64 `json:"total_jobs"`
	CompletedJobs int64 `json:"completed_jobs"`
	ActiveWorkers int64 `json:"active_workers"`
}

// NewWorkerPool creates a new worker pool with the specified number of workers
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &WorkerPool{
		workers:  workers,
		jobQueue: make(chan func(), workers*2),
	}
}

// Start launches the workers. Calling it more than once has no effect.
func (wp *WorkerPool) Start() {
	wp.once.Do(func() {
		for i := 0; i < wp.workers; i++ {
			go wp.worker()
		}
	})
}

func (wp *WorkerPool) worker() {
	for job := range wp.jobQueue {
		wp.run(job)
	}
}

func (wp *WorkerPool) run(job func()) {
	wp.activeWorkers.Add(1)
	defer func() {
		wp.activeWorkers.Add(-1)
		wp.completedJobs.Add(1)
		wp.wg.Done()
	}()
	job()
}

// Submit queues job and reports whether it was accepted. It starts the
// workers if needed and blocks while the queue is full. Jobs submitted after
// Close are rejected. A job must not submit to its own pool: with every
// worker blocked in Submit the queue never drains.
func (wp *WorkerPool) Submit(job func()) bool {
	wp.Start()

	wp.mu.RLock()
	if wp.closed {
		wp.mu.RUnlock()
		return false
	}
	wp.wg.Add(1)
	wp.totalJobs.Add(1)
	wp.senders.Add(1)
	wp.mu.RUnlock()

	defer wp.senders.Done()
	wp.jobQueue <- job
	return true
}

// Wait blocks until every accepted job has finished.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// Close stops accepting jobs and lets the workers drain the queue. It waits
// for Submit calls already past the closed check to hand over their job.
func (wp *WorkerPool) Close() {
	wp.mu.Lock()
	if wp.closed {
		wp.mu.Unlock()
		return
	}
	wp.closed = true
	wp.mu.Unlock()

	wp.senders.Wait()
	close(wp.jobQueue)
}

// GetStats returns the current counters.
func (wp *WorkerPool) GetStats() PoolStats {
	return PoolStats{
		Workers:       wp.workers,
		TotalJobs:     wp.totalJobs.Load(),
		CompletedJobs: wp.completedJobs.Load(),
		ActiveWorkers: wp.activeWorkers.Load(),
	}
}
