// Package parallel provides the goroutine pool that drives the shared-memory
// blur model.
//
// A pass of the shared-memory model is a set of independent row-block jobs:
// each job reads only the previous generation and writes only its own rows of
// the next one. WorkerPool.ExecuteAll runs such a set and returns once every
// job has finished, which makes it the barrier between two passes.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a persistent pool of goroutines.
//
// Each worker has its own queue and steals from the other queues when its own
// is empty, so a slow block does not leave the other workers idle.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	// workers is the number of worker goroutines.
	workers int

	// queues holds per-worker job queues.
	queues []chan func()

	// done signals workers to stop.
	done chan struct{}

	// wg waits for all workers to finish.
	wg sync.WaitGroup

	// running indicates whether the pool is accepting work.
	running atomic.Bool
}

// NewWorkerPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)

	p := &WorkerPool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), queueSize)
	}

	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}

	return p
}

// worker is the main loop for each worker goroutine.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	own := p.queues[id]
	for {
		select {
		case <-p.done:
			p.drain(own)
			return
		case job := <-own:
			job()
		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
				continue
			}
			select {
			case <-p.done:
				p.drain(own)
				return
			case job := <-own:
				job()
			}
		}
	}
}

// drain runs every job left in queue.
func (p *WorkerPool) drain(queue chan func()) {
	for {
		select {
		case job := <-queue:
			job()
		default:
			return
		}
	}
}

// steal takes one job from another worker's queue, or returns nil.
func (p *WorkerPool) steal(self int) func() {
	for i := range p.workers {
		if i == self {
			continue
		}
		select {
		case job := <-p.queues[i]:
			return job
		default:
		}
	}
	return nil
}

// ExecuteAll runs every job and blocks until all of them have returned.
//
// Jobs are distributed round-robin. If the pool is closed, or closes while
// jobs are being queued, the remaining jobs run on the calling goroutine, so
// ExecuteAll never returns with a job skipped.
func (p *WorkerPool) ExecuteAll(jobs []func()) {
	if len(jobs) == 0 {
		return
	}
	if !p.IsRunning() {
		for _, job := range jobs {
			job()
		}
		return
	}

	var pending sync.WaitGroup
	pending.Add(len(jobs))

	for i, job := range jobs {
		wrapped := func() {
			defer pending.Done()
			job()
		}

		select {
		case p.queues[i%p.workers] <- wrapped:
		case <-p.done:
			wrapped()
		}
	}

	pending.Wait()
}

// ParallelFor splits [0, n) into at most Workers() contiguous ranges and runs
// fn(start, end) for each of them, blocking until all ranges are done.
func (p *WorkerPool) ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}

	chunks := min(p.workers, n)
	if chunks == 1 {
		fn(0, n)
		return
	}

	size := (n + chunks - 1) / chunks
	jobs := make([]func(), 0, chunks)
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		jobs = append(jobs, func() { fn(start, end) })
	}

	p.ExecuteAll(jobs)
}

// Close stops the pool after every queued job has run.
// Close is safe to call multiple times but must not race with ExecuteAll.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning returns true if the pool is still accepting work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}
