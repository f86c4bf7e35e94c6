// Package bufpool recycles pixel buffers between blur runs.
package bufpool

import "sync"

// Pool is a thread-safe pool for reusing []int pixel buffers.
//
// Pool groups buffers by length, so a run that alternates two generations of
// the same grid (or the same block) gets its scratch buffer back without a new
// allocation.
//
// Thread safety: All methods are safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	buckets map[int][][]int
	maxSize int // max buffers per bucket
}

// New creates a pool that retains at most maxPerBucket buffers of each length.
// A maxPerBucket of 0 or less means unlimited.
func New(maxPerBucket int) *Pool {
	return &Pool{
		buckets: make(map[int][][]int),
		maxSize: maxPerBucket,
	}
}

// Get returns a zeroed buffer of exactly n elements.
// Returns nil for n <= 0.
func (p *Pool) Get(n int) []int {
	if n <= 0 {
		return nil
	}

	p.mu.Lock()
	bucket := p.buckets[n]
	if len(bucket) > 0 {
		buf := bucket[len(bucket)-1]
		p.buckets[n] = bucket[:len(bucket)-1]
		p.mu.Unlock()

		clear(buf)
		return buf
	}
	p.mu.Unlock()

	return make([]int, n)
}

// Put returns a buffer to the pool. The caller must not use buf afterwards.
// Empty buffers and buffers beyond the bucket limit are dropped.
func (p *Pool) Put(buf []int) {
	if len(buf) == 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[len(buf)]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		// Bucket full, let GC reclaim it
		return
	}
	p.buckets[len(buf)] = append(bucket, buf)
}

// defaultPool is the package-level pool shared by blur runs.
var defaultPool = New(8)

// Get retrieves a buffer from the default pool.
func Get(n int) []int {
	return defaultPool.Get(n)
}

// Put returns a buffer to the default pool.
func Put(buf []int) {
	defaultPool.Put(buf)
}
