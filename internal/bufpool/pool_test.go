package bufpool

import (
	"sync"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name         string
		maxPerBucket int
		wantMaxSize  int
	}{
		{name: "zero means unlimited", maxPerBucket: 0, wantMaxSize: 0},
		{name: "positive limit", maxPerBucket: 5, wantMaxSize: 5},
		{name: "negative means unlimited (edge case)", maxPerBucket: -1, wantMaxSize: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := New(tt.maxPerBucket)
			if pool == nil {
				t.Fatal("New returned nil")
			}
			if pool.maxSize != tt.wantMaxSize {
				t.Errorf("maxSize = %d, want %d", pool.maxSize, tt.wantMaxSize)
			}
			if pool.buckets == nil {
				t.Error("buckets map is nil")
			}
		})
	}
}

func TestPool_GetPut_Reuse(t *testing.T) {
	pool := New(4)

	buf1 := pool.Get(16)
	if len(buf1) != 16 {
		t.Fatalf("Get(16) len = %d, want 16", len(buf1))
	}
	buf1[0] = 42
	buf1[15] = 7
	pool.Put(buf1)

	if got := len(pool.buckets[16]); got != 1 {
		t.Errorf("bucket 16 holds %d buffers, want 1", got)
	}

	buf2 := pool.Get(16)
	if &buf2[0] != &buf1[0] {
		t.Error("Get did not reuse the pooled buffer")
	}
	for i, v := range buf2 {
		if v != 0 {
			t.Errorf("reused buffer[%d] = %d, want 0", i, v)
		}
	}
}

func TestPool_DifferentLengths(t *testing.T) {
	pool := New(4)

	pool.Put(make([]int, 8))
	if got := pool.Get(9); len(got) != 9 {
		t.Errorf("Get(9) len = %d, want 9", len(got))
	}
	if got := len(pool.buckets[8]); got != 1 {
		t.Errorf("bucket 8 holds %d buffers, want 1 (untouched bucket)", got)
	}
}

func TestPool_BucketLimit(t *testing.T) {
	pool := New(2)
	for range 5 {
		pool.Put(make([]int, 4))
	}
	if got := len(pool.buckets[4]); got != 2 {
		t.Errorf("bucket 4 holds %d buffers, want 2", got)
	}
}

func TestPool_EdgeCases(t *testing.T) {
	pool := New(2)

	if got := pool.Get(0); got != nil {
		t.Errorf("Get(0) = %v, want nil", got)
	}
	if got := pool.Get(-3); got != nil {
		t.Errorf("Get(-3) = %v, want nil", got)
	}

	// Should not panic
	pool.Put(nil)
	pool.Put([]int{})
}

func TestPool_Concurrent(t *testing.T) {
	pool := New(0)

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			for i := range 100 {
				buf := pool.Get(32)
				buf[i%32] = seed
				pool.Put(buf)
			}
		}(g)
	}
	wg.Wait()
}

func TestDefaultPool(t *testing.T) {
	buf := Get(10)
	if len(buf) != 10 {
		t.Fatalf("Get(10) len = %d, want 10", len(buf))
	}
	Put(buf)
}
