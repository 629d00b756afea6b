package worker

import (
	"runtime"
	"sync"
)

// Pool fans row-oriented work out over a fixed number of goroutines.
//
// The reductions in internal/metrics are single-threaded; the pool is only
// consumed by the surrounding stages (planar conversion, color transform,
// comparator) where each task writes a disjoint output region, so no locking
// is needed. A nil *Pool runs everything serially on the calling goroutine.
type Pool struct {
	workers int
}

// New creates a pool with the given worker count. Zero or negative means
// GOMAXPROCS.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{workers: workers}
}

// Workers returns the configured worker count (1 for a nil pool).
func (p *Pool) Workers() int {
	if p == nil {
		return 1
	}
	return p.workers
}

// Run invokes fn(i) for every i in [0, n), distributing indices over the
// pool's workers. It returns after all invocations complete. Ordering across
// workers is unspecified; callers must only touch disjoint state per index.
func (p *Pool) Run(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	if p == nil || p.workers == 1 || n == 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	workers := p.workers
	if workers > n {
		workers = n
	}

	var wg sync.WaitGroup
	next := make(chan int)

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range next {
				fn(i)
			}
		}()
	}

	for i := 0; i < n; i++ {
		next <- i
	}
	close(next)
	wg.Wait()
}
