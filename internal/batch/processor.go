// Package batch splits per-pixel work into row bands run on a bounded
// worker pool. A call returns only after every band is done, so the next
// stage never observes a partially written buffer.
package batch

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// minRowsPerBand keeps bands large enough to amortize scheduling.
const minRowsPerBand = 8

// Pool runs row bands with a fixed number of workers.
type Pool struct {
	workers int
	bands   atomic.Int64
}

// NewPool returns a pool with the given worker count; workers <= 0 means
// one per CPU.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

// Workers returns the worker count.
func (p *Pool) Workers() int {
	return p.workers
}

// Bands returns how many bands the pool has processed since creation.
func (p *Pool) Bands() int64 {
	return p.bands.Load()
}

// Rows calls fn(y0, y1) over disjoint half-open row ranges covering
// [0, height) and waits for all of them.
func (p *Pool) Rows(height int, fn func(y0, y1 int)) {
	if height <= 0 {
		return
	}
	per := (height + p.workers - 1) / p.workers
	if per < minRowsPerBand {
		per = minRowsPerBand
	}
	if p.workers == 1 || per >= height {
		fn(0, height)
		p.bands.Add(1)
		return
	}

	bandChan := make(chan [2]int, p.workers*2)
	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for band := range bandChan {
				fn(band[0], band[1])
				p.bands.Add(1)
			}
		}()
	}

	for y := 0; y < height; y += per {
		end := y + per
		if end > height {
			end = height
		}
		bandChan <- [2]int{y, end}
	}
	close(bandChan)

	wg.Wait()
}
