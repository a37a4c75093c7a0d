package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Rows calls fn for consecutive bands [y0, y1) covering [0, height) on up
// to GOMAXPROCS goroutines started for this call. Every goroutine has
// exited its band loop when Rows returns.
func Rows(height int, fn func(y0, y1 int)) {
	if height <= 0 {
		return
	}
	bands := (height + BandHeight - 1) / BandHeight
	workers := min(runtime.GOMAXPROCS(0), bands)
	if workers <= 1 {
		fn(0, height)
		return
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				b := int(next.Add(1) - 1)
				if b >= bands {
					return
				}
				y0 := b * BandHeight
				fn(y0, min(y0+BandHeight, height))
			}
		}()
	}
	wg.Wait()
}

// Rows is like the package-level Rows but hands the bands to p. A single
// band runs on the calling goroutine.
func (p *WorkerPool) Rows(height int, fn func(y0, y1 int)) {
	if height <= 0 {
		return
	}
	if height <= BandHeight || p.workers == 1 {
		fn(0, height)
		return
	}
	work := make([]func(), 0, (height+BandHeight-1)/BandHeight)
	for y0 := 0; y0 < height; y0 += BandHeight {
		y0 := y0
		y1 := min(y0+BandHeight, height)
		work = append(work, func() { fn(y0, y1) })
	}
	p.ExecuteAll(work)
}
