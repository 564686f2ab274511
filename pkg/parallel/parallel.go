// Package parallel provides data-parallel helpers for the refinement
// passes that touch every vertex.
package parallel

import (
	"runtime"
	"sync"
)

// For splits the index range [0,n) into contiguous chunks and runs fn on
// every index, one chunk per worker. fn must only write state owned by its
// index; under that contract no locking is needed. With numWorkers <= 0 the
// number of CPUs is used. Small ranges run inline.
func For(n, numWorkers int, fn func(i int)) {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	const minChunk = 2048
	if n < 2*minChunk || numWorkers == 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	chunk := (n + numWorkers - 1) / numWorkers
	if chunk < minChunk {
		chunk = minChunk
	}

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}
