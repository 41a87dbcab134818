package raster

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minBandRows keeps bands large enough that goroutine overhead stays small.
const minBandRows = 16

type execConfig struct {
	workers int
}

// ExecOption configures how an operation schedules its work.
type ExecOption func(*execConfig)

// WithWorkers bounds the number of goroutines an operation may use.
// Values <= 0 select runtime.GOMAXPROCS(0).
func WithWorkers(n int) ExecOption {
	return func(c *execConfig) { c.workers = n }
}

// Workers resolves opts into a positive goroutine count.
func Workers(opts ...ExecOption) int {
	var c execConfig
	for _, o := range opts {
		o(&c)
	}
	if c.workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.workers
}

// ParallelRows calls fn for disjoint half-open row bands [start, end) that
// together cover [0, rows), and waits for all of them. The first error
// returned by fn is returned.
func ParallelRows(rows int, fn func(start, end int) error, opts ...ExecOption) error {
	workers := Workers(opts...)
	if workers == 1 || rows <= minBandRows {
		return fn(0, rows)
	}
	band := (rows + workers - 1) / workers
	if band < minBandRows {
		band = minBandRows
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < rows; start += band {
		start, end := start, min(start+band, rows)
		g.Go(func() error { return fn(start, end) })
	}
	return g.Wait()
}
