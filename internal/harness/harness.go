package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/contentsquare/cyclecounter/internal/counter"
	"github.com/contentsquare/cyclecounter/internal/stopwatch"
	"github.com/contentsquare/cyclecounter/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Options describe a single load run against a counter.
type Options struct {
	// Number of goroutines incrementing concurrently.
	Workers int

	// Total number of increments, split evenly between workers.
	Increments int64

	// Optional limiter shared by all workers; every increment takes one token.
	// If nil, workers increment as fast as they can.
	Limiter *rate.Limiter
}

// Result is the outcome of a run.
type Result struct {
	Workers    int
	Increments int64

	// Value is the counter value read after all workers finished.
	Value int32

	// Expected is Increments modulo the counter's maximum.
	Expected int32

	// Elapsed is the time between the start and the stop barrier.
	Elapsed time.Duration
}

// OK reports whether the counter ended at the expected value.
func (r *Result) OK() bool {
	return r.Value == r.Expected
}

func (r *Result) String() string {
	return fmt.Sprintf("%d increments took %d ms on %d workers", r.Increments, r.Elapsed.Milliseconds(), r.Workers)
}

// Expected returns the value a counter bounded by maximum must hold after
// the given number of increments from zero.
func Expected(increments int64, maximum int32) int32 {
	if maximum <= 0 {
		panic(fmt.Sprintf("BUG: non-positive maximum %d", maximum))
	}
	return int32(increments % int64(maximum))
}

// Run drives c with opts.Workers goroutines performing opts.Increments
// increments in total.
//
// All workers wait on a start barrier so they begin incrementing at the same
// time; the coordinator joins the workers on a stop barrier and reads the
// counter once everybody is done. The stopwatch is started and stopped by
// the barrier actions.
//
// The counter must be fresh or its current value is added to the result.
// A non-nil Result is returned whenever the workers were started, even if
// one of them failed waiting on the limiter.
func Run(ctx context.Context, c counter.Counter, opts Options) (*Result, error) {
	if opts.Workers < 1 {
		return nil, fmt.Errorf("workers must be positive, got %d", opts.Workers)
	}
	if opts.Increments < 0 {
		return nil, fmt.Errorf("increments can't be negative, got %d", opts.Increments)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sw := stopwatch.New()
	startBarrier := NewBarrier(opts.Workers, sw.Start)
	stopBarrier := NewBarrier(opts.Workers+1, sw.Stop)

	g, gctx := errgroup.WithContext(ctx)

	workers := int64(opts.Workers)
	perWorker := (opts.Increments + workers - 1) / workers
	remaining := opts.Increments
	for i := 0; i < opts.Workers; i++ {
		n := perWorker
		if n > remaining {
			n = remaining
		}
		remaining -= n

		g.Go(func() error {
			startBarrier.Await()
			err := increment(gctx, c, n, opts.Limiter)
			stopBarrier.Await()
			return err
		})
	}
	log.Debugf("started %d workers for %d increments (%d per worker)", opts.Workers, opts.Increments, perWorker)

	stopBarrier.Await()
	err := g.Wait()

	r := &Result{
		Workers:    opts.Workers,
		Increments: opts.Increments,
		Value:      c.Get(),
		Expected:   Expected(opts.Increments, c.Maximum()),
		Elapsed:    sw.Elapsed(),
	}
	if err != nil {
		return r, fmt.Errorf("cannot complete %d increments on %d workers: %w", opts.Increments, opts.Workers, err)
	}
	return r, nil
}

func increment(ctx context.Context, c counter.Counter, n int64, limiter *rate.Limiter) error {
	if limiter == nil {
		for i := int64(0); i < n; i++ {
			c.Increment()
		}
		return nil
	}

	for i := int64(0); i < n; i++ {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		c.Increment()
	}
	return nil
}
