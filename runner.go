package main

import (
	"context"
	"fmt"
	"time"

	"github.com/contentsquare/cyclecounter/config"
	"github.com/contentsquare/cyclecounter/internal/counter"
	"github.com/contentsquare/cyclecounter/internal/harness"
	"github.com/contentsquare/cyclecounter/log"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

// runAll executes all configured runs one after another, logs a summary and
// returns the number of failed runs. Runs left over after ctx is done count
// as failed.
func runAll(ctx context.Context, cfg *config.Config) int {
	failed := executeRuns(ctx, cfg)
	if failed > 0 {
		log.Errorf("%d of %d runs failed", failed, len(cfg.Runs))
	} else {
		log.Infof("all %d runs succeeded", len(cfg.Runs))
	}
	return failed
}

func executeRuns(ctx context.Context, cfg *config.Config) int {
	failed := 0
	for i, rc := range cfg.Runs {
		if err := ctx.Err(); err != nil {
			log.Errorf("skipping %d remaining runs: %s", len(cfg.Runs)-i, err)
			return failed + len(cfg.Runs) - i
		}

		r, err := executeRun(ctx, rc)
		if err != nil {
			failed++
			log.Errorf("run %q (%s) failed: %s", rc.Name, rc.Strategy, err)
			continue
		}
		log.Infof("run %q (%s): %s", rc.Name, rc.Strategy, r)
	}
	return failed
}

// executeRun drives a fresh counter as described by rc and verifies its
// final value.
func executeRun(ctx context.Context, rc config.Run) (*harness.Result, error) {
	c, err := counter.New(rc.Strategy)
	if err != nil {
		return nil, err
	}
	if rc.MaximumValue > 0 {
		if err := c.SetMaximum(rc.MaximumValue); err != nil {
			return nil, err
		}
	}

	opts := harness.Options{
		Workers:    rc.Workers,
		Increments: rc.Increments,
	}
	if rc.RateLimit > 0 {
		opts.Limiter = rate.NewLimiter(rate.Limit(rc.RateLimit), rc.Workers)
	}
	if rc.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(rc.Timeout))
		defer cancel()
	}

	labels := prometheus.Labels{
		"run":      rc.Name,
		"strategy": string(rc.Strategy),
	}
	runsTotal.With(labels).Inc()

	log.Debugf("starting run %q: strategy=%s workers=%d increments=%d maximum=%d",
		rc.Name, rc.Strategy, rc.Workers, rc.Increments, c.Maximum())
	r, err := harness.Run(ctx, c, opts)
	if r != nil {
		runDuration.With(labels).Set(r.Elapsed.Seconds())
		counterValue.With(labels).Set(float64(r.Value))
	}
	if err != nil {
		runFailures.With(labels).Inc()
		return r, err
	}
	if !r.OK() {
		runFailures.With(labels).Inc()
		return r, fmt.Errorf("unexpected counter value after %s: got %d; expected %d", r, r.Value, r.Expected)
	}

	incrementsTotal.WithLabelValues(string(rc.Strategy)).Add(float64(r.Increments))
	return r, nil
}
