package stopwatch

import (
	"sync"
	"time"
)

// Stopwatch measures the time between Start and Stop.
//
// Start and Stop may be called from different goroutines, e.g. from barrier
// actions run by whichever worker arrives last.
type Stopwatch struct {
	mu    sync.Mutex
	start time.Time
	stop  time.Time
}

func New() *Stopwatch {
	return &Stopwatch{}
}

// Start records the beginning of the measured process and clears any
// previous stop time.
func (sw *Stopwatch) Start() {
	sw.mu.Lock()
	sw.start = time.Now()
	sw.stop = time.Time{}
	sw.mu.Unlock()
}

// Stop records the end of the measured process.
func (sw *Stopwatch) Stop() {
	sw.mu.Lock()
	sw.stop = time.Now()
	sw.mu.Unlock()
}

// Elapsed returns the time between Start and Stop. Before Stop it returns
// the time since Start; before Start it returns 0.
func (sw *Stopwatch) Elapsed() time.Duration {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.start.IsZero() {
		return 0
	}
	if sw.stop.IsZero() {
		return time.Since(sw.start)
	}
	return sw.stop.Sub(sw.start)
}

func (sw *Stopwatch) ElapsedMilliseconds() int64 {
	return sw.Elapsed().Milliseconds()
}
