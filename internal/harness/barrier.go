package harness

import (
	"fmt"
	"sync"
)

// Barrier is a cyclic rendezvous point for a fixed number of goroutines.
//
// Await blocks until all parties have called it. The last goroutine to
// arrive runs the optional action before any goroutine is released; the
// barrier then resets and can be reused for the next round.
type Barrier struct {
	parties int
	action  func()

	mu      sync.Mutex
	arrived int
	release chan struct{}
}

// NewBarrier creates a barrier for the given number of parties.
// The action may be nil.
func NewBarrier(parties int, action func()) *Barrier {
	if parties < 1 {
		panic(fmt.Sprintf("BUG: barrier needs at least one party, got %d", parties))
	}
	return &Barrier{
		parties: parties,
		action:  action,
		release: make(chan struct{}),
	}
}

func (b *Barrier) Await() {
	b.mu.Lock()
	b.arrived++
	if b.arrived < b.parties {
		release := b.release
		b.mu.Unlock()
		<-release
		return
	}

	if b.action != nil {
		b.action()
	}
	close(b.release)
	b.release = make(chan struct{})
	b.arrived = 0
	b.mu.Unlock()
}

// Parties returns the number of goroutines required to trip the barrier.
func (b *Barrier) Parties() int {
	return b.parties
}
