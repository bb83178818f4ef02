package counter

import "sync/atomic"

// CAS is a lock-free Counter. Each Increment computes the wrapped successor
// and installs it with compare-and-swap, retrying when another goroutine
// got there first. The value never leaves [0, Maximum), not even
// transiently.
type CAS struct {
	value atomic.Int32

	// maximum is stored before the value is clamped in SetMaximum, so an
	// Increment racing SetMaximum may wrap against the previous bound once.
	maximum atomic.Int32
}

func NewCAS() *CAS {
	c := &CAS{}
	c.maximum.Store(DefaultMaximum)
	return c
}

func (c *CAS) Get() int32 {
	return c.value.Load()
}

func (c *CAS) Maximum() int32 {
	return c.maximum.Load()
}

func (c *CAS) Increment() {
	for {
		old := c.value.Load()
		next := old + 1
		if next >= c.maximum.Load() {
			next = 0
		}
		if c.value.CompareAndSwap(old, next) {
			return
		}
	}
}

func (c *CAS) SetMaximum(m int32) error {
	if err := validateMaximum(m); err != nil {
		return err
	}
	c.maximum.Store(m)
	clamp(&c.value, m)
	return nil
}

// clamp resets v to 0 unless it is already in [0, m).
func clamp(v *atomic.Int32, m int32) {
	for {
		old := v.Load()
		if inRange(old, m) {
			return
		}
		if v.CompareAndSwap(old, 0) {
			return
		}
	}
}
