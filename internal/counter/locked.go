package counter

import (
	"sync"
	"sync/atomic"
)

// Locked guards every mutation with a mutex, so all mutations are totally
// ordered.
//
// The value is only written while the mutex is held. It is still stored in
// an atomic word so Get can read it without taking the lock and always sees
// the latest published write. Each mutation publishes a single in-range
// store.
type Locked struct {
	mu      sync.Mutex
	value   atomic.Int32
	maximum int32
}

func NewLocked() *Locked {
	return &Locked{maximum: DefaultMaximum}
}

func (c *Locked) Get() int32 {
	return c.value.Load()
}

func (c *Locked) Maximum() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.maximum
}

func (c *Locked) Increment() {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.value.Load() + 1
	if next >= c.maximum {
		next = 0
	}
	c.value.Store(next)
}

func (c *Locked) SetMaximum(m int32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := validateMaximum(m); err != nil {
		return err
	}
	c.maximum = m
	if c.value.Load() >= m {
		c.value.Store(0)
	}
	return nil
}
