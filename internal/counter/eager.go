package counter

import "sync/atomic"

// Eager is a lock-free Counter tuned for heavily contended increments.
//
// Increment is a single unconditional atomic add, which always succeeds in
// one step. The bound is enforced afterwards by trim, which is also run
// before every Get. Between the add and the trim other goroutines may
// observe the raw word outside [0, Maximum), so Get returns the word trim
// last found in range instead of loading it again.
type Eager struct {
	value   atomic.Int32
	maximum atomic.Int32
}

func NewEager() *Eager {
	c := &Eager{}
	c.maximum.Store(DefaultMaximum)
	return c
}

func (c *Eager) Get() int32 {
	return c.trim()
}

func (c *Eager) Maximum() int32 {
	return c.maximum.Load()
}

func (c *Eager) Increment() {
	c.value.Add(1)
	c.trim()
}

func (c *Eager) SetMaximum(m int32) error {
	if err := validateMaximum(m); err != nil {
		return err
	}
	c.maximum.Store(m)
	clamp(&c.value, m)
	return nil
}

// trim moves the value back into [0, maximum) by subtracting the bound
// until it fits and returns the in-range word it observed.
//
// Many concurrent adds can push the word several bounds past the limit, so a
// single correction is not always enough and the loop re-checks after every
// attempt. A failed CAS means another goroutine moved the word; the new word
// is validated on the next iteration like any other.
//
// The subtraction wraps like the add does. When the add overflowed int32
// the word is negative; under the default bound value-maximum wraps back by
// exactly 2^32 and lands on the true count minus the bound.
func (c *Eager) trim() int32 {
	for {
		value := c.value.Load()
		maximum := c.maximum.Load()
		if inRange(value, maximum) {
			return value
		}
		c.value.CompareAndSwap(value, value-maximum)
	}
}
