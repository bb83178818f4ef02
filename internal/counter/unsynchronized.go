package counter

// Unsynchronized is the baseline Counter: plain fields, no atomics, no locks.
//
// It is NOT safe for concurrent use. Concurrent Increment calls lose
// updates and readers on other goroutines may never see a write. Use it
// from a single goroutine only.
type Unsynchronized struct {
	value   int32
	maximum int32
}

func NewUnsynchronized() *Unsynchronized {
	return &Unsynchronized{maximum: DefaultMaximum}
}

func (c *Unsynchronized) Get() int32 { return c.value }

func (c *Unsynchronized) Maximum() int32 { return c.maximum }

func (c *Unsynchronized) Increment() {
	c.value++
	c.checkOverflow()
}

func (c *Unsynchronized) SetMaximum(m int32) error {
	if err := validateMaximum(m); err != nil {
		return err
	}
	c.maximum = m
	c.checkOverflow()
	return nil
}

// checkOverflow resets the value once it reaches the bound.
// value+1 never overflows int32 because value < maximum <= MaxInt32.
func (c *Unsynchronized) checkOverflow() {
	if c.value >= c.maximum {
		c.value = 0
	}
}
