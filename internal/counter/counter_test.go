package counter

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const highIncrementCount = 1 << 24

func newCounter(t testing.TB, s Strategy) Counter {
	t.Helper()
	c, err := New(s)
	require.NoError(t, err)
	return c
}

func concurrentStrategies() []Strategy {
	var ss []Strategy
	for _, s := range Strategies() {
		if s.Concurrent() {
			ss = append(ss, s)
		}
	}
	return ss
}

func TestNew(t *testing.T) {
	for _, s := range Strategies() {
		c, err := New(s)
		require.NoError(t, err, "strategy %q", s)
		assert.NotNil(t, c, "strategy %q", s)
		assert.True(t, s.Valid())
	}

	_, err := New("optimistic")
	assert.True(t, errors.Is(err, ErrUnknownStrategy), "unexpected error: %v", err)
	assert.False(t, Strategy("optimistic").Valid())
}

func TestStrategyConcurrent(t *testing.T) {
	assert.False(t, StrategyUnsynchronized.Concurrent())
	assert.True(t, StrategyLocked.Concurrent())
	assert.True(t, StrategyCAS.Concurrent())
	assert.True(t, StrategyEager.Concurrent())
	assert.False(t, Strategy("optimistic").Concurrent())
}

func TestSetMaximumInvalid(t *testing.T) {
	for _, s := range Strategies() {
		t.Run(string(s), func(t *testing.T) {
			c := newCounter(t, s)
			for i := 0; i < 42; i++ {
				c.Increment()
			}

			for _, m := range []int32{0, -1234, math.MinInt32} {
				err := c.SetMaximum(m)
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidArgument), "unexpected error: %v", err)
				assert.Equal(t, int32(42), c.Get())
				assert.Equal(t, DefaultMaximum, c.Maximum())
			}
		})
	}
}

func TestSetMaximumZeroLeavesInitialState(t *testing.T) {
	for _, s := range Strategies() {
		c := newCounter(t, s)
		assert.Error(t, c.SetMaximum(0))
		assert.Equal(t, int32(0), c.Get(), "strategy %q", s)
	}
}

func TestInitialValueIsZero(t *testing.T) {
	for _, s := range Strategies() {
		c := newCounter(t, s)
		assert.Equal(t, int32(0), c.Get(), "strategy %q", s)
		assert.Equal(t, DefaultMaximum, c.Maximum(), "strategy %q", s)
	}
}

func TestMultipleIncrementation(t *testing.T) {
	for _, s := range Strategies() {
		t.Run(string(s), func(t *testing.T) {
			c := newCounter(t, s)
			for i := 0; i < highIncrementCount; i++ {
				c.Increment()
			}
			assert.Equal(t, int32(highIncrementCount), c.Get())
		})
	}
}

func TestMultipleIncrementationWithLimit(t *testing.T) {
	const (
		maximumValue = 100
		count        = 1024
	)
	for _, s := range Strategies() {
		t.Run(string(s), func(t *testing.T) {
			c := newCounter(t, s)
			require.NoError(t, c.SetMaximum(maximumValue))
			assert.Equal(t, int32(maximumValue), c.Maximum())

			for i := 0; i < count; i++ {
				c.Increment()
				if v := c.Get(); v < 0 || v >= maximumValue {
					t.Fatalf("value %d out of range after %d increments", v, i+1)
				}
			}
			assert.Equal(t, int32(count%maximumValue), c.Get())
		})
	}
}

func TestSettingLimitLessThanCurrent(t *testing.T) {
	for _, s := range Strategies() {
		t.Run(string(s), func(t *testing.T) {
			c := newCounter(t, s)
			for i := 0; i < 256; i++ {
				c.Increment()
			}
			require.NoError(t, c.SetMaximum(100))
			assert.Equal(t, int32(0), c.Get())

			// a bound equal to the value also resets it
			for i := 0; i < 10; i++ {
				c.Increment()
			}
			require.NoError(t, c.SetMaximum(10))
			assert.Equal(t, int32(0), c.Get())
		})
	}
}

func TestSettingLimitGreaterThanCurrent(t *testing.T) {
	for _, s := range Strategies() {
		t.Run(string(s), func(t *testing.T) {
			c := newCounter(t, s)
			for i := 0; i < 99; i++ {
				c.Increment()
			}
			require.NoError(t, c.SetMaximum(100))
			assert.Equal(t, int32(99), c.Get())

			c.Increment()
			assert.Equal(t, int32(0), c.Get())
		})
	}
}

// seed puts the counter just below the default bound so wrapping at
// math.MaxInt32 can be checked without 2^31 increments.
func seed(t *testing.T, c Counter, v int32) {
	t.Helper()
	switch c := c.(type) {
	case *Unsynchronized:
		c.value = v
	case *Locked:
		c.value.Store(v)
	case *CAS:
		c.value.Store(v)
	case *Eager:
		c.value.Store(v)
	default:
		t.Fatalf("BUG: unexpected counter type %T", c)
	}
}

func TestWrapAtDefaultMaximum(t *testing.T) {
	for _, s := range Strategies() {
		t.Run(string(s), func(t *testing.T) {
			c := newCounter(t, s)
			seed(t, c, math.MaxInt32-10)

			for i := 0; i < 9; i++ {
				c.Increment()
			}
			assert.Equal(t, int32(math.MaxInt32-1), c.Get())

			c.Increment()
			assert.Equal(t, int32(0), c.Get())

			for i := 0; i < 10; i++ {
				c.Increment()
			}
			assert.Equal(t, int32(10), c.Get())
		})
	}
}

func TestMultipleIncrementationWithMaxLimit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 2^31 increments in short mode")
	}
	const count = int64(math.MaxInt32) + 10

	c := NewCAS()
	for i := int64(0); i < count; i++ {
		c.Increment()
	}
	assert.Equal(t, int32(count%math.MaxInt32), c.Get())
}

func TestConcurrentIncrementation(t *testing.T) {
	testCases := []struct {
		name       string
		workers    int
		maximum    int32
		increments int
	}{
		{"default maximum", 16, DefaultMaximum, 1 << 20},
		{"with limit", 16, 250, 1 << 20},
		{"more workers than limit", 250 * 8, 250, 1 << 20},
		{"limit of one", 64, 1, 1 << 16},
	}

	for _, s := range concurrentStrategies() {
		for _, tc := range testCases {
			t.Run(string(s)+"/"+tc.name, func(t *testing.T) {
				c := newCounter(t, s)
				require.NoError(t, c.SetMaximum(tc.maximum))

				perWorker := tc.increments / tc.workers
				start := make(chan struct{})
				var wg sync.WaitGroup
				wg.Add(tc.workers)
				for i := 0; i < tc.workers; i++ {
					go func() {
						defer wg.Done()
						<-start
						for j := 0; j < perWorker; j++ {
							c.Increment()
						}
					}()
				}
				close(start)
				wg.Wait()

				total := int64(perWorker) * int64(tc.workers)
				assert.Equal(t, int32(total%int64(tc.maximum)), c.Get())
			})
		}
	}
}

func TestConcurrentReadsStayInRange(t *testing.T) {
	const maximum = 7
	for _, s := range concurrentStrategies() {
		t.Run(string(s), func(t *testing.T) {
			c := newCounter(t, s)
			require.NoError(t, c.SetMaximum(maximum))

			done := make(chan struct{})
			var writers sync.WaitGroup
			for i := 0; i < 8; i++ {
				writers.Add(1)
				go func() {
					defer writers.Done()
					for j := 0; j < 1<<14; j++ {
						c.Increment()
					}
				}()
			}

			var readers sync.WaitGroup
			var outOfRange []int32
			var mu sync.Mutex
			for i := 0; i < 4; i++ {
				readers.Add(1)
				go func() {
					defer readers.Done()
					for {
						select {
						case <-done:
							return
						default:
						}
						if v := c.Get(); v < 0 || v >= maximum {
							mu.Lock()
							outOfRange = append(outOfRange, v)
							mu.Unlock()
						}
					}
				}()
			}

			writers.Wait()
			close(done)
			readers.Wait()

			assert.Empty(t, outOfRange)
			assert.Equal(t, int32((8<<14)%maximum), c.Get())
		})
	}
}

func TestConcurrentSetMaximum(t *testing.T) {
	for _, s := range concurrentStrategies() {
		t.Run(string(s), func(t *testing.T) {
			c := newCounter(t, s)

			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < 1<<12; j++ {
						c.Increment()
					}
				}()
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				for _, m := range []int32{1000, 100, 10, 500, 50} {
					assert.NoError(t, c.SetMaximum(m))
				}
			}()
			wg.Wait()

			// An increment racing the last SetMaximum may still have wrapped
			// against the previous bound; the next one wraps against 50.
			c.Increment()

			assert.Equal(t, int32(50), c.Maximum())
			v := c.Get()
			assert.True(t, v >= 0 && v < 50, "value %d out of range", v)
		})
	}
}
