package counter

import "fmt"

// Strategy names a Counter implementation.
type Strategy string

const (
	StrategyUnsynchronized Strategy = "unsynchronized"
	StrategyLocked         Strategy = "locked"
	StrategyCAS            Strategy = "cas"
	StrategyEager          Strategy = "eager"
)

var constructors = map[Strategy]func() Counter{
	StrategyUnsynchronized: func() Counter { return NewUnsynchronized() },
	StrategyLocked:         func() Counter { return NewLocked() },
	StrategyCAS:            func() Counter { return NewCAS() },
	StrategyEager:          func() Counter { return NewEager() },
}

// Strategies returns all known strategies, the baseline first.
func Strategies() []Strategy {
	return []Strategy{
		StrategyUnsynchronized,
		StrategyLocked,
		StrategyCAS,
		StrategyEager,
	}
}

// Concurrent reports whether counters of this strategy may be mutated
// from several goroutines at once. Unknown strategies are not concurrent.
func (s Strategy) Concurrent() bool {
	return s.Valid() && s != StrategyUnsynchronized
}

func (s Strategy) Valid() bool {
	_, ok := constructors[s]
	return ok
}

// New creates a fresh counter implemented by strategy s.
func New(s Strategy) (Counter, error) {
	fn, ok := constructors[s]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
	return fn(), nil
}
