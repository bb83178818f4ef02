package counter

import (
	"errors"
	"fmt"
	"math"
)

// DefaultMaximum is the bound every counter starts with.
const DefaultMaximum int32 = math.MaxInt32

var (
	// ErrInvalidArgument is returned by SetMaximum for non-positive bounds.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownStrategy is returned by New for unregistered strategy names.
	ErrUnknownStrategy = errors.New("unknown strategy")
)

// Counter is a cyclic counter. It starts from 0, advances by one on each
// Increment and resets to 0 once the value would reach Maximum.
//
// Whether a Counter may be shared between goroutines depends on the strategy,
// see Strategy.Concurrent.
type Counter interface {
	// Get returns the current value, always in [0, Maximum).
	Get() int32

	// Increment advances the value by one, wrapping to 0 at Maximum.
	Increment()

	// SetMaximum replaces the bound. The value is reset to 0 if it is not
	// less than the new bound. Non-positive bounds are rejected with
	// ErrInvalidArgument and leave the counter untouched.
	SetMaximum(m int32) error

	// Maximum returns the bound currently in effect.
	Maximum() int32
}

func validateMaximum(m int32) error {
	if m <= 0 {
		return fmt.Errorf("%w: maximum value must be greater than zero, got %d", ErrInvalidArgument, m)
	}
	return nil
}

// inRange reports whether v is a valid value under bound m.
func inRange(v, m int32) bool {
	return v >= 0 && v < m
}
