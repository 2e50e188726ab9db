package rootfind

import "errors"

var (
	// ErrArity indicates a method created with the wrong number of initial points.
	ErrArity = errors.New("rootfind: wrong number of initial points for method")

	// ErrNeedsG indicates a fixed-point method used without g(x).
	ErrNeedsG = errors.New("rootfind: method requires g(x)")

	// ErrInvalidConfig indicates a non-positive step cap, update interval or damping count.
	ErrInvalidConfig = errors.New("rootfind: invalid config")

	// ErrExhausted indicates Next was called after the iteration terminated.
	ErrExhausted = errors.New("rootfind: iteration exhausted")

	// ErrUnknownMethod indicates a method name that is not registered.
	ErrUnknownMethod = errors.New("rootfind: unknown method")

	ErrNilEquation = errors.New("rootfind: nil equation")
)
