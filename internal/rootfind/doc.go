// Package rootfind implements iterative methods for a single nonlinear
// equation f(x) = 0 as resumable state machines.
//
// Every method is driven the same way:
//
//	it, err := rootfind.New(rootfind.Newton, eq, 1.0, rootfind.DefaultConfig())
//	for it.HasNext() {
//		st, err := it.Next()
//		...
//	}
//
// Step 0 always reports the initial point. Each later call to
// [Iterator.Next] performs exactly one iteration and returns an
// [IterationState]. A stalled step (vanishing derivative or denominator, no
// acceptable damping factor) produces a NaN iterate, after which HasNext
// reports false. Iteration also stops once the step cap in [Config] is
// exceeded.
//
// Two-point methods ([SinglePointSecant], [TwoPointSecant]) are created with
// [NewTwoPoint]; all others with [New]. [SimpleIteration] and [Aitken]
// iterate the fixed-point form x = g(x) and require the equation to carry g.
package rootfind
