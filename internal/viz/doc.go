// Package viz renders algorithm runs in the terminal.
//
// The [Stepper] model animates a [Source] with Bubble Tea, one algorithm
// step per tick. Root sources draw f(x) on a braille [Canvas] with the
// iterates marked; linear sources show the iterate table; direct sources
// replay the elimination history one matrix snapshot at a time.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	N     - Single step while paused
//	T     - Cycle color themes
//	?     - Show help
//	Q     - Quit
//
// The static renderers ([RenderRootTable], [RenderLinearTable],
// [RenderMatrixState], [Chart]) are used by the non-interactive commands.
package viz
