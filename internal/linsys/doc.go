// Package linsys solves square linear systems Ax = b and records every
// intermediate step so the run can be replayed.
//
// Direct solvers implement [DirectSolver] and work on the augmented matrix
// [A | b]. Each row operation appends a [MatrixState] snapshot to the
// solution history:
//
//   - Gaussian elimination without pivoting
//   - with partial (row) pivoting
//   - with full (row and column) pivoting, un-permuting the result
//   - pivot-normalized elimination, dividing each pivot row by its pivot
//   - the square-root method for symmetric positive definite matrices
//
// A pivot below 1e-10 in magnitude, or a non-positive radicand in the
// square-root method, ends the history with a Fault snapshot; Solve then
// returns the partial solution together with [ErrSingular] or
// [ErrNotPositiveDefinite].
//
// Iterative solvers (Jacobi, Gauss-Seidel, SOR) are resumable iterators
// created with [NewIterator] and stepped with HasNext/Next, like the
// root-finding iterators.
package linsys
