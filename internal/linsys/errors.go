package linsys

import "errors"

var (
	// ErrDimension indicates a non-square matrix or mismatched vector length.
	ErrDimension = errors.New("linsys: dimension mismatch")

	// ErrNotFinite indicates a NaN or Inf input entry.
	ErrNotFinite = errors.New("linsys: input contains NaN or Inf")

	// ErrSingular indicates a pivot below the elimination threshold.
	ErrSingular = errors.New("linsys: matrix is singular")

	// ErrNotSymmetric indicates a non-symmetric matrix given to the square-root method.
	ErrNotSymmetric = errors.New("linsys: matrix is not symmetric")

	// ErrNotPositiveDefinite indicates a non-positive radicand in the square-root method.
	ErrNotPositiveDefinite = errors.New("linsys: matrix is not positive definite")

	// ErrZeroDiagonal indicates an iterative method given a zero diagonal entry.
	ErrZeroDiagonal = errors.New("linsys: zero on diagonal")

	// ErrInvalidOmega indicates a relaxation factor outside (0, 2).
	ErrInvalidOmega = errors.New("linsys: relaxation factor must be in (0, 2)")

	ErrInvalidConfig = errors.New("linsys: invalid iteration config")
	ErrExhausted     = errors.New("linsys: iteration exhausted")
	ErrUnknownMethod = errors.New("linsys: unknown method")
)
