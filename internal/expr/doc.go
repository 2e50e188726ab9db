// Package expr compiles single-variable arithmetic formulas into postfix
// programs that can be evaluated many times.
//
// Supported syntax:
//
//   - numbers such as 2, 0.5, .25 and 1e-3
//   - the variable x and the constants pi and e
//   - binary operators + - * / ^ where ^ binds tightest and is right-associative
//   - unary minus, which binds tighter than every binary operator
//   - sin cos tan abs sqrt log log10 (one argument) and pow max min (two)
//
// Names are case-insensitive. Implicit multiplication is not supported, so
// "2x" is rejected and must be written "2*x".
//
// # Example
//
//	p, err := expr.Parse("x^2 - 2")
//	if err != nil {
//		return err
//	}
//	y, err := p.Evaluate(1.5)
//
// Parse validates operand counts up front, so a parsed [Program] can only
// fail at evaluation time with [ErrDomain] or [ErrDivideByZero].
package expr
