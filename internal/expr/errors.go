package expr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnbalanced indicates a parenthesis without its partner.
	ErrUnbalanced = errors.New("expr: unbalanced parentheses")

	// ErrMisplacedComma indicates a comma outside a function call argument list.
	ErrMisplacedComma = errors.New("expr: misplaced comma")

	// ErrUnknownToken indicates a character or name the grammar does not know.
	ErrUnknownToken = errors.New("expr: unknown token")

	// ErrArity indicates an operator or function with the wrong number of operands.
	ErrArity = errors.New("expr: wrong number of operands")

	// ErrMalformed indicates an expression that does not reduce to a single value.
	ErrMalformed = errors.New("expr: malformed expression")

	// ErrDomain indicates a function argument outside its domain.
	ErrDomain = errors.New("expr: argument outside function domain")

	// ErrDivideByZero indicates division by exactly zero.
	ErrDivideByZero = errors.New("expr: division by zero")
)

// ParseError locates a parse failure in the source text.
type ParseError struct {
	Pos   int
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("%s at offset %d", e.Err, e.Pos)
	}
	return fmt.Sprintf("%s at offset %d (%q)", e.Err, e.Pos, e.Token)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// EvalError reports the operation that faulted during evaluation.
type EvalError struct {
	Op  string
	Arg float64
	Err error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: %s(%g)", e.Err, e.Op, e.Arg)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

func parseErr(tok Token, err error) error {
	return &ParseError{Pos: tok.Pos, Token: tok.Text, Err: err}
}
