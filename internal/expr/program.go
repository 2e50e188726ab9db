package expr

import (
	"math"
	"strings"
)

type opcode uint8

const (
	opPush opcode = iota
	opVar
	opNeg
	opAdd
	opSub
	opMul
	opDiv
	opPow
	opCall
)

type function struct {
	name  string
	arity int
	apply func(args []float64) (float64, error)
}

var functions = map[string]*function{
	"sin": {name: "sin", arity: 1, apply: unary(math.Sin)},
	"cos": {name: "cos", arity: 1, apply: unary(math.Cos)},
	"tan": {name: "tan", arity: 1, apply: unary(math.Tan)},
	"abs": {name: "abs", arity: 1, apply: unary(math.Abs)},
	"sqrt": {name: "sqrt", arity: 1, apply: func(a []float64) (float64, error) {
		if a[0] < 0 {
			return 0, &EvalError{Op: "sqrt", Arg: a[0], Err: ErrDomain}
		}
		return math.Sqrt(a[0]), nil
	}},
	"log": {name: "log", arity: 1, apply: func(a []float64) (float64, error) {
		if a[0] <= 0 {
			return 0, &EvalError{Op: "log", Arg: a[0], Err: ErrDomain}
		}
		return math.Log(a[0]), nil
	}},
	"log10": {name: "log10", arity: 1, apply: func(a []float64) (float64, error) {
		if a[0] <= 0 {
			return 0, &EvalError{Op: "log10", Arg: a[0], Err: ErrDomain}
		}
		return math.Log10(a[0]), nil
	}},
	"pow": {name: "pow", arity: 2, apply: func(a []float64) (float64, error) {
		return math.Pow(a[0], a[1]), nil
	}},
	"max": {name: "max", arity: 2, apply: func(a []float64) (float64, error) {
		return math.Max(a[0], a[1]), nil
	}},
	"min": {name: "min", arity: 2, apply: func(a []float64) (float64, error) {
		return math.Min(a[0], a[1]), nil
	}},
}

func unary(f func(float64) float64) func([]float64) (float64, error) {
	return func(a []float64) (float64, error) {
		return f(a[0]), nil
	}
}

type instr struct {
	op    opcode
	value float64
	text  string
	fn    *function
}

// Program is a compiled formula in postfix order. It is immutable and safe
// for concurrent use.
type Program struct {
	source string
	code   []instr
	depth  int
}

// Empty reports whether the program was compiled from blank text. An empty
// program evaluates to NaN.
func (p *Program) Empty() bool {
	return len(p.code) == 0
}

func (p *Program) Source() string {
	return p.source
}

// String renders the postfix form, e.g. "x 2 ^ 2 -".
func (p *Program) String() string {
	parts := make([]string, len(p.code))
	for i, in := range p.code {
		switch in.op {
		case opPush:
			parts[i] = in.text
		case opVar:
			parts[i] = "x"
		case opNeg:
			parts[i] = "neg"
		case opAdd:
			parts[i] = "+"
		case opSub:
			parts[i] = "-"
		case opMul:
			parts[i] = "*"
		case opDiv:
			parts[i] = "/"
		case opPow:
			parts[i] = "^"
		case opCall:
			parts[i] = in.fn.name
		}
	}
	return strings.Join(parts, " ")
}

// Evaluate runs the program with x bound to the given value.
func (p *Program) Evaluate(x float64) (float64, error) {
	if len(p.code) == 0 {
		return math.NaN(), nil
	}

	stack := make([]float64, 0, p.depth)
	for _, in := range p.code {
		switch in.op {
		case opPush:
			stack = append(stack, in.value)
		case opVar:
			stack = append(stack, x)
		case opNeg:
			stack[len(stack)-1] = -stack[len(stack)-1]
		case opCall:
			n := in.fn.arity
			// operands were pushed left to right
			args := make([]float64, n)
			copy(args, stack[len(stack)-n:])
			stack = stack[:len(stack)-n]
			v, err := in.fn.apply(args)
			if err != nil {
				return math.NaN(), err
			}
			stack = append(stack, v)
		default:
			b := stack[len(stack)-1]
			a := stack[len(stack)-2]
			stack = stack[:len(stack)-2]
			v, err := binary(in.op, a, b)
			if err != nil {
				return math.NaN(), err
			}
			stack = append(stack, v)
		}
	}
	return stack[0], nil
}

func binary(op opcode, a, b float64) (float64, error) {
	switch op {
	case opAdd:
		return a + b, nil
	case opSub:
		return a - b, nil
	case opMul:
		return a * b, nil
	case opDiv:
		if b == 0 {
			return 0, &EvalError{Op: "/", Arg: a, Err: ErrDivideByZero}
		}
		return a / b, nil
	case opPow:
		return math.Pow(a, b), nil
	}
	return 0, ErrMalformed
}
