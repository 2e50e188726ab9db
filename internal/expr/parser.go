package expr

import "strings"

type precedence struct {
	level      int
	rightAssoc bool
}

var binaryOps = map[string]struct {
	op opcode
	precedence
}{
	"+": {opAdd, precedence{2, false}},
	"-": {opSub, precedence{2, false}},
	"*": {opMul, precedence{3, false}},
	"/": {opDiv, precedence{3, false}},
	"^": {opPow, precedence{4, true}},
}

// unary minus binds tighter than ^, so -2^2 is (-2)^2
var negPrecedence = precedence{5, true}

type itemKind int

const (
	itemOperator itemKind = iota
	itemFunction
	itemParen
)

type stackItem struct {
	kind itemKind
	op   opcode
	prec precedence
	fn   *function
	tok  Token
}

// frame tracks one open parenthesis.
type frame struct {
	call   *function
	commas int
}

type parser struct {
	tokens []Token
	code   []instr
	ops    []stackItem
	frames []frame
}

// Parse compiles text into a Program. Blank text yields an empty program
// that always evaluates to NaN.
func Parse(text string) (*Program, error) {
	if strings.TrimSpace(text) == "" {
		return &Program{source: text}, nil
	}

	tokens, err := Tokens(text)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	if err := p.run(); err != nil {
		return nil, err
	}

	depth, err := checkDepth(p.code, tokens[len(tokens)-1])
	if err != nil {
		return nil, err
	}
	return &Program{source: text, code: p.code, depth: depth}, nil
}

func (p *parser) run() error {
	expectOperand := true
	var prev *Token

	for i := range p.tokens {
		tok := p.tokens[i]
		switch tok.Kind {
		case KindNumber, KindConstant, KindVariable:
			if !expectOperand {
				return parseErr(tok, ErrMalformed)
			}
			if tok.Kind == KindVariable {
				p.code = append(p.code, instr{op: opVar})
			} else {
				p.code = append(p.code, instr{op: opPush, value: tok.Value, text: tok.Text})
			}
			expectOperand = false

		case KindFunction:
			if !expectOperand {
				return parseErr(tok, ErrMalformed)
			}
			if i+1 >= len(p.tokens) || p.tokens[i+1].Kind != KindLParen {
				return parseErr(tok, ErrArity)
			}
			p.ops = append(p.ops, stackItem{kind: itemFunction, fn: functions[tok.Text], tok: tok})

		case KindLParen:
			if !expectOperand {
				return parseErr(tok, ErrMalformed)
			}
			f := frame{}
			if prev != nil && prev.Kind == KindFunction {
				f.call = functions[prev.Text]
			}
			p.frames = append(p.frames, f)
			p.ops = append(p.ops, stackItem{kind: itemParen, tok: tok})

		case KindRParen:
			if expectOperand {
				return p.danglingClose(tok, prev)
			}
			if err := p.popUntilParen(tok, ErrUnbalanced); err != nil {
				return err
			}
			p.ops = p.ops[:len(p.ops)-1]
			f := p.frames[len(p.frames)-1]
			p.frames = p.frames[:len(p.frames)-1]
			if f.call != nil {
				if f.commas+1 != f.call.arity {
					return parseErr(tok, ErrArity)
				}
				// the function item sits right under its parenthesis
				p.ops = p.ops[:len(p.ops)-1]
				p.code = append(p.code, instr{op: opCall, fn: f.call})
			}

		case KindComma:
			if len(p.frames) == 0 || p.frames[len(p.frames)-1].call == nil || expectOperand {
				return parseErr(tok, ErrMisplacedComma)
			}
			if err := p.popUntilParen(tok, ErrMisplacedComma); err != nil {
				return err
			}
			p.frames[len(p.frames)-1].commas++
			expectOperand = true

		case KindOperator:
			if expectOperand {
				if tok.Text != "-" {
					return parseErr(tok, ErrArity)
				}
				// prefix operators never pop on push
				p.ops = append(p.ops, stackItem{kind: itemOperator, op: opNeg, prec: negPrecedence, tok: tok})
				break
			}
			bin := binaryOps[tok.Text]
			for len(p.ops) > 0 {
				top := p.ops[len(p.ops)-1]
				if top.kind != itemOperator {
					break
				}
				if top.prec.level < bin.level || top.prec.level == bin.level && bin.rightAssoc {
					break
				}
				p.emit(top)
				p.ops = p.ops[:len(p.ops)-1]
			}
			p.ops = append(p.ops, stackItem{kind: itemOperator, op: bin.op, prec: bin.precedence, tok: tok})
			expectOperand = true
		}
		prev = &p.tokens[i]
	}

	if expectOperand {
		if prev.Kind == KindLParen {
			return parseErr(*prev, ErrUnbalanced)
		}
		return parseErr(*prev, ErrArity)
	}
	for len(p.ops) > 0 {
		top := p.ops[len(p.ops)-1]
		if top.kind == itemParen {
			return parseErr(top.tok, ErrUnbalanced)
		}
		p.emit(top)
		p.ops = p.ops[:len(p.ops)-1]
	}
	return nil
}

// danglingClose classifies a ')' that arrives where an operand is expected.
func (p *parser) danglingClose(tok Token, prev *Token) error {
	switch {
	case prev == nil:
		return parseErr(tok, ErrUnbalanced)
	case prev.Kind == KindComma:
		return parseErr(*prev, ErrMisplacedComma)
	case prev.Kind == KindLParen && len(p.frames) > 0 && p.frames[len(p.frames)-1].call != nil:
		return parseErr(tok, ErrArity)
	case prev.Kind == KindLParen:
		return parseErr(tok, ErrMalformed)
	}
	return parseErr(*prev, ErrArity)
}

// popUntilParen emits operators down to the nearest '(' and leaves it on the
// stack.
func (p *parser) popUntilParen(tok Token, missing error) error {
	for {
		if len(p.ops) == 0 {
			return parseErr(tok, missing)
		}
		top := p.ops[len(p.ops)-1]
		if top.kind == itemParen {
			return nil
		}
		p.emit(top)
		p.ops = p.ops[:len(p.ops)-1]
	}
}

func (p *parser) emit(item stackItem) {
	switch item.kind {
	case itemOperator:
		p.code = append(p.code, instr{op: item.op})
	case itemFunction:
		p.code = append(p.code, instr{op: opCall, fn: item.fn})
	}
}

// checkDepth simulates the value stack and returns its peak height.
func checkDepth(code []instr, last Token) (int, error) {
	depth, peak := 0, 0
	for _, in := range code {
		need, push := 0, 1
		switch in.op {
		case opNeg:
			need = 1
		case opAdd, opSub, opMul, opDiv, opPow:
			need = 2
		case opCall:
			need = in.fn.arity
		}
		if depth < need {
			return 0, parseErr(last, ErrArity)
		}
		depth += push - need
		if depth > peak {
			peak = depth
		}
	}
	if depth != 1 {
		return 0, parseErr(last, ErrMalformed)
	}
	return peak, nil
}
