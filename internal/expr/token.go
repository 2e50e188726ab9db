package expr

import "fmt"

type Kind int

const (
	KindNumber Kind = iota
	KindVariable
	KindConstant
	KindFunction
	KindOperator
	KindLParen
	KindRParen
	KindComma
)

var kindNames = [...]string{
	KindNumber:   "number",
	KindVariable: "variable",
	KindConstant: "constant",
	KindFunction: "function",
	KindOperator: "operator",
	KindLParen:   "(",
	KindRParen:   ")",
	KindComma:    ",",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is one lexical unit. Pos is the byte offset of its first character.
// Value is set for numbers and constants.
type Token struct {
	Kind  Kind
	Text  string
	Value float64
	Pos   int
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q@%d", t.Kind, t.Text, t.Pos)
}

// operand reports whether the token produces a value on its own.
func (t Token) operand() bool {
	return t.Kind == KindNumber || t.Kind == KindVariable || t.Kind == KindConstant
}
