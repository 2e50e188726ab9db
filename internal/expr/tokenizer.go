package expr

import (
	"math"
	"strconv"
	"strings"
)

var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

type scanner struct {
	src string
	pos int
}

// Tokens splits text into tokens. Whitespace separates tokens but is never
// required between them.
func Tokens(text string) ([]Token, error) {
	s := &scanner{src: text}
	var tokens []Token
	for {
		s.skipSpace()
		if s.pos >= len(s.src) {
			return tokens, nil
		}
		tok, err := s.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case ' ', '\t', '\n', '\r':
			s.pos++
		default:
			return
		}
	}
}

func (s *scanner) next() (Token, error) {
	start := s.pos
	c := s.src[s.pos]

	switch {
	case isDigit(c) || c == '.':
		return s.number()
	case isLetter(c):
		return s.identifier()
	}

	s.pos++
	tok := Token{Text: string(c), Pos: start}
	switch c {
	case '+', '-', '*', '/', '^':
		tok.Kind = KindOperator
	case '(':
		tok.Kind = KindLParen
	case ')':
		tok.Kind = KindRParen
	case ',':
		tok.Kind = KindComma
	default:
		// report the whole rune, not a stray byte of it
		for s.pos < len(s.src) && s.src[s.pos]&0xC0 == 0x80 {
			s.pos++
		}
		tok.Text = s.src[start:s.pos]
		return Token{}, parseErr(tok, ErrUnknownToken)
	}
	return tok, nil
}

func (s *scanner) number() (Token, error) {
	start := s.pos
	digits := 0
	for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
		s.pos++
		digits++
	}
	if s.pos < len(s.src) && s.src[s.pos] == '.' {
		s.pos++
		for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
			s.pos++
			digits++
		}
	}
	if digits == 0 {
		return Token{}, parseErr(Token{Text: s.src[start:s.pos], Pos: start}, ErrUnknownToken)
	}

	// An exponent is only consumed when digits follow, so "2e" stays a
	// number followed by the constant e.
	if s.pos < len(s.src) && (s.src[s.pos] == 'e' || s.src[s.pos] == 'E') {
		i := s.pos + 1
		if i < len(s.src) && (s.src[i] == '+' || s.src[i] == '-') {
			i++
		}
		if i < len(s.src) && isDigit(s.src[i]) {
			for i < len(s.src) && isDigit(s.src[i]) {
				i++
			}
			s.pos = i
		}
	}

	text := s.src[start:s.pos]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Token{}, parseErr(Token{Text: text, Pos: start}, ErrUnknownToken)
	}
	return Token{Kind: KindNumber, Text: text, Value: v, Pos: start}, nil
}

func (s *scanner) identifier() (Token, error) {
	start := s.pos
	for s.pos < len(s.src) && (isLetter(s.src[s.pos]) || isDigit(s.src[s.pos])) {
		s.pos++
	}
	text := s.src[start:s.pos]
	name := strings.ToLower(text)
	tok := Token{Text: name, Pos: start}

	if name == "x" {
		tok.Kind = KindVariable
		return tok, nil
	}
	if v, ok := constants[name]; ok {
		tok.Kind = KindConstant
		tok.Value = v
		return tok, nil
	}
	if _, ok := functions[name]; ok {
		tok.Kind = KindFunction
		return tok, nil
	}
	tok.Text = text
	return Token{}, parseErr(tok, ErrUnknownToken)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}
