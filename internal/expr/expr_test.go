package expr

import (
	"errors"
	"math"
	"testing"
)

func eval(t *testing.T, text string, x float64) float64 {
	t.Helper()
	p, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", text, err)
	}
	v, err := p.Evaluate(x)
	if err != nil {
		t.Fatalf("Evaluate(%q, %v) failed: %v", text, x, err)
	}
	return v
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		expr string
		x    float64
		want float64
	}{
		{"2 + 3 * 4", 0, 14},
		{"2 ^ 3 ^ 2", 0, 512},
		{"(2 + 3) * 4", 0, 20},
		{"10 - 4 - 3", 0, 3},
		{"8 / 4 / 2", 0, 1},
		{"x^2 - 2", 1.5, 0.25},
		{"x^2-2", 3, 7},
		{"-x", 2, -2},
		{"-2^2", 0, 4},
		{"2^-1", 0, 0.5},
		{"3 - -2", 0, 5},
		{"-(x + 1)", 1, -2},
		{"sin(pi / 2)", 0, 1},
		{"cos(0)", 0, 1},
		{"tan(0)", 0, 0},
		{"abs(-3.5)", 0, 3.5},
		{"sqrt(16)", 0, 4},
		{"log(e)", 0, 1},
		{"log10(1000)", 0, 3},
		{"pow(2, 10)", 0, 1024},
		{"max(2, x)", 5, 5},
		{"min(2, x)", 5, 2},
		{"max(1, min(4, 3))", 0, 3},
		{"pow(x + 1, 2) - 1", 2, 8},
		{"SIN(PI) + X", 1, 1},
		{"1e-3 * 1000", 0, 1},
		{"2.5E2", 0, 250},
		{".5 + .5", 0, 1},
		{"x - cos(x)", 0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got := eval(t, tt.expr, tt.x)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("%s at x=%v = %v, want %v", tt.expr, tt.x, got, tt.want)
			}
		})
	}
}

func TestEvaluate_MatchesNative(t *testing.T) {
	p, err := Parse("x^3 - 2*x + sin(x) / (1 + x^2)")
	if err != nil {
		t.Fatal(err)
	}
	for _, x := range []float64{-3, -1.25, 0, 0.5, 2, 7.75} {
		want := math.Pow(x, 3) - 2*x + math.Sin(x)/(1+x*x)
		got, err := p.Evaluate(x)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("x=%v: got %v, want %v", x, got, want)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		expr string
		want error
	}{
		{"(2+3", ErrUnbalanced},
		{"2+3)", ErrUnbalanced},
		{"(", ErrUnbalanced},
		{"2 # 3", ErrUnknownToken},
		{"foo(2)", ErrUnknownToken},
		{"y + 1", ErrUnknownToken},
		{"2 +", ErrArity},
		{"* 2", ErrArity},
		{"sin(1, 2)", ErrArity},
		{"pow(2)", ErrArity},
		{"sin()", ErrArity},
		{"sin x", ErrArity},
		{"1, 2", ErrMisplacedComma},
		{"(1, 2)", ErrMisplacedComma},
		{"max(1,)", ErrMisplacedComma},
		{"max(,1)", ErrMisplacedComma},
		{"2x", ErrMalformed},
		{"2 3", ErrMalformed},
		{"(1)(2)", ErrMalformed},
		{"()", ErrMalformed},
		{"2e", ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := Parse(tt.expr)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Parse(%q) error = %v, want %v", tt.expr, err, tt.want)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Parse(%q) error %T is not a *ParseError", tt.expr, err)
			}
		})
	}
}

func TestParseError_Position(t *testing.T) {
	_, err := Parse("1 + 2 $ 3")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if pe.Pos != 6 {
		t.Errorf("Pos = %d, want 6", pe.Pos)
	}
	if pe.Token != "$" {
		t.Errorf("Token = %q, want %q", pe.Token, "$")
	}
}

func TestEvaluate_DomainErrors(t *testing.T) {
	tests := []struct {
		expr string
		x    float64
		want error
	}{
		{"sqrt(x)", -1, ErrDomain},
		{"log(x)", 0, ErrDomain},
		{"log10(x)", -5, ErrDomain},
		{"1 / x", 0, ErrDivideByZero},
		{"1 / (x - x)", 3, ErrDivideByZero},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			p, err := Parse(tt.expr)
			if err != nil {
				t.Fatal(err)
			}
			v, err := p.Evaluate(tt.x)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if !math.IsNaN(v) {
				t.Errorf("value = %v, want NaN", v)
			}
		})
	}
}

func TestParse_Empty(t *testing.T) {
	for _, text := range []string{"", "   ", "\t\n"} {
		p, err := Parse(text)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", text, err)
		}
		if !p.Empty() {
			t.Errorf("Parse(%q) should be empty", text)
		}
		v, err := p.Evaluate(1)
		if err != nil || !math.IsNaN(v) {
			t.Errorf("Evaluate = %v, %v; want NaN, nil", v, err)
		}
	}
}

func TestProgram_String(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"2 + 3 * 4", "2 3 4 * +"},
		{"-x^2", "x neg 2 ^"},
		{"max(x, 1) - pi", "x 1 max pi -"},
		{"2^3^2", "2 3 2 ^ ^"},
	}
	for _, tt := range tests {
		p, err := Parse(tt.expr)
		if err != nil {
			t.Fatal(err)
		}
		if got := p.String(); got != tt.want {
			t.Errorf("String(%q) = %q, want %q", tt.expr, got, tt.want)
		}
	}
}

func TestTokens(t *testing.T) {
	tokens, err := Tokens("log10(x)*2.5e-1")
	if err != nil {
		t.Fatal(err)
	}
	kinds := []Kind{KindFunction, KindLParen, KindVariable, KindRParen, KindOperator, KindNumber}
	if len(tokens) != len(kinds) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(kinds), tokens)
	}
	for i, k := range kinds {
		if tokens[i].Kind != k {
			t.Errorf("token %d kind = %v, want %v", i, tokens[i].Kind, k)
		}
	}
	if tokens[5].Value != 0.25 {
		t.Errorf("number value = %v, want 0.25", tokens[5].Value)
	}
	if tokens[4].Pos != 8 {
		t.Errorf("operator pos = %d, want 8", tokens[4].Pos)
	}
}

func TestParse_Reentrant(t *testing.T) {
	p, err := Parse("x^2 - 2")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if v, _ := p.Evaluate(2); v != 2 {
			t.Fatalf("Evaluate(2) = %v on call %d, want 2", v, i)
		}
	}
}
