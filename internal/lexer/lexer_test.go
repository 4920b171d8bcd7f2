package lexer

import (
	"testing"

	"github.com/zephyrlang/zr/internal/token"
)

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestScanOperators(t *testing.T) {
	tokens, err := New("t.zr", "==/=*+>-<!=<=>=!").Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	want := []token.Kind{
		token.EQ, token.SLASHEQ, token.STAR, token.PLUS,
		token.GT, token.MINUS, token.LT, token.NEQ, token.LTE, token.GTE,
		token.BANG, token.EOF,
	}
	got := kinds(tokens)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestScanNumberLiterals(t *testing.T) {
	tokens, err := New("t.zr", "5 5.25 0").Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	if tokens[0].Kind != token.INT || tokens[0].Literal.(int64) != 5 {
		t.Errorf("want int literal 5, got %v", tokens[0])
	}
	if tokens[1].Kind != token.FLOAT || tokens[1].Literal.(float64) != 5.25 {
		t.Errorf("want float literal 5.25, got %v", tokens[1])
	}
}

func TestScanMalformedNumber(t *testing.T) {
	_, err := New("t.zr", "1.").Scan()
	if err == nil {
		t.Fatal("expected an error for a trailing decimal point")
	}
}

func TestScanCharLiteral(t *testing.T) {
	tokens, err := New("t.zr", "'a' '\\n'").Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	if tokens[0].Kind != token.CHAR || tokens[0].Literal.(rune) != 'a' {
		t.Errorf("want char literal 'a', got %v", tokens[0])
	}
	if tokens[1].Kind != token.CHAR || tokens[1].Literal.(rune) != '\n' {
		t.Errorf("want char literal '\\n', got %v", tokens[1])
	}
}

func TestScanLifetime(t *testing.T) {
	tokens, err := New("t.zr", "'a 'long_name").Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	if tokens[0].Kind != token.LIFETIME || tokens[0].Lexeme != "a" {
		t.Errorf("want lifetime 'a, got %v", tokens[0])
	}
	if tokens[1].Kind != token.LIFETIME || tokens[1].Lexeme != "long_name" {
		t.Errorf("want lifetime 'long_name, got %v", tokens[1])
	}
}

func TestScanPlainString(t *testing.T) {
	tokens, err := New("t.zr", `"hello\nworld"`).Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	if tokens[0].Kind != token.STRING || tokens[0].Literal.(string) != "hello\nworld" {
		t.Errorf("got %#v", tokens[0])
	}
}

func TestScanInterpolatedString(t *testing.T) {
	tokens, err := New("t.zr", `"x = ${ 1 + 2 }!"`).Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	tok := tokens[0]
	if tok.Kind != token.INTERP_STRING {
		t.Fatalf("want INTERP_STRING, got %v", tok.Kind)
	}
	if len(tok.Segments) != 3 {
		t.Fatalf("want 3 segments, got %d: %+v", len(tok.Segments), tok.Segments)
	}
	if tok.Segments[0].IsExpression || tok.Segments[0].Content != "x = " {
		t.Errorf("segment 0 = %+v", tok.Segments[0])
	}
	if !tok.Segments[1].IsExpression || tok.Segments[1].Content != " 1 + 2 " {
		t.Errorf("segment 1 = %+v", tok.Segments[1])
	}
	if tok.Segments[2].IsExpression || tok.Segments[2].Content != "!" {
		t.Errorf("segment 2 = %+v", tok.Segments[2])
	}
}

func TestScanInterpolatedStringWithNestedStringBraces(t *testing.T) {
	// the brace inside the nested string literal must not close the
	// interpolation segment early.
	tokens, err := New("t.zr", `"${ f("}") }"`).Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	tok := tokens[0]
	if len(tok.Segments) != 1 || !tok.Segments[0].IsExpression {
		t.Fatalf("want a single expression segment, got %+v", tok.Segments)
	}
}

func TestScanUnterminatedString(t *testing.T) {
	_, err := New("t.zr", `"abc`).Scan()
	if err == nil {
		t.Fatal("expected an unterminated string error")
	}
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	tokens, err := New("t.zr", "let mut x struct Foo").Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	want := []token.Kind{token.LET, token.MUT, token.IDENT, token.STRUCT, token.IDENT, token.EOF}
	got := kinds(tokens)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTokenSpansAreMonotonic(t *testing.T) {
	tokens, err := New("t.zr", "let x = 1 + 2;\nlet y = x;").Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	for i := 0; i+1 < len(tokens); i++ {
		if tokens[i].Span.ByteEnd > tokens[i+1].Span.ByteStart {
			t.Errorf("span not monotonic between token %d (%v) and %d (%v)", i, tokens[i], i+1, tokens[i+1])
		}
	}
}
