package cmd

import "testing"

func TestLexParseRoundTrip(t *testing.T) {
	tokens, stmts, err := lexParse("t.zr", `func main() { let x = 1; }`)
	if err != nil {
		t.Fatal(err)
	}
	if len(tokens) == 0 {
		t.Fatal("expected a non-empty token stream")
	}
	if len(stmts) != 1 {
		t.Fatalf("expected 1 top-level statement, got %d", len(stmts))
	}
}

func TestLexParsePropagatesSyntaxError(t *testing.T) {
	_, _, err := lexParse("t.zr", `func main() { let x = ; }`)
	if err == nil {
		t.Fatal("expected a syntax error for a missing expression")
	}
}

func TestCompileProgramProducesBytecode(t *testing.T) {
	_, stmts, err := lexParse("t.zr", `func main() { print("hi"); }`)
	if err != nil {
		t.Fatal(err)
	}
	bc, err := compileProgram("t.zr", stmts)
	if err != nil {
		t.Fatal(err)
	}
	if len(bc.Instructions) == 0 {
		t.Fatal("expected a non-empty instruction stream")
	}
	if _, ok := bc.Functions["main"]; !ok {
		t.Fatal("expected a registered 'main' function")
	}
}
