package parser

import (
	"testing"

	"github.com/zephyrlang/zr/internal/ast"
	"github.com/zephyrlang/zr/internal/lexer"
)

func parseSource(t *testing.T, src string) ([]ast.Stmt, []error) {
	t.Helper()
	toks, err := lexer.New("test.zr", src).Scan()
	if err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	return New("test.zr", toks).Parse()
}

func requireNoErrors(t *testing.T, errs []error) {
	t.Helper()
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
}

func TestParseLetDeclaration(t *testing.T) {
	stmts, errs := parseSource(t, `let mut x: i32 = 1 + 2;`)
	requireNoErrors(t, errs)
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	let, ok := stmts[0].(*ast.Let)
	if !ok {
		t.Fatalf("expected *ast.Let, got %T", stmts[0])
	}
	if let.Name != "x" || !let.Mutable {
		t.Errorf("got name=%q mutable=%v", let.Name, let.Mutable)
	}
	if _, ok := let.Annotation.(ast.IntType); !ok {
		t.Errorf("expected i32 annotation, got %T", let.Annotation)
	}
	if _, ok := let.Initializer.(*ast.Binary); !ok {
		t.Errorf("expected binary initializer, got %T", let.Initializer)
	}
}

func TestParseFunctionWithSelfParam(t *testing.T) {
	stmts, errs := parseSource(t, `func area(&self) -> f64 { return self.w * self.h; }`)
	requireNoErrors(t, errs)
	fn, ok := stmts[0].(*ast.Function)
	if !ok {
		t.Fatalf("expected *ast.Function, got %T", stmts[0])
	}
	if len(fn.Params) != 1 || !fn.Params[0].IsSelf || !fn.Params[0].SelfRef {
		t.Fatalf("expected a single &self param, got %+v", fn.Params)
	}
	if _, ok := fn.ReturnType.(ast.FloatType); !ok {
		t.Errorf("expected f64 return type, got %T", fn.ReturnType)
	}
}

func TestParseIfExpressionTailPosition(t *testing.T) {
	stmts, errs := parseSource(t, `func f() -> i32 { if true { 1 } else { 2 } }`)
	requireNoErrors(t, errs)
	fn := stmts[0].(*ast.Function)
	if fn.Body.Trailing == nil {
		t.Fatal("expected the if to be promoted to the block's trailing expression")
	}
	if _, ok := fn.Body.Trailing.(*ast.IfExpr); !ok {
		t.Errorf("expected *ast.IfExpr, got %T", fn.Body.Trailing)
	}
}

func TestParseIfAsStatementWhenNotInTailPosition(t *testing.T) {
	stmts, errs := parseSource(t, `func f() { if true { } let x = 1; }`)
	requireNoErrors(t, errs)
	fn := stmts[0].(*ast.Function)
	if len(fn.Body.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(fn.Body.Statements))
	}
	if _, ok := fn.Body.Statements[0].(*ast.If); !ok {
		t.Errorf("expected *ast.If as a statement, got %T", fn.Body.Statements[0])
	}
}

func TestParseStructLiteralVsBlockAmbiguity(t *testing.T) {
	stmts, errs := parseSource(t, `
struct Point { x: i32, y: i32 }
func f() {
    if Point { x: 1, y: 2 }.x == 1 {
    }
}
`)
	requireNoErrors(t, errs)
	fn := stmts[1].(*ast.Function)
	// the if closes the function body, so it is promoted to the block's
	// trailing expression.
	ifExpr, ok := fn.Body.Trailing.(*ast.IfExpr)
	if !ok {
		t.Fatalf("expected *ast.IfExpr, got %T", fn.Body.Trailing)
	}
	bin, ok := ifExpr.Condition.(*ast.Binary)
	if !ok {
		t.Fatalf("expected binary condition, got %T", ifExpr.Condition)
	}
	field, ok := bin.Left.(*ast.FieldAccess)
	if !ok {
		t.Fatalf("expected field access on lhs, got %T", bin.Left)
	}
	if _, ok := field.Object.(*ast.StructInit); !ok {
		t.Errorf("expected struct-literal condition despite the if-brace, got %T", field.Object)
	}
}

func TestParseEnumVariantConstruction(t *testing.T) {
	stmts, errs := parseSource(t, `
enum Shape { Circle(f64), Empty }
func f() {
    let s = Shape::Circle(1.5);
    let e = Shape::Empty;
}
`)
	requireNoErrors(t, errs)
	fn := stmts[1].(*ast.Function)
	let1 := fn.Body.Statements[0].(*ast.Let)
	variant, ok := let1.Initializer.(*ast.EnumVariant)
	if !ok {
		t.Fatalf("expected *ast.EnumVariant, got %T", let1.Initializer)
	}
	if variant.EnumName != "Shape" || variant.Variant != "Circle" || variant.Data == nil {
		t.Errorf("got %+v", variant)
	}
}

func TestParseForRangeLoop(t *testing.T) {
	stmts, errs := parseSource(t, `func f() { for i in 0..10 { } }`)
	requireNoErrors(t, errs)
	fn := stmts[0].(*ast.Function)
	forStmt, ok := fn.Body.Statements[0].(*ast.For)
	if !ok {
		t.Fatalf("expected *ast.For, got %T", fn.Body.Statements[0])
	}
	if forStmt.Var != "i" || forStmt.Inclusive {
		t.Errorf("got var=%q inclusive=%v", forStmt.Var, forStmt.Inclusive)
	}
	if forStmt.End == nil {
		t.Fatal("expected a range end")
	}
}

func TestParseMatchExpression(t *testing.T) {
	stmts, errs := parseSource(t, `
func f(n: i32) -> i32 {
    match n {
        0 => 1,
        x => x * 2,
    }
}
`)
	requireNoErrors(t, errs)
	fn := stmts[0].(*ast.Function)
	m, ok := fn.Body.Trailing.(*ast.Match)
	if !ok {
		t.Fatalf("expected *ast.Match as trailing expression, got %T", fn.Body.Trailing)
	}
	if len(m.Arms) != 2 {
		t.Fatalf("expected 2 arms, got %d", len(m.Arms))
	}
	if _, ok := m.Arms[0].Pattern.(ast.LiteralPattern); !ok {
		t.Errorf("expected a literal pattern, got %T", m.Arms[0].Pattern)
	}
	if _, ok := m.Arms[1].Pattern.(ast.IdentPattern); !ok {
		t.Errorf("expected an ident pattern, got %T", m.Arms[1].Pattern)
	}
}

func TestParseClosure(t *testing.T) {
	stmts, errs := parseSource(t, `let add = |a: i32, b: i32| a + b;`)
	requireNoErrors(t, errs)
	let := stmts[0].(*ast.Let)
	closure, ok := let.Initializer.(*ast.Closure)
	if !ok {
		t.Fatalf("expected *ast.Closure, got %T", let.Initializer)
	}
	if len(closure.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(closure.Params))
	}
}

func TestParseReferenceAndDereference(t *testing.T) {
	stmts, errs := parseSource(t, `
func f(r: &mut i32) {
    let v = *r;
    let p = &v;
}
`)
	requireNoErrors(t, errs)
	fn := stmts[0].(*ast.Function)
	if fn.Params[0].Type.(ast.ReferenceType).Mutable != true {
		t.Errorf("expected &mut i32 param type")
	}
	let1 := fn.Body.Statements[0].(*ast.Let)
	if _, ok := let1.Initializer.(*ast.Dereference); !ok {
		t.Errorf("expected dereference, got %T", let1.Initializer)
	}
	let2 := fn.Body.Statements[1].(*ast.Let)
	if _, ok := let2.Initializer.(*ast.Reference); !ok {
		t.Errorf("expected reference, got %T", let2.Initializer)
	}
}

func TestParseCompoundAssignmentDesugars(t *testing.T) {
	stmts, errs := parseSource(t, `func f(mut x: i32) { x += 1; }`)
	requireNoErrors(t, errs)
	fn := stmts[0].(*ast.Function)
	exprStmt := fn.Body.Statements[0].(*ast.ExpressionStmt)
	assign, ok := exprStmt.Expression.(*ast.Assign)
	if !ok {
		t.Fatalf("expected *ast.Assign, got %T", exprStmt.Expression)
	}
	if _, ok := assign.Value.(*ast.Binary); !ok {
		t.Errorf("expected the rhs to desugar into a binary add, got %T", assign.Value)
	}
}

func TestParseInterpolatedString(t *testing.T) {
	stmts, errs := parseSource(t, `let s = "hi ${1 + 2}!";`)
	requireNoErrors(t, errs)
	let := stmts[0].(*ast.Let)
	interp, ok := let.Initializer.(*ast.InterpString)
	if !ok {
		t.Fatalf("expected *ast.InterpString, got %T", let.Initializer)
	}
	if len(interp.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(interp.Segments))
	}
	if !interp.Segments[1].IsExpression {
		t.Error("expected the middle segment to be an expression")
	}
}

func TestParseImportRejectsMain(t *testing.T) {
	_, errs := parseSource(t, `import a::main;`)
	if len(errs) == 0 {
		t.Fatal("expected an error importing 'main'")
	}
}

func TestParseStructAndImpl(t *testing.T) {
	stmts, errs := parseSource(t, `
struct Counter { value: i32 }
impl Counter {
    func increment(&mut self) {
        self.value += 1;
    }
}
`)
	requireNoErrors(t, errs)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 top-level statements, got %d", len(stmts))
	}
	impl, ok := stmts[1].(*ast.Impl)
	if !ok {
		t.Fatalf("expected *ast.Impl, got %T", stmts[1])
	}
	if impl.TargetType != "Counter" || len(impl.Methods) != 1 {
		t.Fatalf("got %+v", impl)
	}
	if !impl.Methods[0].Params[0].SelfMut {
		t.Error("expected &mut self")
	}
}

func TestPrintASTJSONProducesOutput(t *testing.T) {
	stmts, errs := parseSource(t, `let x = 1;`)
	requireNoErrors(t, errs)
	out, err := PrintASTJSON(stmts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == "" {
		t.Fatal("expected non-empty JSON output")
	}
}
