package parser

import (
	"encoding/json"
	"os"

	"github.com/zephyrlang/zr/internal/ast"
)

// astPrinter implements ast.ExprVisitor and ast.StmtVisitor, building a
// JSON-friendly map/slice representation of the tree for the REPL's
// `:ast` inspection command, the same role the teacher's astPrinter
// plays for its JSON dump.
//
// ast.Stmt.Accept only returns an error, so each VisitX method below
// stashes its built value in `result` before returning; acceptStmt reads
// it back immediately. Recursion is strictly depth-first, so an inner
// acceptStmt call always resolves (and is read out) before the outer
// one overwrites `result` with its own value.
type astPrinter struct {
	result any
}

func nilOrAcceptExpr(e ast.Expr, p *astPrinter) any {
	if e == nil {
		return nil
	}
	v, _ := e.Accept(p)
	return v
}

func acceptStmt(s ast.Stmt, p *astPrinter) any {
	if s == nil {
		return nil
	}
	_ = s.Accept(p)
	return p.result
}

// PrintASTJSON renders the parsed program as indented JSON text.
func PrintASTJSON(statements []ast.Stmt) (string, error) {
	p := &astPrinter{}
	out := make([]any, 0, len(statements))
	for _, s := range statements {
		out = append(out, acceptStmt(s, p))
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteASTJSONToFile writes the program's AST JSON to path.
func WriteASTJSONToFile(statements []ast.Stmt, path string) error {
	s, err := PrintASTJSON(statements)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(s), 0o644)
}

func (p *astPrinter) emit(s ast.Stmt, v any) error {
	p.result = v
	return nil
}

func (p *astPrinter) VisitLet(s *ast.Let) error {
	return p.emit(s, map[string]any{
		"type": "Let", "name": s.Name, "mutable": s.Mutable,
		"annotation": s.Annotation.String(), "initializer": nilOrAcceptExpr(s.Initializer, p),
	})
}

func (p *astPrinter) VisitFunction(s *ast.Function) error {
	params := make([]any, 0, len(s.Params))
	for _, prm := range s.Params {
		params = append(params, map[string]any{"name": prm.Name, "isSelf": prm.IsSelf})
	}
	return p.emit(s, map[string]any{
		"type": "Function", "name": s.Name, "params": params,
		"returnType": s.ReturnType.String(), "body": acceptStmt(s.Body, p),
	})
}

func (p *astPrinter) VisitExpressionStmt(s *ast.ExpressionStmt) error {
	return p.emit(s, map[string]any{"type": "ExpressionStmt", "expression": nilOrAcceptExpr(s.Expression, p)})
}

func (p *astPrinter) VisitImport(s *ast.Import) error {
	return p.emit(s, map[string]any{"type": "Import", "path": s.Path, "items": s.Items})
}

func (p *astPrinter) VisitReturn(s *ast.Return) error {
	return p.emit(s, map[string]any{"type": "Return", "value": nilOrAcceptExpr(s.Value, p)})
}

func (p *astPrinter) VisitIf(s *ast.If) error {
	return p.emit(s, map[string]any{
		"type": "If", "condition": nilOrAcceptExpr(s.Condition, p),
		"then": acceptStmt(s.Then, p), "else": acceptStmt(s.Else, p),
	})
}

func (p *astPrinter) VisitWhile(s *ast.While) error {
	return p.emit(s, map[string]any{"type": "While", "condition": nilOrAcceptExpr(s.Condition, p), "body": acceptStmt(s.Body, p)})
}

func (p *astPrinter) VisitFor(s *ast.For) error {
	return p.emit(s, map[string]any{
		"type": "For", "var": s.Var, "start": nilOrAcceptExpr(s.Start, p),
		"end": nilOrAcceptExpr(s.End, p), "inclusive": s.Inclusive, "body": acceptStmt(s.Body, p),
	})
}

func (p *astPrinter) VisitBlock(s *ast.Block) error {
	stmts := make([]any, 0, len(s.Statements))
	for _, inner := range s.Statements {
		stmts = append(stmts, acceptStmt(inner, p))
	}
	return p.emit(s, map[string]any{"type": "Block", "statements": stmts, "trailing": nilOrAcceptExpr(s.Trailing, p)})
}

func (p *astPrinter) VisitStruct(s *ast.Struct) error {
	fields := make([]any, 0, len(s.Fields))
	for _, f := range s.Fields {
		fields = append(fields, map[string]any{"name": f.Name, "type": f.Type.String()})
	}
	return p.emit(s, map[string]any{"type": "Struct", "name": s.Name, "fields": fields})
}

func (p *astPrinter) VisitEnum(s *ast.Enum) error {
	variants := make([]any, 0, len(s.Variants))
	for _, v := range s.Variants {
		variants = append(variants, map[string]any{"name": v.Name, "hasData": v.HasData})
	}
	return p.emit(s, map[string]any{"type": "Enum", "name": s.Name, "variants": variants})
}

func (p *astPrinter) VisitImpl(s *ast.Impl) error {
	methods := make([]any, 0, len(s.Methods))
	for _, m := range s.Methods {
		methods = append(methods, acceptStmt(m, p))
	}
	return p.emit(s, map[string]any{"type": "Impl", "target": s.TargetType, "trait": s.TraitName, "methods": methods})
}

func (p *astPrinter) VisitTrait(s *ast.Trait) error {
	methods := make([]any, 0, len(s.Methods))
	for _, m := range s.Methods {
		methods = append(methods, acceptStmt(m, p))
	}
	return p.emit(s, map[string]any{"type": "Trait", "name": s.Name, "methods": methods})
}

func (p *astPrinter) VisitBreak(s *ast.Break) error       { return p.emit(s, map[string]any{"type": "Break"}) }
func (p *astPrinter) VisitContinue(s *ast.Continue) error { return p.emit(s, map[string]any{"type": "Continue"}) }

func (p *astPrinter) VisitIntLiteral(e *ast.IntLiteral) (any, error) {
	return map[string]any{"type": "IntLiteral", "value": e.Value}, nil
}
func (p *astPrinter) VisitFloatLiteral(e *ast.FloatLiteral) (any, error) {
	return map[string]any{"type": "FloatLiteral", "value": e.Value}, nil
}
func (p *astPrinter) VisitBoolLiteral(e *ast.BoolLiteral) (any, error) {
	return map[string]any{"type": "BoolLiteral", "value": e.Value}, nil
}
func (p *astPrinter) VisitCharLiteral(e *ast.CharLiteral) (any, error) {
	return map[string]any{"type": "CharLiteral", "value": string(e.Value)}, nil
}
func (p *astPrinter) VisitStringLiteral(e *ast.StringLiteral) (any, error) {
	return map[string]any{"type": "StringLiteral", "value": e.Value}, nil
}
func (p *astPrinter) VisitInterpString(e *ast.InterpString) (any, error) {
	segs := make([]any, 0, len(e.Segments))
	for _, s := range e.Segments {
		if s.IsExpression {
			segs = append(segs, nilOrAcceptExpr(s.Expression, p))
		} else {
			segs = append(segs, s.Text)
		}
	}
	return map[string]any{"type": "InterpString", "segments": segs}, nil
}
func (p *astPrinter) VisitIdentifier(e *ast.Identifier) (any, error) {
	return map[string]any{"type": "Identifier", "name": e.Name}, nil
}
func (p *astPrinter) VisitBinary(e *ast.Binary) (any, error) {
	return map[string]any{"type": "Binary", "operator": e.Operator.Lexeme, "left": nilOrAcceptExpr(e.Left, p), "right": nilOrAcceptExpr(e.Right, p)}, nil
}
func (p *astPrinter) VisitUnary(e *ast.Unary) (any, error) {
	return map[string]any{"type": "Unary", "operator": e.Operator.Lexeme, "operand": nilOrAcceptExpr(e.Operand, p)}, nil
}
func (p *astPrinter) VisitAssign(e *ast.Assign) (any, error) {
	return map[string]any{"type": "Assign", "target": nilOrAcceptExpr(e.Target, p), "value": nilOrAcceptExpr(e.Value, p)}, nil
}
func (p *astPrinter) VisitCall(e *ast.Call) (any, error) {
	args := make([]any, 0, len(e.Args))
	for _, a := range e.Args {
		args = append(args, nilOrAcceptExpr(a, p))
	}
	return map[string]any{"type": "Call", "callee": nilOrAcceptExpr(e.Callee, p), "args": args}, nil
}
func (p *astPrinter) VisitFieldAccess(e *ast.FieldAccess) (any, error) {
	return map[string]any{"type": "FieldAccess", "object": nilOrAcceptExpr(e.Object, p), "field": e.Field}, nil
}
func (p *astPrinter) VisitIndex(e *ast.Index) (any, error) {
	return map[string]any{"type": "Index", "object": nilOrAcceptExpr(e.Object, p), "index": nilOrAcceptExpr(e.Idx, p)}, nil
}
func (p *astPrinter) VisitListLiteral(e *ast.ListLiteral) (any, error) {
	elems := make([]any, 0, len(e.Elements))
	for _, el := range e.Elements {
		elems = append(elems, nilOrAcceptExpr(el, p))
	}
	return map[string]any{"type": "ListLiteral", "elements": elems}, nil
}
func (p *astPrinter) VisitVecLiteral(e *ast.VecLiteral) (any, error) {
	elems := make([]any, 0, len(e.Elements))
	for _, el := range e.Elements {
		elems = append(elems, nilOrAcceptExpr(el, p))
	}
	return map[string]any{"type": "VecLiteral", "elements": elems}, nil
}
func (p *astPrinter) VisitObjectLiteral(e *ast.ObjectLiteral) (any, error) {
	fields := make(map[string]any, len(e.Fields))
	for _, f := range e.Fields {
		fields[f.Name] = nilOrAcceptExpr(f.Value, p)
	}
	return map[string]any{"type": "ObjectLiteral", "fields": fields}, nil
}
func (p *astPrinter) VisitReference(e *ast.Reference) (any, error) {
	return map[string]any{"type": "Reference", "mutable": e.Mutable, "operand": nilOrAcceptExpr(e.Operand, p)}, nil
}
func (p *astPrinter) VisitDereference(e *ast.Dereference) (any, error) {
	return map[string]any{"type": "Dereference", "operand": nilOrAcceptExpr(e.Operand, p)}, nil
}
func (p *astPrinter) VisitRange(e *ast.Range) (any, error) {
	return map[string]any{"type": "Range", "start": nilOrAcceptExpr(e.Start, p), "end": nilOrAcceptExpr(e.End, p), "inclusive": e.Inclusive}, nil
}
func (p *astPrinter) VisitGrouping(e *ast.Grouping) (any, error) {
	return map[string]any{"type": "Grouping", "inner": nilOrAcceptExpr(e.Inner, p)}, nil
}
func (p *astPrinter) VisitIfExpr(e *ast.IfExpr) (any, error) {
	return map[string]any{
		"type": "IfExpr", "condition": nilOrAcceptExpr(e.Condition, p),
		"then": acceptStmt(e.Then, p), "else": acceptStmt(e.Else, p),
	}, nil
}
func (p *astPrinter) VisitStructInit(e *ast.StructInit) (any, error) {
	fields := make(map[string]any, len(e.Fields))
	for _, f := range e.Fields {
		fields[f.Name] = nilOrAcceptExpr(f.Value, p)
	}
	return map[string]any{"type": "StructInit", "typeName": e.TypeName, "fields": fields}, nil
}
func (p *astPrinter) VisitEnumVariant(e *ast.EnumVariant) (any, error) {
	return map[string]any{"type": "EnumVariant", "enum": e.EnumName, "variant": e.Variant, "data": nilOrAcceptExpr(e.Data, p)}, nil
}
func (p *astPrinter) VisitMatch(e *ast.Match) (any, error) {
	arms := make([]any, 0, len(e.Arms))
	for _, a := range e.Arms {
		arms = append(arms, map[string]any{"guard": nilOrAcceptExpr(a.Guard, p), "body": nilOrAcceptExpr(a.Body, p)})
	}
	return map[string]any{"type": "Match", "scrutinee": nilOrAcceptExpr(e.Scrutinee, p), "arms": arms}, nil
}
func (p *astPrinter) VisitCast(e *ast.Cast) (any, error) {
	return map[string]any{"type": "Cast", "operand": nilOrAcceptExpr(e.Operand, p), "target": e.Target.String()}, nil
}
func (p *astPrinter) VisitClosure(e *ast.Closure) (any, error) {
	return map[string]any{"type": "Closure", "move": e.Move, "body": nilOrAcceptExpr(e.Body, p)}, nil
}
func (p *astPrinter) VisitBlockExpr(b *ast.Block) (any, error) {
	return acceptStmt(b, p), nil
}
