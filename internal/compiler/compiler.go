package compiler

import (
	"github.com/zephyrlang/zr/internal/ast"
	"github.com/zephyrlang/zr/internal/sema"
	"github.com/zephyrlang/zr/internal/value"
)

// Compiler walks the resolved, analyzed AST and emits a flat
// Instruction stream (spec §4.9). Grounded on the teacher's
// compiler/ast_compiler.go for the overall visitor-plus-backpatching
// shape; generalized from its slot-indexed locals and byte-packed
// jump operands to the spec's named-variable scopes and int-indexed
// Instruction stream.
type Compiler struct {
	bc    *Bytecode
	cache *sema.ExprTypeCache
	used  map[string]bool

	loops    []*loopCtx
	tempSeq  int
	closureN int
	err      error
}

type loopCtx struct {
	breakJumps    []int
	continueJumps []int
}

// Compile lowers program into bytecode. analyzer must already have run
// Analyze successfully over the same program: the compiler consults
// its expression-type cache to resolve method-call receiver types
// (spec §4.9's one specified analyzer/compiler back-edge). Which
// impl/trait methods survive dead-code elimination is decided from the
// call names collected over the AST itself (spec §4.9's mangling + DCE
// pass, implemented in mangle.go).
func Compile(program []ast.Stmt, analyzer *sema.Analyzer) (*Bytecode, error) {
	c := &Compiler{
		bc:    NewBytecode(),
		cache: analyzer.Cache,
		used:  usedCallNames(program),
	}

	for _, stmt := range program {
		switch s := stmt.(type) {
		case *ast.Function:
			if err := c.compileFunction(s.Name, s); err != nil {
				return nil, err
			}
		case *ast.Impl:
			for _, m := range s.Methods {
				if !shouldCompileMethod(c.used, s.TargetType, s.TraitName, m.Name) {
					continue
				}
				if err := c.compileFunction(s.TargetType+"::"+m.Name, m); err != nil {
					return nil, err
				}
			}
		case *ast.Trait:
			for _, m := range s.Methods {
				if m.Body == nil {
					continue
				}
				if !shouldCompileMethod(c.used, "", "", m.Name) {
					continue
				}
				if err := c.compileFunction(m.Name, m); err != nil {
					return nil, err
				}
			}
		}
	}

	for _, stmt := range program {
		switch stmt.(type) {
		case *ast.Function, *ast.Impl, *ast.Trait, *ast.Struct, *ast.Enum:
			continue
		default:
			if err := c.compileStmt(stmt); err != nil {
				return nil, err
			}
		}
	}
	c.bc.emit(Instruction{Op: OpHalt})
	return c.bc, nil
}

func (c *Compiler) freshTemp(hint string) string {
	c.tempSeq++
	return "__tmp_" + hint
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := [20]byte{}
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits[i:])
}

func (c *Compiler) emitPlaceholderJump(op OpCode) int {
	return c.bc.emit(Instruction{Op: op, Int: -1})
}

func (c *Compiler) patchJump(pos, target int) {
	c.bc.Instructions[pos].Int = target
}

// compileFunction emits a named function's body as a contiguous
// region with no jump-over: internal/vm's startup sequence explicitly
// skips every registered FuncRange before executing top-level code
// (spec §4.9's "VM startup" rule), so top-level/impl/trait functions
// never need an inline Jump the way closures do.
func (c *Compiler) compileFunction(name string, fn *ast.Function) error {
	if fn.Body == nil {
		return nil
	}
	start := c.bc.len()
	c.bc.emit(Instruction{Op: OpEnterScope})
	for _, p := range fn.Params {
		c.bc.emit(Instruction{Op: OpStoreVar, Name: p.Name})
	}
	for _, s := range fn.Body.Statements {
		if err := c.compileStmt(s); err != nil {
			return err
		}
	}
	if fn.Body.Trailing != nil {
		if err := c.compileExpr(fn.Body.Trailing); err != nil {
			return err
		}
	} else {
		c.bc.emit(Instruction{Op: OpLoadConst, Const: value.Void{}})
	}
	c.bc.emit(Instruction{Op: OpReturn})
	end := c.bc.len()
	c.bc.Functions[name] = FuncRange{Start: start, End: end}
	return nil
}

// ---- statements ---------------------------------------------------

func (c *Compiler) compileStmt(s ast.Stmt) error {
	return s.Accept(c)
}

func (c *Compiler) VisitLet(s *ast.Let) error {
	if s.Initializer != nil {
		if err := c.compileExpr(s.Initializer); err != nil {
			return err
		}
	} else {
		c.bc.emit(Instruction{Op: OpLoadConst, Const: value.Void{}})
	}
	switch init := s.Initializer.(type) {
	case *ast.Reference:
		if id, ok := init.Operand.(*ast.Identifier); ok {
			if init.Mutable {
				c.bc.emit(Instruction{Op: OpBorrowMut, Name: id.Name})
			} else {
				c.bc.emit(Instruction{Op: OpBorrowShared, Name: id.Name})
			}
		}
	case *ast.Identifier:
		c.bc.emit(Instruction{Op: OpMove, Name: init.Name, To: s.Name})
	}
	c.bc.emit(Instruction{Op: OpStoreVar, Name: s.Name})
	return nil
}

func (c *Compiler) VisitFunction(s *ast.Function) error {
	name := s.Name
	jumpOver := c.emitPlaceholderJump(OpJump)
	if err := c.compileFunction(name, s); err != nil {
		return err
	}
	c.patchJump(jumpOver, c.bc.len())
	return nil
}

func (c *Compiler) VisitExpressionStmt(s *ast.ExpressionStmt) error {
	if err := c.compileExpr(s.Expression); err != nil {
		return err
	}
	c.bc.emit(Instruction{Op: OpPop})
	return nil
}

func (c *Compiler) VisitImport(s *ast.Import) error { return nil }

func (c *Compiler) VisitReturn(s *ast.Return) error {
	if s.Value != nil {
		if err := c.compileExpr(s.Value); err != nil {
			return err
		}
	} else {
		c.bc.emit(Instruction{Op: OpLoadConst, Const: value.Void{}})
	}
	c.bc.emit(Instruction{Op: OpReturn})
	return nil
}

func (c *Compiler) VisitIf(s *ast.If) error {
	if err := c.compileExpr(s.Condition); err != nil {
		return err
	}
	jf := c.emitPlaceholderJump(OpJumpIfFalse)
	if err := c.compileStmt(s.Then); err != nil {
		return err
	}
	if s.Else != nil {
		j := c.emitPlaceholderJump(OpJump)
		c.patchJump(jf, c.bc.len())
		if err := c.compileStmt(s.Else); err != nil {
			return err
		}
		c.patchJump(j, c.bc.len())
	} else {
		c.patchJump(jf, c.bc.len())
	}
	return nil
}

func (c *Compiler) VisitWhile(s *ast.While) error {
	loopStart := c.bc.len()
	ctx := &loopCtx{}
	c.loops = append(c.loops, ctx)
	if err := c.compileExpr(s.Condition); err != nil {
		return err
	}
	jf := c.emitPlaceholderJump(OpJumpIfFalse)
	if err := c.compileStmt(s.Body); err != nil {
		return err
	}
	for _, j := range ctx.continueJumps {
		c.patchJump(j, loopStart)
	}
	c.bc.emit(Instruction{Op: OpJump, Int: loopStart})
	end := c.bc.len()
	c.patchJump(jf, end)
	for _, j := range ctx.breakJumps {
		c.patchJump(j, end)
	}
	c.loops = c.loops[:len(c.loops)-1]
	return nil
}

// VisitFor lowers `for v in start..end { body }` exactly per spec
// §4.9's pseudocode: a fresh enclosing scope holds the loop variable
// and the (materialized once) end bound, the test compares with
// Lt/Lte depending on inclusivity, and the increment runs after the
// body on every iteration including `continue`.
func (c *Compiler) VisitFor(s *ast.For) error {
	c.bc.emit(Instruction{Op: OpEnterScope})
	if err := c.compileExpr(s.Start); err != nil {
		return err
	}
	c.bc.emit(Instruction{Op: OpStoreVar, Name: s.Var})
	if err := c.compileExpr(s.End); err != nil {
		return err
	}
	endVar := c.freshTemp("loop_end") + itoa(c.tempSeq)
	c.bc.emit(Instruction{Op: OpStoreVar, Name: endVar})

	loopStart := c.bc.len()
	c.bc.emit(Instruction{Op: OpLoadVar, Name: s.Var})
	c.bc.emit(Instruction{Op: OpLoadVar, Name: endVar})
	cmp := OpLt
	if s.Inclusive {
		cmp = OpLte
	}
	c.bc.emit(Instruction{Op: cmp})
	jf := c.emitPlaceholderJump(OpJumpIfFalse)

	ctx := &loopCtx{}
	c.loops = append(c.loops, ctx)
	if err := c.compileStmt(s.Body); err != nil {
		return err
	}
	incrPos := c.bc.len()
	for _, j := range ctx.continueJumps {
		c.patchJump(j, incrPos)
	}
	c.bc.emit(Instruction{Op: OpLoadVar, Name: s.Var})
	c.bc.emit(Instruction{Op: OpLoadConst, Const: value.Int{Width: 32, Signed: true, V: 1}})
	c.bc.emit(Instruction{Op: OpAdd})
	c.bc.emit(Instruction{Op: OpStoreVar, Name: s.Var})
	c.bc.emit(Instruction{Op: OpJump, Int: loopStart})
	end := c.bc.len()
	c.patchJump(jf, end)
	for _, j := range ctx.breakJumps {
		c.patchJump(j, end)
	}
	c.loops = c.loops[:len(c.loops)-1]
	c.bc.emit(Instruction{Op: OpExitScope})
	return nil
}

func (c *Compiler) VisitBlock(b *ast.Block) error {
	c.bc.emit(Instruction{Op: OpEnterScope})
	for _, s := range b.Statements {
		if err := c.compileStmt(s); err != nil {
			return err
		}
	}
	if b.Trailing != nil {
		if err := c.compileExpr(b.Trailing); err != nil {
			return err
		}
		c.bc.emit(Instruction{Op: OpPop})
	}
	c.bc.emit(Instruction{Op: OpExitScope})
	return nil
}

// compileBlockValue is VisitBlock's expression-position twin, used by
// IfExpr's branches and by VisitBlockExpr: the trailing expression's
// value (or Void, if the block has none) is left on the stack instead
// of popped.
func (c *Compiler) compileBlockValue(b *ast.Block) error {
	c.bc.emit(Instruction{Op: OpEnterScope})
	for _, s := range b.Statements {
		if err := c.compileStmt(s); err != nil {
			return err
		}
	}
	if b.Trailing != nil {
		if err := c.compileExpr(b.Trailing); err != nil {
			return err
		}
	} else {
		c.bc.emit(Instruction{Op: OpLoadConst, Const: value.Void{}})
	}
	c.bc.emit(Instruction{Op: OpExitScope})
	return nil
}

func (c *Compiler) VisitStruct(s *ast.Struct) error { return nil }
func (c *Compiler) VisitEnum(s *ast.Enum) error     { return nil }

func (c *Compiler) VisitImpl(s *ast.Impl) error { return nil }
func (c *Compiler) VisitTrait(s *ast.Trait) error { return nil }

func (c *Compiler) VisitBreak(s *ast.Break) error {
	if len(c.loops) == 0 {
		return compileError("break outside of a loop (line %d)", s.Span.Line)
	}
	ctx := c.loops[len(c.loops)-1]
	j := c.emitPlaceholderJump(OpJump)
	ctx.breakJumps = append(ctx.breakJumps, j)
	return nil
}

func (c *Compiler) VisitContinue(s *ast.Continue) error {
	if len(c.loops) == 0 {
		return compileError("continue outside of a loop (line %d)", s.Span.Line)
	}
	ctx := c.loops[len(c.loops)-1]
	j := c.emitPlaceholderJump(OpJump)
	ctx.continueJumps = append(ctx.continueJumps, j)
	return nil
}

// ---- expressions ----------------------------------------------------

func (c *Compiler) compileExpr(e ast.Expr) error {
	if e == nil {
		c.bc.emit(Instruction{Op: OpLoadConst, Const: value.Void{}})
		return nil
	}
	_, err := e.Accept(c)
	return err
}

func (c *Compiler) VisitIntLiteral(ex *ast.IntLiteral) (any, error) {
	c.bc.emit(Instruction{Op: OpLoadConst, Const: value.Int{Width: ex.Width, Signed: true, V: ex.Value}})
	return nil, nil
}

func (c *Compiler) VisitFloatLiteral(ex *ast.FloatLiteral) (any, error) {
	c.bc.emit(Instruction{Op: OpLoadConst, Const: value.Float{Width: ex.Width, V: ex.Value}})
	return nil, nil
}

func (c *Compiler) VisitBoolLiteral(ex *ast.BoolLiteral) (any, error) {
	c.bc.emit(Instruction{Op: OpLoadConst, Const: value.Bool{V: ex.Value}})
	return nil, nil
}

func (c *Compiler) VisitCharLiteral(ex *ast.CharLiteral) (any, error) {
	c.bc.emit(Instruction{Op: OpLoadConst, Const: value.Char{V: ex.Value}})
	return nil, nil
}

func (c *Compiler) VisitStringLiteral(ex *ast.StringLiteral) (any, error) {
	c.bc.emit(Instruction{Op: OpLoadConst, Const: value.StrConst{S: ex.Value}})
	return nil, nil
}

// VisitInterpString concatenates an accumulator string with every
// segment, casting expression segments to string first: reuses the
// Cast opcode instead of inventing a dedicated to-string instruction
// (spec §4.9 lists Cast without pinning every call site).
func (c *Compiler) VisitInterpString(ex *ast.InterpString) (any, error) {
	c.bc.emit(Instruction{Op: OpLoadConst, Const: value.StrConst{S: ""}})
	for _, seg := range ex.Segments {
		if seg.IsExpression {
			if err := c.compileExpr(seg.Expression); err != nil {
				return nil, err
			}
			c.bc.emit(Instruction{Op: OpCast, Name: "string"})
		} else {
			c.bc.emit(Instruction{Op: OpLoadConst, Const: value.StrConst{S: seg.Text}})
		}
		c.bc.emit(Instruction{Op: OpAdd})
	}
	return nil, nil
}

func (c *Compiler) VisitIdentifier(ex *ast.Identifier) (any, error) {
	c.bc.emit(Instruction{Op: OpLoadVar, Name: ex.Name})
	return nil, nil
}

var binaryOps = map[string]OpCode{
	"+": OpAdd, "-": OpSub, "*": OpMul, "/": OpDiv, "%": OpMod,
	"==": OpEq, "!=": OpNeq, "<": OpLt, "<=": OpLte, ">": OpGt, ">=": OpGte,
}

func (c *Compiler) VisitBinary(ex *ast.Binary) (any, error) {
	lex := ex.Operator.Lexeme
	if lex == "&&" || lex == "and" {
		return nil, c.compileAnd(ex)
	}
	if lex == "||" || lex == "or" {
		return nil, c.compileOr(ex)
	}
	if err := c.compileExpr(ex.Left); err != nil {
		return nil, err
	}
	if err := c.compileExpr(ex.Right); err != nil {
		return nil, err
	}
	op, ok := binaryOps[lex]
	if !ok {
		return nil, compileError("unsupported binary operator %q", lex)
	}
	c.bc.emit(Instruction{Op: op})
	return nil, nil
}

// compileAnd short-circuits `a && b`: Dup+JumpIfFalse peeks the left
// operand without consuming it from underneath, so the false path
// needs no extra instructions to reconstruct the result.
func (c *Compiler) compileAnd(ex *ast.Binary) error {
	if err := c.compileExpr(ex.Left); err != nil {
		return err
	}
	c.bc.emit(Instruction{Op: OpDup})
	falseJump := c.emitPlaceholderJump(OpJumpIfFalse)
	c.bc.emit(Instruction{Op: OpPop})
	if err := c.compileExpr(ex.Right); err != nil {
		return err
	}
	end := c.emitPlaceholderJump(OpJump)
	c.patchJump(falseJump, c.bc.len())
	c.patchJump(end, c.bc.len())
	return nil
}

func (c *Compiler) compileOr(ex *ast.Binary) error {
	if err := c.compileExpr(ex.Left); err != nil {
		return err
	}
	c.bc.emit(Instruction{Op: OpDup})
	falseJump := c.emitPlaceholderJump(OpJumpIfFalse)
	trueEnd := c.emitPlaceholderJump(OpJump)
	c.patchJump(falseJump, c.bc.len())
	c.bc.emit(Instruction{Op: OpPop})
	if err := c.compileExpr(ex.Right); err != nil {
		return err
	}
	c.patchJump(trueEnd, c.bc.len())
	return nil
}

func (c *Compiler) VisitUnary(ex *ast.Unary) (any, error) {
	if err := c.compileExpr(ex.Operand); err != nil {
		return nil, err
	}
	switch ex.Operator.Lexeme {
	case "-":
		c.bc.emit(Instruction{Op: OpNeg})
	case "!":
		c.bc.emit(Instruction{Op: OpNot})
	default:
		return nil, compileError("unsupported unary operator %q", ex.Operator.Lexeme)
	}
	return nil, nil
}

// VisitAssign always stores the assigned value in a temp first and
// reloads it at the end: every Index/FieldAccess target may itself be
// a nested Index/FieldAccess chain (`a[i][j] = v`, `obj.a.b = v`), and
// since Vec/Arr/Obj are heap handles, simply re-evaluating the target
// chain's object/index sub-expressions and mutating in place handles
// arbitrary nesting without the reload-and-rebuild dance a
// value-semantics array would need.
func (c *Compiler) VisitAssign(ex *ast.Assign) (any, error) {
	if err := c.compileExpr(ex.Value); err != nil {
		return nil, err
	}
	tmp := "__assign_" + itoa(c.tempSeq+1)
	c.tempSeq++
	c.bc.emit(Instruction{Op: OpStoreVar, Name: tmp})

	switch target := ex.Target.(type) {
	case *ast.Identifier:
		c.bc.emit(Instruction{Op: OpLoadVar, Name: tmp})
		c.bc.emit(Instruction{Op: OpStoreVar, Name: target.Name})
	case *ast.FieldAccess:
		if err := c.compileExpr(target.Object); err != nil {
			return nil, err
		}
		c.bc.emit(Instruction{Op: OpLoadVar, Name: tmp})
		c.bc.emit(Instruction{Op: OpSetField, Name: target.Field})
	case *ast.Index:
		if err := c.compileExpr(target.Object); err != nil {
			return nil, err
		}
		if err := c.compileExpr(target.Idx); err != nil {
			return nil, err
		}
		c.bc.emit(Instruction{Op: OpLoadVar, Name: tmp})
		c.bc.emit(Instruction{Op: OpSetIndex})
	default:
		return nil, compileError("invalid assignment target")
	}
	c.bc.emit(Instruction{Op: OpLoadVar, Name: tmp})
	return nil, nil
}

func (c *Compiler) VisitCall(ex *ast.Call) (any, error) {
	switch callee := ex.Callee.(type) {
	case *ast.Closure:
		name, err := c.compileClosureLiteral(callee.Params, callee.Body)
		if err != nil {
			return nil, err
		}
		for _, a := range ex.Args {
			if err := c.compileExpr(a); err != nil {
				return nil, err
			}
		}
		c.bc.emit(Instruction{Op: OpCall, Name: name, Int: len(ex.Args)})
		return nil, nil
	case *ast.FieldAccess:
		if err := c.compileExpr(callee.Object); err != nil {
			return nil, err
		}
		for _, a := range ex.Args {
			if err := c.compileExpr(a); err != nil {
				return nil, err
			}
		}
		name := c.resolveMethodName(callee)
		c.bc.emit(Instruction{Op: OpMethodCall, Name: name, Int: len(ex.Args)})
		return nil, nil
	default:
		for _, a := range ex.Args {
			if err := c.compileExpr(a); err != nil {
				return nil, err
			}
		}
		id, ok := ex.Callee.(*ast.Identifier)
		if !ok {
			return nil, compileError("unsupported call target")
		}
		c.bc.emit(Instruction{Op: OpCall, Name: id.Name, Int: len(ex.Args)})
		return nil, nil
	}
}

// resolveMethodName mirrors sema's resolveCallee fallback order
// exactly (cached receiver type, then textual identifier, then bare
// name) so a `obj.m()` call mangles to the same key the signature pass
// registered it under.
func (c *Compiler) resolveMethodName(fa *ast.FieldAccess) string {
	if t, ok := c.cache.Get(fa.Object); ok {
		if named, ok2 := t.(ast.NamedType); ok2 && named.Name != "" {
			return named.Name + "::" + fa.Field
		}
	}
	if obj, ok := fa.Object.(*ast.Identifier); ok {
		return obj.Name + "::" + fa.Field
	}
	return fa.Field
}

func (c *Compiler) VisitFieldAccess(ex *ast.FieldAccess) (any, error) {
	if err := c.compileExpr(ex.Object); err != nil {
		return nil, err
	}
	c.bc.emit(Instruction{Op: OpGetField, Name: ex.Field})
	return nil, nil
}

func (c *Compiler) VisitIndex(ex *ast.Index) (any, error) {
	if err := c.compileExpr(ex.Object); err != nil {
		return nil, err
	}
	if err := c.compileExpr(ex.Idx); err != nil {
		return nil, err
	}
	c.bc.emit(Instruction{Op: OpGetIndex})
	return nil, nil
}

func (c *Compiler) VisitListLiteral(ex *ast.ListLiteral) (any, error) {
	for _, el := range ex.Elements {
		if err := c.compileExpr(el); err != nil {
			return nil, err
		}
	}
	c.bc.emit(Instruction{Op: OpMakeList, Int: len(ex.Elements)})
	return nil, nil
}

func (c *Compiler) VisitVecLiteral(ex *ast.VecLiteral) (any, error) {
	for _, el := range ex.Elements {
		if err := c.compileExpr(el); err != nil {
			return nil, err
		}
	}
	c.bc.emit(Instruction{Op: OpMakeVec, Int: len(ex.Elements)})
	return nil, nil
}

func (c *Compiler) VisitObjectLiteral(ex *ast.ObjectLiteral) (any, error) {
	for _, f := range ex.Fields {
		c.bc.emit(Instruction{Op: OpLoadConst, Const: value.StrConst{S: f.Name}})
		if err := c.compileExpr(f.Value); err != nil {
			return nil, err
		}
	}
	c.bc.emit(Instruction{Op: OpMakeObject, Int: len(ex.Fields)})
	return nil, nil
}

func (c *Compiler) VisitReference(ex *ast.Reference) (any, error) {
	if id, ok := ex.Operand.(*ast.Identifier); ok {
		if ex.Mutable {
			c.bc.emit(Instruction{Op: OpBorrowMut, Name: id.Name})
		} else {
			c.bc.emit(Instruction{Op: OpBorrowShared, Name: id.Name})
		}
	}
	return nil, c.compileExpr(ex.Operand)
}

func (c *Compiler) VisitDereference(ex *ast.Dereference) (any, error) {
	return nil, c.compileExpr(ex.Operand)
}

func (c *Compiler) VisitRange(ex *ast.Range) (any, error) {
	c.bc.emit(Instruction{Op: OpLoadConst, Const: value.StrConst{S: "_type"}})
	c.bc.emit(Instruction{Op: OpLoadConst, Const: value.StrConst{S: "Range"}})
	c.bc.emit(Instruction{Op: OpLoadConst, Const: value.StrConst{S: "start"}})
	if err := c.compileExpr(ex.Start); err != nil {
		return nil, err
	}
	c.bc.emit(Instruction{Op: OpLoadConst, Const: value.StrConst{S: "end"}})
	if err := c.compileExpr(ex.End); err != nil {
		return nil, err
	}
	c.bc.emit(Instruction{Op: OpLoadConst, Const: value.StrConst{S: "inclusive"}})
	c.bc.emit(Instruction{Op: OpLoadConst, Const: value.Bool{V: ex.Inclusive}})
	c.bc.emit(Instruction{Op: OpMakeObject, Int: 4})
	return nil, nil
}

func (c *Compiler) VisitGrouping(ex *ast.Grouping) (any, error) {
	return nil, c.compileExpr(ex.Inner)
}

func (c *Compiler) VisitIfExpr(ex *ast.IfExpr) (any, error) {
	if err := c.compileExpr(ex.Condition); err != nil {
		return nil, err
	}
	jf := c.emitPlaceholderJump(OpJumpIfFalse)
	if err := c.compileBlockValue(ex.Then); err != nil {
		return nil, err
	}
	end := c.emitPlaceholderJump(OpJump)
	c.patchJump(jf, c.bc.len())
	switch elseNode := ex.Else.(type) {
	case nil:
		c.bc.emit(Instruction{Op: OpLoadConst, Const: value.Void{}})
	case *ast.Block:
		if err := c.compileBlockValue(elseNode); err != nil {
			return nil, err
		}
	case *ast.ExpressionStmt:
		if err := c.compileExpr(elseNode.Expression); err != nil {
			return nil, err
		}
	case *ast.If:
		// an else-if chain: the nested if must leave its value too
		thenBlock, _ := elseNode.Then.(*ast.Block)
		nested := &ast.IfExpr{Condition: elseNode.Condition, Then: thenBlock, Else: elseNode.Else, Span: elseNode.Span}
		if _, err := c.VisitIfExpr(nested); err != nil {
			return nil, err
		}
	default:
		if err := c.compileStmt(elseNode); err != nil {
			return nil, err
		}
	}
	c.patchJump(end, c.bc.len())
	return nil, nil
}

func (c *Compiler) VisitBlockExpr(b *ast.Block) (any, error) {
	return nil, c.compileBlockValue(b)
}

func (c *Compiler) VisitStructInit(ex *ast.StructInit) (any, error) {
	for _, f := range ex.Fields {
		c.bc.emit(Instruction{Op: OpLoadConst, Const: value.StrConst{S: f.Name}})
		if err := c.compileExpr(f.Value); err != nil {
			return nil, err
		}
	}
	c.bc.emit(Instruction{Op: OpLoadConst, Const: value.StrConst{S: "_type"}})
	c.bc.emit(Instruction{Op: OpLoadConst, Const: value.StrConst{S: ex.TypeName}})
	c.bc.emit(Instruction{Op: OpMakeObject, Int: len(ex.Fields) + 1})
	return nil, nil
}

func (c *Compiler) VisitEnumVariant(ex *ast.EnumVariant) (any, error) {
	c.bc.emit(Instruction{Op: OpLoadConst, Const: value.StrConst{S: "_type"}})
	c.bc.emit(Instruction{Op: OpLoadConst, Const: value.StrConst{S: ex.EnumName + "::" + ex.Variant}})
	n := 1
	if ex.Data != nil {
		c.bc.emit(Instruction{Op: OpLoadConst, Const: value.StrConst{S: "_data"}})
		if err := c.compileExpr(ex.Data); err != nil {
			return nil, err
		}
		n = 2
	}
	c.bc.emit(Instruction{Op: OpMakeObject, Int: n})
	return nil, nil
}

func (c *Compiler) VisitCast(ex *ast.Cast) (any, error) {
	if err := c.compileExpr(ex.Operand); err != nil {
		return nil, err
	}
	c.bc.emit(Instruction{Op: OpCast, Name: ex.Target.String()})
	return nil, nil
}

func (c *Compiler) VisitClosure(ex *ast.Closure) (any, error) {
	name, err := c.compileClosureLiteral(ex.Params, ex.Body)
	if err != nil {
		return nil, err
	}
	c.bc.emit(Instruction{Op: OpMakeClosure, Name: name, Int: len(ex.Params)})
	return nil, nil
}
