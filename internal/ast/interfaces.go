// Package ast defines the abstract syntax tree produced by the parser and
// namespace-rewritten by the module resolver.
//
// Like the teacher's tree, every node follows the visitor design pattern:
// a node's Accept method dispatches to the matching Visit method on
// whichever visitor is driving the traversal (the semantic analyser, the
// bytecode compiler, or the AST-JSON printer). Unlike the teacher's
// `any`-only visitors, Accept here can return an error — both the
// analyser and the compiler need to fail a single node without panicking
// the whole traversal.
package ast

// Expr is the interface every expression AST node implements.
type Expr interface {
	Accept(v ExprVisitor) (any, error)
	SpanOf() Span
}

// Stmt is the interface every statement AST node implements.
type Stmt interface {
	Accept(v StmtVisitor) error
	SpanOf() Span
}

// Span locates an AST node in the original source.
type Span struct {
	ByteStart int
	ByteEnd   int
	Line      int
	Column    int
}

// ExprVisitor is implemented by anything that walks expression nodes:
// the semantic analyser (returns the node's Type), the bytecode compiler
// (returns nil, emits instructions as a side effect), and the printer.
type ExprVisitor interface {
	VisitIntLiteral(e *IntLiteral) (any, error)
	VisitFloatLiteral(e *FloatLiteral) (any, error)
	VisitBoolLiteral(e *BoolLiteral) (any, error)
	VisitCharLiteral(e *CharLiteral) (any, error)
	VisitStringLiteral(e *StringLiteral) (any, error)
	VisitInterpString(e *InterpString) (any, error)
	VisitIdentifier(e *Identifier) (any, error)
	VisitBinary(e *Binary) (any, error)
	VisitUnary(e *Unary) (any, error)
	VisitAssign(e *Assign) (any, error)
	VisitCall(e *Call) (any, error)
	VisitFieldAccess(e *FieldAccess) (any, error)
	VisitIndex(e *Index) (any, error)
	VisitListLiteral(e *ListLiteral) (any, error)
	VisitVecLiteral(e *VecLiteral) (any, error)
	VisitObjectLiteral(e *ObjectLiteral) (any, error)
	VisitReference(e *Reference) (any, error)
	VisitDereference(e *Dereference) (any, error)
	VisitRange(e *Range) (any, error)
	VisitGrouping(e *Grouping) (any, error)
	VisitIfExpr(e *IfExpr) (any, error)
	VisitStructInit(e *StructInit) (any, error)
	VisitEnumVariant(e *EnumVariant) (any, error)
	VisitMatch(e *Match) (any, error)
	VisitCast(e *Cast) (any, error)
	VisitClosure(e *Closure) (any, error)

	// VisitBlockExpr evaluates a block (its statements, then its trailing
	// expression) in expression position. Only produced by the parser
	// when lowering a block-bodied match arm into an immediately-invoked
	// closure; ordinary blocks stay statements (see Block).
	VisitBlockExpr(b *Block) (any, error)
}

// StmtVisitor is implemented by anything that walks statement nodes.
type StmtVisitor interface {
	VisitLet(s *Let) error
	VisitFunction(s *Function) error
	VisitExpressionStmt(s *ExpressionStmt) error
	VisitImport(s *Import) error
	VisitReturn(s *Return) error
	VisitIf(s *If) error
	VisitWhile(s *While) error
	VisitFor(s *For) error
	VisitBlock(s *Block) error
	VisitStruct(s *Struct) error
	VisitEnum(s *Enum) error
	VisitImpl(s *Impl) error
	VisitTrait(s *Trait) error
	VisitBreak(s *Break) error
	VisitContinue(s *Continue) error
}
