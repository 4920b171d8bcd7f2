package ast

import "github.com/zephyrlang/zr/internal/token"

type IntLiteral struct {
	Value int64
	Width int // 8, 32 (default), 64
	Span  Span
}

func (e *IntLiteral) Accept(v ExprVisitor) (any, error) { return v.VisitIntLiteral(e) }
func (e *IntLiteral) SpanOf() Span                      { return e.Span }

type FloatLiteral struct {
	Value float64
	Width int // 32 (default), 64
	Span  Span
}

func (e *FloatLiteral) Accept(v ExprVisitor) (any, error) { return v.VisitFloatLiteral(e) }
func (e *FloatLiteral) SpanOf() Span                      { return e.Span }

type BoolLiteral struct {
	Value bool
	Span  Span
}

func (e *BoolLiteral) Accept(v ExprVisitor) (any, error) { return v.VisitBoolLiteral(e) }
func (e *BoolLiteral) SpanOf() Span                      { return e.Span }

type CharLiteral struct {
	Value rune
	Span  Span
}

func (e *CharLiteral) Accept(v ExprVisitor) (any, error) { return v.VisitCharLiteral(e) }
func (e *CharLiteral) SpanOf() Span                      { return e.Span }

type StringLiteral struct {
	Value string
	Span  Span
}

func (e *StringLiteral) Accept(v ExprVisitor) (any, error) { return v.VisitStringLiteral(e) }
func (e *StringLiteral) SpanOf() Span                      { return e.Span }

// InterpStringSegment mirrors token.StringSegment but with the expression
// segment already parsed into an Expr rather than kept as raw text.
type InterpStringSegment struct {
	IsExpression bool
	Text         string // used when !IsExpression
	Expression   Expr   // used when IsExpression
}

type InterpString struct {
	Segments []InterpStringSegment
	Span     Span
}

func (e *InterpString) Accept(v ExprVisitor) (any, error) { return v.VisitInterpString(e) }
func (e *InterpString) SpanOf() Span                      { return e.Span }

type Identifier struct {
	Name string
	Span Span
}

func (e *Identifier) Accept(v ExprVisitor) (any, error) { return v.VisitIdentifier(e) }
func (e *Identifier) SpanOf() Span                      { return e.Span }

type Binary struct {
	Left     Expr
	Operator token.Token
	Right    Expr
	Span     Span
}

func (e *Binary) Accept(v ExprVisitor) (any, error) { return v.VisitBinary(e) }
func (e *Binary) SpanOf() Span                      { return e.Span }

type Unary struct {
	Operator token.Token
	Operand  Expr
	Span     Span
}

func (e *Unary) Accept(v ExprVisitor) (any, error) { return v.VisitUnary(e) }
func (e *Unary) SpanOf() Span                      { return e.Span }

// Assign covers `target = value`; Target is restricted by the parser to
// Identifier, FieldAccess, or Index (spec §4.2).
type Assign struct {
	Target Expr
	Value  Expr
	Span   Span
}

func (e *Assign) Accept(v ExprVisitor) (any, error) { return v.VisitAssign(e) }
func (e *Assign) SpanOf() Span                      { return e.Span }

type Call struct {
	Callee Expr
	Args   []Expr
	Span   Span
}

func (e *Call) Accept(v ExprVisitor) (any, error) { return v.VisitCall(e) }
func (e *Call) SpanOf() Span                      { return e.Span }

type FieldAccess struct {
	Object Expr
	Field  string
	Span   Span
}

func (e *FieldAccess) Accept(v ExprVisitor) (any, error) { return v.VisitFieldAccess(e) }
func (e *FieldAccess) SpanOf() Span                      { return e.Span }

type Index struct {
	Object Expr
	Idx    Expr
	Span   Span
}

func (e *Index) Accept(v ExprVisitor) (any, error) { return v.VisitIndex(e) }
func (e *Index) SpanOf() Span                      { return e.Span }

type ListLiteral struct {
	Elements []Expr
	Span     Span
}

func (e *ListLiteral) Accept(v ExprVisitor) (any, error) { return v.VisitListLiteral(e) }
func (e *ListLiteral) SpanOf() Span                      { return e.Span }

type VecLiteral struct {
	Elements []Expr
	Span     Span
}

func (e *VecLiteral) Accept(v ExprVisitor) (any, error) { return v.VisitVecLiteral(e) }
func (e *VecLiteral) SpanOf() Span                      { return e.Span }

type ObjectField struct {
	Name  string
	Value Expr
}

type ObjectLiteral struct {
	Fields []ObjectField
	Span   Span
}

func (e *ObjectLiteral) Accept(v ExprVisitor) (any, error) { return v.VisitObjectLiteral(e) }
func (e *ObjectLiteral) SpanOf() Span                      { return e.Span }

// Reference is `&e` or `&mut e`.
type Reference struct {
	Mutable  bool
	Operand  Expr
	Span     Span
}

func (e *Reference) Accept(v ExprVisitor) (any, error) { return v.VisitReference(e) }
func (e *Reference) SpanOf() Span                      { return e.Span }

// Dereference is `*e`.
type Dereference struct {
	Operand Expr
	Span    Span
}

func (e *Dereference) Accept(v ExprVisitor) (any, error) { return v.VisitDereference(e) }
func (e *Dereference) SpanOf() Span                      { return e.Span }

type Range struct {
	Start     Expr
	End       Expr
	Inclusive bool
	Span      Span
}

func (e *Range) Accept(v ExprVisitor) (any, error) { return v.VisitRange(e) }
func (e *Range) SpanOf() Span                      { return e.Span }

type Grouping struct {
	Inner Expr
	Span  Span
}

func (e *Grouping) Accept(v ExprVisitor) (any, error) { return v.VisitGrouping(e) }
func (e *Grouping) SpanOf() Span                      { return e.Span }

// IfExpr is an `if` used in expression position (its value is the
// trailing expression of whichever branch ran); see §4.2 promotion rule.
type IfExpr struct {
	Condition Expr
	Then      *Block
	Else      Stmt // *Block, *If (an else-if chain), or nil
	Span      Span
}

func (e *IfExpr) Accept(v ExprVisitor) (any, error) { return v.VisitIfExpr(e) }
func (e *IfExpr) SpanOf() Span                      { return e.Span }

type StructInit struct {
	TypeName string
	Fields   []ObjectField
	Span     Span
}

func (e *StructInit) Accept(v ExprVisitor) (any, error) { return v.VisitStructInit(e) }
func (e *StructInit) SpanOf() Span                      { return e.Span }

// EnumVariant is `EnumName::Variant` or `EnumName::Variant(data)`.
type EnumVariant struct {
	EnumName string
	Variant  string
	Data     Expr // nil if no payload
	Span     Span
}

func (e *EnumVariant) Accept(v ExprVisitor) (any, error) { return v.VisitEnumVariant(e) }
func (e *EnumVariant) SpanOf() Span                      { return e.Span }

type MatchArm struct {
	Pattern Pattern
	Guard   Expr // nil if no guard
	Body    Expr
}

type Match struct {
	Scrutinee Expr
	Arms      []MatchArm
	Span      Span
}

func (e *Match) Accept(v ExprVisitor) (any, error) { return v.VisitMatch(e) }
func (e *Match) SpanOf() Span                      { return e.Span }

type Cast struct {
	Operand Expr
	Target  Type
	Span    Span
}

func (e *Cast) Accept(v ExprVisitor) (any, error) { return v.VisitCast(e) }
func (e *Cast) SpanOf() Span                      { return e.Span }

type ClosureParam struct {
	Name string
	Type Type // ast.InferredType{} when untyped
}

type Closure struct {
	Move   bool
	Params []ClosureParam
	Body   Expr
	Span   Span
}

func (e *Closure) Accept(v ExprVisitor) (any, error) { return v.VisitClosure(e) }
func (e *Closure) SpanOf() Span                      { return e.Span }
