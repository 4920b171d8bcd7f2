// Package sema is the semantic analyser orchestrator (spec §4.8): a
// two-pass walk over the resolved AST that builds the symbol table,
// function table, and type registry on pass one, then type-checks
// every statement and drives the ownership, borrow, and lifetime
// checkers on pass two. Grounded on
// original_source/src/semantic/mod.rs for the two-pass shape and on
// the teacher's interpreter/environment.go (scoped map[string]any) for
// the symbol table's scope-stack shape, generalized to carry a type
// plus ownership state instead of a raw interpreted value.
package sema

import (
	"github.com/zephyrlang/zr/internal/ast"
	"github.com/zephyrlang/zr/internal/diagnostics"
	"github.com/zephyrlang/zr/internal/typesys"
)

// ParamSig is a function parameter's name and resolved type.
type ParamSig struct {
	Name    string
	Type    ast.Type
	IsSelf  bool
	SelfRef bool
	SelfMut bool
}

// FuncSig is what the signature pass records for every function (spec
// §4.8: "{name, params[(name, type)], return_type, lifetimes,
// has_mut_self}").
type FuncSig struct {
	Name       string
	Params     []ParamSig
	ReturnType ast.Type
	Lifetimes  []string
	HasMutSelf bool
}

// StructInfo is the type registry's entry for a struct declaration.
type StructInfo struct {
	Name   string
	Fields map[string]ast.Type
	Order  []string
}

// EnumVariantInfo is one variant of an enum declaration.
type EnumVariantInfo struct {
	Name     string
	HasData  bool
	DataType ast.Type
}

// EnumInfo is the type registry's entry for an enum declaration.
type EnumInfo struct {
	Name     string
	Variants map[string]EnumVariantInfo
}

// scope is one level of the symbol table's scope stack: variable name
// to resolved type.
type scope map[string]ast.Type

// Analyzer is the semantic analyser: the two-pass driver plus the
// tables and checkers it owns (spec §5's "shared-resource policy":
// the analyser owns the symbol table, function table, type registry,
// expression-type cache, and the three checkers).
type Analyzer struct {
	Functions map[string]*FuncSig
	Structs   map[string]*StructInfo
	Enums     map[string]*EnumInfo
	Cache     *ExprTypeCache

	ownership *OwnershipChecker
	borrow    *BorrowChecker
	lifetime  *LifetimeChecker

	scopes         []scope
	importedStdlib map[string]bool

	currentFunc *FuncSig

	errors []error
}

func New() *Analyzer {
	return &Analyzer{
		Functions:      make(map[string]*FuncSig),
		Structs:        make(map[string]*StructInfo),
		Enums:          make(map[string]*EnumInfo),
		Cache:          NewExprTypeCache(),
		ownership:      NewOwnershipChecker(),
		borrow:         NewBorrowChecker(),
		lifetime:       NewLifetimeChecker(),
		scopes:         []scope{make(scope)},
		importedStdlib: make(map[string]bool),
	}
}

// Analyze runs both passes over program and returns the first error
// encountered, if any (spec §7's propagation policy: each phase
// returns at the first error).
func (a *Analyzer) Analyze(program []ast.Stmt) error {
	a.signaturePass(program)
	if len(a.errors) > 0 {
		return a.errors[0]
	}
	a.bodyPass(program)
	if len(a.errors) > 0 {
		return a.errors[0]
	}
	return nil
}

func (a *Analyzer) fail(err error) {
	if err != nil {
		a.errors = append(a.errors, err)
	}
}

// ---- signature pass -------------------------------------------------

func (a *Analyzer) signaturePass(program []ast.Stmt) {
	for _, stmt := range program {
		switch s := stmt.(type) {
		case *ast.Import:
			if s.IsStdlib && len(s.Path) > 1 {
				a.importedStdlib[s.Path[1]] = true
			}
		case *ast.Struct:
			info := &StructInfo{Name: s.Name, Fields: make(map[string]ast.Type)}
			for _, f := range s.Fields {
				info.Fields[f.Name] = f.Type
				info.Order = append(info.Order, f.Name)
			}
			a.Structs[s.Name] = info
		case *ast.Enum:
			info := &EnumInfo{Name: s.Name, Variants: make(map[string]EnumVariantInfo)}
			for _, v := range s.Variants {
				info.Variants[v.Name] = EnumVariantInfo{Name: v.Name, HasData: v.HasData, DataType: v.DataType}
			}
			a.Enums[s.Name] = info
		case *ast.Function:
			a.registerFunc(s.Name, s)
		case *ast.Impl:
			for _, m := range s.Methods {
				a.registerFunc(s.TargetType+"::"+m.Name, m)
				// Fallback registration under the bare method name lets
				// call-checking resolve `obj.m()` when the receiver's
				// static type could not be determined (spec §4.8 rule 1).
				if _, exists := a.Functions[m.Name]; !exists {
					a.registerFunc(m.Name, m)
				}
			}
		case *ast.Trait:
			for _, m := range s.Methods {
				if m.Body != nil {
					a.registerFunc(m.Name, m)
				}
			}
		}
	}
}

func (a *Analyzer) registerFunc(name string, fn *ast.Function) {
	sig := &FuncSig{Name: name, ReturnType: fn.ReturnType, Lifetimes: fn.Lifetimes}
	for _, p := range fn.Params {
		sig.Params = append(sig.Params, ParamSig{
			Name: p.Name, Type: p.Type, IsSelf: p.IsSelf, SelfRef: p.SelfRef, SelfMut: p.SelfMut,
		})
	}
	if len(sig.Params) > 0 && sig.Params[0].IsSelf && sig.Params[0].SelfRef && sig.Params[0].SelfMut {
		sig.HasMutSelf = true
	}
	a.Functions[name] = sig
	a.checkOutputLifetime(name, fn)
}

// checkOutputLifetime applies the elision rules of spec §4.7 to a
// function whose declared return type is a reference with no explicit
// lifetime: a self receiver or a single reference parameter lets the
// output lifetime be inferred, otherwise elision fails and the
// function must annotate its return type explicitly.
func (a *Analyzer) checkOutputLifetime(name string, fn *ast.Function) {
	retRef, ok := fn.ReturnType.(ast.ReferenceType)
	if !ok || retRef.Lifetime != "" {
		return
	}
	hasSelf := false
	var inputLifetimes []string
	for _, p := range fn.Params {
		if p.IsSelf {
			hasSelf = hasSelf || p.SelfRef
			continue
		}
		if rt, ok := p.Type.(ast.ReferenceType); ok {
			inputLifetimes = append(inputLifetimes, rt.Lifetime)
		}
	}
	if !hasSelf && len(inputLifetimes) == 0 {
		// Nothing to elide an output lifetime from; whether the
		// returned reference is actually safe is the escape check's
		// job (spec §4.7), run separately over the body.
		return
	}
	if _, ok := InferOutputLifetime(inputLifetimes, hasSelf); !ok {
		a.fail(diagnostics.New(diagnostics.KindOwnership,
			"function '%s' returns a reference but its lifetime cannot be inferred from its parameters; add an explicit lifetime annotation (line %d)",
			name, fn.Span.Line))
	}
}

// ---- body pass --------------------------------------------------------

func (a *Analyzer) bodyPass(program []ast.Stmt) {
	for _, stmt := range program {
		switch s := stmt.(type) {
		case *ast.Function:
			a.analyzeFunction(s)
		case *ast.Impl:
			for _, m := range s.Methods {
				a.analyzeFunction(m)
			}
		case *ast.Trait:
			for _, m := range s.Methods {
				if m.Body != nil {
					a.analyzeFunction(m)
				}
			}
		default:
			a.checkStmt(stmt)
		}
	}
}

func (a *Analyzer) pushScope() {
	a.scopes = append(a.scopes, make(scope))
	a.ownership.EnterScope()
	a.borrow.EnterScope()
	a.lifetime.EnterScope()
}

func (a *Analyzer) popScope() {
	a.scopes = a.scopes[:len(a.scopes)-1]
	a.ownership.ExitScope()
	a.borrow.ExitScope()
	a.lifetime.ExitScope()
}

func (a *Analyzer) define(name string, t ast.Type) {
	a.scopes[len(a.scopes)-1][name] = t
}

func (a *Analyzer) lookup(name string) (ast.Type, bool) {
	for i := len(a.scopes) - 1; i >= 0; i-- {
		if t, ok := a.scopes[i][name]; ok {
			return t, true
		}
	}
	return nil, false
}

func (a *Analyzer) analyzeFunction(fn *ast.Function) {
	prevFunc := a.currentFunc
	sig := a.Functions[fn.Name]
	if sig == nil {
		sig = &FuncSig{Name: fn.Name, ReturnType: fn.ReturnType}
	}
	a.currentFunc = sig

	a.pushScope()
	for _, p := range fn.Params {
		t := p.Type
		if p.IsSelf {
			t = ast.SelfType{}
		}
		a.define(p.Name, t)
		mutable := p.Mutable || (p.IsSelf && p.SelfMut)
		a.fail(a.ownership.Define(p.Name, mutable, fn.Span.Line))
	}
	if fn.Body != nil {
		a.checkBlock(fn.Body)
	}
	a.popScope()
	a.currentFunc = prevFunc
}

func (a *Analyzer) checkBlock(b *ast.Block) ast.Type {
	a.pushScope()
	for _, s := range b.Statements {
		a.checkStmt(s)
	}
	var result ast.Type = ast.VoidType{}
	if b.Trailing != nil {
		result = a.typeOf(b.Trailing)
		a.checkEscapingExpr(b.Trailing, b.Span.Line)
	}
	a.popScope()
	return result
}

func (a *Analyzer) checkStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Let:
		a.checkLet(s)
	case *ast.ExpressionStmt:
		a.typeOf(s.Expression)
	case *ast.Return:
		if s.Value != nil {
			retType := a.typeOf(s.Value)
			if a.currentFunc != nil && a.currentFunc.ReturnType != nil {
				if !typesys.LaxCompatible(retType, a.currentFunc.ReturnType) {
					a.fail(typeError("cannot return %s from a function declared to return %s",
						typesys.DisplayName(retType), typesys.DisplayName(a.currentFunc.ReturnType)))
				}
			}
			a.checkEscapingExpr(s.Value, s.Span.Line)
		}
	case *ast.If:
		a.typeOf(s.Condition)
		a.checkStmt(s.Then)
		if s.Else != nil {
			a.checkStmt(s.Else)
		}
	case *ast.While:
		a.typeOf(s.Condition)
		a.checkStmt(s.Body)
	case *ast.For:
		a.pushScope()
		a.define(s.Var, typesys.DefaultIntType)
		a.fail(a.ownership.Define(s.Var, false, s.Span.Line))
		a.typeOf(s.Start)
		a.typeOf(s.End)
		a.checkStmt(s.Body)
		a.popScope()
	case *ast.Block:
		a.checkBlock(s)
	case *ast.Struct, *ast.Enum, *ast.Import, *ast.Break, *ast.Continue:
		// no per-statement semantic effect beyond registration (structs/
		// enums are handled in the signature pass; imports affect stdlib
		// gating there too).
	}
}

func (a *Analyzer) checkLet(s *ast.Let) {
	var valueType ast.Type = ast.UnknownType{}
	if s.Initializer != nil {
		valueType = a.typeOf(s.Initializer)
		a.applyLetOwnership(s.Name, s.Initializer, s.Span.Line)
	}
	declared := s.Annotation
	if _, inferred := declared.(ast.InferredType); inferred || declared == nil {
		declared = valueType
	} else if !typesys.LaxCompatible(valueType, declared) {
		a.fail(typeError("cannot assign a value of type %s to '%s' declared as %s",
			typesys.DisplayName(valueType), s.Name, typesys.DisplayName(declared)))
	}
	a.define(s.Name, declared)
	a.fail(a.ownership.Define(s.Name, s.Mutable, s.Span.Line))
}

// applyLetOwnership implements the let-binding move/borrow semantics
// of spec §4.8.
func (a *Analyzer) applyLetOwnership(name string, rhs ast.Expr, line int) {
	switch e := rhs.(type) {
	case *ast.Reference:
		switch inner := e.Operand.(type) {
		case *ast.Identifier:
			if e.Mutable {
				a.fail(a.ownership.BorrowMut(inner.Name, name, line))
				a.fail(a.borrow.BorrowMutable(inner.Name, name, line))
			} else {
				a.fail(a.ownership.Borrow(inner.Name, name, line))
				a.fail(a.borrow.BorrowShared(inner.Name, name, line))
			}
			origin := OriginLocal
			if _, isParam := a.lookupParam(inner.Name); isParam {
				origin = OriginParameter
			}
			a.lifetime.TrackReference(name, inner.Name, true, origin, e.Mutable, line)
		default:
			a.fail(typeError("cannot borrow a temporary value"))
		}
	case *ast.Identifier:
		if t, ok := a.lookup(e.Name); ok && typesys.IsCopy(t) {
			return
		}
		a.fail(a.ownership.MoveValue(e.Name, name, line))
		a.fail(a.borrow.RecordMove(e.Name, name, line))
	}
}

// checkEscapingExpr implements the escape check (spec §4.7) on an
// expression in return/trailing position: a bare `&x` literal, an
// identifier bound to a tracked reference binding (`let r = &x; r`),
// or an `if` whose branches are themselves recursively checked (spec
// §4.8: "the analyser calls this check on trailing expressions of
// function bodies and on return expressions").
func (a *Analyzer) checkEscapingExpr(expr ast.Expr, line int) {
	switch e := expr.(type) {
	case *ast.Reference:
		a.checkDanglingReference(e, line)
	case *ast.Identifier:
		a.checkReferenceBindingEscape(e.Name, line)
	case *ast.IfExpr:
		a.checkBranchEscape(e.Then, line)
		if e.Else != nil {
			a.checkBranchEscape(e.Else, line)
		}
	}
}

// checkBranchEscape recurses into an if/else branch's trailing
// expression, following an else-if chain (Else holding another
// *ast.If) the same way the parser itself chains them.
func (a *Analyzer) checkBranchEscape(s ast.Stmt, line int) {
	switch b := s.(type) {
	case *ast.Block:
		if b.Trailing != nil {
			a.checkEscapingExpr(b.Trailing, line)
		}
	case *ast.If:
		a.checkBranchEscape(b.Then, line)
		if b.Else != nil {
			a.checkBranchEscape(b.Else, line)
		}
	}
}

// checkDanglingReference handles a bare `&x` literal: x has no tracked
// lifetime entry of its own (TrackReference only runs for `let`-bound
// references), so its origin is classified directly from the current
// function's parameter list instead of going through the
// LifetimeChecker's by-name lookup.
func (a *Analyzer) checkDanglingReference(ref *ast.Reference, line int) {
	id, ok := ref.Operand.(*ast.Identifier)
	if !ok {
		return
	}
	if _, isParam := a.lookupParam(id.Name); isParam {
		return
	}
	a.fail(a.lifetime.escapeError(OriginLocal, id.Name, true, line))
}

// checkReferenceBindingEscape handles an identifier that refers to a
// `let`-bound reference (`let r = &x; r`): the binding's origin was
// already recorded by TrackReference, so this is CheckEscape's actual
// use site (spec §4.7's escape check, not just the literal-&x case).
func (a *Analyzer) checkReferenceBindingEscape(name string, line int) {
	a.fail(a.lifetime.CheckEscape(name, line))
}

func (a *Analyzer) lookupParam(name string) (ParamSig, bool) {
	if a.currentFunc == nil {
		return ParamSig{}, false
	}
	for _, p := range a.currentFunc.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSig{}, false
}
