package sema

import (
	"github.com/zephyrlang/zr/internal/ast"
	"github.com/zephyrlang/zr/internal/stdlib"
	"github.com/zephyrlang/zr/internal/token"
	"github.com/zephyrlang/zr/internal/typesys"
)

// typeOf type-checks e, drives the ownership/borrow checkers where the
// expression has an ownership effect, caches the resolved type, and
// returns it (spec §4.8 "Expression types").
func (a *Analyzer) typeOf(e ast.Expr) ast.Type {
	if e == nil {
		return ast.VoidType{}
	}
	if t, ok := a.Cache.Get(e); ok {
		return t
	}
	t := a.computeType(e)
	a.Cache.Set(e, t)
	return t
}

func (a *Analyzer) computeType(e ast.Expr) ast.Type {
	switch ex := e.(type) {
	case *ast.IntLiteral:
		width := ex.Width
		if width == 0 {
			width = typesys.DefaultIntType.Width
		}
		return ast.IntType{Width: width, Signed: true}

	case *ast.FloatLiteral:
		width := ex.Width
		if width == 0 {
			width = typesys.DefaultFloatType.Width
		}
		return ast.FloatType{Width: width}

	case *ast.BoolLiteral:
		return ast.BoolType{}
	case *ast.CharLiteral:
		return ast.CharType{}
	case *ast.StringLiteral:
		return ast.StringType{}

	case *ast.InterpString:
		for _, seg := range ex.Segments {
			if seg.IsExpression {
				a.typeOf(seg.Expression)
			}
		}
		return ast.StringType{}

	case *ast.Identifier:
		t, ok := a.lookup(ex.Name)
		if !ok {
			a.fail(nameError("undefined variable '%s'", ex.Name))
			return ast.UnknownType{}
		}
		a.fail(a.ownership.checkUse(ex.Name, ex.Span.Line))
		a.fail(a.borrow.CanUse(ex.Name, ex.Span.Line))
		return t

	case *ast.Binary:
		return a.checkBinary(ex)

	case *ast.Unary:
		operand := a.typeOf(ex.Operand)
		switch ex.Operator.Kind {
		case token.BANG:
			return ast.BoolType{}
		default:
			return operand
		}

	case *ast.Assign:
		return a.checkAssign(ex)

	case *ast.Call:
		return a.checkCall(ex)

	case *ast.FieldAccess:
		objType := a.typeOf(ex.Object)
		if named, ok := underlyingNamed(objType); ok {
			if info, ok := a.Structs[named]; ok {
				if ft, ok := info.Fields[ex.Field]; ok {
					return ft
				}
			}
		}
		return ast.UnknownType{}

	case *ast.Index:
		objType := a.typeOf(ex.Object)
		a.typeOf(ex.Idx)
		switch ot := objType.(type) {
		case ast.VecType:
			return ot.Elem
		case ast.ArrayType:
			return ot.Elem
		default:
			return ast.UnknownType{}
		}

	case *ast.ListLiteral:
		var elem ast.Type = ast.UnknownType{}
		for i, el := range ex.Elements {
			t := a.typeOf(el)
			if i == 0 {
				elem = t
			}
		}
		return ast.ArrayType{Elem: elem, Size: len(ex.Elements)}

	case *ast.VecLiteral:
		var elem ast.Type = ast.UnknownType{}
		for i, el := range ex.Elements {
			t := a.typeOf(el)
			if i == 0 {
				elem = t
			}
		}
		return ast.VecType{Elem: elem}

	case *ast.ObjectLiteral:
		fields := make(map[string]ast.Type)
		var order []string
		for _, f := range ex.Fields {
			fields[f.Name] = a.typeOf(f.Value)
			order = append(order, f.Name)
		}
		return ast.ObjectType{Fields: fields, Order: order}

	case *ast.Reference:
		inner := a.typeOf(ex.Operand)
		return ast.ReferenceType{Mutable: ex.Mutable, Inner: inner}

	case *ast.Dereference:
		inner := a.typeOf(ex.Operand)
		if ref, ok := inner.(ast.ReferenceType); ok {
			return ref.Inner
		}
		return inner

	case *ast.Range:
		a.typeOf(ex.Start)
		a.typeOf(ex.End)
		return typesys.DefaultIntType

	case *ast.Grouping:
		return a.typeOf(ex.Inner)

	case *ast.IfExpr:
		a.typeOf(ex.Condition)
		thenType := a.checkBlock(ex.Then)
		if ifElse, ok := ex.Else.(*ast.Block); ok {
			elseType := a.checkBlock(ifElse)
			return joinBranchTypes(thenType, elseType)
		}
		if ifElse, ok := ex.Else.(*ast.ExpressionStmt); ok {
			elseType := a.typeOf(ifElse.Expression)
			return joinBranchTypes(thenType, elseType)
		}
		return thenType

	case *ast.StructInit:
		for _, f := range ex.Fields {
			a.typeOf(f.Value)
		}
		return ast.NamedType{Name: ex.TypeName}

	case *ast.EnumVariant:
		if ex.Data != nil {
			a.typeOf(ex.Data)
		}
		return ast.NamedType{Name: ex.EnumName}

	case *ast.Match:
		scrutinee := a.typeOf(ex.Scrutinee)
		var result ast.Type = ast.UnknownType{}
		for i, arm := range ex.Arms {
			a.pushScope()
			a.bindPattern(arm.Pattern, scrutinee, ex.Span.Line)
			if arm.Guard != nil {
				a.typeOf(arm.Guard)
			}
			t := a.typeOf(arm.Body)
			a.popScope()
			if i == 0 {
				result = t
			}
		}
		return result

	case *ast.Cast:
		from := a.typeOf(ex.Operand)
		if !typesys.Castable(from, ex.Target) {
			a.fail(typeError("cannot cast %s to %s", typesys.DisplayName(from), typesys.DisplayName(ex.Target)))
		}
		return ex.Target

	case *ast.Closure:
		a.pushScope()
		for _, p := range ex.Params {
			a.define(p.Name, p.Type)
			a.fail(a.ownership.Define(p.Name, false, ex.Span.Line))
		}
		bodyType := a.typeOf(ex.Body)
		a.popScope()
		return bodyType

	default:
		return ast.UnknownType{}
	}
}

// checkUse is the ownership-checker counterpart to Use that discards
// the returned binding — callers here only care whether the use is
// valid, not the binding itself.
func (c *OwnershipChecker) checkUse(name string, line int) error {
	_, err := c.Use(name, line)
	return err
}

func underlyingNamed(t ast.Type) (string, bool) {
	switch nt := t.(type) {
	case ast.NamedType:
		return nt.Name, true
	case ast.SelfType:
		return "", false
	default:
		return "", false
	}
}

// joinBranchTypes resolves the Open Question recorded in DESIGN.md:
// strict compatibility is used only when both branches are reference
// types, lax (widen-on-join) compatibility otherwise.
func joinBranchTypes(a, b ast.Type) ast.Type {
	_, aRef := a.(ast.ReferenceType)
	_, bRef := b.(ast.ReferenceType)
	if aRef && bRef {
		if typesys.StrictCompatible(a, b) {
			return a
		}
		return ast.UnknownType{}
	}
	if typesys.LaxCompatible(a, b) {
		return a
	}
	return ast.UnknownType{}
}

func (a *Analyzer) checkBinary(ex *ast.Binary) ast.Type {
	left := a.typeOf(ex.Left)
	right := a.typeOf(ex.Right)
	switch ex.Operator.Kind {
	case token.EQ, token.NEQ, token.LT, token.LTE, token.GT, token.GTE:
		return ast.BoolType{}
	case token.AMPAMP, token.AND, token.PIPEPIPE, token.OR:
		if _, ok := left.(ast.BoolType); !ok {
			a.fail(typeError("left operand of a boolean operator must be bool, got %s", typesys.DisplayName(left)))
		}
		if _, ok := right.(ast.BoolType); !ok {
			a.fail(typeError("right operand of a boolean operator must be bool, got %s", typesys.DisplayName(right)))
		}
		return ast.BoolType{}
	default: // arithmetic
		if typesys.IsFloat(left) || typesys.IsFloat(right) {
			return typesys.DefaultFloatType
		}
		if !typesys.LaxCompatible(left, right) && !(typesys.IsNumeric(left) && typesys.IsNumeric(right)) {
			a.fail(typeError("incompatible operand types %s and %s", typesys.DisplayName(left), typesys.DisplayName(right)))
		}
		return left
	}
}

func (a *Analyzer) checkAssign(ex *ast.Assign) ast.Type {
	valueType := a.typeOf(ex.Value)
	switch target := ex.Target.(type) {
	case *ast.Identifier:
		declared, ok := a.lookup(target.Name)
		if ok && !typesys.LaxCompatible(valueType, declared) {
			a.fail(typeError("cannot assign a value of type %s to '%s' declared as %s",
				typesys.DisplayName(valueType), target.Name, typesys.DisplayName(declared)))
		}
		a.fail(a.ownership.Assign(target.Name, ex.Span.Line))
		a.fail(a.borrow.CanMutate(target.Name, ex.Span.Line))
	case *ast.FieldAccess:
		a.checkFieldAssignTarget(target, ex.Span.Line)
		a.typeOf(target.Object)
	case *ast.Index:
		a.typeOf(target.Object)
		a.typeOf(target.Idx)
	}
	return valueType
}

// checkFieldAssignTarget implements the struct-field-assignment rule
// of spec §4.8: `obj.f = e` is rejected when obj is `self` under a
// `&self` (not `&mut self`) method, and rejected when obj is an
// immutable local variable.
func (a *Analyzer) checkFieldAssignTarget(target *ast.FieldAccess, line int) {
	id, ok := target.Object.(*ast.Identifier)
	if !ok {
		return
	}
	if id.Name == "self" {
		if a.currentFunc != nil && !a.currentFunc.HasMutSelf {
			a.fail(typeError("cannot assign to field '%s' of 'self': method does not take &mut self", target.Field))
		}
		return
	}
	if b, ok := a.ownership.Get(id.Name); ok && !b.Mutable {
		a.fail(typeError("cannot assign to field '%s' of immutable variable '%s'", target.Field, id.Name))
	}
}

// checkCall implements call checking (spec §4.8): resolves the
// callee, gates stdlib calls on the matching import, checks arity and
// lax argument compatibility, requests a mutable borrow for &mut self
// methods, and records moves for non-Copy bare-identifier arguments.
func (a *Analyzer) checkCall(ex *ast.Call) ast.Type {
	name, sig, isMethod, receiver := a.resolveCallee(ex.Callee)

	if stdlib.IsStdlibFunction(name) && !stdlib.AlwaysAvailable[name] {
		module := stdlib.ModuleOf[name]
		if !a.importedStdlib[module] {
			a.fail(importError("'%s' requires 'import std::%s;'", name, module))
		}
	}

	var params []ParamSig
	if sig != nil {
		params = sig.Params
		if len(params) > 0 && params[0].IsSelf {
			params = params[1:]
		}
		if len(ex.Args) != len(params) {
			a.fail(typeError("'%s' expects %d argument(s), got %d", name, len(params), len(ex.Args)))
		}
	}

	for i, arg := range ex.Args {
		argType := a.typeOf(arg)
		if sig == nil {
			continue
		}
		if i < len(params) {
			if !typesys.LaxCompatible(argType, params[i].Type) {
				a.fail(typeError("argument %d of '%s' has type %s, expected %s",
					i+1, name, typesys.DisplayName(argType), typesys.DisplayName(params[i].Type)))
			}
			if _, isRef := params[i].Type.(ast.ReferenceType); isRef {
				continue
			}
		}
		a.checkArgumentMove(arg, argType, sig)
	}

	if isMethod && sig != nil && sig.HasMutSelf && receiver != "" {
		borrower := "call@" + receiver
		if err := a.ownership.BorrowMut(receiver, borrower, ex.Span.Line); err != nil {
			a.fail(err)
		} else {
			// the receiver's borrow lasts only for the call itself
			a.ownership.Release(receiver)
		}
		a.fail(a.borrow.BorrowMutable(receiver, borrower, ex.Span.Line))
		a.borrow.EndBorrow(borrower)
	}

	if sig != nil {
		return sig.ReturnType
	}
	return ast.UnknownType{}
}

// checkArgumentMove records a move for a bare-identifier argument
// whose type is neither Copy nor a reference (spec §4.8 call-checking
// rule 5). checkCall does not call it for an argument whose parameter
// is a reference type.
func (a *Analyzer) checkArgumentMove(arg ast.Expr, argType ast.Type, sig *FuncSig) {
	id, ok := arg.(*ast.Identifier)
	if !ok || id.Name == "self" {
		return
	}
	if typesys.IsCopy(argType) {
		return
	}
	if _, isRef := argType.(ast.ReferenceType); isRef {
		return
	}
	a.fail(a.ownership.MoveValue(id.Name, "<call>", id.Span.Line))
	a.fail(a.borrow.RecordMove(id.Name, "<call>", id.Span.Line))
}

// resolveCallee determines the callee's resolved name and signature.
// For a bare identifier it is a direct function/stdlib call; for
// `obj.m(...)` it resolves the receiver's cached type to `TypeName::m`,
// falling back to the textual object identifier, then to the bare
// method name, per spec §4.8 rule 1.
func (a *Analyzer) resolveCallee(callee ast.Expr) (name string, sig *FuncSig, isMethod bool, receiver string) {
	switch c := callee.(type) {
	case *ast.Identifier:
		return c.Name, a.Functions[c.Name], false, ""
	case *ast.FieldAccess:
		receiverType := a.typeOf(c.Object)
		typeName, ok := underlyingNamed(receiverType)
		if !ok {
			if obj, ok := c.Object.(*ast.Identifier); ok {
				typeName = obj.Name
			}
		}
		receiverID := ""
		if obj, ok := c.Object.(*ast.Identifier); ok {
			receiverID = obj.Name
		}
		if typeName != "" {
			if s, ok := a.Functions[typeName+"::"+c.Field]; ok {
				return typeName + "::" + c.Field, s, true, receiverID
			}
		}
		if s, ok := a.Functions[c.Field]; ok {
			return c.Field, s, true, receiverID
		}
		return c.Field, nil, true, receiverID
	default:
		return "", nil, false, ""
	}
}

// bindPattern defines every name a match pattern introduces in the
// current scope, typed against scrutinee (spec §4.2's pattern grammar).
// Struct/variant field sub-patterns are typed against the declared
// field type when the registry has one, falling back to Unknown.
func (a *Analyzer) bindPattern(p ast.Pattern, scrutinee ast.Type, line int) {
	switch pat := p.(type) {
	case ast.IdentPattern:
		a.define(pat.Name, scrutinee)
		a.fail(a.ownership.Define(pat.Name, false, line))
	case ast.RefPattern:
		inner := scrutinee
		if ref, ok := scrutinee.(ast.ReferenceType); ok {
			inner = ref.Inner
		}
		a.bindPattern(pat.Inner, inner, line)
	case ast.TuplePattern:
		for _, el := range pat.Elements {
			a.bindPattern(el, ast.UnknownType{}, line)
		}
	case ast.StructPattern:
		info := a.Structs[pat.TypeName]
		for _, f := range pat.Fields {
			fieldType := ast.Type(ast.UnknownType{})
			if info != nil {
				if ft, ok := info.Fields[f.Name]; ok {
					fieldType = ft
				}
			}
			a.bindPattern(f.Sub, fieldType, line)
		}
	case ast.VariantPattern:
		if pat.Inner != nil {
			dataType := ast.Type(ast.UnknownType{})
			if info := a.Enums[pat.EnumName]; info != nil {
				if v, ok := info.Variants[pat.Variant]; ok && v.HasData {
					dataType = v.DataType
				}
			}
			a.bindPattern(pat.Inner, dataType, line)
		}
	case ast.WildcardPattern, ast.LiteralPattern:
		// no bindings introduced
	}
}
