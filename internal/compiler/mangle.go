package compiler

import "github.com/zephyrlang/zr/internal/ast"

// usedCallNames walks every statement and expression in program and
// records every name that appears as a call's callee: bare identifiers
// directly, and for field-access callees `O.m` both `O::m` (O's
// textual identifier, standing in for a static-method-style call) and
// the bare method name `m` (spec §4.9's mangling pre-pass).
func usedCallNames(program []ast.Stmt) map[string]bool {
	used := make(map[string]bool)
	record := func(call *ast.Call) {
		switch callee := call.Callee.(type) {
		case *ast.Identifier:
			used[callee.Name] = true
		case *ast.FieldAccess:
			used[callee.Field] = true
			if obj, ok := callee.Object.(*ast.Identifier); ok {
				used[obj.Name+"::"+callee.Field] = true
			}
		}
	}
	for _, s := range program {
		walkStmt(s, record)
	}
	return used
}

// shouldCompileMethod implements spec §4.9's keep rule: compile a
// method if the full mangled name, the bare name, the inherent
// `Type::m` name, or (for trait impls) any used name ending in `::m`
// that mentions the target type or starts with `<` was observed used.
func shouldCompileMethod(used map[string]bool, targetType, traitName, methodName string) bool {
	inherentName := targetType + "::" + methodName
	if used[methodName] || used[inherentName] {
		return true
	}
	if traitName == "" {
		return false
	}
	traitImplName := "<" + traitName + " as " + targetType + ">::" + methodName
	if used[traitImplName] {
		return true
	}
	suffix := "::" + methodName
	for name := range used {
		if len(name) >= len(suffix) && name[len(name)-len(suffix):] == suffix {
			if containsStr(name, targetType) || name[0] == '<' {
				return true
			}
		}
	}
	return false
}

func containsStr(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

func walkStmt(s ast.Stmt, found func(*ast.Call)) {
	if s == nil {
		return
	}
	switch st := s.(type) {
	case *ast.Let:
		walkExpr(st.Initializer, found)
	case *ast.Function:
		walkBlock(st.Body, found)
	case *ast.ExpressionStmt:
		walkExpr(st.Expression, found)
	case *ast.Return:
		walkExpr(st.Value, found)
	case *ast.If:
		walkExpr(st.Condition, found)
		walkStmt(st.Then, found)
		walkStmt(st.Else, found)
	case *ast.While:
		walkExpr(st.Condition, found)
		walkStmt(st.Body, found)
	case *ast.For:
		walkExpr(st.Start, found)
		walkExpr(st.End, found)
		walkStmt(st.Body, found)
	case *ast.Block:
		walkBlock(st, found)
	case *ast.Impl:
		for _, m := range st.Methods {
			walkStmt(m, found)
		}
	case *ast.Trait:
		for _, m := range st.Methods {
			if m.Body != nil {
				walkStmt(m, found)
			}
		}
	}
}

func walkBlock(b *ast.Block, found func(*ast.Call)) {
	if b == nil {
		return
	}
	for _, s := range b.Statements {
		walkStmt(s, found)
	}
	walkExpr(b.Trailing, found)
}

func walkExpr(e ast.Expr, found func(*ast.Call)) {
	switch ex := e.(type) {
	case nil:
		return
	case *ast.Call:
		found(ex)
		walkExpr(ex.Callee, found)
		for _, a := range ex.Args {
			walkExpr(a, found)
		}
	case *ast.Binary:
		walkExpr(ex.Left, found)
		walkExpr(ex.Right, found)
	case *ast.Unary:
		walkExpr(ex.Operand, found)
	case *ast.Assign:
		walkExpr(ex.Target, found)
		walkExpr(ex.Value, found)
	case *ast.FieldAccess:
		walkExpr(ex.Object, found)
	case *ast.Index:
		walkExpr(ex.Object, found)
		walkExpr(ex.Idx, found)
	case *ast.ListLiteral:
		for _, el := range ex.Elements {
			walkExpr(el, found)
		}
	case *ast.VecLiteral:
		for _, el := range ex.Elements {
			walkExpr(el, found)
		}
	case *ast.ObjectLiteral:
		for _, f := range ex.Fields {
			walkExpr(f.Value, found)
		}
	case *ast.Reference:
		walkExpr(ex.Operand, found)
	case *ast.Dereference:
		walkExpr(ex.Operand, found)
	case *ast.Range:
		walkExpr(ex.Start, found)
		walkExpr(ex.End, found)
	case *ast.Grouping:
		walkExpr(ex.Inner, found)
	case *ast.IfExpr:
		walkExpr(ex.Condition, found)
		walkBlock(ex.Then, found)
		walkStmt(ex.Else, found)
	case *ast.StructInit:
		for _, f := range ex.Fields {
			walkExpr(f.Value, found)
		}
	case *ast.EnumVariant:
		walkExpr(ex.Data, found)
	case *ast.Match:
		walkExpr(ex.Scrutinee, found)
		for _, arm := range ex.Arms {
			walkExpr(arm.Guard, found)
			walkExpr(arm.Body, found)
		}
	case *ast.Cast:
		walkExpr(ex.Operand, found)
	case *ast.Closure:
		walkExpr(ex.Body, found)
	case *ast.InterpString:
		for _, seg := range ex.Segments {
			if seg.IsExpression {
				walkExpr(seg.Expression, found)
			}
		}
	}
}
